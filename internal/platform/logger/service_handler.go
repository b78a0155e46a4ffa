package logger

import (
	"io"
	"log/slog"
	"os"
	"strconv"
)

// NewServiceHandler creates a JSON slog.Handler whose records carry the
// identity of the emitting host process. The platform runs as several
// independently deployed binaries, so aggregated logs need the service name
// and host to be attributable.
//
// The identity attributes are bound at the handler root, before any group a
// caller may open later, so they always render at the top level of the
// record.
func NewServiceHandler(out io.Writer, service string, opts *slog.HandlerOptions) slog.Handler {
	var handlerOpts *slog.HandlerOptions
	if opts != nil {
		// Clone the options to avoid modifying the caller's options
		handlerOptsCopy := *opts
		handlerOpts = &handlerOptsCopy
	} else {
		handlerOpts = &slog.HandlerOptions{}
	}

	return slog.NewJSONHandler(out, handlerOpts).WithAttrs(hostAttrs(service))
}

// hostAttrs collects the identity attributes stamped on each record.
// A hostname lookup failure leaves the host attribute out rather than
// failing logger construction.
func hostAttrs(service string) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("pid", strconv.Itoa(os.Getpid())),
	}

	if service != "" {
		attrs = append(attrs, slog.String("service", service))
	}

	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		attrs = append(attrs, slog.String("host", hostname))
	}

	return attrs
}
