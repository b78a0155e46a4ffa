package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// Capture is an io.Writer that records JSON log output for assertions.
// It is safe for concurrent use.
type Capture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (c *Capture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

func (c *Capture) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

// Entries decodes the captured output into one generic map per record.
func (c *Capture) Entries() ([]map[string]any, error) {
	c.mu.Lock()
	raw := c.buf.String()
	c.mu.Unlock()

	var entries []map[string]any
	dec := json.NewDecoder(strings.NewReader(raw))
	for {
		var entry map[string]any
		if err := dec.Decode(&entry); err != nil {
			if errors.Is(err, io.EOF) {
				return entries, nil
			}
			return nil, err
		}
		entries = append(entries, entry)
	}
}

// NewTestLogger returns a logger writing JSON records into the returned
// Capture and installs it as the process default until the test ends,
// so code that falls back to slog.Default does not write to stderr.
// When opts is nil every level from debug up is captured.
func NewTestLogger(t *testing.T, opts *slog.HandlerOptions) (*slog.Logger, *Capture) {
	t.Helper()

	if opts == nil {
		opts = &slog.HandlerOptions{Level: slog.LevelDebug}
	}

	capture := &Capture{}
	log := slog.New(slog.NewJSONHandler(capture, opts))

	previous := slog.Default()
	slog.SetDefault(log)
	t.Cleanup(func() { slog.SetDefault(previous) })

	return log, capture
}
