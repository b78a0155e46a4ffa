// Package retention purges rows that have been soft-deleted longer than the
// configured window. Each host schedules one Sweeper over the tables it owns;
// deletes stay reversible until the sweep makes them permanent.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/gridstonehq/gridstone-api/internal/config"
	"github.com/gridstonehq/gridstone-api/internal/platform/metrics"
	"github.com/gridstonehq/gridstone-api/internal/redact"
)

// sweepTimeout bounds one full sweep across all targets.
const sweepTimeout = 5 * time.Minute

// Purger permanently removes rows soft-deleted before cutoff and reports how
// many rows went away.
type Purger interface {
	PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Target pairs a purger with the table name used in logs and metrics.
type Target struct {
	Table  string
	Purger Purger
}

// Sweeper runs the configured purge on a cron schedule. A disabled sweeper
// is inert; Start and Stop are still safe to call.
type Sweeper struct {
	cfg     config.RetentionConfig
	targets []Target
	metrics *metrics.Collector
	logger  *slog.Logger
	cron    *cron.Cron
}

// NewSweeper creates a sweeper over the given targets. The collector is
// required; it records one db operation per table per sweep. If log is nil,
// the default logger is used.
func NewSweeper(
	cfg config.RetentionConfig,
	targets []Target,
	collector *metrics.Collector,
	log *slog.Logger,
) *Sweeper {
	if collector == nil {
		panic("retention: metrics collector is required")
	}
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "retention"))

	cl := cronLogger{log: log}
	return &Sweeper{
		cfg:     cfg,
		targets: targets,
		metrics: collector,
		logger:  log,
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
	}
}

// Start schedules the sweep. A disabled sweeper starts nothing and returns
// nil; an unparseable schedule is a startup error.
func (s *Sweeper) Start() error {
	if !s.cfg.Enabled {
		s.logger.Debug("retention sweeper disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		s.Sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule retention sweep %q: %w", s.cfg.Schedule, err)
	}

	s.cron.Start()
	s.logger.Info("retention sweeper started",
		slog.String("schedule", s.cfg.Schedule),
		slog.Int("max_age_days", s.cfg.MaxAgeDays))
	return nil
}

// Stop halts scheduling and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep purges every target once. One failing table does not stop the
// others; every outcome is recorded as a purge operation on the collector.
func (s *Sweeper) Sweep(ctx context.Context) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.cfg.MaxAgeDays)

	for _, target := range s.targets {
		purged, err := target.Purger.PurgeDeletedBefore(ctx, cutoff)
		s.metrics.RecordDBOperation("purge", target.Table, err)
		if err != nil {
			s.logger.Error("retention sweep failed",
				slog.String("table", target.Table),
				slog.String("error", redact.Error(err)))
			continue
		}

		if purged > 0 {
			s.logger.Info("retention sweep purged rows",
				slog.String("table", target.Table),
				slog.Int64("purged", purged),
				slog.Time("cutoff", cutoff))
		} else {
			s.logger.Debug("retention sweep found nothing to purge",
				slog.String("table", target.Table))
		}
	}
}

// cronLogger adapts the scheduler's key-value logging onto slog. Both sides
// use alternating key-value pairs, so the arguments pass straight through.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	args := append([]interface{}{"error", redact.Error(err)}, keysAndValues...)
	l.log.Error(msg, args...)
}
