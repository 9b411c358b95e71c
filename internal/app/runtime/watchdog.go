package runtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/R3E-Network/library_service/internal/app/metrics"
	"github.com/R3E-Network/library_service/pkg/logger"
)

// ErrDatabaseUnavailable is returned by Run once the pool has failed too many
// consecutive health pings.
var ErrDatabaseUnavailable = errors.New("database unavailable")

const (
	defaultPingInterval    = 15 * time.Second
	defaultMaxPingFailures = 3
)

// Pinger is the part of the pool the watchdog needs.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Watchdog pings the database pool on an interval. It resets on every
// successful ping.
type Watchdog struct {
	db          Pinger
	interval    time.Duration
	maxFailures int
	log         *logger.Logger
}

// NewWatchdog constructs a watchdog. Non-positive settings take defaults.
func NewWatchdog(db Pinger, interval time.Duration, maxFailures int, log *logger.Logger) *Watchdog {
	if interval <= 0 {
		interval = defaultPingInterval
	}
	if maxFailures <= 0 {
		maxFailures = defaultMaxPingFailures
	}
	if log == nil {
		log = logger.NewDefault("db-watchdog")
	}
	return &Watchdog{db: db, interval: interval, maxFailures: maxFailures, log: log}
}

// Run blocks until ctx is done (returning nil) or the failure budget is spent.
func (w *Watchdog) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		pingCtx, cancel := context.WithTimeout(ctx, w.interval)
		err := w.db.PingContext(pingCtx)
		cancel()
		if err == nil {
			if failures > 0 {
				w.log.WithField("failures", failures).Info("database connection recovered")
			}
			failures = 0
			continue
		}
		if ctx.Err() != nil {
			return nil
		}

		failures++
		metrics.RecordDBPingFailure()
		w.log.WithError(err).
			WithField("failures", failures).
			WithField("max_failures", w.maxFailures).
			Warn("database ping failed")
		if failures >= w.maxFailures {
			return fmt.Errorf("%w: %d consecutive ping failures: %v", ErrDatabaseUnavailable, failures, err)
		}
	}
}
