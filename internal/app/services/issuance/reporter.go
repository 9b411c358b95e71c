package issuance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/R3E-Network/library_service/internal/app/metrics"
	"github.com/R3E-Network/library_service/internal/app/services/validate"
	"github.com/R3E-Network/library_service/internal/app/system"
	"github.com/R3E-Network/library_service/pkg/logger"
)

// DefaultSchedule runs the overdue report once an hour.
const DefaultSchedule = "@hourly"

const reportTimeout = 30 * time.Second

// Reporter periodically counts books past their target return date and
// publishes the count as a gauge. It only reads.
type Reporter struct {
	svc      *Service
	schedule string
	log      *logger.Logger
	now      func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

var _ system.Service = (*Reporter)(nil)

// NewReporter constructs a reporter. An empty schedule uses DefaultSchedule.
func NewReporter(svc *Service, schedule string, log *logger.Logger) *Reporter {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if log == nil {
		log = logger.NewDefault("overdue-reporter")
	}
	return &Reporter{svc: svc, schedule: schedule, log: log, now: time.Now}
}

func (r *Reporter) Name() string { return "overdue-reporter" }

// Start validates the schedule, runs one report immediately and then hands
// off to cron.
func (r *Reporter) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron != nil {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(r.schedule, r.tick); err != nil {
		return fmt.Errorf("parse overdue report schedule %q: %w", r.schedule, err)
	}

	if _, err := r.Report(ctx); err != nil {
		r.log.WithError(err).Warn("initial overdue report failed")
	}

	c.Start()
	r.cron = c
	r.log.WithField("schedule", r.schedule).Info("overdue reporter started")
	return nil
}

// Stop halts the schedule and waits for a running report to finish or ctx to
// expire.
func (r *Reporter) Stop(ctx context.Context) error {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()
	if c == nil {
		return nil
	}

	select {
	case <-c.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Report counts pending returns as of today and updates the gauge.
func (r *Reporter) Report(ctx context.Context) (int, error) {
	today := r.now().Format(validate.DateLayout)
	pending, err := r.svc.ListPending(ctx, today)
	if err != nil {
		return 0, err
	}
	metrics.SetPendingReturns(len(pending))
	entry := r.log.WithField("date", today).WithField("pending", len(pending))
	if len(pending) > 0 {
		entry.Warn("books past target return date")
	} else {
		entry.Debug("no books past target return date")
	}
	return len(pending), nil
}

func (r *Reporter) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()
	if _, err := r.Report(ctx); err != nil {
		r.log.WithError(err).Error("overdue report failed")
	}
}
