package app

import (
	"context"
	"fmt"

	"github.com/R3E-Network/library_service/internal/app/services/books"
	issuancesvc "github.com/R3E-Network/library_service/internal/app/services/issuance"
	"github.com/R3E-Network/library_service/internal/app/services/members"
	"github.com/R3E-Network/library_service/internal/app/storage"
	"github.com/R3E-Network/library_service/internal/app/storage/memory"
	"github.com/R3E-Network/library_service/internal/app/system"
	"github.com/R3E-Network/library_service/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Books     storage.BookStore
	Members   storage.MemberStore
	Issuances storage.IssuanceStore
	Health    storage.Pinger
}

// Option customises an Application.
type Option func(*options)

type options struct {
	reportSchedule string
	disableReport  bool
}

// WithReportSchedule sets the cron schedule of the overdue reporter.
func WithReportSchedule(schedule string) Option {
	return func(o *options) { o.reportSchedule = schedule }
}

// WithoutReporter leaves the overdue reporter unregistered.
func WithoutReporter() Option {
	return func(o *options) { o.disableReport = true }
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger
	health  storage.Pinger

	Books    *books.Service
	Members  *members.Service
	Issuance *issuancesvc.Service
	Reporter *issuancesvc.Reporter
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, log *logger.Logger, opts ...Option) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	// Stores that are left nil share one memory store so references resolve.
	mem := memory.New()
	if stores.Books == nil {
		stores.Books = mem
	}
	if stores.Members == nil {
		stores.Members = mem
	}
	if stores.Issuances == nil {
		stores.Issuances = mem
	}
	if stores.Health == nil {
		stores.Health = mem
	}

	manager := system.NewManager()

	bookService := books.New(stores.Books, log)
	memberService := members.New(stores.Members, log)
	issuanceService := issuancesvc.New(stores.Books, stores.Members, stores.Issuances, log)

	application := &Application{
		manager:  manager,
		log:      log,
		health:   stores.Health,
		Books:    bookService,
		Members:  memberService,
		Issuance: issuanceService,
	}

	if !o.disableReport {
		application.Reporter = issuancesvc.NewReporter(issuanceService, o.reportSchedule, log)
		if err := manager.Register(application.Reporter); err != nil {
			return nil, fmt.Errorf("register %s: %w", application.Reporter.Name(), err)
		}
	}

	return application, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}

// Ping checks the backing store.
func (a *Application) Ping(ctx context.Context) error {
	return a.health.Ping(ctx)
}
