// Package app composes the library service.
//
// # Package Structure
//
//	internal/app/
//	├── application.go      # Application struct, wiring and lifecycle
//	├── domain/             # Domain models (book, member, issuance)
//	├── storage/            # Store interfaces
//	│   ├── memory/         # In-memory implementation for tests and local runs
//	│   └── postgres/       # PostgreSQL implementation
//	├── services/           # Validation and business rules per entity
//	├── httpapi/            # HTTP handlers, routing and the middleware chain
//	├── system/             # Lifecycle manager for background services
//	├── runtime/            # Process wiring: database pool, server, watchdog
//	├── seed/               # YAML catalogue loader
//	└── metrics/            # Prometheus collectors
//
// # Dependency Direction
//
//	cmd/library/
//	      │
//	      ▼
//	internal/app/runtime
//	      │
//	      ├──► internal/app/httpapi ──► internal/middleware
//	      │
//	      └──► internal/app (composition)
//	                  │
//	                  ├──► internal/app/services
//	                  │
//	                  └──► internal/app/storage
//
// Services depend only on the store interfaces, so the memory and postgres
// implementations are interchangeable.
package app
