// Package mocks provides mock implementations of the core ports for service tests.
//
// The mocks are generated with go.uber.org/mock (gomock). To regenerate them after
// interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	repo := mocks.NewMockDistributionRepository(ctrl)
//	repo.EXPECT().GetByID(gomock.Any(), "p-1", "d-1").Return(dist, nil)
package mocks

// Generate mock for TxRunner interface from internal/core package.
// Methods: WithinTx
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=tx_runner_mock.go github.com/target/vms-jobdist/internal/core TxRunner

// Generate mock for JobRepository interface from internal/core package.
// Methods: GetWithTemplate, GetWithTemplateForUpdateTx, NotificationDetails, UpdateStatusTx
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=job_repository_mock.go github.com/target/vms-jobdist/internal/core JobRepository

// Generate mock for VendorRepository interface from internal/core package.
// Methods: DistributedVendorIDs, ExpandGroupsTx, MatchActiveTx, ResolveForUser
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=vendor_repository_mock.go github.com/target/vms-jobdist/internal/core VendorRepository

// Generate mock for DistributionRepository interface from internal/core package.
// Methods: BulkInsertTx, DeleteScheduledTx, GetByID, List, ListScheduled, Promote, SoftDelete, Update,
// UpdateLimitByJob, UpdateVendorOpt
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=distribution_repository_mock.go github.com/target/vms-jobdist/internal/core DistributionRepository

// Generate mock for HistoryRepository interface from internal/core package.
// Methods: GetRevision, InsertTx, LatestByEventType, List, LockJobTx, MaxRevisionTx
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=history_repository_mock.go github.com/target/vms-jobdist/internal/core HistoryRepository

// Generate mock for UserDirectory interface from internal/core package.
// Methods: UserType, UsersByIDs
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=user_directory_mock.go github.com/target/vms-jobdist/internal/core UserDirectory

// Generate mock for ScheduleRepository interface from internal/core package.
// Methods: CountSubmissions, DetailsForSchedule
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=schedule_repository_mock.go github.com/target/vms-jobdist/internal/core ScheduleRepository

// Generate mock for LookupRepository interface from internal/core package.
// Methods: Lookup
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=lookup_repository_mock.go github.com/target/vms-jobdist/internal/core LookupRepository

// Generate mock for NotificationClient interface from internal/core package.
// Methods: Send
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=notification_client_mock.go github.com/target/vms-jobdist/internal/core NotificationClient

// Generate mock for BackgroundQueue interface from internal/core package.
// Methods: Submit
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=background_queue_mock.go github.com/target/vms-jobdist/internal/core BackgroundQueue

// Generate mock for TokenVerifier interface from internal/core package.
// Methods: Verify
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=token_verifier_mock.go github.com/target/vms-jobdist/internal/core TokenVerifier

// Generate mock for HistoryWriter interface from internal/core package.
// Methods: RecordEvent, RecordEventTx
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=history_writer_mock.go github.com/target/vms-jobdist/internal/core HistoryWriter

// Generate mock for EventNotifier interface from internal/core package.
// Methods: Notify
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=event_notifier_mock.go github.com/target/vms-jobdist/internal/core EventNotifier
