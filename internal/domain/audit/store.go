package audit

import "context"

// Store persists decision audit records.
// Interface owned by domain per hexagonal architecture.
// Implementations handle batching and async writes.
type Store interface {
	// Append stores audit records. Must be non-blocking from the caller's
	// perspective.
	Append(ctx context.Context, records ...Record) error

	// Flush forces pending records to storage. Called during shutdown.
	Flush(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// NopStore discards every record. Used when auditing is disabled.
type NopStore struct{}

// Append discards the records.
func (NopStore) Append(context.Context, ...Record) error { return nil }

// Flush does nothing.
func (NopStore) Flush(context.Context) error { return nil }

// Close does nothing.
func (NopStore) Close() error { return nil }
