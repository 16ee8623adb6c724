package ports

import (
	"context"

	"github.com/billentry/customers/internal/domain/entities"
)

// CustomerRepository defines the interface for durable customer record
// storage. Implementations must serialize mutating operations against
// each other and against reads, and must never leave the backing
// storage in a partially written state.
type CustomerRepository interface {
	// Load returns the full collection in insertion order. A missing
	// backing file is normal first-run behavior and yields an empty
	// collection, not an error.
	Load(ctx context.Context) ([]entities.Record, error)

	// Get returns the record with the given id, or entities.ErrNotFound.
	Get(ctx context.Context, id string) (entities.Record, error)

	// Create appends the record and persists the collection. Fails with
	// entities.ErrInvalidRecord when the id is empty and with
	// entities.ErrDuplicateID when the id is already taken.
	Create(ctx context.Context, rec entities.Record) (entities.Record, error)

	// Update merges fields into the record with the given id and
	// persists the collection. Fails with entities.ErrNotFound when no
	// such record exists.
	Update(ctx context.Context, id string, fields map[string]string) (entities.Record, error)

	// Delete removes the record with the given id, or fails with
	// entities.ErrNotFound.
	Delete(ctx context.Context, id string) error
}
