package record

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the append-only record store boundary. There is no update
// or delete on purpose: the history is an audit trail.
type Repository interface {
	// Create appends a finalized record to the owner's collection.
	Create(ctx context.Context, r *Record) error

	// GetByID retrieves a single record. Returns ErrRecordNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)

	// ListByOwner returns all of the owner's records in insertion order.
	// An owner with no records yields an empty slice, not an error.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Record, error)
}
