package profile

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Profile) error

	// GetByUserID returns ErrProfileNotFound when the user registered
	// without completing the profile step.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
}
