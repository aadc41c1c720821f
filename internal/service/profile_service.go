package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inficare/inficare/internal/domain/profile"
)

type ProfileService struct {
	repo profile.Repository
	log  *zap.Logger
}

func NewProfileService(repo profile.Repository, log *zap.Logger) *ProfileService {
	return &ProfileService{repo: repo, log: log}
}

// Get returns profile.ErrProfileNotFound when no sheet exists; callers
// treat that as a notice, not a fault.
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	return s.repo.GetByUserID(ctx, userID)
}
