package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inficare/inficare/internal/domain"
	"github.com/inficare/inficare/internal/domain/record"
	"github.com/inficare/inficare/internal/draft"
	"github.com/inficare/inficare/internal/history"
	"github.com/inficare/inficare/pkg/metrics"
)

// RecordService orchestrates the draft store, the append-only record
// repository and the history view on behalf of the HTTP layer.
type RecordService struct {
	drafts   *draft.Store
	view     *history.View
	repo     record.Repository
	auditSvc *AuditService
	metrics  *metrics.Collector
	log      *zap.Logger
}

func NewRecordService(drafts *draft.Store, view *history.View, repo record.Repository, auditSvc *AuditService, collector *metrics.Collector, log *zap.Logger) *RecordService {
	return &RecordService{
		drafts:   drafts,
		view:     view,
		repo:     repo,
		auditSvc: auditSvc,
		metrics:  collector,
		log:      log,
	}
}

// SubmitDraft finalizes the owner's draft into a persisted record. On
// validation failure the errors come back whole and the draft is kept; on
// success the draft resets to empty.
func (s *RecordService) SubmitDraft(ctx context.Context, claims domain.Claims, ip string) (*record.Record, error) {
	rec, err := s.drafts.Submit(ctx, claims.UserID)
	if err != nil {
		s.metrics.DraftSubmissionsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	s.metrics.DraftSubmissionsTotal.WithLabelValues("accepted").Inc()
	s.metrics.RecordsCreatedTotal.Inc()

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       claims.UserID,
		UserRole:     claims.Role,
		Action:       domain.ActionCreate,
		ResourceType: "record",
		ResourceID:   rec.ID.String(),
		IPAddress:    ip,
	})

	s.log.Info("record created",
		zap.String("record_id", rec.ID.String()),
		zap.String("owner_id", claims.UserID.String()),
	)

	return rec, nil
}

// History loads the owner's records newest-visit-first and narrows them by
// the free-text query.
func (s *RecordService) History(ctx context.Context, claims domain.Claims, query, ip string) ([]*record.Record, error) {
	records, err := s.view.Load(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       claims.UserID,
		UserRole:     claims.Role,
		Action:       domain.ActionRead,
		ResourceType: "record_history",
		IPAddress:    ip,
	})

	return history.Filter(records, query), nil
}

// GetRecord enforces owner scoping: patients read only their own records.
func (s *RecordService) GetRecord(ctx context.Context, id uuid.UUID, claims domain.Claims, ip string) (*record.Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if claims.Role != domain.RoleAdmin && rec.OwnerID != claims.UserID {
		return nil, ErrForbidden
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       claims.UserID,
		UserRole:     claims.Role,
		Action:       domain.ActionRead,
		ResourceType: "record",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})

	return rec, nil
}
