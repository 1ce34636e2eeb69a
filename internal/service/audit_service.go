package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/acadverify/acadverify-api/internal/models"
	"github.com/acadverify/acadverify-api/internal/observability"
	"github.com/acadverify/acadverify-api/internal/repository"
)

// AuditEvent describes a single administrative action for the audit trail.
type AuditEvent struct {
	AdminAccountID string
	Action         string
	ResourceType   string
	ResourceID     string
	OldValues      interface{}
	NewValues      interface{}
	IPAddress      string
	UserAgent      string
}

// AuditService records administrative actions and enforces the retention
// window on old entries.
type AuditService interface {
	Record(ctx context.Context, event AuditEvent)
	ListRecent(ctx context.Context, limit int) ([]models.AuditLogEntry, error)
	ForgetResource(ctx context.Context, resourceID string) error
	PurgeExpired(ctx context.Context) (int64, error)
}

type auditService struct {
	repo          repository.AuditLogRepository
	retentionDays int
	logger        zerolog.Logger
}

// NewAuditService constructs the audit trail recorder.
func NewAuditService(repo repository.AuditLogRepository, retentionDays int, logger zerolog.Logger) AuditService {
	if retentionDays <= 0 {
		retentionDays = 365
	}
	return &auditService{
		repo:          repo,
		retentionDays: retentionDays,
		logger:        logger.With().Str("component", "audit_service").Logger(),
	}
}

// Record appends an audit entry. Failures are logged and swallowed so the
// operation being audited still succeeds.
func (s *auditService) Record(ctx context.Context, event AuditEvent) {
	entry := &models.AuditLogEntry{
		AdminAccountID: event.AdminAccountID,
		Action:         event.Action,
		ResourceType:   event.ResourceType,
		ResourceID:     event.ResourceID,
		OldValues:      marshalValues(event.OldValues),
		NewValues:      marshalValues(event.NewValues),
		IPAddress:      event.IPAddress,
		UserAgent:      event.UserAgent,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Warn().Err(err).
			Str("action", event.Action).
			Str("resource_id", event.ResourceID).
			Msg("audit entry write failed")
	}
}

func (s *auditService) ListRecent(ctx context.Context, limit int) ([]models.AuditLogEntry, error) {
	return s.repo.ListRecent(ctx, limit)
}

// ForgetResource removes the trail for a deleted resource, used when an
// account is erased completely.
func (s *auditService) ForgetResource(ctx context.Context, resourceID string) error {
	return s.repo.DeleteByResource(ctx, resourceID)
}

// PurgeExpired removes entries older than the retention window.
func (s *auditService) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	purged, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if purged > 0 {
		observability.AuditEntriesPurged().Add(float64(purged))
		s.logger.Info().Int64("purged", purged).Time("cutoff", cutoff).Msg("audit retention purge completed")
	}
	return purged, nil
}

func marshalValues(value interface{}) datatypes.JSON {
	if value == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
