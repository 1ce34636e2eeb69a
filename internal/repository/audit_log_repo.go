package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/acadverify/acadverify-api/internal/models"
)

// AuditLogRepository provides append and cleanup access to the audit trail.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLogEntry) error
	ListRecent(ctx context.Context, limit int) ([]models.AuditLogEntry, error)
	DeleteByResource(ctx context.Context, resourceID string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository constructs an audit-log repository.
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *models.AuditLogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditLogRepository) ListRecent(ctx context.Context, limit int) ([]models.AuditLogEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	var entries []models.AuditLogEntry
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *auditLogRepository) DeleteByResource(ctx context.Context, resourceID string) error {
	return r.db.WithContext(ctx).
		Delete(&models.AuditLogEntry{}, "resource_id = ?", resourceID).Error
}

func (r *auditLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Delete(&models.AuditLogEntry{}, "created_at < ?", cutoff)
	return result.RowsAffected, result.Error
}
