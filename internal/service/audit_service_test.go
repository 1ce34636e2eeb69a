package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/acadverify/acadverify-api/internal/models"
	"github.com/acadverify/acadverify-api/internal/repository"
)

func TestAuditRecordAndListRecent(t *testing.T) {
	db := newTestDB(t, "audit_record")
	svc := NewAuditService(repository.NewAuditLogRepository(db), 30, zerolog.Nop())
	ctx := context.Background()
	adminID := uuid.NewString()

	svc.Record(ctx, AuditEvent{
		AdminAccountID: adminID,
		Action:         models.AuditActionCreateUniversity,
		ResourceType:   "university",
		ResourceID:     "uni-1",
		NewValues:      map[string]string{"name": "Coastal University"},
		IPAddress:      "203.0.113.9",
	})
	svc.Record(ctx, AuditEvent{
		AdminAccountID: adminID,
		Action:         models.AuditActionDeleteRecord,
		ResourceType:   "graduate_record",
		ResourceID:     "rec-1",
	})

	entries, err := svc.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, models.AuditActionDeleteRecord, entries[0].Action)

	all, err := svc.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.JSONEq(t, `{"name":"Coastal University"}`, string(all[1].NewValues))
}

func TestAuditForgetResource(t *testing.T) {
	db := newTestDB(t, "audit_forget")
	svc := NewAuditService(repository.NewAuditLogRepository(db), 30, zerolog.Nop())
	ctx := context.Background()

	svc.Record(ctx, AuditEvent{AdminAccountID: uuid.NewString(), Action: models.AuditActionCreateRecord, ResourceID: "rec-1"})
	svc.Record(ctx, AuditEvent{AdminAccountID: uuid.NewString(), Action: models.AuditActionDeleteRecord, ResourceID: "rec-2"})

	require.NoError(t, svc.ForgetResource(ctx, "rec-1"))

	entries, err := svc.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "rec-2", entries[0].ResourceID)
}

func TestAuditPurgeExpired(t *testing.T) {
	db := newTestDB(t, "audit_purge")
	svc := NewAuditService(repository.NewAuditLogRepository(db), 30, zerolog.Nop())
	ctx := context.Background()

	stale := models.AuditLogEntry{
		AdminAccountID: uuid.NewString(),
		Action:         models.AuditActionLogout,
		CreatedAt:      time.Now().AddDate(0, 0, -60),
	}
	require.NoError(t, db.Create(&stale).Error)

	svc.Record(ctx, AuditEvent{AdminAccountID: uuid.NewString(), Action: models.AuditActionLogout})

	purged, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, purged)

	entries, err := svc.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// A second run finds nothing left to purge.
	purged, err = svc.PurgeExpired(ctx)
	require.NoError(t, err)
	require.Zero(t, purged)
}
