package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/acadverify/acadverify-api/internal/dto"
	"github.com/acadverify/acadverify-api/internal/models"
	"github.com/acadverify/acadverify-api/internal/repository"
)

func newAccountService(t *testing.T, db *gorm.DB, provider *fakeProvider) AccountService {
	t.Helper()

	audit := NewAuditService(repository.NewAuditLogRepository(db), 365, zerolog.Nop())
	return NewAccountService(
		provider,
		repository.NewAccountRepository(db),
		repository.NewProfileRepository(db),
		repository.NewUniversityRepository(db),
		audit,
		zerolog.Nop(),
	)
}

func TestCreatePlatformAdmin(t *testing.T) {
	db := newTestDB(t, "account_create_platform")
	provider := newFakeProvider()
	svc := newAccountService(t, db, provider)
	ctx := context.Background()
	actor := Actor{AccountID: uuid.NewString()}

	account, err := svc.CreatePlatformAdmin(ctx, actor, dto.CreatePlatformAdminRequest{
		Email:     "root@platform.example",
		Password:  "correct-password",
		FirstName: "Ada",
		LastName:  "Wanjiru",
	})
	require.NoError(t, err)
	require.Equal(t, models.RolePlatformAdmin, account.Role)
	require.NotEmpty(t, account.ID)
	require.Len(t, provider.users, 1)

	var profile models.PlatformAdminProfile
	require.NoError(t, db.Where("account_id = ?", account.ID).First(&profile).Error)
	require.True(t, profile.IsActive)

	// Same email again conflicts before touching the provider.
	_, err = svc.CreatePlatformAdmin(ctx, actor, dto.CreatePlatformAdminRequest{
		Email:     "root@platform.example",
		Password:  "correct-password",
		FirstName: "Ada",
		LastName:  "Wanjiru",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
	require.Len(t, provider.users, 1)
}

func TestCreateUniversityAdminRollsBackProviderOnAccountFailure(t *testing.T) {
	db := newTestDB(t, "account_saga_rollback")
	provider := newFakeProvider()
	svc := newAccountService(t, db, provider)
	ctx := context.Background()

	university := seedUniversity(t, db, "Highlands University", "HU")

	// Force the local account insert to collide with a pre-existing row.
	provider.nextID = uuid.NewString()
	require.NoError(t, db.Create(&models.Account{
		ID:    provider.nextID,
		Email: "occupied@edu.example",
		Role:  models.RoleStudent,
	}).Error)

	_, err := svc.CreateUniversityAdmin(ctx, Actor{AccountID: uuid.NewString()}, dto.CreateUniversityAdminRequest{
		Email:        "admin@hu.example",
		Password:     "correct-password",
		FirstName:    "Joy",
		LastName:     "Mutua",
		UniversityID: university.ID,
	})
	require.Error(t, err)

	// The provider identity created by the first step was compensated away.
	require.Contains(t, provider.deleted, provider.nextID)
	require.Empty(t, provider.users)
}

func TestCreateUniversityAdminUnknownUniversity(t *testing.T) {
	db := newTestDB(t, "account_unknown_university")
	svc := newAccountService(t, db, newFakeProvider())

	_, err := svc.CreateUniversityAdmin(context.Background(), Actor{AccountID: uuid.NewString()}, dto.CreateUniversityAdminRequest{
		Email:        "admin@nowhere.example",
		Password:     "correct-password",
		FirstName:    "Joy",
		LastName:     "Mutua",
		UniversityID: uuid.NewString(),
	})
	require.ErrorIs(t, err, ErrUniversityNotFound)
}

func TestDeleteAccountGuards(t *testing.T) {
	db := newTestDB(t, "account_delete_guards")
	svc := newAccountService(t, db, newFakeProvider())
	ctx := context.Background()

	self := models.Account{ID: uuid.NewString(), Email: "self@platform.example", Role: models.RolePlatformAdmin}
	require.NoError(t, db.Create(&self).Error)

	_, err := svc.DeleteAccount(ctx, Actor{AccountID: self.ID}, self.ID)
	require.ErrorIs(t, err, ErrSelfDelete)

	universityAdmin := models.Account{ID: uuid.NewString(), Email: "ua@edu.example", Role: models.RoleUniversityAdmin}
	require.NoError(t, db.Create(&universityAdmin).Error)

	_, err = svc.DeleteAccount(ctx, Actor{AccountID: self.ID}, universityAdmin.ID)
	require.ErrorIs(t, err, ErrUniversityAdminDelete)
}

func TestDeleteAccountRemovesEverything(t *testing.T) {
	db := newTestDB(t, "account_delete_full")
	provider := newFakeProvider()
	svc := newAccountService(t, db, provider)
	ctx := context.Background()
	actor := Actor{AccountID: uuid.NewString()}

	created, err := svc.CreatePlatformAdmin(ctx, actor, dto.CreatePlatformAdminRequest{
		Email:     "victim@platform.example",
		Password:  "correct-password",
		FirstName: "Sam",
		LastName:  "Otieno",
	})
	require.NoError(t, err)

	report, err := svc.DeleteAccount(ctx, actor, created.ID)
	require.NoError(t, err)
	require.True(t, report.AccountDeleted)
	require.True(t, report.ProfileDeleted)
	require.True(t, report.IdentityDeleted)
	require.True(t, report.AuditCleared)
	require.Empty(t, report.Errors)
	require.Empty(t, provider.users)

	err = db.Where("id = ?", created.ID).First(&models.Account{}).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// A second attempt reports the account as already gone.
	_, err = svc.DeleteAccount(ctx, actor, created.ID)
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestDeleteUniversityAdmin(t *testing.T) {
	db := newTestDB(t, "account_delete_ua")
	provider := newFakeProvider()
	svc := newAccountService(t, db, provider)
	ctx := context.Background()
	actor := Actor{AccountID: uuid.NewString()}

	university := seedUniversity(t, db, "Lakeside University", "LU")
	admin, err := svc.CreateUniversityAdmin(ctx, actor, dto.CreateUniversityAdminRequest{
		Email:        "admin@lu.example",
		Password:     "correct-password",
		FirstName:    "Joy",
		LastName:     "Mutua",
		UniversityID: university.ID,
	})
	require.NoError(t, err)

	report, err := svc.DeleteUniversityAdmin(ctx, actor, admin.ID)
	require.NoError(t, err)
	require.True(t, report.ProfileDeleted)
	require.True(t, report.AccountDeleted)
	require.True(t, report.IdentityDeleted)
	require.Empty(t, provider.users)

	err = db.Where("id = ?", admin.AccountID).First(&models.Account{}).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = svc.GetUniversityAdmin(ctx, admin.ID)
	require.ErrorIs(t, err, ErrAdminNotFound)
}

func TestDeleteUniversityAdminSurfacesAccountRowFailure(t *testing.T) {
	db := newTestDB(t, "account_delete_ua_row")
	provider := newFakeProvider()
	svc := newAccountService(t, db, provider)
	ctx := context.Background()
	actor := Actor{AccountID: uuid.NewString()}

	university := seedUniversity(t, db, "Lakeside University", "LU")
	admin, err := svc.CreateUniversityAdmin(ctx, actor, dto.CreateUniversityAdminRequest{
		Email:        "admin@lu.example",
		Password:     "correct-password",
		FirstName:    "Joy",
		LastName:     "Mutua",
		UniversityID: university.ID,
	})
	require.NoError(t, err)

	// Yank the account row out from under the service so its deletion step
	// hits record-not-found.
	require.NoError(t, db.Delete(&models.Account{}, "id = ?", admin.AccountID).Error)

	report, err := svc.DeleteUniversityAdmin(ctx, actor, admin.ID)
	require.Error(t, err)
	require.True(t, report.ProfileDeleted)
	require.True(t, report.IdentityDeleted)
	require.False(t, report.AccountDeleted)
	require.NotEmpty(t, report.Errors)
}

func TestUpdateUniversityAdmin(t *testing.T) {
	db := newTestDB(t, "account_update_ua")
	svc := newAccountService(t, db, newFakeProvider())
	ctx := context.Background()
	actor := Actor{AccountID: uuid.NewString()}

	university := seedUniversity(t, db, "Valley University", "VU")
	admin, err := svc.CreateUniversityAdmin(ctx, actor, dto.CreateUniversityAdminRequest{
		Email:        "admin@vu.example",
		Password:     "correct-password",
		FirstName:    "Joy",
		LastName:     "Mutua",
		UniversityID: university.ID,
	})
	require.NoError(t, err)
	require.Equal(t, models.DefaultUniversityAdminPermissions, admin.Permissions)

	title := "Registrar"
	inactive := false
	updated, err := svc.UpdateUniversityAdmin(ctx, actor, admin.ID, dto.UpdateUniversityAdminRequest{
		Title:    &title,
		IsActive: &inactive,
	})
	require.NoError(t, err)
	require.Equal(t, "Registrar", updated.Title)
	require.False(t, updated.IsActive)
}
