package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/acadverify/acadverify-api/internal/dto"
	"github.com/acadverify/acadverify-api/internal/identity"
	"github.com/acadverify/acadverify-api/internal/models"
	"github.com/acadverify/acadverify-api/internal/repository"
)

func newAuthService(t *testing.T, db *gorm.DB, provider *fakeProvider) (AuthService, TokenService) {
	t.Helper()

	tokens := NewTokenService(testSecret, 168*time.Hour, 24*time.Hour)
	audit := NewAuditService(repository.NewAuditLogRepository(db), 365, zerolog.Nop())
	svc := NewAuthService(
		provider,
		tokens,
		repository.NewAccountRepository(db),
		repository.NewProfileRepository(db),
		audit,
		"/reset-password",
		zerolog.Nop(),
	)
	return svc, tokens
}

func seedUniversityAdminLogin(t *testing.T, db *gorm.DB, provider *fakeProvider, email, universityID string) models.Account {
	t.Helper()

	providerUser, err := provider.CreateUser(context.Background(), identity.CreateUserRequest{Email: email, Password: "correct-password"})
	require.NoError(t, err)

	account := models.Account{ID: providerUser.ID, Email: email, Role: models.RoleUniversityAdmin, AuthManaged: true}
	require.NoError(t, db.Create(&account).Error)
	require.NoError(t, db.Create(&models.UniversityAdminProfile{
		ID:           uuid.NewString(),
		AccountID:    account.ID,
		UniversityID: universityID,
		Email:        email,
		FirstName:    "Joy",
		LastName:     "Mutua",
		Permissions:  datatypes.JSON([]byte(`["records:create","records:delete"]`)),
		IsActive:     true,
	}).Error)
	return account
}

func TestLoginUniversityAdmin(t *testing.T) {
	db := newTestDB(t, "auth_login_ua")
	provider := newFakeProvider()
	svc, tokens := newAuthService(t, db, provider)
	ctx := context.Background()

	university := seedUniversity(t, db, "Coastal University", "CU")
	account := seedUniversityAdminLogin(t, db, provider, "admin@cu.example", university.ID)

	response, err := svc.Login(ctx, dto.LoginRequest{Email: "admin@cu.example", Password: "correct-password"})
	require.NoError(t, err)
	require.Equal(t, account.ID, response.AccountID)
	require.Equal(t, models.RoleUniversityAdmin, response.Role)
	require.Equal(t, university.ID, response.Profile.UniversityID)
	require.Contains(t, response.Profile.Permissions, "records:create")

	claims, err := tokens.Verify(response.Token)
	require.NoError(t, err)
	require.Equal(t, account.ID, claims.Subject)
	require.Equal(t, university.ID, claims.UniversityID)

	var profile models.UniversityAdminProfile
	require.NoError(t, db.Where("account_id = ?", account.ID).First(&profile).Error)
	require.NotNil(t, profile.LastLogin)
}

func TestLoginInvalidPassword(t *testing.T) {
	db := newTestDB(t, "auth_login_badpass")
	provider := newFakeProvider()
	svc, _ := newAuthService(t, db, provider)

	university := seedUniversity(t, db, "Coastal University", "CU")
	seedUniversityAdminLogin(t, db, provider, "admin@cu.example", university.ID)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "admin@cu.example", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidLogin)
}

func TestLoginNonAdminAccount(t *testing.T) {
	db := newTestDB(t, "auth_login_student")
	provider := newFakeProvider()
	svc, _ := newAuthService(t, db, provider)
	ctx := context.Background()

	providerUser, err := provider.CreateUser(ctx, identity.CreateUserRequest{Email: "student@cu.example", Password: "correct-password"})
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Account{ID: providerUser.ID, Email: "student@cu.example", Role: models.RoleStudent}).Error)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "student@cu.example", Password: "correct-password"})
	require.ErrorIs(t, err, ErrNotAdminAccount)
}

func TestLoginInactiveProfile(t *testing.T) {
	db := newTestDB(t, "auth_login_inactive")
	provider := newFakeProvider()
	svc, _ := newAuthService(t, db, provider)

	university := seedUniversity(t, db, "Coastal University", "CU")
	account := seedUniversityAdminLogin(t, db, provider, "admin@cu.example", university.ID)
	require.NoError(t, db.Model(&models.UniversityAdminProfile{}).
		Where("account_id = ?", account.ID).
		Update("is_active", false).Error)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "admin@cu.example", Password: "correct-password"})
	require.ErrorIs(t, err, ErrProfileInactive)
}

func TestLoginProfileFallbackByEmail(t *testing.T) {
	db := newTestDB(t, "auth_login_fallback")
	provider := newFakeProvider()
	svc, _ := newAuthService(t, db, provider)
	ctx := context.Background()

	university := seedUniversity(t, db, "Coastal University", "CU")

	// Profile row predates the account and is linked by email only.
	providerUser, err := provider.CreateUser(ctx, identity.CreateUserRequest{Email: "legacy@cu.example", Password: "correct-password"})
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Account{ID: providerUser.ID, Email: "legacy@cu.example", Role: models.RoleUniversityAdmin}).Error)
	require.NoError(t, db.Create(&models.UniversityAdminProfile{
		ID:           uuid.NewString(),
		AccountID:    uuid.NewString(),
		UniversityID: university.ID,
		Email:        "legacy@cu.example",
		FirstName:    "Old",
		LastName:     "Link",
		IsActive:     true,
	}).Error)

	response, err := svc.Login(ctx, dto.LoginRequest{Email: "legacy@cu.example", Password: "correct-password"})
	require.NoError(t, err)
	require.Equal(t, university.ID, response.Profile.UniversityID)
}

func TestForgotPasswordHidesUnknownEmail(t *testing.T) {
	db := newTestDB(t, "auth_forgot")
	provider := newFakeProvider()
	svc, _ := newAuthService(t, db, provider)
	ctx := context.Background()

	require.NoError(t, svc.ForgotPassword(ctx, "nobody@example.com"))

	provider.resetErr = identity.ErrRateLimited
	require.ErrorIs(t, svc.ForgotPassword(ctx, "nobody@example.com"), identity.ErrRateLimited)
}
