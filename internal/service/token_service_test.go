package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/acadverify/acadverify-api/internal/models"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestTokenService(now time.Time) *tokenService {
	return &tokenService{
		secret:      []byte(testSecret),
		platformTTL: 168 * time.Hour,
		sessionTTL:  24 * time.Hour,
		now:         func() time.Time { return now },
	}
}

func TestTokenRoundTrip(t *testing.T) {
	now := time.Now()
	svc := newTestTokenService(now)

	account := &models.Account{
		ID:    "8c9d3d39-31b2-4f2c-9e25-71b0a6cf9f10",
		Email: "admin@uni.example",
		Role:  models.RoleUniversityAdmin,
	}

	token, expiresAt, err := svc.Issue(account, "uni-1")
	require.NoError(t, err)
	require.WithinDuration(t, now.Add(24*time.Hour), expiresAt, time.Second)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	require.Equal(t, account.ID, claims.Subject)
	require.Equal(t, account.Email, claims.Email)
	require.Equal(t, models.RoleUniversityAdmin, claims.Role)
	require.Equal(t, "uni-1", claims.UniversityID)
}

func TestTokenPlatformAdminLongerTTL(t *testing.T) {
	now := time.Now()
	svc := newTestTokenService(now)

	account := &models.Account{ID: "id-1", Email: "root@platform.example", Role: models.RolePlatformAdmin}
	_, expiresAt, err := svc.Issue(account, "")
	require.NoError(t, err)
	require.WithinDuration(t, now.Add(168*time.Hour), expiresAt, time.Second)
}

func TestTokenExpired(t *testing.T) {
	issuedAt := time.Now().Add(-48 * time.Hour)
	issuer := newTestTokenService(issuedAt)

	account := &models.Account{ID: "id-1", Email: "admin@uni.example", Role: models.RoleUniversityAdmin}
	token, _, err := issuer.Issue(account, "uni-1")
	require.NoError(t, err)

	verifier := newTestTokenService(time.Now())
	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenMalformed(t *testing.T) {
	svc := newTestTokenService(time.Now())

	_, err := svc.Verify("not-a-token")
	require.ErrorIs(t, err, ErrTokenMalformed)

	// Signed with a different secret.
	other := &tokenService{
		secret:      []byte("ffffffffffffffffffffffffffffffff"),
		platformTTL: time.Hour,
		sessionTTL:  time.Hour,
		now:         time.Now,
	}
	account := &models.Account{ID: "id-1", Email: "admin@uni.example", Role: models.RoleUniversityAdmin}
	token, _, err := other.Issue(account, "")
	require.NoError(t, err)

	_, err = svc.Verify(token)
	require.ErrorIs(t, err, ErrTokenMalformed)
}

func TestShouldRefreshWindow(t *testing.T) {
	now := time.Now()
	svc := newTestTokenService(now)

	account := &models.Account{ID: "id-1", Email: "admin@uni.example", Role: models.RoleUniversityAdmin}
	token, _, err := svc.Issue(account, "uni-1")
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	require.False(t, svc.ShouldRefresh(claims))

	// Move the clock to 10 minutes before expiry.
	late := newTestTokenService(now.Add(24*time.Hour - 10*time.Minute))
	require.True(t, late.ShouldRefresh(claims))
}
