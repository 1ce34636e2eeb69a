package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/acadverify/acadverify-api/internal/dto"
	"github.com/acadverify/acadverify-api/internal/identity"
	"github.com/acadverify/acadverify-api/internal/models"
	"github.com/acadverify/acadverify-api/internal/repository"
)

var (
	// ErrInvalidLogin indicates the email/password pair was rejected.
	ErrInvalidLogin = errors.New("invalid email or password")
	// ErrNotAdminAccount indicates the credentials belong to a non-admin role.
	ErrNotAdminAccount = errors.New("account is not an administrator")
	// ErrProfileInactive indicates the admin profile has been deactivated.
	ErrProfileInactive = errors.New("administrator profile is deactivated")
	// ErrProfileMissing indicates no admin profile exists for the account.
	ErrProfileMissing = errors.New("administrator profile not found")
)

// AuthService signs administrators in against the external identity provider
// and issues local session tokens.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	Logout(ctx context.Context, accountID, ip, userAgent string)
	ForgotPassword(ctx context.Context, email string) error
	ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) error
}

type authService struct {
	provider identity.Provider
	tokens   TokenService
	accounts repository.AccountRepository
	profiles repository.ProfileRepository
	audit    AuditService
	resetURL string
	logger   zerolog.Logger
}

// NewAuthService constructs the admin authentication service.
func NewAuthService(
	provider identity.Provider,
	tokens TokenService,
	accounts repository.AccountRepository,
	profiles repository.ProfileRepository,
	audit AuditService,
	resetURL string,
	logger zerolog.Logger,
) AuthService {
	return &authService{
		provider: provider,
		tokens:   tokens,
		accounts: accounts,
		profiles: profiles,
		audit:    audit,
		resetURL: resetURL,
		logger:   logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	session, err := s.provider.SignInWithPassword(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) || errors.Is(err, identity.ErrUserNotFound) {
			return dto.LoginResponse{}, ErrInvalidLogin
		}
		s.logger.Error().Err(err).Msg("identity sign-in failed")
		return dto.LoginResponse{}, err
	}

	// The provider session is discarded; authorization state lives in the
	// local account and profile rows.
	account, err := s.accounts.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LoginResponse{}, ErrNotAdminAccount
		}
		return dto.LoginResponse{}, err
	}

	if account.Role != models.RolePlatformAdmin && account.Role != models.RoleUniversityAdmin {
		return dto.LoginResponse{}, ErrNotAdminAccount
	}

	profile, err := s.loadProfile(ctx, account)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	token, expiresAt, err := s.tokens.Issue(&account, profile.UniversityID)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	if err := s.profiles.TouchLastLogin(ctx, account.Role, account.ID); err != nil {
		s.logger.Debug().Err(err).Str("account_id", account.ID).Msg("last login update failed")
	}

	// Sign out of the provider session right away; only the local token
	// remains valid.
	if session.AccessToken != "" {
		if err := s.provider.SignOut(ctx, session.AccessToken); err != nil {
			s.logger.Debug().Err(err).Msg("provider sign-out failed")
		}
	}

	return dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		AccountID: account.ID,
		Email:     account.Email,
		Role:      account.Role,
		Profile:   profile,
	}, nil
}

func (s *authService) loadProfile(ctx context.Context, account models.Account) (dto.AuthProfile, error) {
	switch account.Role {
	case models.RolePlatformAdmin:
		profile, err := s.profiles.GetPlatformAdminByAccount(ctx, account.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.AuthProfile{}, ErrProfileMissing
			}
			return dto.AuthProfile{}, err
		}
		if !profile.IsActive {
			return dto.AuthProfile{}, ErrProfileInactive
		}
		return dto.AuthProfile{
			ID:          profile.ID,
			FirstName:   profile.FirstName,
			LastName:    profile.LastName,
			Permissions: decodeStringList(profile.Permissions),
			LastLogin:   profile.LastLogin,
		}, nil

	case models.RoleUniversityAdmin:
		profile, err := s.profiles.GetUniversityAdminByAccount(ctx, account.ID)
		if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
			profile, err = s.profiles.GetUniversityAdminByEmail(ctx, account.Email)
		}
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.AuthProfile{}, ErrProfileMissing
			}
			return dto.AuthProfile{}, err
		}
		if !profile.IsActive {
			return dto.AuthProfile{}, ErrProfileInactive
		}
		return dto.AuthProfile{
			ID:           profile.ID,
			FirstName:    profile.FirstName,
			LastName:     profile.LastName,
			UniversityID: profile.UniversityID,
			Title:        profile.Title,
			Permissions:  decodeStringList(profile.Permissions),
			LastLogin:    profile.LastLogin,
		}, nil
	}

	return dto.AuthProfile{}, ErrNotAdminAccount
}

// Logout is best effort; the session token stays valid until expiry, so the
// event is recorded for the audit trail only.
func (s *authService) Logout(ctx context.Context, accountID, ip, userAgent string) {
	s.audit.Record(ctx, AuditEvent{
		AdminAccountID: accountID,
		Action:         models.AuditActionLogout,
		ResourceType:   "session",
		ResourceID:     accountID,
		IPAddress:      ip,
		UserAgent:      userAgent,
	})
}

// ForgotPassword starts the provider's reset flow. Unknown emails are not
// revealed to the caller.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	if err := s.provider.ResetPasswordForEmail(ctx, email, s.resetURL); err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return nil
		}
		if errors.Is(err, identity.ErrRateLimited) {
			return err
		}
		s.logger.Warn().Err(err).Msg("password reset request failed")
		return nil
	}
	return nil
}

func (s *authService) ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) error {
	return s.provider.UpdatePassword(ctx, req.AccessToken, req.NewPassword)
}

func decodeStringList(raw []byte) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return []string{}
	}
	return values
}
