package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/acadverify/acadverify-api/internal/dto"
	"github.com/acadverify/acadverify-api/internal/identity"
	"github.com/acadverify/acadverify-api/internal/models"
	"github.com/acadverify/acadverify-api/internal/repository"
)

var (
	// ErrEmailTaken indicates an account already exists for the email.
	ErrEmailTaken = errors.New("an account with this email already exists")
	// ErrAccountNotFound indicates the account row does not exist.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAdminNotFound indicates the university admin profile does not exist.
	ErrAdminNotFound = errors.New("university administrator not found")
	// ErrSelfDelete indicates an admin attempted to delete their own account.
	ErrSelfDelete = errors.New("administrators cannot delete their own account")
	// ErrUniversityAdminDelete indicates a university admin account was
	// targeted through the generic account deletion path.
	ErrUniversityAdminDelete = errors.New("university administrators must be deleted through the university admin endpoint")
)

// Actor identifies the administrator performing a mutation, for auditing.
type Actor struct {
	AccountID string
	IP        string
	UserAgent string
}

// AccountService provisions and erases admin accounts across the identity
// provider, the local account table, and the role profile tables.
type AccountService interface {
	CreatePlatformAdmin(ctx context.Context, actor Actor, req dto.CreatePlatformAdminRequest) (dto.AccountResponse, error)
	CreateUniversityAdmin(ctx context.Context, actor Actor, req dto.CreateUniversityAdminRequest) (dto.UniversityAdminResponse, error)
	ListAccounts(ctx context.Context, actor Actor, req dto.AccountListRequest) (dto.AccountListResponse, error)
	GetAccount(ctx context.Context, id string) (dto.AccountResponse, error)
	DeleteAccount(ctx context.Context, actor Actor, id string) (dto.DeletionReport, error)
	ListUniversityAdmins(ctx context.Context, universityID, search string, page, pageSize int) (dto.UniversityAdminListResponse, error)
	GetUniversityAdmin(ctx context.Context, id string) (dto.UniversityAdminResponse, error)
	UpdateUniversityAdmin(ctx context.Context, actor Actor, id string, req dto.UpdateUniversityAdminRequest) (dto.UniversityAdminResponse, error)
	DeleteUniversityAdmin(ctx context.Context, actor Actor, id string) (dto.DeletionReport, error)
}

type accountService struct {
	provider     identity.Provider
	accounts     repository.AccountRepository
	profiles     repository.ProfileRepository
	universities repository.UniversityRepository
	audit        AuditService
	logger       zerolog.Logger
}

// NewAccountService constructs the account lifecycle service.
func NewAccountService(
	provider identity.Provider,
	accounts repository.AccountRepository,
	profiles repository.ProfileRepository,
	universities repository.UniversityRepository,
	audit AuditService,
	logger zerolog.Logger,
) AccountService {
	return &accountService{
		provider:     provider,
		accounts:     accounts,
		profiles:     profiles,
		universities: universities,
		audit:        audit,
		logger:       logger.With().Str("component", "account_service").Logger(),
	}
}

func (s *accountService) CreatePlatformAdmin(ctx context.Context, actor Actor, req dto.CreatePlatformAdminRequest) (dto.AccountResponse, error) {
	if _, err := s.accounts.GetByEmail(ctx, req.Email); err == nil {
		return dto.AccountResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AccountResponse{}, err
	}

	permissions := req.Permissions
	if len(permissions) == 0 {
		permissions = []string{"platform:all"}
	}

	var (
		identityUser identity.User
		account      models.Account
	)

	chain := newSaga(s.logger)
	chain.add("create identity",
		func(ctx context.Context) error {
			user, err := s.provider.CreateUser(ctx, identity.CreateUserRequest{
				Email:        req.Email,
				Password:     req.Password,
				EmailConfirm: true,
				Metadata:     map[string]interface{}{"role": models.RolePlatformAdmin},
			})
			if err != nil {
				if errors.Is(err, identity.ErrEmailExists) {
					return ErrEmailTaken
				}
				return err
			}
			identityUser = user
			return nil
		},
		func(ctx context.Context) error {
			return s.provider.DeleteUser(ctx, identityUser.ID)
		},
	)
	chain.add("create account",
		func(ctx context.Context) error {
			account = models.Account{
				ID:            identityUser.ID,
				Email:         req.Email,
				Role:          models.RolePlatformAdmin,
				EmailVerified: true,
				AuthManaged:   true,
			}
			return s.accounts.Create(ctx, &account)
		},
		func(ctx context.Context) error {
			return s.accounts.Delete(ctx, account.ID)
		},
	)
	chain.add("create profile",
		func(ctx context.Context) error {
			profile := models.PlatformAdminProfile{
				ID:          uuid.NewString(),
				AccountID:   account.ID,
				FirstName:   req.FirstName,
				LastName:    req.LastName,
				Phone:       req.Phone,
				Permissions: encodeStringList(permissions),
				IsActive:    true,
			}
			return s.profiles.CreatePlatformAdmin(ctx, &profile)
		},
		nil,
	)

	if err := chain.execute(ctx); err != nil {
		return dto.AccountResponse{}, err
	}

	s.audit.Record(ctx, AuditEvent{
		AdminAccountID: actor.AccountID,
		Action:         models.AuditActionCreatePlatformAdmin,
		ResourceType:   "account",
		ResourceID:     account.ID,
		NewValues:      map[string]string{"email": account.Email, "role": account.Role},
		IPAddress:      actor.IP,
		UserAgent:      actor.UserAgent,
	})

	return dto.NewAccountResponse(account), nil
}

func (s *accountService) CreateUniversityAdmin(ctx context.Context, actor Actor, req dto.CreateUniversityAdminRequest) (dto.UniversityAdminResponse, error) {
	university, err := s.universities.GetByID(ctx, req.UniversityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UniversityAdminResponse{}, ErrUniversityNotFound
		}
		return dto.UniversityAdminResponse{}, err
	}
	if !university.IsActive {
		return dto.UniversityAdminResponse{}, ErrUniversityInactive
	}

	if _, err := s.accounts.GetByEmail(ctx, req.Email); err == nil {
		return dto.UniversityAdminResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.UniversityAdminResponse{}, err
	}

	permissions := req.Permissions
	if len(permissions) == 0 {
		permissions = models.DefaultUniversityAdminPermissions
	}

	var (
		identityUser identity.User
		account      models.Account
		profile      models.UniversityAdminProfile
	)

	chain := newSaga(s.logger)
	chain.add("create identity",
		func(ctx context.Context) error {
			user, err := s.provider.CreateUser(ctx, identity.CreateUserRequest{
				Email:        req.Email,
				Password:     req.Password,
				EmailConfirm: true,
				Metadata: map[string]interface{}{
					"role":          models.RoleUniversityAdmin,
					"university_id": req.UniversityID,
				},
			})
			if err != nil {
				if errors.Is(err, identity.ErrEmailExists) {
					return ErrEmailTaken
				}
				return err
			}
			identityUser = user
			return nil
		},
		func(ctx context.Context) error {
			return s.provider.DeleteUser(ctx, identityUser.ID)
		},
	)
	chain.add("create account",
		func(ctx context.Context) error {
			account = models.Account{
				ID:            identityUser.ID,
				Email:         req.Email,
				Role:          models.RoleUniversityAdmin,
				EmailVerified: true,
				AuthManaged:   true,
			}
			return s.accounts.Create(ctx, &account)
		},
		func(ctx context.Context) error {
			return s.accounts.Delete(ctx, account.ID)
		},
	)
	chain.add("create profile",
		func(ctx context.Context) error {
			profile = models.UniversityAdminProfile{
				ID:           uuid.NewString(),
				AccountID:    account.ID,
				UniversityID: req.UniversityID,
				Email:        req.Email,
				FirstName:    req.FirstName,
				LastName:     req.LastName,
				Title:        req.Title,
				Phone:        req.Phone,
				Permissions:  encodeStringList(permissions),
				IsActive:     true,
			}
			return s.profiles.CreateUniversityAdmin(ctx, &profile)
		},
		nil,
	)

	if err := chain.execute(ctx); err != nil {
		return dto.UniversityAdminResponse{}, err
	}

	s.audit.Record(ctx, AuditEvent{
		AdminAccountID: actor.AccountID,
		Action:         models.AuditActionCreateUniversityAdmin,
		ResourceType:   "university_admin",
		ResourceID:     profile.ID,
		NewValues: map[string]string{
			"email":         profile.Email,
			"university_id": profile.UniversityID,
		},
		IPAddress: actor.IP,
		UserAgent: actor.UserAgent,
	})

	return dto.NewUniversityAdminResponse(profile), nil
}

func (s *accountService) ListAccounts(ctx context.Context, actor Actor, req dto.AccountListRequest) (dto.AccountListResponse, error) {
	accounts, total, err := s.accounts.List(ctx, repository.AccountFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
		Role:     req.Role,
		Search:   req.Search,
	})
	if err != nil {
		return dto.AccountListResponse{}, err
	}

	s.audit.Record(ctx, AuditEvent{
		AdminAccountID: actor.AccountID,
		Action:         models.AuditActionViewAccounts,
		ResourceType:   "account",
		IPAddress:      actor.IP,
		UserAgent:      actor.UserAgent,
	})

	items := make([]dto.AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		items = append(items, dto.NewAccountResponse(account))
	}

	return dto.AccountListResponse{
		Items:      items,
		Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *accountService) GetAccount(ctx context.Context, id string) (dto.AccountResponse, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AccountResponse{}, ErrAccountNotFound
		}
		return dto.AccountResponse{}, err
	}
	return dto.NewAccountResponse(account), nil
}

// DeleteAccount erases a non-tenant account everywhere it exists. Provider,
// profile and audit cleanup are best effort; the local account row is the
// authoritative deletion and its failure aborts the operation.
func (s *accountService) DeleteAccount(ctx context.Context, actor Actor, id string) (dto.DeletionReport, error) {
	if id == actor.AccountID {
		return dto.DeletionReport{}, ErrSelfDelete
	}

	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DeletionReport{}, ErrAccountNotFound
		}
		return dto.DeletionReport{}, err
	}

	if account.Role == models.RoleUniversityAdmin {
		return dto.DeletionReport{}, ErrUniversityAdminDelete
	}

	report := dto.DeletionReport{}

	if account.AuthManaged {
		if err := s.provider.DeleteUser(ctx, account.ID); err != nil && !errors.Is(err, identity.ErrUserNotFound) {
			report.Errors = append(report.Errors, fmt.Sprintf("identity deletion failed: %v", err))
			s.logger.Warn().Err(err).Str("account_id", account.ID).Msg("identity deletion failed")
		} else {
			report.IdentityDeleted = true
		}
	}

	if err := s.profiles.DeleteByAccount(ctx, account.Role, account.ID); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("profile deletion failed: %v", err))
		s.logger.Warn().Err(err).Str("account_id", account.ID).Msg("profile deletion failed")
	} else {
		report.ProfileDeleted = true
	}

	if err := s.audit.ForgetResource(ctx, account.ID); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("audit cleanup failed: %v", err))
		s.logger.Warn().Err(err).Str("account_id", account.ID).Msg("audit cleanup failed")
	} else {
		report.AuditCleared = true
	}

	if err := s.accounts.Delete(ctx, account.ID); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("account deletion failed: %v", err))
		return report, err
	}
	report.AccountDeleted = true

	s.audit.Record(ctx, AuditEvent{
		AdminAccountID: actor.AccountID,
		Action:         models.AuditActionDeleteAccount,
		ResourceType:   "account",
		ResourceID:     account.ID,
		OldValues:      map[string]string{"email": account.Email, "role": account.Role},
		IPAddress:      actor.IP,
		UserAgent:      actor.UserAgent,
	})

	return report, nil
}

func (s *accountService) ListUniversityAdmins(ctx context.Context, universityID, search string, page, pageSize int) (dto.UniversityAdminListResponse, error) {
	profiles, total, err := s.profiles.ListUniversityAdmins(ctx, repository.UniversityAdminFilter{
		UniversityID: universityID,
		Search:       search,
		Page:         page,
		PageSize:     pageSize,
	})
	if err != nil {
		return dto.UniversityAdminListResponse{}, err
	}

	items := make([]dto.UniversityAdminResponse, 0, len(profiles))
	for _, profile := range profiles {
		items = append(items, dto.NewUniversityAdminResponse(profile))
	}

	return dto.UniversityAdminListResponse{
		Items:      items,
		Pagination: dto.NewPaginationMeta(page, pageSize, total),
	}, nil
}

func (s *accountService) GetUniversityAdmin(ctx context.Context, id string) (dto.UniversityAdminResponse, error) {
	profile, err := s.profiles.GetUniversityAdminByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UniversityAdminResponse{}, ErrAdminNotFound
		}
		return dto.UniversityAdminResponse{}, err
	}
	return dto.NewUniversityAdminResponse(profile), nil
}

func (s *accountService) UpdateUniversityAdmin(ctx context.Context, actor Actor, id string, req dto.UpdateUniversityAdminRequest) (dto.UniversityAdminResponse, error) {
	existing, err := s.profiles.GetUniversityAdminByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UniversityAdminResponse{}, ErrAdminNotFound
		}
		return dto.UniversityAdminResponse{}, err
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Permissions != nil {
		updates["permissions"] = encodeStringList(req.Permissions)
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return dto.NewUniversityAdminResponse(existing), nil
	}

	updated, err := s.profiles.UpdateUniversityAdmin(ctx, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UniversityAdminResponse{}, ErrAdminNotFound
		}
		return dto.UniversityAdminResponse{}, err
	}

	s.audit.Record(ctx, AuditEvent{
		AdminAccountID: actor.AccountID,
		Action:         models.AuditActionUpdateUniversityAdmin,
		ResourceType:   "university_admin",
		ResourceID:     id,
		OldValues:      map[string]interface{}{"first_name": existing.FirstName, "last_name": existing.LastName, "is_active": existing.IsActive},
		NewValues:      updates,
		IPAddress:      actor.IP,
		UserAgent:      actor.UserAgent,
	})

	return dto.NewUniversityAdminResponse(updated), nil
}

// DeleteUniversityAdmin erases a university administrator and the account
// behind it. Identity cleanup failures are reported and tolerated; a database
// row that fails to delete aborts with the partial report and the error.
func (s *accountService) DeleteUniversityAdmin(ctx context.Context, actor Actor, id string) (dto.DeletionReport, error) {
	profile, err := s.profiles.GetUniversityAdminByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DeletionReport{}, ErrAdminNotFound
		}
		return dto.DeletionReport{}, err
	}

	if profile.AccountID == actor.AccountID {
		return dto.DeletionReport{}, ErrSelfDelete
	}

	report := dto.DeletionReport{}

	if err := s.provider.DeleteUser(ctx, profile.AccountID); err != nil && !errors.Is(err, identity.ErrUserNotFound) {
		report.Errors = append(report.Errors, fmt.Sprintf("identity deletion failed: %v", err))
		s.logger.Warn().Err(err).Str("account_id", profile.AccountID).Msg("identity deletion failed")
	} else {
		report.IdentityDeleted = true
	}

	if err := s.profiles.DeleteByAccount(ctx, models.RoleUniversityAdmin, profile.AccountID); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("profile deletion failed: %v", err))
		return report, err
	}
	report.ProfileDeleted = true

	if err := s.accounts.Delete(ctx, profile.AccountID); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("account deletion failed: %v", err))
		s.logger.Error().Err(err).Str("account_id", profile.AccountID).Msg("account deletion failed")
		return report, err
	}
	report.AccountDeleted = true

	s.audit.Record(ctx, AuditEvent{
		AdminAccountID: actor.AccountID,
		Action:         models.AuditActionDeleteUniversityAdmin,
		ResourceType:   "university_admin",
		ResourceID:     id,
		OldValues: map[string]string{
			"email":         profile.Email,
			"university_id": profile.UniversityID,
		},
		IPAddress: actor.IP,
		UserAgent: actor.UserAgent,
	})

	return report, nil
}

func encodeStringList(values []string) datatypes.JSON {
	raw, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
