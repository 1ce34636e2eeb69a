package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/acadverify/acadverify-api/internal/dto"
	"github.com/acadverify/acadverify-api/internal/models"
	"github.com/acadverify/acadverify-api/internal/repository"
)

var (
	// ErrUniversityNotFound indicates the university does not exist.
	ErrUniversityNotFound = errors.New("university not found")
	// ErrUniversityInactive indicates the university has been deactivated.
	ErrUniversityInactive = errors.New("university is not active")
	// ErrUniversityEmailTaken indicates another university owns the email.
	ErrUniversityEmailTaken = errors.New("a university with this email already exists")
	// ErrUniversityHasAdmins blocks deletion while administrator accounts
	// still reference the university.
	ErrUniversityHasAdmins = errors.New("university still has administrator accounts")
)

// UniversityService manages university tenants on behalf of platform admins.
type UniversityService interface {
	Create(ctx context.Context, actor Actor, req dto.UniversityCreateRequest) (dto.UniversityResponse, error)
	List(ctx context.Context, req dto.UniversityListRequest) (dto.UniversityListResponse, error)
	Get(ctx context.Context, id string) (dto.UniversityResponse, error)
	Update(ctx context.Context, actor Actor, id string, req dto.UniversityUpdateRequest) (dto.UniversityResponse, error)
	Delete(ctx context.Context, actor Actor, id string) error
	DashboardStats(ctx context.Context) (dto.DashboardStats, error)
}

type universityService struct {
	universities repository.UniversityRepository
	profiles     repository.ProfileRepository
	accounts     repository.AccountRepository
	audit        AuditService
	logger       zerolog.Logger
}

// NewUniversityService constructs the university management service.
func NewUniversityService(
	universities repository.UniversityRepository,
	profiles repository.ProfileRepository,
	accounts repository.AccountRepository,
	audit AuditService,
	logger zerolog.Logger,
) UniversityService {
	return &universityService{
		universities: universities,
		profiles:     profiles,
		accounts:     accounts,
		audit:        audit,
		logger:       logger.With().Str("component", "university_service").Logger(),
	}
}

func (s *universityService) Create(ctx context.Context, actor Actor, req dto.UniversityCreateRequest) (dto.UniversityResponse, error) {
	if _, err := s.universities.GetByEmail(ctx, req.Email); err == nil {
		return dto.UniversityResponse{}, ErrUniversityEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.UniversityResponse{}, err
	}

	university := models.University{
		ID:                 uuid.NewString(),
		Name:               req.Name,
		ShortName:          req.ShortName,
		Email:              req.Email,
		Phone:              req.Phone,
		Country:            req.Country,
		City:               req.City,
		Address:            req.Address,
		Website:            req.Website,
		LogoURL:            req.LogoURL,
		RegistrationNumber: req.RegistrationNumber,
		AccreditationBody:  req.AccreditationBody,
		IsActive:           true,
		IsVerified:         false,
		CreatedBy:          actor.AccountID,
	}

	if err := s.universities.Create(ctx, &university); err != nil {
		return dto.UniversityResponse{}, err
	}

	s.audit.Record(ctx, AuditEvent{
		AdminAccountID: actor.AccountID,
		Action:         models.AuditActionCreateUniversity,
		ResourceType:   "university",
		ResourceID:     university.ID,
		NewValues:      map[string]string{"name": university.Name, "email": university.Email},
		IPAddress:      actor.IP,
		UserAgent:      actor.UserAgent,
	})

	return dto.NewUniversityResponse(university), nil
}

func (s *universityService) List(ctx context.Context, req dto.UniversityListRequest) (dto.UniversityListResponse, error) {
	universities, total, err := s.universities.List(ctx, repository.UniversityFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
		Search:   req.Search,
		Status:   req.Status,
	})
	if err != nil {
		return dto.UniversityListResponse{}, err
	}

	items := make([]dto.UniversityResponse, 0, len(universities))
	for _, university := range universities {
		items = append(items, dto.NewUniversityResponse(university))
	}

	return dto.UniversityListResponse{
		Items:      items,
		Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *universityService) Get(ctx context.Context, id string) (dto.UniversityResponse, error) {
	university, err := s.universities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UniversityResponse{}, ErrUniversityNotFound
		}
		return dto.UniversityResponse{}, err
	}
	return dto.NewUniversityResponse(university), nil
}

func (s *universityService) Update(ctx context.Context, actor Actor, id string, req dto.UniversityUpdateRequest) (dto.UniversityResponse, error) {
	existing, err := s.universities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UniversityResponse{}, ErrUniversityNotFound
		}
		return dto.UniversityResponse{}, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.ShortName != nil {
		updates["short_name"] = *req.ShortName
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Country != nil {
		updates["country"] = *req.Country
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Website != nil {
		updates["website"] = *req.Website
	}
	if req.LogoURL != nil {
		updates["logo_url"] = *req.LogoURL
	}
	if req.RegistrationNumber != nil {
		updates["registration_number"] = *req.RegistrationNumber
	}
	if req.AccreditationBody != nil {
		updates["accreditation_body"] = *req.AccreditationBody
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsVerified != nil {
		updates["is_verified"] = *req.IsVerified
	}
	if len(updates) == 0 {
		return dto.NewUniversityResponse(existing), nil
	}

	updated, err := s.universities.Update(ctx, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UniversityResponse{}, ErrUniversityNotFound
		}
		return dto.UniversityResponse{}, err
	}

	s.audit.Record(ctx, AuditEvent{
		AdminAccountID: actor.AccountID,
		Action:         models.AuditActionUpdateUniversity,
		ResourceType:   "university",
		ResourceID:     id,
		OldValues:      map[string]interface{}{"name": existing.Name, "is_active": existing.IsActive, "is_verified": existing.IsVerified},
		NewValues:      updates,
		IPAddress:      actor.IP,
		UserAgent:      actor.UserAgent,
	})

	return dto.NewUniversityResponse(updated), nil
}

// Delete removes a university. Universities with remaining administrator
// accounts cannot be deleted; their admins must be removed first.
func (s *universityService) Delete(ctx context.Context, actor Actor, id string) error {
	university, err := s.universities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUniversityNotFound
		}
		return err
	}

	admins, err := s.profiles.CountAdminsForUniversity(ctx, id)
	if err != nil {
		return err
	}
	if admins > 0 {
		return ErrUniversityHasAdmins
	}

	if err := s.universities.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Record(ctx, AuditEvent{
		AdminAccountID: actor.AccountID,
		Action:         models.AuditActionDeleteUniversity,
		ResourceType:   "university",
		ResourceID:     id,
		OldValues:      map[string]string{"name": university.Name, "email": university.Email},
		IPAddress:      actor.IP,
		UserAgent:      actor.UserAgent,
	})

	return nil
}

func (s *universityService) DashboardStats(ctx context.Context) (dto.DashboardStats, error) {
	stats := dto.DashboardStats{}

	var err error
	if stats.TotalUniversities, err = s.universities.Count(ctx); err != nil {
		return dto.DashboardStats{}, err
	}
	if stats.ActiveUniversities, err = s.universities.CountActive(ctx); err != nil {
		return dto.DashboardStats{}, err
	}
	if stats.TotalAccounts, err = s.accounts.Count(ctx); err != nil {
		return dto.DashboardStats{}, err
	}
	if stats.PlatformAdmins, err = s.accounts.CountByRole(ctx, models.RolePlatformAdmin); err != nil {
		return dto.DashboardStats{}, err
	}
	if stats.UniversityAdmins, err = s.accounts.CountByRole(ctx, models.RoleUniversityAdmin); err != nil {
		return dto.DashboardStats{}, err
	}

	return stats, nil
}
