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

// ErrProgramNotFound indicates the program does not exist within the tenant.
var ErrProgramNotFound = errors.New("academic program not found")

// ProgramService manages a university's academic programs and combined
// settings. All operations are scoped to the caller's tenant.
type ProgramService interface {
	Create(ctx context.Context, actor Actor, universityID string, req dto.ProgramCreateRequest) (dto.ProgramResponse, error)
	List(ctx context.Context, universityID string, page, pageSize int) (dto.ProgramListResponse, error)
	Update(ctx context.Context, actor Actor, universityID, id string, req dto.ProgramUpdateRequest) (dto.ProgramResponse, error)
	Delete(ctx context.Context, actor Actor, universityID, id string) error
	Settings(ctx context.Context, universityID string) (dto.UniversitySettingsResponse, error)
	UpdateSettings(ctx context.Context, actor Actor, universityID string, req dto.UniversitySettingsUpdateRequest) (dto.UniversitySettingsResponse, error)
}

type programService struct {
	programs     repository.ProgramRepository
	universities repository.UniversityRepository
	audit        AuditService
	logger       zerolog.Logger
}

// NewProgramService constructs the program management service.
func NewProgramService(
	programs repository.ProgramRepository,
	universities repository.UniversityRepository,
	audit AuditService,
	logger zerolog.Logger,
) ProgramService {
	return &programService{
		programs:     programs,
		universities: universities,
		audit:        audit,
		logger:       logger.With().Str("component", "program_service").Logger(),
	}
}

func (s *programService) Create(ctx context.Context, actor Actor, universityID string, req dto.ProgramCreateRequest) (dto.ProgramResponse, error) {
	program := models.AcademicProgram{
		ID:           uuid.NewString(),
		UniversityID: universityID,
		Program:      req.Program,
		Faculty:      req.Faculty,
		Duration:     req.Duration,
		IsActive:     true,
		CreatedBy:    actor.AccountID,
	}

	if err := s.programs.Create(ctx, &program); err != nil {
		return dto.ProgramResponse{}, err
	}

	return dto.NewProgramResponse(program), nil
}

func (s *programService) List(ctx context.Context, universityID string, page, pageSize int) (dto.ProgramListResponse, error) {
	programs, total, err := s.programs.List(ctx, universityID, page, pageSize)
	if err != nil {
		return dto.ProgramListResponse{}, err
	}

	return dto.ProgramListResponse{
		Items:      dto.NewProgramResponses(programs),
		Pagination: dto.NewPaginationMeta(page, pageSize, total),
	}, nil
}

func (s *programService) Update(ctx context.Context, actor Actor, universityID, id string, req dto.ProgramUpdateRequest) (dto.ProgramResponse, error) {
	updates := map[string]interface{}{}
	if req.Program != nil {
		updates["program"] = *req.Program
	}
	if req.Faculty != nil {
		updates["faculty"] = *req.Faculty
	}
	if req.Duration != nil {
		updates["duration"] = *req.Duration
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		program, err := s.programs.GetByID(ctx, universityID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.ProgramResponse{}, ErrProgramNotFound
			}
			return dto.ProgramResponse{}, err
		}
		return dto.NewProgramResponse(program), nil
	}

	program, err := s.programs.Update(ctx, universityID, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProgramResponse{}, ErrProgramNotFound
		}
		return dto.ProgramResponse{}, err
	}

	return dto.NewProgramResponse(program), nil
}

func (s *programService) Delete(ctx context.Context, actor Actor, universityID, id string) error {
	if err := s.programs.Delete(ctx, universityID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProgramNotFound
		}
		return err
	}
	return nil
}

func (s *programService) Settings(ctx context.Context, universityID string) (dto.UniversitySettingsResponse, error) {
	university, err := s.universities.GetByID(ctx, universityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UniversitySettingsResponse{}, ErrUniversityNotFound
		}
		return dto.UniversitySettingsResponse{}, err
	}

	programs, err := s.programs.ListActive(ctx, universityID)
	if err != nil {
		return dto.UniversitySettingsResponse{}, err
	}

	return dto.UniversitySettingsResponse{
		University: dto.NewUniversityResponse(university),
		Programs:   dto.NewProgramResponses(programs),
	}, nil
}

// UpdateSettings applies tenant profile changes and, when a program list is
// supplied, replaces the full program set in one transaction.
func (s *programService) UpdateSettings(ctx context.Context, actor Actor, universityID string, req dto.UniversitySettingsUpdateRequest) (dto.UniversitySettingsResponse, error) {
	updates := map[string]interface{}{}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
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

	if len(updates) > 0 {
		if _, err := s.universities.Update(ctx, universityID, updates); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.UniversitySettingsResponse{}, ErrUniversityNotFound
			}
			return dto.UniversitySettingsResponse{}, err
		}
	}

	if req.Programs != nil {
		replacement := make([]models.AcademicProgram, 0, len(req.Programs))
		for _, item := range req.Programs {
			replacement = append(replacement, models.AcademicProgram{
				ID:           uuid.NewString(),
				UniversityID: universityID,
				Program:      item.Program,
				Faculty:      item.Faculty,
				Duration:     item.Duration,
				IsActive:     true,
				CreatedBy:    actor.AccountID,
			})
		}
		if err := s.programs.ReplaceAll(ctx, universityID, replacement); err != nil {
			return dto.UniversitySettingsResponse{}, err
		}
	}

	s.audit.Record(ctx, AuditEvent{
		AdminAccountID: actor.AccountID,
		Action:         models.AuditActionUpdateUniversity,
		ResourceType:   "university_settings",
		ResourceID:     universityID,
		NewValues:      updates,
		IPAddress:      actor.IP,
		UserAgent:      actor.UserAgent,
	})

	return s.Settings(ctx, universityID)
}
