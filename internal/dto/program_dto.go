package dto

import (
	"time"

	"github.com/acadverify/acadverify-api/internal/models"
)

// ProgramCreateRequest adds an academic program to the caller's university.
type ProgramCreateRequest struct {
	Program  string `json:"program" validate:"required,min=2,max=255"`
	Faculty  string `json:"faculty" validate:"omitempty,max=255"`
	Duration string `json:"duration" validate:"omitempty,max=64"`
}

// ProgramUpdateRequest captures partial updates to a program.
type ProgramUpdateRequest struct {
	Program  *string `json:"program" validate:"omitempty,min=2,max=255"`
	Faculty  *string `json:"faculty" validate:"omitempty,max=255"`
	Duration *string `json:"duration" validate:"omitempty,max=64"`
	IsActive *bool   `json:"is_active"`
}

// ProgramResponse serializes an academic program.
type ProgramResponse struct {
	ID        string    `json:"id"`
	Program   string    `json:"program"`
	Faculty   string    `json:"faculty,omitempty"`
	Duration  string    `json:"duration,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// ProgramListResponse wraps a paginated program listing.
type ProgramListResponse struct {
	Items      []ProgramResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}

// UniversitySettingsResponse bundles the tenant profile with its programs for
// the settings page.
type UniversitySettingsResponse struct {
	University UniversityResponse `json:"university"`
	Programs   []ProgramResponse  `json:"programs"`
}

// UniversitySettingsUpdateRequest updates the tenant profile and optionally
// replaces the full program list in one call.
type UniversitySettingsUpdateRequest struct {
	Phone    *string                `json:"phone" validate:"omitempty,max=64"`
	Address  *string                `json:"address" validate:"omitempty,max=512"`
	Website  *string                `json:"website" validate:"omitempty,url,max=255"`
	LogoURL  *string                `json:"logo_url" validate:"omitempty,url,max=512"`
	Programs []ProgramCreateRequest `json:"programs" validate:"omitempty,dive"`
}

// NewProgramResponse converts a program model into a DTO.
func NewProgramResponse(program models.AcademicProgram) ProgramResponse {
	return ProgramResponse{
		ID:        program.ID,
		Program:   program.Program,
		Faculty:   program.Faculty,
		Duration:  program.Duration,
		IsActive:  program.IsActive,
		CreatedAt: program.CreatedAt,
	}
}

// NewProgramResponses converts a slice of program models.
func NewProgramResponses(programs []models.AcademicProgram) []ProgramResponse {
	items := make([]ProgramResponse, 0, len(programs))
	for _, program := range programs {
		items = append(items, NewProgramResponse(program))
	}
	return items
}
