package dto

import (
	"time"

	"github.com/acadverify/acadverify-api/internal/models"
)

// UniversityCreateRequest registers a new university tenant.
type UniversityCreateRequest struct {
	Name               string `json:"name" validate:"required,min=2,max=255"`
	ShortName          string `json:"short_name" validate:"omitempty,max=64"`
	Email              string `json:"email" validate:"required,email"`
	Phone              string `json:"phone" validate:"omitempty,max=64"`
	Country            string `json:"country" validate:"required,min=2,max=128"`
	City               string `json:"city" validate:"required,min=1,max=128"`
	Address            string `json:"address" validate:"omitempty,max=512"`
	Website            string `json:"website" validate:"omitempty,url,max=255"`
	LogoURL            string `json:"logo_url" validate:"omitempty,url,max=512"`
	RegistrationNumber string `json:"registration_number" validate:"omitempty,max=128"`
	AccreditationBody  string `json:"accreditation_body" validate:"omitempty,max=255"`
}

// UniversityUpdateRequest captures partial updates to a university.
type UniversityUpdateRequest struct {
	Name               *string `json:"name" validate:"omitempty,min=2,max=255"`
	ShortName          *string `json:"short_name" validate:"omitempty,max=64"`
	Phone              *string `json:"phone" validate:"omitempty,max=64"`
	Country            *string `json:"country" validate:"omitempty,min=2,max=128"`
	City               *string `json:"city" validate:"omitempty,min=1,max=128"`
	Address            *string `json:"address" validate:"omitempty,max=512"`
	Website            *string `json:"website" validate:"omitempty,url,max=255"`
	LogoURL            *string `json:"logo_url" validate:"omitempty,url,max=512"`
	RegistrationNumber *string `json:"registration_number" validate:"omitempty,max=128"`
	AccreditationBody  *string `json:"accreditation_body" validate:"omitempty,max=255"`
	IsActive           *bool   `json:"is_active"`
	IsVerified         *bool   `json:"is_verified"`
}

// UniversityListRequest defines filters for listing universities.
type UniversityListRequest struct {
	Page     int
	PageSize int
	Search   string
	Status   string
}

// UniversityResponse serializes a university for admin endpoints.
type UniversityResponse struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	ShortName          string    `json:"short_name,omitempty"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone,omitempty"`
	Country            string    `json:"country"`
	City               string    `json:"city"`
	Address            string    `json:"address,omitempty"`
	Website            string    `json:"website,omitempty"`
	LogoURL            string    `json:"logo_url,omitempty"`
	RegistrationNumber string    `json:"registration_number,omitempty"`
	AccreditationBody  string    `json:"accreditation_body,omitempty"`
	IsActive           bool      `json:"is_active"`
	IsVerified         bool      `json:"is_verified"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// UniversityListResponse wraps a paginated university listing.
type UniversityListResponse struct {
	Items      []UniversityResponse `json:"items"`
	Pagination PaginationMeta       `json:"pagination"`
}

// DashboardStats summarizes the platform for the admin dashboard.
type DashboardStats struct {
	TotalUniversities  int64 `json:"total_universities"`
	ActiveUniversities int64 `json:"active_universities"`
	TotalAccounts      int64 `json:"total_accounts"`
	PlatformAdmins     int64 `json:"platform_admins"`
	UniversityAdmins   int64 `json:"university_admins"`
}

// NewUniversityResponse converts a university model into a DTO.
func NewUniversityResponse(university models.University) UniversityResponse {
	return UniversityResponse{
		ID:                 university.ID,
		Name:               university.Name,
		ShortName:          university.ShortName,
		Email:              university.Email,
		Phone:              university.Phone,
		Country:            university.Country,
		City:               university.City,
		Address:            university.Address,
		Website:            university.Website,
		LogoURL:            university.LogoURL,
		RegistrationNumber: university.RegistrationNumber,
		AccreditationBody:  university.AccreditationBody,
		IsActive:           university.IsActive,
		IsVerified:         university.IsVerified,
		CreatedAt:          university.CreatedAt,
		UpdatedAt:          university.UpdatedAt,
	}
}
