package dto

import (
	"encoding/json"
	"time"

	"github.com/acadverify/acadverify-api/internal/models"
)

// CreatePlatformAdminRequest provisions a new platform administrator.
type CreatePlatformAdminRequest struct {
	Email       string   `json:"email" validate:"required,email"`
	Password    string   `json:"password" validate:"required,min=8"`
	FirstName   string   `json:"first_name" validate:"required,min=1"`
	LastName    string   `json:"last_name" validate:"required,min=1"`
	Phone       string   `json:"phone" validate:"omitempty,max=64"`
	Permissions []string `json:"permissions" validate:"omitempty,dive,min=1"`
}

// CreateUniversityAdminRequest provisions an administrator scoped to one
// university tenant.
type CreateUniversityAdminRequest struct {
	Email        string   `json:"email" validate:"required,email"`
	Password     string   `json:"password" validate:"required,min=8"`
	FirstName    string   `json:"first_name" validate:"required,min=1"`
	LastName     string   `json:"last_name" validate:"required,min=1"`
	UniversityID string   `json:"university_id" validate:"required,uuid4"`
	Title        string   `json:"title" validate:"omitempty,max=255"`
	Phone        string   `json:"phone" validate:"omitempty,max=64"`
	Permissions  []string `json:"permissions" validate:"omitempty,dive,min=1"`
}

// UpdateUniversityAdminRequest captures partial updates to an admin profile.
type UpdateUniversityAdminRequest struct {
	FirstName   *string  `json:"first_name" validate:"omitempty,min=1"`
	LastName    *string  `json:"last_name" validate:"omitempty,min=1"`
	Title       *string  `json:"title" validate:"omitempty,max=255"`
	Phone       *string  `json:"phone" validate:"omitempty,max=64"`
	Permissions []string `json:"permissions" validate:"omitempty,dive,min=1"`
	IsActive    *bool    `json:"is_active"`
}

// AccountListRequest defines filters for listing accounts.
type AccountListRequest struct {
	Page     int
	PageSize int
	Role     string
	Search   string
}

// AccountResponse serializes a bare account row.
type AccountResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

// AccountListResponse wraps a paginated account listing.
type AccountListResponse struct {
	Items      []AccountResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}

// UniversityAdminResponse serializes a university administrator profile.
type UniversityAdminResponse struct {
	ID           string     `json:"id"`
	AccountID    string     `json:"account_id"`
	UniversityID string     `json:"university_id"`
	Email        string     `json:"email"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Title        string     `json:"title,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	Permissions  []string   `json:"permissions"`
	IsActive     bool       `json:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// UniversityAdminListResponse wraps a paginated admin listing.
type UniversityAdminListResponse struct {
	Items      []UniversityAdminResponse `json:"items"`
	Pagination PaginationMeta            `json:"pagination"`
}

// DeletionReport itemizes the outcome of a full account erasure. Partial
// failures are reported rather than hidden.
type DeletionReport struct {
	AccountDeleted  bool     `json:"account_deleted"`
	ProfileDeleted  bool     `json:"profile_deleted"`
	IdentityDeleted bool     `json:"identity_deleted"`
	AuditCleared    bool     `json:"audit_cleared"`
	Errors          []string `json:"errors,omitempty"`
}

// NewAccountResponse converts an account model into a DTO.
func NewAccountResponse(account models.Account) AccountResponse {
	return AccountResponse{
		ID:            account.ID,
		Email:         account.Email,
		Role:          account.Role,
		EmailVerified: account.EmailVerified,
		CreatedAt:     account.CreatedAt,
	}
}

// NewUniversityAdminResponse converts an admin profile into a DTO.
func NewUniversityAdminResponse(profile models.UniversityAdminProfile) UniversityAdminResponse {
	return UniversityAdminResponse{
		ID:           profile.ID,
		AccountID:    profile.AccountID,
		UniversityID: profile.UniversityID,
		Email:        profile.Email,
		FirstName:    profile.FirstName,
		LastName:     profile.LastName,
		Title:        profile.Title,
		Phone:        profile.Phone,
		Permissions:  permissionsFromJSON(profile.Permissions),
		IsActive:     profile.IsActive,
		LastLogin:    profile.LastLogin,
		CreatedAt:    profile.CreatedAt,
	}
}

func permissionsFromJSON(raw []byte) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var permissions []string
	if err := json.Unmarshal(raw, &permissions); err != nil {
		return []string{}
	}
	return permissions
}
