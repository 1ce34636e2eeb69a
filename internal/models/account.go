package models

import (
	"time"

	"gorm.io/datatypes"
)

// Account roles. Exactly one Account exists per email; the role decides which
// profile table carries the rest of the identity.
const (
	RolePlatformAdmin   = "platform_admin"
	RoleUniversityAdmin = "university_admin"
	RoleStudent         = "student"
	RoleEmployer        = "employer"
)

// Account is the authoritative identity row. For auth-managed accounts the ID
// is issued by the external identity provider and shared with it.
type Account struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	Email         string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role          string    `gorm:"size:32;not null;index" json:"role"`
	EmailVerified bool      `gorm:"not null;default:false" json:"email_verified"`
	AuthManaged   bool      `gorm:"not null;default:false" json:"auth_managed"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PlatformAdminProfile holds the platform super-admin identity attached to an
// Account with RolePlatformAdmin.
type PlatformAdminProfile struct {
	ID          string         `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID   string         `gorm:"type:uuid;uniqueIndex;not null" json:"account_id"`
	FirstName   string         `gorm:"size:255;not null" json:"first_name"`
	LastName    string         `gorm:"size:255;not null" json:"last_name"`
	Phone       string         `gorm:"size:64" json:"phone,omitempty"`
	Permissions datatypes.JSON `json:"permissions"`
	IsActive    bool           `gorm:"not null" json:"is_active"`
	LastLogin   *time.Time     `json:"last_login,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// UniversityAdminProfile scopes an admin account to a single university
// tenant. Email is denormalized for lookup fallback when the account id and
// profile drift apart.
type UniversityAdminProfile struct {
	ID           string         `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID    string         `gorm:"type:uuid;uniqueIndex;not null" json:"account_id"`
	UniversityID string         `gorm:"type:uuid;not null;index" json:"university_id"`
	Email        string         `gorm:"size:255;index" json:"email"`
	FirstName    string         `gorm:"size:255;not null" json:"first_name"`
	LastName     string         `gorm:"size:255;not null" json:"last_name"`
	Title        string         `gorm:"size:255" json:"title,omitempty"`
	Phone        string         `gorm:"size:64" json:"phone,omitempty"`
	Permissions  datatypes.JSON `json:"permissions"`
	IsActive     bool           `gorm:"not null" json:"is_active"`
	LastLogin    *time.Time     `json:"last_login,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// StudentProfile carries the demographic fields of a student account.
type StudentProfile struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID string    `gorm:"type:uuid;uniqueIndex;not null" json:"account_id"`
	FirstName string    `gorm:"size:255" json:"first_name"`
	LastName  string    `gorm:"size:255" json:"last_name"`
	Phone     string    `gorm:"size:64" json:"phone,omitempty"`
	Country   string    `gorm:"size:128" json:"country,omitempty"`
	City      string    `gorm:"size:128" json:"city,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EmployerProfile carries the company fields of an employer account.
type EmployerProfile struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID   string    `gorm:"type:uuid;uniqueIndex;not null" json:"account_id"`
	CompanyName string    `gorm:"size:255" json:"company_name"`
	Industry    string    `gorm:"size:128" json:"industry,omitempty"`
	Phone       string    `gorm:"size:64" json:"phone,omitempty"`
	Country     string    `gorm:"size:128" json:"country,omitempty"`
	City        string    `gorm:"size:128" json:"city,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DefaultUniversityAdminPermissions is granted to newly created university
// administrators unless the caller supplies an explicit set.
var DefaultUniversityAdminPermissions = []string{
	"university:read", "university:write",
	"students:read", "students:write",
	"courses:read", "courses:write",
	"transcripts:read", "transcripts:write",
	"certificates:read", "certificates:write",
}
