package models

import (
	"time"

	"gorm.io/datatypes"
)

// Audit actions recorded by the admin surfaces.
const (
	AuditActionCreateUniversity      = "CREATE_UNIVERSITY"
	AuditActionUpdateUniversity      = "UPDATE_UNIVERSITY"
	AuditActionDeleteUniversity      = "DELETE_UNIVERSITY"
	AuditActionCreateUniversityAdmin = "CREATE_UNIVERSITY_ADMIN"
	AuditActionUpdateUniversityAdmin = "UPDATE_UNIVERSITY_ADMIN"
	AuditActionDeleteUniversityAdmin = "DELETE_UNIVERSITY_ADMIN"
	AuditActionCreatePlatformAdmin   = "CREATE_PLATFORM_ADMIN"
	AuditActionDeleteAccount         = "DELETE_ACCOUNT_COMPLETE"
	AuditActionViewAccounts          = "VIEW_ACCOUNTS"
	AuditActionCreateRecord          = "CREATE_GRADUATE_RECORD"
	AuditActionDeleteRecord          = "DELETE_GRADUATE_RECORD"
	AuditActionLogout                = "LOGOUT"
)

// AuditLogEntry is append-only. Writing one must never fail the operation it
// describes; callers record entries best-effort.
type AuditLogEntry struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	AdminAccountID string         `gorm:"type:uuid;index;not null" json:"admin_account_id"`
	Action         string         `gorm:"size:64;not null" json:"action"`
	ResourceType   string         `gorm:"size:64" json:"resource_type,omitempty"`
	ResourceID     string         `gorm:"size:64;index" json:"resource_id,omitempty"`
	OldValues      datatypes.JSON `json:"old_values,omitempty"`
	NewValues      datatypes.JSON `json:"new_values,omitempty"`
	IPAddress      string         `gorm:"size:64" json:"ip_address,omitempty"`
	UserAgent      string         `gorm:"size:512" json:"user_agent,omitempty"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
}
