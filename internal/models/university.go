package models

import "time"

// University is a tenant. It is created by a platform admin and owns academic
// programs and graduate records; it has no owning account of its own.
type University struct {
	ID                 string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name               string    `gorm:"size:255;not null" json:"name"`
	ShortName          string    `gorm:"size:64" json:"short_name,omitempty"`
	Email              string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Phone              string    `gorm:"size:64" json:"phone,omitempty"`
	Country            string    `gorm:"size:128;not null" json:"country"`
	City               string    `gorm:"size:128;not null" json:"city"`
	Address            string    `gorm:"size:512" json:"address,omitempty"`
	Website            string    `gorm:"size:255" json:"website,omitempty"`
	LogoURL            string    `gorm:"size:512" json:"logo_url,omitempty"`
	RegistrationNumber string    `gorm:"size:128" json:"registration_number,omitempty"`
	AccreditationBody  string    `gorm:"size:255" json:"accreditation_body,omitempty"`
	IsActive           bool      `gorm:"not null" json:"is_active"`
	IsVerified         bool      `gorm:"not null;default:false" json:"is_verified"`
	CreatedBy          string    `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// AcademicProgram belongs to exactly one university. A settings update may
// replace the whole set for a university in bulk.
type AcademicProgram struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	UniversityID string    `gorm:"type:uuid;not null;index" json:"university_id"`
	Program      string    `gorm:"size:255;not null" json:"program"`
	Faculty      string    `gorm:"size:255" json:"faculty,omitempty"`
	Duration     string    `gorm:"size:64" json:"duration,omitempty"`
	IsActive     bool      `gorm:"not null" json:"is_active"`
	CreatedBy    string    `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
