package models

import "time"

// GraduateRecord is one graduate's credential entry. The pair
// (university_id, registration_number) is the natural verification key; the
// schema does not enforce global uniqueness of the registration number because
// different universities may share a numbering format.
//
// CertificateURL and TranscriptURL point at blobs in object storage; both nil
// means the record has no attachments, which is a valid state.
type GraduateRecord struct {
	ID                 string     `gorm:"type:uuid;primaryKey" json:"id"`
	UniversityID       string     `gorm:"type:uuid;not null;index" json:"university_id"`
	ProgramID          string     `gorm:"type:uuid;not null;index" json:"program_id"`
	StudentFullName    string     `gorm:"size:255;not null" json:"student_full_name"`
	RegistrationNumber string     `gorm:"size:128;not null;index" json:"registration_number"`
	GraduationYear     int        `gorm:"not null" json:"graduation_year"`
	CertificateURL     *string    `gorm:"size:1024" json:"certificate_url,omitempty"`
	TranscriptURL      *string    `gorm:"size:1024" json:"transcript_url,omitempty"`
	IsVerified         bool       `gorm:"not null;default:false" json:"is_verified"`
	VerifiedBy         string     `gorm:"type:uuid" json:"verified_by,omitempty"`
	VerifiedAt         *time.Time `json:"verified_at,omitempty"`
	CreatedBy          string     `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	University *University      `gorm:"foreignKey:UniversityID" json:"-"`
	Program    *AcademicProgram `gorm:"foreignKey:ProgramID" json:"-"`
}
