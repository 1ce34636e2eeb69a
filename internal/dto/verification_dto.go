package dto

import (
	"time"

	"github.com/acadverify/acadverify-api/internal/models"
)

// Verification types narrow the attachment details included in a successful
// lookup. An empty type is treated as VerificationTypeBoth.
const (
	VerificationTypeCertificate = "certificate"
	VerificationTypeTranscript  = "transcript"
	VerificationTypeBoth        = "both"
)

// Status labels attached to a verified credential.
const (
	CredentialStatusVerified = "Verified"
	CredentialStatusPending  = "Pending Verification"
)

// VerificationRequest is the anonymous lookup submitted by a third party. The
// registration number is the only mandatory key; the other fields narrow the
// match, and VerificationType picks which attachment blocks are returned.
type VerificationRequest struct {
	RegistrationNumber string `json:"registration_number" validate:"required,min=1,max=128"`
	StudentName        string `json:"student_name" validate:"omitempty,max=255"`
	UniversityID       string `json:"university_id" validate:"omitempty,uuid4"`
	ProgramID          string `json:"program_id" validate:"omitempty,uuid4"`
	GraduationYear     int    `json:"graduation_year" validate:"omitempty,min=1900,max=2100"`
	VerificationType   string `json:"verification_type" validate:"omitempty,oneof=certificate transcript both"`
}

// UniversityRef identifies the issuing university inside a credential.
type UniversityRef struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name,omitempty"`
}

// ProgramRef identifies the academic program inside a credential.
type ProgramRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// VerifiedCredential is the public slice of a matched record. It deliberately
// omits internal audit fields and raw document keys.
type VerifiedCredential struct {
	RecordID           string        `json:"record_id"`
	StudentFullName    string        `json:"student_full_name"`
	RegistrationNumber string        `json:"registration_number"`
	University         UniversityRef `json:"university"`
	Program            ProgramRef    `json:"program"`
	Faculty            string        `json:"faculty,omitempty"`
	GraduationYear     int           `json:"graduation_year"`
	IsVerified         bool          `json:"is_verified"`
	Status             string        `json:"status"`
	VerifiedAt         *time.Time    `json:"verified_at,omitempty"`
}

// AttachmentInfo describes one document on a matched record. Unavailable
// attachments carry only the explanatory message.
type AttachmentInfo struct {
	Available  bool       `json:"available"`
	URL        string     `json:"url,omitempty"`
	Verified   *bool      `json:"verified,omitempty"`
	UploadDate *time.Time `json:"upload_date,omitempty"`
	Message    string     `json:"message,omitempty"`
}

// VerificationResponse reports the outcome of a credential lookup. The
// Certificate and Transcript blocks are present only when the requested
// verification type includes them.
type VerificationResponse struct {
	Found       bool                `json:"found"`
	Message     string              `json:"message,omitempty"`
	Credential  *VerifiedCredential `json:"credential,omitempty"`
	Certificate *AttachmentInfo     `json:"certificate,omitempty"`
	Transcript  *AttachmentInfo     `json:"transcript,omitempty"`
}

// UniversityOption is a dropdown entry for the public verification form.
type UniversityOption struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	City    string `json:"city"`
}

// ProgramOption is a dropdown entry scoped to a chosen university.
type ProgramOption struct {
	ID      string `json:"id"`
	Program string `json:"program"`
	Faculty string `json:"faculty,omitempty"`
}

// NewVerifiedCredential converts a matched record into its public view. The
// University and Program relations must be preloaded.
func NewVerifiedCredential(record models.GraduateRecord) VerifiedCredential {
	credential := VerifiedCredential{
		RecordID:           record.ID,
		StudentFullName:    record.StudentFullName,
		RegistrationNumber: record.RegistrationNumber,
		GraduationYear:     record.GraduationYear,
		IsVerified:         record.IsVerified,
		Status:             CredentialStatusPending,
		VerifiedAt:         record.VerifiedAt,
	}
	if record.IsVerified {
		credential.Status = CredentialStatusVerified
	}
	if record.University != nil {
		credential.University = UniversityRef{
			ID:        record.University.ID,
			Name:      record.University.Name,
			ShortName: record.University.ShortName,
		}
	} else {
		credential.University.ID = record.UniversityID
	}
	if record.Program != nil {
		credential.Program = ProgramRef{ID: record.Program.ID, Name: record.Program.Program}
		credential.Faculty = record.Program.Faculty
	} else {
		credential.Program.ID = record.ProgramID
	}
	return credential
}

// NewAttachmentInfo describes one document of a matched record. A nil URL
// yields an unavailable block carrying missingMessage.
func NewAttachmentInfo(record models.GraduateRecord, url *string, missingMessage string) *AttachmentInfo {
	if url == nil {
		return &AttachmentInfo{Available: false, Message: missingMessage}
	}
	verified := record.IsVerified
	uploadDate := record.CreatedAt
	return &AttachmentInfo{
		Available:  true,
		URL:        *url,
		Verified:   &verified,
		UploadDate: &uploadDate,
	}
}

// NewUniversityOptions converts universities into dropdown entries.
func NewUniversityOptions(universities []models.University) []UniversityOption {
	options := make([]UniversityOption, 0, len(universities))
	for _, university := range universities {
		options = append(options, UniversityOption{
			ID:      university.ID,
			Name:    university.Name,
			Country: university.Country,
			City:    university.City,
		})
	}
	return options
}

// NewProgramOptions converts programs into dropdown entries.
func NewProgramOptions(programs []models.AcademicProgram) []ProgramOption {
	options := make([]ProgramOption, 0, len(programs))
	for _, program := range programs {
		options = append(options, ProgramOption{
			ID:      program.ID,
			Program: program.Program,
			Faculty: program.Faculty,
		})
	}
	return options
}
