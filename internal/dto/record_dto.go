package dto

import (
	"time"

	"github.com/acadverify/acadverify-api/internal/models"
)

// RecordCreateRequest carries the multipart form fields for a new graduate
// record. Certificate and transcript files ride alongside in the form.
type RecordCreateRequest struct {
	StudentFullName    string `form:"student_full_name" json:"student_full_name" validate:"required,min=2,max=255"`
	RegistrationNumber string `form:"registration_number" json:"registration_number" validate:"required,min=1,max=128"`
	ProgramID          string `form:"program_id" json:"program_id" validate:"required,uuid4"`
	GraduationYear     int    `form:"graduation_year" json:"graduation_year" validate:"required,min=1900,max=2100"`
}

// RecordListRequest defines filters for listing graduate records.
type RecordListRequest struct {
	Page     int
	PageSize int
	Search   string
}

// RecordResponse serializes a graduate record for the owning university.
type RecordResponse struct {
	ID                 string     `json:"id"`
	StudentFullName    string     `json:"student_full_name"`
	RegistrationNumber string     `json:"registration_number"`
	ProgramID          string     `json:"program_id"`
	Program            string     `json:"program,omitempty"`
	GraduationYear     int        `json:"graduation_year"`
	HasCertificate     bool       `json:"has_certificate"`
	HasTranscript      bool       `json:"has_transcript"`
	IsVerified         bool       `json:"is_verified"`
	VerifiedAt         *time.Time `json:"verified_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// RecordListResponse wraps a paginated record listing.
type RecordListResponse struct {
	Items      []RecordResponse `json:"items"`
	Pagination PaginationMeta   `json:"pagination"`
}

// RecordDeletionReport itemizes the outcome of deleting a record and its
// attachments. Blob removal failures leave orphans that are reported, not
// hidden.
type RecordDeletionReport struct {
	RecordDeleted      bool     `json:"record_deleted"`
	CertificateDeleted bool     `json:"certificate_deleted"`
	TranscriptDeleted  bool     `json:"transcript_deleted"`
	Errors             []string `json:"errors,omitempty"`
}

// DocumentPreviewResponse carries a short-lived URL for viewing an attachment.
type DocumentPreviewResponse struct {
	URL       string     `json:"url"`
	Kind      string     `json:"kind"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// NewRecordResponse converts a record model into a DTO.
func NewRecordResponse(record models.GraduateRecord) RecordResponse {
	response := RecordResponse{
		ID:                 record.ID,
		StudentFullName:    record.StudentFullName,
		RegistrationNumber: record.RegistrationNumber,
		ProgramID:          record.ProgramID,
		GraduationYear:     record.GraduationYear,
		HasCertificate:     record.CertificateURL != nil,
		HasTranscript:      record.TranscriptURL != nil,
		IsVerified:         record.IsVerified,
		VerifiedAt:         record.VerifiedAt,
		CreatedAt:          record.CreatedAt,
	}
	if record.Program != nil {
		response.Program = record.Program.Program
	}
	return response
}
