package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/acadverify/acadverify-api/internal/dto"
	"github.com/acadverify/acadverify-api/internal/models"
	"github.com/acadverify/acadverify-api/internal/repository"
)

func newVerificationService(t *testing.T, db *gorm.DB, cache *redis.Client) VerificationService {
	t.Helper()

	audit := NewAuditService(repository.NewAuditLogRepository(db), 365, zerolog.Nop())
	documents := NewRecordService(
		repository.NewRecordRepository(db),
		repository.NewProgramRepository(db),
		repository.NewUniversityRepository(db),
		newFakeStore(),
		audit,
		10,
		zerolog.Nop(),
	)
	return NewVerificationService(
		repository.NewRecordRepository(db),
		repository.NewUniversityRepository(db),
		repository.NewProgramRepository(db),
		documents,
		cache,
		time.Minute,
		zerolog.Nop(),
	)
}

func newTestCache(t *testing.T) *redis.Client {
	t.Helper()

	server := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: server.Addr()})
}

func seedGraduateRecord(t *testing.T, db *gorm.DB, universityID, programID, student, registration string, year int) models.GraduateRecord {
	t.Helper()

	verifiedAt := time.Now()
	record := models.GraduateRecord{
		ID:                 uuid.NewString(),
		UniversityID:       universityID,
		ProgramID:          programID,
		StudentFullName:    student,
		RegistrationNumber: registration,
		GraduationYear:     year,
		IsVerified:         true,
		VerifiedBy:         uuid.NewString(),
		VerifiedAt:         &verifiedAt,
	}
	require.NoError(t, db.Create(&record).Error)
	return record
}

func TestVerifyExactMatch(t *testing.T) {
	db := newTestDB(t, "verify_exact")
	svc := newVerificationService(t, db, nil)
	ctx := context.Background()

	university := seedUniversity(t, db, "Coastal University", "CU")
	program := seedProgram(t, db, university.ID, "BSc Computer Science")
	seedGraduateRecord(t, db, university.ID, program.ID, "Amina Hassan", "CU/2020/0412", 2024)

	response, err := svc.Verify(ctx, dto.VerificationRequest{RegistrationNumber: "CU/2020/0412"})
	require.NoError(t, err)
	require.True(t, response.Found)
	require.NotNil(t, response.Credential)
	require.Equal(t, "Amina Hassan", response.Credential.StudentFullName)
	require.Equal(t, university.ID, response.Credential.University.ID)
	require.Equal(t, "Coastal University", response.Credential.University.Name)
	require.Equal(t, "CU", response.Credential.University.ShortName)
	require.Equal(t, program.ID, response.Credential.Program.ID)
	require.Equal(t, "BSc Computer Science", response.Credential.Program.Name)
	require.Equal(t, dto.CredentialStatusVerified, response.Credential.Status)

	// Surrounding whitespace is trimmed before matching.
	trimmed, err := svc.Verify(ctx, dto.VerificationRequest{RegistrationNumber: "  CU/2020/0412  "})
	require.NoError(t, err)
	require.True(t, trimmed.Found)

	// Case differences are not forgiven.
	cased, err := svc.Verify(ctx, dto.VerificationRequest{RegistrationNumber: "cu/2020/0412"})
	require.NoError(t, err)
	require.False(t, cased.Found)
	require.Nil(t, cased.Credential)
	require.Equal(t, "No matching credentials found", cased.Message)
}

func TestVerifyAttachmentBlocks(t *testing.T) {
	db := newTestDB(t, "verify_attachments")
	svc := newVerificationService(t, db, nil)
	ctx := context.Background()

	university := seedUniversity(t, db, "Coastal University", "CU")
	program := seedProgram(t, db, university.ID, "BSc Computer Science")
	record := seedGraduateRecord(t, db, university.ID, program.ID, "Amina Hassan", "CU/2020/0412", 2024)
	certURL := "https://cdn.example/graduate-record/cu/123_certificate_cert.pdf"
	require.NoError(t, db.Model(&models.GraduateRecord{}).Where("id = ?", record.ID).Update("certificate_url", certURL).Error)

	// Default scope covers both documents. The missing transcript still gets
	// a block, marked unavailable.
	both, err := svc.Verify(ctx, dto.VerificationRequest{RegistrationNumber: "CU/2020/0412"})
	require.NoError(t, err)
	require.NotNil(t, both.Certificate)
	require.True(t, both.Certificate.Available)
	require.Equal(t, certURL, both.Certificate.URL)
	require.NotNil(t, both.Certificate.Verified)
	require.True(t, *both.Certificate.Verified)
	require.NotNil(t, both.Certificate.UploadDate)
	require.NotNil(t, both.Transcript)
	require.False(t, both.Transcript.Available)
	require.Equal(t, "Transcript not uploaded", both.Transcript.Message)
	require.Empty(t, both.Transcript.URL)

	certOnly, err := svc.Verify(ctx, dto.VerificationRequest{
		RegistrationNumber: "CU/2020/0412",
		VerificationType:   dto.VerificationTypeCertificate,
	})
	require.NoError(t, err)
	require.NotNil(t, certOnly.Certificate)
	require.Nil(t, certOnly.Transcript)

	transcriptOnly, err := svc.Verify(ctx, dto.VerificationRequest{
		RegistrationNumber: "CU/2020/0412",
		VerificationType:   dto.VerificationTypeTranscript,
	})
	require.NoError(t, err)
	require.Nil(t, transcriptOnly.Certificate)
	require.NotNil(t, transcriptOnly.Transcript)
	require.False(t, transcriptOnly.Transcript.Available)
}

func TestVerifyPendingRecordStatus(t *testing.T) {
	db := newTestDB(t, "verify_pending")
	svc := newVerificationService(t, db, nil)

	university := seedUniversity(t, db, "Coastal University", "CU")
	program := seedProgram(t, db, university.ID, "BSc Computer Science")
	record := seedGraduateRecord(t, db, university.ID, program.ID, "Amina Hassan", "CU/2020/0412", 2024)
	require.NoError(t, db.Model(&models.GraduateRecord{}).Where("id = ?", record.ID).
		Updates(map[string]interface{}{"is_verified": false, "verified_at": nil}).Error)

	response, err := svc.Verify(context.Background(), dto.VerificationRequest{RegistrationNumber: "CU/2020/0412"})
	require.NoError(t, err)
	require.True(t, response.Found)
	require.Equal(t, dto.CredentialStatusPending, response.Credential.Status)
	require.False(t, response.Credential.IsVerified)
}

func TestVerifyRequiresRegistration(t *testing.T) {
	db := newTestDB(t, "verify_required")
	svc := newVerificationService(t, db, nil)

	_, err := svc.Verify(context.Background(), dto.VerificationRequest{RegistrationNumber: "   "})
	require.ErrorIs(t, err, ErrRegistrationRequired)
}

func TestVerifyNarrowingFilters(t *testing.T) {
	db := newTestDB(t, "verify_filters")
	svc := newVerificationService(t, db, nil)
	ctx := context.Background()

	coastal := seedUniversity(t, db, "Coastal University", "CU")
	inland := seedUniversity(t, db, "Inland University", "IU")
	coastalProgram := seedProgram(t, db, coastal.ID, "BSc Computer Science")
	inlandProgram := seedProgram(t, db, inland.ID, "BA Economics")

	// Two universities share the same registration number format.
	seedGraduateRecord(t, db, coastal.ID, coastalProgram.ID, "Amina Hassan", "REG-001", 2024)
	seedGraduateRecord(t, db, inland.ID, inlandProgram.ID, "Brian Odhiambo", "REG-001", 2023)

	scoped, err := svc.Verify(ctx, dto.VerificationRequest{
		RegistrationNumber: "REG-001",
		UniversityID:       inland.ID,
	})
	require.NoError(t, err)
	require.True(t, scoped.Found)
	require.Equal(t, "Brian Odhiambo", scoped.Credential.StudentFullName)

	byYear, err := svc.Verify(ctx, dto.VerificationRequest{
		RegistrationNumber: "REG-001",
		GraduationYear:     2024,
	})
	require.NoError(t, err)
	require.True(t, byYear.Found)
	require.Equal(t, "Amina Hassan", byYear.Credential.StudentFullName)

	byName, err := svc.Verify(ctx, dto.VerificationRequest{
		RegistrationNumber: "REG-001",
		StudentName:        "brian",
	})
	require.NoError(t, err)
	require.True(t, byName.Found)
	require.Equal(t, "Brian Odhiambo", byName.Credential.StudentFullName)

	mismatch, err := svc.Verify(ctx, dto.VerificationRequest{
		RegistrationNumber: "REG-001",
		UniversityID:       inland.ID,
		GraduationYear:     2024,
	})
	require.NoError(t, err)
	require.False(t, mismatch.Found)
}

func TestDropdownsServedFromCache(t *testing.T) {
	db := newTestDB(t, "verify_cache")
	cache := newTestCache(t)
	svc := newVerificationService(t, db, cache)
	ctx := context.Background()

	university := seedUniversity(t, db, "Coastal University", "CU")
	seedProgram(t, db, university.ID, "BSc Computer Science")

	first, err := svc.Universities(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// A university added after the cache warmed stays invisible until the
	// entry expires.
	seedUniversity(t, db, "Inland University", "IU")
	second, err := svc.Universities(ctx)
	require.NoError(t, err)
	require.Len(t, second, 1)

	programs, err := svc.Programs(ctx, university.ID)
	require.NoError(t, err)
	require.Len(t, programs, 1)
	require.Equal(t, "BSc Computer Science", programs[0].Program)
}

func TestDropdownsWithoutCache(t *testing.T) {
	db := newTestDB(t, "verify_nocache")
	svc := newVerificationService(t, db, nil)
	ctx := context.Background()

	active := seedUniversity(t, db, "Coastal University", "CU")
	hidden := seedUniversity(t, db, "Inland University", "IU")
	require.NoError(t, db.Model(&models.University{}).Where("id = ?", hidden.ID).Update("is_active", false).Error)

	universities, err := svc.Universities(ctx)
	require.NoError(t, err)
	require.Len(t, universities, 1)
	require.Equal(t, "Coastal University", universities[0].Name)

	program := seedProgram(t, db, active.ID, "BSc Computer Science")
	seedGraduateRecord(t, db, active.ID, program.ID, "Amina Hassan", "CU/2020/0412", 2024)
	seedGraduateRecord(t, db, active.ID, program.ID, "Brian Odhiambo", "CU/2019/0100", 2022)

	years, err := svc.GraduationYears(ctx, active.ID)
	require.NoError(t, err)
	require.Equal(t, []int{2024, 2022}, years)
}

func TestVerificationPreviewDelegates(t *testing.T) {
	db := newTestDB(t, "verify_preview")
	svc := newVerificationService(t, db, nil)
	ctx := context.Background()

	university := seedUniversity(t, db, "Coastal University", "CU")
	program := seedProgram(t, db, university.ID, "BSc Computer Science")
	url := "https://cdn.example/graduate-record/cu/123_certificate_cert.pdf"
	record := seedGraduateRecord(t, db, university.ID, program.ID, "Amina Hassan", "CU/2020/0412", 2024)
	require.NoError(t, db.Model(&models.GraduateRecord{}).Where("id = ?", record.ID).Update("certificate_url", url).Error)

	preview, err := svc.Preview(ctx, university.ID, record.ID, "certificate")
	require.NoError(t, err)
	require.Contains(t, preview.URL, "?signed=1")

	_, err = svc.Preview(ctx, university.ID, record.ID, "transcript")
	require.ErrorIs(t, err, ErrAttachmentMissing)
}
