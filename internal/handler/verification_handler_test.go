package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/acadverify/acadverify-api/internal/dto"
	"github.com/acadverify/acadverify-api/internal/models"
	"github.com/acadverify/acadverify-api/internal/repository"
	"github.com/acadverify/acadverify-api/internal/service"
	"github.com/acadverify/acadverify-api/internal/storage"
)

// stubStore satisfies storage.Store for wiring; the public endpoints under
// test never touch object storage.
type stubStore struct{}

func (stubStore) Upload(_ context.Context, key string, _ []byte, _ string) (string, error) {
	return "https://cdn.example/graduate-record/" + key, nil
}
func (stubStore) Download(context.Context, string) ([]byte, error) { return nil, storage.ErrObjectNotFound }
func (stubStore) Remove(context.Context, string) error             { return nil }
func (stubStore) PublicURL(key string) string                      { return "https://cdn.example/graduate-record/" + key }
func (stubStore) SignedURL(key string, _ time.Duration) (string, error) {
	return "https://cdn.example/graduate-record/" + key + "?signed=1", nil
}
func (stubStore) Bucket() string { return "graduate-record" }

func newVerificationApp(t *testing.T, name string) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.University{},
		&models.AcademicProgram{},
		&models.GraduateRecord{},
		&models.AuditLogEntry{},
	))

	records := repository.NewRecordRepository(db)
	universities := repository.NewUniversityRepository(db)
	programs := repository.NewProgramRepository(db)
	audit := service.NewAuditService(repository.NewAuditLogRepository(db), 365, zerolog.Nop())
	documents := service.NewRecordService(records, programs, universities, stubStore{}, audit, 10, zerolog.Nop())
	verification := service.NewVerificationService(records, universities, programs, documents, nil, time.Minute, zerolog.Nop())

	app := fiber.New()
	group := app.Group("/api/v1/verification")
	NewVerificationHandler(verification, zerolog.Nop()).Register(group)
	return app, db
}

func seedVerifiableRecord(t *testing.T, db *gorm.DB) (models.University, models.GraduateRecord) {
	t.Helper()

	university := models.University{
		ID:       uuid.NewString(),
		Name:     "Coastal University",
		Email:    "registrar@cu.example",
		Country:  "Kenya",
		City:     "Mombasa",
		IsActive: true,
	}
	require.NoError(t, db.Create(&university).Error)

	program := models.AcademicProgram{
		ID:           uuid.NewString(),
		UniversityID: university.ID,
		Program:      "BSc Computer Science",
		IsActive:     true,
	}
	require.NoError(t, db.Create(&program).Error)

	verifiedAt := time.Now()
	url := "https://cdn.example/graduate-record/cu/123_certificate_cert.pdf"
	record := models.GraduateRecord{
		ID:                 uuid.NewString(),
		UniversityID:       university.ID,
		ProgramID:          program.ID,
		StudentFullName:    "Amina Hassan",
		RegistrationNumber: "CU/2020/0412",
		GraduationYear:     2024,
		CertificateURL:     &url,
		IsVerified:         true,
		VerifiedBy:         uuid.NewString(),
		VerifiedAt:         &verifiedAt,
	}
	require.NoError(t, db.Create(&record).Error)
	return university, record
}

func postVerify(t *testing.T, app *fiber.App, payload dto.VerificationRequest) (*http.Response, dto.VerificationResponse) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/verification/verify", bytes.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	res, err := app.Test(req, -1)
	require.NoError(t, err)

	var envelope struct {
		Success bool                     `json:"success"`
		Data    dto.VerificationResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&envelope))
	return res, envelope.Data
}

func TestVerifyEndpointFound(t *testing.T) {
	app, db := newVerificationApp(t, "handler_verify_found")
	_, record := seedVerifiableRecord(t, db)

	res, result := postVerify(t, app, dto.VerificationRequest{RegistrationNumber: record.RegistrationNumber})
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	require.True(t, result.Found)
	require.NotNil(t, result.Credential)
	require.Equal(t, "Amina Hassan", result.Credential.StudentFullName)
	require.Equal(t, "Coastal University", result.Credential.University.Name)
	require.Equal(t, "Verified", result.Credential.Status)
	require.NotNil(t, result.Certificate)
	require.True(t, result.Certificate.Available)
	require.NotEmpty(t, result.Certificate.URL)
	require.NotNil(t, result.Transcript)
	require.False(t, result.Transcript.Available)
	require.Equal(t, "Transcript not uploaded", result.Transcript.Message)
}

func TestVerifyEndpointCertificateScope(t *testing.T) {
	app, db := newVerificationApp(t, "handler_verify_scope")
	_, record := seedVerifiableRecord(t, db)

	res, result := postVerify(t, app, dto.VerificationRequest{
		RegistrationNumber: record.RegistrationNumber,
		VerificationType:   dto.VerificationTypeCertificate,
	})
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	require.True(t, result.Found)
	require.NotNil(t, result.Certificate)
	require.Nil(t, result.Transcript)
}

func TestVerifyEndpointNotFound(t *testing.T) {
	app, db := newVerificationApp(t, "handler_verify_missing")
	seedVerifiableRecord(t, db)

	res, result := postVerify(t, app, dto.VerificationRequest{RegistrationNumber: "CU/1999/0001"})
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	require.False(t, result.Found)
	require.Nil(t, result.Credential)
	require.Equal(t, "No matching credentials found", result.Message)
}

func TestVerifyEndpointRejectsEmptyRegistration(t *testing.T) {
	app, _ := newVerificationApp(t, "handler_verify_empty")

	body := []byte(`{"registration_number":""}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/verification/verify", bytes.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	res, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, res.StatusCode)
}

func TestUniversitiesEndpoint(t *testing.T) {
	app, db := newVerificationApp(t, "handler_universities")
	seedVerifiableRecord(t, db)

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/verification/universities", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	var envelope struct {
		Data []dto.UniversityOption `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&envelope))
	require.Len(t, envelope.Data, 1)
	require.Equal(t, "Coastal University", envelope.Data[0].Name)
}

func TestPreviewEndpoint(t *testing.T) {
	app, db := newVerificationApp(t, "handler_preview")
	university, record := seedVerifiableRecord(t, db)

	path := fmt.Sprintf("/api/v1/verification/records/%s/%s/preview/certificate", university.ID, record.ID)
	res, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	var envelope struct {
		Data dto.DocumentPreviewResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&envelope))
	require.Contains(t, envelope.Data.URL, "?signed=1")

	missing := fmt.Sprintf("/api/v1/verification/records/%s/%s/preview/transcript", university.ID, record.ID)
	res, err = app.Test(httptest.NewRequest(http.MethodGet, missing, nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, res.StatusCode)
}
