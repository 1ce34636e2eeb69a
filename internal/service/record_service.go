package service

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/acadverify/acadverify-api/internal/dto"
	"github.com/acadverify/acadverify-api/internal/models"
	"github.com/acadverify/acadverify-api/internal/observability"
	"github.com/acadverify/acadverify-api/internal/repository"
	"github.com/acadverify/acadverify-api/internal/storage"
)

var (
	// ErrRecordNotFound indicates the graduate record does not exist within
	// the caller's university.
	ErrRecordNotFound = errors.New("graduate record not found")
	// ErrNoAttachments indicates the record carries no documents to download.
	ErrNoAttachments = errors.New("record has no attached documents")
	// ErrAttachmentMissing indicates the requested document kind is absent.
	ErrAttachmentMissing = errors.New("requested document is not attached to this record")
	// ErrFileTooLarge indicates an upload exceeded the configured limit.
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrFileTypeNotAllowed indicates the detected MIME type is not permitted.
	ErrFileTypeNotAllowed = errors.New("file type not allowed")
)

// signedPreviewTTL is the lifetime of generated document preview links.
const signedPreviewTTL = time.Hour

var allowedDocumentTypes = map[string]struct{}{
	"application/pdf": {},
	"image/png":       {},
	"image/jpeg":      {},
}

// RecordService manages graduate records and their document attachments for a
// university tenant.
type RecordService interface {
	Create(ctx context.Context, actor Actor, universityID string, req dto.RecordCreateRequest, certificate, transcript *multipart.FileHeader) (dto.RecordResponse, error)
	List(ctx context.Context, universityID string, req dto.RecordListRequest) (dto.RecordListResponse, error)
	Get(ctx context.Context, universityID, id string) (dto.RecordResponse, error)
	DownloadArchive(ctx context.Context, universityID, id string) (string, []byte, error)
	Delete(ctx context.Context, actor Actor, universityID, id string) (dto.RecordDeletionReport, error)
	PreviewURL(ctx context.Context, universityID, id, kind string) (dto.DocumentPreviewResponse, error)
}

type recordService struct {
	records      repository.RecordRepository
	programs     repository.ProgramRepository
	universities repository.UniversityRepository
	store        storage.Store
	audit        AuditService
	maxSize      int64
	logger       zerolog.Logger
}

// NewRecordService constructs the graduate record service.
func NewRecordService(
	records repository.RecordRepository,
	programs repository.ProgramRepository,
	universities repository.UniversityRepository,
	store storage.Store,
	audit AuditService,
	maxSizeMB int,
	logger zerolog.Logger,
) RecordService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &recordService{
		records:      records,
		programs:     programs,
		universities: universities,
		store:        store,
		audit:        audit,
		maxSize:      int64(maxSizeMB) * 1024 * 1024,
		logger:       logger.With().Str("component", "record_service").Logger(),
	}
}

// Create inserts a graduate record with optional certificate and transcript
// uploads. Uploads and the database insert form one compensation chain; a
// failure at any point removes every blob written so far.
func (s *recordService) Create(ctx context.Context, actor Actor, universityID string, req dto.RecordCreateRequest, certificate, transcript *multipart.FileHeader) (dto.RecordResponse, error) {
	program, err := s.programs.GetByID(ctx, universityID, req.ProgramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RecordResponse{}, ErrProgramNotFound
		}
		return dto.RecordResponse{}, err
	}

	folder := s.storageFolder(ctx, universityID)
	now := time.Now()

	var (
		certificateURL *string
		transcriptURL  *string
		record         models.GraduateRecord
	)

	chain := newSaga(s.logger)

	if certificate != nil {
		data, contentType, err := s.readUpload(certificate)
		if err != nil {
			return dto.RecordResponse{}, err
		}
		key := storage.BuildObjectKey(folder, storage.KindCertificate, certificate.Filename, now)
		chain.add("upload certificate",
			func(ctx context.Context) error {
				url, err := s.store.Upload(ctx, key, data, contentType)
				if err != nil {
					return err
				}
				certificateURL = &url
				return nil
			},
			func(ctx context.Context) error {
				return s.store.Remove(ctx, key)
			},
		)
	}

	if transcript != nil {
		data, contentType, err := s.readUpload(transcript)
		if err != nil {
			return dto.RecordResponse{}, err
		}
		key := storage.BuildObjectKey(folder, storage.KindTranscript, transcript.Filename, now)
		chain.add("upload transcript",
			func(ctx context.Context) error {
				url, err := s.store.Upload(ctx, key, data, contentType)
				if err != nil {
					return err
				}
				transcriptURL = &url
				return nil
			},
			func(ctx context.Context) error {
				return s.store.Remove(ctx, key)
			},
		)
	}

	chain.add("insert record",
		func(ctx context.Context) error {
			verifiedAt := time.Now()
			record = models.GraduateRecord{
				ID:                 uuid.NewString(),
				UniversityID:       universityID,
				ProgramID:          program.ID,
				StudentFullName:    req.StudentFullName,
				RegistrationNumber: req.RegistrationNumber,
				GraduationYear:     req.GraduationYear,
				CertificateURL:     certificateURL,
				TranscriptURL:      transcriptURL,
				IsVerified:         true,
				VerifiedBy:         actor.AccountID,
				VerifiedAt:         &verifiedAt,
				CreatedBy:          actor.AccountID,
			}
			return s.records.Create(ctx, &record)
		},
		nil,
	)

	if err := chain.execute(ctx); err != nil {
		observability.RecordUploadRollbacks().Inc()
		return dto.RecordResponse{}, err
	}

	s.audit.Record(ctx, AuditEvent{
		AdminAccountID: actor.AccountID,
		Action:         models.AuditActionCreateRecord,
		ResourceType:   "graduate_record",
		ResourceID:     record.ID,
		NewValues: map[string]interface{}{
			"student":             record.StudentFullName,
			"registration_number": record.RegistrationNumber,
			"graduation_year":     record.GraduationYear,
		},
		IPAddress: actor.IP,
		UserAgent: actor.UserAgent,
	})

	record.Program = &program
	return dto.NewRecordResponse(record), nil
}

func (s *recordService) List(ctx context.Context, universityID string, req dto.RecordListRequest) (dto.RecordListResponse, error) {
	records, total, err := s.records.List(ctx, repository.RecordFilter{
		UniversityID: universityID,
		Search:       req.Search,
		Page:         req.Page,
		PageSize:     req.PageSize,
	})
	if err != nil {
		return dto.RecordListResponse{}, err
	}

	items := make([]dto.RecordResponse, 0, len(records))
	for _, record := range records {
		items = append(items, dto.NewRecordResponse(record))
	}

	return dto.RecordListResponse{
		Items:      items,
		Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *recordService) Get(ctx context.Context, universityID, id string) (dto.RecordResponse, error) {
	record, err := s.records.GetScoped(ctx, universityID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RecordResponse{}, ErrRecordNotFound
		}
		return dto.RecordResponse{}, err
	}
	return dto.NewRecordResponse(record), nil
}

// DownloadArchive bundles the record's attached documents into a ZIP named
// after the student and registration number. Entries are named
// certificate.{ext} and transcript.{ext} regardless of the original filenames.
func (s *recordService) DownloadArchive(ctx context.Context, universityID, id string) (string, []byte, error) {
	record, err := s.records.GetScoped(ctx, universityID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrRecordNotFound
		}
		return "", nil, err
	}

	if record.CertificateURL == nil && record.TranscriptURL == nil {
		return "", nil, ErrNoAttachments
	}

	buffer := &bytes.Buffer{}
	archive := zip.NewWriter(buffer)

	// A blob that fails to download is skipped so the other document still
	// ships; the archive is empty only when every fetch failed.
	bundled := 0
	if record.CertificateURL != nil {
		if err := s.addArchiveEntry(ctx, archive, *record.CertificateURL, storage.KindCertificate); err != nil {
			s.logger.Warn().Err(err).Str("record_id", record.ID).Str("kind", storage.KindCertificate).Msg("skipping unreadable document")
		} else {
			bundled++
		}
	}
	if record.TranscriptURL != nil {
		if err := s.addArchiveEntry(ctx, archive, *record.TranscriptURL, storage.KindTranscript); err != nil {
			s.logger.Warn().Err(err).Str("record_id", record.ID).Str("kind", storage.KindTranscript).Msg("skipping unreadable document")
		} else {
			bundled++
		}
	}

	if err := archive.Close(); err != nil {
		return "", nil, err
	}
	if bundled == 0 {
		return "", nil, ErrNoAttachments
	}

	name := fmt.Sprintf("%s_%s_records.zip",
		storage.SanitizeFolder(record.StudentFullName),
		storage.SanitizeFolder(record.RegistrationNumber))
	return name, buffer.Bytes(), nil
}

func (s *recordService) addArchiveEntry(ctx context.Context, archive *zip.Writer, url, kind string) error {
	key := storage.ExtractKey(url, s.store.Bucket())
	data, err := s.store.Download(ctx, key)
	if err != nil {
		return err
	}

	entry, err := archive.Create(fmt.Sprintf("%s.%s", kind, storage.FileExtension(key)))
	if err != nil {
		return err
	}
	_, err = entry.Write(data)
	return err
}

// Delete removes the record row and its blobs. Blob removal failures leave
// orphans in storage and are reported; the row deletion always proceeds so
// re-running the operation stays idempotent.
func (s *recordService) Delete(ctx context.Context, actor Actor, universityID, id string) (dto.RecordDeletionReport, error) {
	record, err := s.records.GetScoped(ctx, universityID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RecordDeletionReport{}, ErrRecordNotFound
		}
		return dto.RecordDeletionReport{}, err
	}

	report := dto.RecordDeletionReport{}

	if record.CertificateURL != nil {
		report.CertificateDeleted = s.removeBlob(ctx, *record.CertificateURL, &report)
	}
	if record.TranscriptURL != nil {
		report.TranscriptDeleted = s.removeBlob(ctx, *record.TranscriptURL, &report)
	}

	if err := s.records.DeleteScoped(ctx, universityID, id); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("record deletion failed: %v", err))
		return report, err
	}
	report.RecordDeleted = true

	s.audit.Record(ctx, AuditEvent{
		AdminAccountID: actor.AccountID,
		Action:         models.AuditActionDeleteRecord,
		ResourceType:   "graduate_record",
		ResourceID:     id,
		OldValues: map[string]string{
			"student":             record.StudentFullName,
			"registration_number": record.RegistrationNumber,
		},
		IPAddress: actor.IP,
		UserAgent: actor.UserAgent,
	})

	return report, nil
}

func (s *recordService) removeBlob(ctx context.Context, url string, report *dto.RecordDeletionReport) bool {
	key := storage.ExtractKey(url, s.store.Bucket())
	if err := s.store.Remove(ctx, key); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			// Already gone, nothing to orphan.
			return true
		}
		report.Errors = append(report.Errors, fmt.Sprintf("blob removal failed for %s: %v", key, err))
		s.logger.Warn().Err(err).Str("key", key).Msg("blob removal failed")
		return false
	}
	return true
}

// PreviewURL returns a viewing link for one attached document: a signed URL
// when the store can mint one, the public URL otherwise, and the stored URL as
// the final fallback.
func (s *recordService) PreviewURL(ctx context.Context, universityID, id, kind string) (dto.DocumentPreviewResponse, error) {
	record, err := s.records.GetScoped(ctx, universityID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DocumentPreviewResponse{}, ErrRecordNotFound
		}
		return dto.DocumentPreviewResponse{}, err
	}

	var stored *string
	switch kind {
	case storage.KindCertificate:
		stored = record.CertificateURL
	case storage.KindTranscript:
		stored = record.TranscriptURL
	default:
		return dto.DocumentPreviewResponse{}, ErrAttachmentMissing
	}
	if stored == nil {
		return dto.DocumentPreviewResponse{}, ErrAttachmentMissing
	}

	key := storage.ExtractKey(*stored, s.store.Bucket())

	signed, err := s.store.SignedURL(key, signedPreviewTTL)
	if err == nil {
		expires := time.Now().Add(signedPreviewTTL)
		return dto.DocumentPreviewResponse{URL: signed, Kind: kind, ExpiresAt: &expires}, nil
	}
	s.logger.Debug().Err(err).Str("key", key).Msg("signed url generation failed")

	if public := s.store.PublicURL(key); public != "" {
		return dto.DocumentPreviewResponse{URL: public, Kind: kind}, nil
	}

	return dto.DocumentPreviewResponse{URL: *stored, Kind: kind}, nil
}

func (s *recordService) readUpload(file *multipart.FileHeader) ([]byte, string, error) {
	if file.Size > s.maxSize {
		return nil, "", ErrFileTooLarge
	}

	source, err := file.Open()
	if err != nil {
		return nil, "", err
	}
	defer source.Close()

	data := make([]byte, 0, file.Size)
	buffer := bytes.NewBuffer(data)
	if _, err := buffer.ReadFrom(source); err != nil {
		return nil, "", err
	}
	content := buffer.Bytes()

	detected := mimetype.Detect(content)
	if _, ok := allowedDocumentTypes[detected.String()]; !ok {
		return nil, "", ErrFileTypeNotAllowed
	}

	return content, detected.String(), nil
}

// storageFolder derives the per-tenant object folder from the university
// short name, falling back to the university id when the name sanitizes to
// nothing.
func (s *recordService) storageFolder(ctx context.Context, universityID string) string {
	university, err := s.universities.GetByID(ctx, universityID)
	if err != nil {
		return universityID
	}

	name := university.ShortName
	if name == "" {
		name = university.Name
	}
	if folder := storage.SanitizeFolder(name); folder != "" {
		return folder
	}
	return universityID
}
