package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/acadverify/acadverify-api/internal/dto"
	"github.com/acadverify/acadverify-api/internal/observability"
	"github.com/acadverify/acadverify-api/internal/repository"
)

// ErrRegistrationRequired indicates the lookup was submitted without its
// mandatory key.
var ErrRegistrationRequired = errors.New("registration number is required")

const (
	universitiesCacheKey = "verification:universities"
	programsCacheKey     = "verification:programs:%s"
	yearsCacheKey        = "verification:years:%s"
)

// VerificationService resolves anonymous credential lookups and serves the
// dropdown data behind the public verification form.
type VerificationService interface {
	Verify(ctx context.Context, req dto.VerificationRequest) (dto.VerificationResponse, error)
	Universities(ctx context.Context) ([]dto.UniversityOption, error)
	Programs(ctx context.Context, universityID string) ([]dto.ProgramOption, error)
	GraduationYears(ctx context.Context, universityID string) ([]int, error)
	Preview(ctx context.Context, universityID, recordID, kind string) (dto.DocumentPreviewResponse, error)
}

type verificationService struct {
	records      repository.RecordRepository
	universities repository.UniversityRepository
	programs     repository.ProgramRepository
	documents    RecordService
	cache        *redis.Client
	cacheTTL     time.Duration
	logger       zerolog.Logger
}

// NewVerificationService constructs the public verification resolver. The
// redis client may be nil, in which case dropdowns are served straight from
// the database.
func NewVerificationService(
	records repository.RecordRepository,
	universities repository.UniversityRepository,
	programs repository.ProgramRepository,
	documents RecordService,
	cache *redis.Client,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) VerificationService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &verificationService{
		records:      records,
		universities: universities,
		programs:     programs,
		documents:    documents,
		cache:        cache,
		cacheTTL:     cacheTTL,
		logger:       logger.With().Str("component", "verification_service").Logger(),
	}
}

// Verify matches the registration number exactly, byte for byte after
// trimming surrounding whitespace. A lookup that matches nothing is a normal
// outcome, not an error.
func (s *verificationService) Verify(ctx context.Context, req dto.VerificationRequest) (dto.VerificationResponse, error) {
	registration := strings.TrimSpace(req.RegistrationNumber)
	if registration == "" {
		return dto.VerificationResponse{}, ErrRegistrationRequired
	}

	matches, err := s.records.FindMatches(ctx, repository.MatchFilter{
		RegistrationNumber: registration,
		StudentName:        strings.TrimSpace(req.StudentName),
		UniversityID:       req.UniversityID,
		ProgramID:          req.ProgramID,
		GraduationYear:     req.GraduationYear,
	})
	if err != nil {
		return dto.VerificationResponse{}, err
	}

	if len(matches) == 0 {
		observability.VerificationOutcomes().WithLabelValues("not_found").Inc()
		return dto.VerificationResponse{Found: false, Message: "No matching credentials found"}, nil
	}

	// Multiple universities may share a numbering format; the first match
	// under the caller's filters is returned.
	record := matches[0]
	credential := dto.NewVerifiedCredential(record)
	observability.VerificationOutcomes().WithLabelValues("found").Inc()

	response := dto.VerificationResponse{
		Found:      true,
		Credential: &credential,
	}

	scope := req.VerificationType
	if scope == "" {
		scope = dto.VerificationTypeBoth
	}
	if scope != dto.VerificationTypeTranscript {
		response.Certificate = dto.NewAttachmentInfo(record, record.CertificateURL, "Certificate not uploaded")
	}
	if scope != dto.VerificationTypeCertificate {
		response.Transcript = dto.NewAttachmentInfo(record, record.TranscriptURL, "Transcript not uploaded")
	}
	return response, nil
}

func (s *verificationService) Universities(ctx context.Context) ([]dto.UniversityOption, error) {
	var options []dto.UniversityOption
	if s.cacheGet(ctx, universitiesCacheKey, &options) {
		return options, nil
	}

	universities, err := s.universities.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	options = dto.NewUniversityOptions(universities)
	s.cacheSet(ctx, universitiesCacheKey, options)
	return options, nil
}

func (s *verificationService) Programs(ctx context.Context, universityID string) ([]dto.ProgramOption, error) {
	key := fmt.Sprintf(programsCacheKey, universityID)

	var options []dto.ProgramOption
	if s.cacheGet(ctx, key, &options) {
		return options, nil
	}

	programs, err := s.programs.ListActive(ctx, universityID)
	if err != nil {
		return nil, err
	}

	options = dto.NewProgramOptions(programs)
	s.cacheSet(ctx, key, options)
	return options, nil
}

func (s *verificationService) GraduationYears(ctx context.Context, universityID string) ([]int, error) {
	key := fmt.Sprintf(yearsCacheKey, universityID)

	var years []int
	if s.cacheGet(ctx, key, &years) {
		return years, nil
	}

	years, err := s.records.GraduationYears(ctx, universityID)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, key, years)
	return years, nil
}

// Preview exposes a short-lived document link for a verified credential. The
// caller supplies the identifiers returned by a successful lookup.
func (s *verificationService) Preview(ctx context.Context, universityID, recordID, kind string) (dto.DocumentPreviewResponse, error) {
	return s.documents.PreviewURL(ctx, universityID, recordID, kind)
}

func (s *verificationService) cacheGet(ctx context.Context, key string, out interface{}) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Debug().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false
	}
	return true
}

func (s *verificationService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Debug().Err(err).Str("key", key).Msg("cache write failed")
	}
}
