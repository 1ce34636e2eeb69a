package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/acadverify/acadverify-api/internal/models"
)

// RecordFilter narrows tenant-scoped graduate-record listings.
type RecordFilter struct {
	UniversityID string
	Search       string
	Page         int
	PageSize     int
}

// MatchFilter drives the public verification query. RegistrationNumber is
// the authoritative key and must be set; the rest are optional narrowing
// filters.
type MatchFilter struct {
	RegistrationNumber string
	StudentName        string
	UniversityID       string
	ProgramID          string
	GraduationYear     int
}

// RecordRepository provides access to graduate records.
type RecordRepository interface {
	Create(ctx context.Context, record *models.GraduateRecord) error
	GetScoped(ctx context.Context, universityID, id string) (models.GraduateRecord, error)
	List(ctx context.Context, filter RecordFilter) ([]models.GraduateRecord, int64, error)
	DeleteScoped(ctx context.Context, universityID, id string) error
	FindMatches(ctx context.Context, filter MatchFilter) ([]models.GraduateRecord, error)
	GraduationYears(ctx context.Context, universityID string) ([]int, error)
	CountForUniversity(ctx context.Context, universityID string) (int64, error)
}

type recordRepository struct {
	db *gorm.DB
}

// NewRecordRepository constructs a graduate-record repository.
func NewRecordRepository(db *gorm.DB) RecordRepository {
	return &recordRepository{db: db}
}

func (r *recordRepository) Create(ctx context.Context, record *models.GraduateRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *recordRepository) GetScoped(ctx context.Context, universityID, id string) (models.GraduateRecord, error) {
	var record models.GraduateRecord
	err := r.db.WithContext(ctx).
		Preload("Program").
		First(&record, "id = ? AND university_id = ?", id, universityID).Error
	if err != nil {
		return models.GraduateRecord{}, err
	}
	return record, nil
}

func (r *recordRepository) List(ctx context.Context, filter RecordFilter) ([]models.GraduateRecord, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.GraduateRecord{}).
		Where("university_id = ?", filter.UniversityID)

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(student_full_name) LIKE ? OR LOWER(registration_number) LIKE ?",
			pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}

	var records []models.GraduateRecord
	err := query.Preload("Program").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *recordRepository) DeleteScoped(ctx context.Context, universityID, id string) error {
	result := r.db.WithContext(ctx).
		Delete(&models.GraduateRecord{}, "id = ? AND university_id = ?", id, universityID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindMatches runs the verification query. The registration number is matched
// by exact equality; inner joins on university and program drop records whose
// tenant or program no longer resolve.
func (r *recordRepository) FindMatches(ctx context.Context, filter MatchFilter) ([]models.GraduateRecord, error) {
	query := r.db.WithContext(ctx).Model(&models.GraduateRecord{}).
		InnerJoins("University").
		InnerJoins("Program").
		Where("graduate_records.registration_number = ?", strings.TrimSpace(filter.RegistrationNumber))

	if name := strings.TrimSpace(filter.StudentName); name != "" {
		query = query.Where("LOWER(student_full_name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if filter.UniversityID != "" {
		query = query.Where("graduate_records.university_id = ?", filter.UniversityID)
	}
	if filter.ProgramID != "" {
		query = query.Where("graduate_records.program_id = ?", filter.ProgramID)
	}
	if filter.GraduationYear != 0 {
		query = query.Where("graduation_year = ?", filter.GraduationYear)
	}

	var records []models.GraduateRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *recordRepository) GraduationYears(ctx context.Context, universityID string) ([]int, error) {
	var years []int
	err := r.db.WithContext(ctx).Model(&models.GraduateRecord{}).
		Where("university_id = ?", universityID).
		Distinct("graduation_year").
		Order("graduation_year DESC").
		Pluck("graduation_year", &years).Error
	return years, err
}

func (r *recordRepository) CountForUniversity(ctx context.Context, universityID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.GraduateRecord{}).
		Where("university_id = ?", universityID).Count(&count).Error
	return count, err
}
