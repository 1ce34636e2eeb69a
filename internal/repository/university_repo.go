package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/acadverify/acadverify-api/internal/models"
)

// UniversityFilter narrows university listings on the platform-admin surface.
type UniversityFilter struct {
	Search   string
	Status   string // "active" | "inactive" | ""
	Page     int
	PageSize int
}

// UniversityRepository provides access to university tenants.
type UniversityRepository interface {
	Create(ctx context.Context, university *models.University) error
	GetByID(ctx context.Context, id string) (models.University, error)
	GetByEmail(ctx context.Context, email string) (models.University, error)
	List(ctx context.Context, filter UniversityFilter) ([]models.University, int64, error)
	ListActive(ctx context.Context) ([]models.University, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (models.University, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	CountActive(ctx context.Context) (int64, error)
}

type universityRepository struct {
	db *gorm.DB
}

// NewUniversityRepository constructs a university repository.
func NewUniversityRepository(db *gorm.DB) UniversityRepository {
	return &universityRepository{db: db}
}

func (r *universityRepository) Create(ctx context.Context, university *models.University) error {
	return r.db.WithContext(ctx).Create(university).Error
}

func (r *universityRepository) GetByID(ctx context.Context, id string) (models.University, error) {
	var university models.University
	if err := r.db.WithContext(ctx).First(&university, "id = ?", id).Error; err != nil {
		return models.University{}, err
	}
	return university, nil
}

func (r *universityRepository) GetByEmail(ctx context.Context, email string) (models.University, error) {
	var university models.University
	err := r.db.WithContext(ctx).
		First(&university, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		return models.University{}, err
	}
	return university, nil
}

func (r *universityRepository) List(ctx context.Context, filter UniversityFilter) ([]models.University, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.University{})

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(country) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	switch filter.Status {
	case "active":
		query = query.Where("is_active = ?", true)
	case "inactive":
		query = query.Where("is_active = ?", false)
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
		pageSize = 20
	}

	var universities []models.University
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&universities).Error
	if err != nil {
		return nil, 0, err
	}

	return universities, total, nil
}

func (r *universityRepository) ListActive(ctx context.Context) ([]models.University, error) {
	var universities []models.University
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&universities).Error
	return universities, err
}

func (r *universityRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (models.University, error) {
	result := r.db.WithContext(ctx).Model(&models.University{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return models.University{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.University{}, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *universityRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.University{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *universityRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.University{}).Count(&count).Error
	return count, err
}

func (r *universityRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.University{}).
		Where("is_active = ?", true).Count(&count).Error
	return count, err
}
