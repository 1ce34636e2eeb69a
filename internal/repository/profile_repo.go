package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/acadverify/acadverify-api/internal/models"
)

// UniversityAdminFilter narrows university-admin listings.
type UniversityAdminFilter struct {
	UniversityID string
	Search       string
	Page         int
	PageSize     int
}

// ProfileRepository provides access to the role-specific profile tables. One
// profile row exists per (account, role); resolving and deleting by account id
// is the common access path.
type ProfileRepository interface {
	CreatePlatformAdmin(ctx context.Context, profile *models.PlatformAdminProfile) error
	GetPlatformAdminByAccount(ctx context.Context, accountID string) (models.PlatformAdminProfile, error)

	CreateUniversityAdmin(ctx context.Context, profile *models.UniversityAdminProfile) error
	GetUniversityAdminByID(ctx context.Context, id string) (models.UniversityAdminProfile, error)
	GetUniversityAdminByAccount(ctx context.Context, accountID string) (models.UniversityAdminProfile, error)
	GetUniversityAdminByEmail(ctx context.Context, email string) (models.UniversityAdminProfile, error)
	ListUniversityAdmins(ctx context.Context, filter UniversityAdminFilter) ([]models.UniversityAdminProfile, int64, error)
	UpdateUniversityAdmin(ctx context.Context, id string, updates map[string]interface{}) (models.UniversityAdminProfile, error)
	CountAdminsForUniversity(ctx context.Context, universityID string) (int64, error)

	GetStudentByAccount(ctx context.Context, accountID string) (models.StudentProfile, error)
	GetEmployerByAccount(ctx context.Context, accountID string) (models.EmployerProfile, error)

	DeleteByAccount(ctx context.Context, role, accountID string) error
	TouchLastLogin(ctx context.Context, role, accountID string) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository constructs a profile repository.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) CreatePlatformAdmin(ctx context.Context, profile *models.PlatformAdminProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *profileRepository) GetPlatformAdminByAccount(ctx context.Context, accountID string) (models.PlatformAdminProfile, error) {
	var profile models.PlatformAdminProfile
	if err := r.db.WithContext(ctx).First(&profile, "account_id = ?", accountID).Error; err != nil {
		return models.PlatformAdminProfile{}, err
	}
	return profile, nil
}

func (r *profileRepository) CreateUniversityAdmin(ctx context.Context, profile *models.UniversityAdminProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *profileRepository) GetUniversityAdminByID(ctx context.Context, id string) (models.UniversityAdminProfile, error) {
	var profile models.UniversityAdminProfile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return models.UniversityAdminProfile{}, err
	}
	return profile, nil
}

func (r *profileRepository) GetUniversityAdminByAccount(ctx context.Context, accountID string) (models.UniversityAdminProfile, error) {
	var profile models.UniversityAdminProfile
	if err := r.db.WithContext(ctx).First(&profile, "account_id = ?", accountID).Error; err != nil {
		return models.UniversityAdminProfile{}, err
	}
	return profile, nil
}

func (r *profileRepository) GetUniversityAdminByEmail(ctx context.Context, email string) (models.UniversityAdminProfile, error) {
	var profile models.UniversityAdminProfile
	err := r.db.WithContext(ctx).
		First(&profile, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		return models.UniversityAdminProfile{}, err
	}
	return profile, nil
}

func (r *profileRepository) ListUniversityAdmins(ctx context.Context, filter UniversityAdminFilter) ([]models.UniversityAdminProfile, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.UniversityAdminProfile{})

	if filter.UniversityID != "" {
		query = query.Where("university_id = ?", filter.UniversityID)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
			pattern, pattern, pattern,
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
		pageSize = 20
	}

	var profiles []models.UniversityAdminProfile
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&profiles).Error
	if err != nil {
		return nil, 0, err
	}

	return profiles, total, nil
}

func (r *profileRepository) UpdateUniversityAdmin(ctx context.Context, id string, updates map[string]interface{}) (models.UniversityAdminProfile, error) {
	result := r.db.WithContext(ctx).Model(&models.UniversityAdminProfile{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return models.UniversityAdminProfile{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.UniversityAdminProfile{}, gorm.ErrRecordNotFound
	}
	return r.GetUniversityAdminByID(ctx, id)
}

func (r *profileRepository) CountAdminsForUniversity(ctx context.Context, universityID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UniversityAdminProfile{}).
		Where("university_id = ?", universityID).
		Count(&count).Error
	return count, err
}

func (r *profileRepository) GetStudentByAccount(ctx context.Context, accountID string) (models.StudentProfile, error) {
	var profile models.StudentProfile
	if err := r.db.WithContext(ctx).First(&profile, "account_id = ?", accountID).Error; err != nil {
		return models.StudentProfile{}, err
	}
	return profile, nil
}

func (r *profileRepository) GetEmployerByAccount(ctx context.Context, accountID string) (models.EmployerProfile, error) {
	var profile models.EmployerProfile
	if err := r.db.WithContext(ctx).First(&profile, "account_id = ?", accountID).Error; err != nil {
		return models.EmployerProfile{}, err
	}
	return profile, nil
}

func (r *profileRepository) DeleteByAccount(ctx context.Context, role, accountID string) error {
	var model interface{}
	switch role {
	case models.RolePlatformAdmin:
		model = &models.PlatformAdminProfile{}
	case models.RoleUniversityAdmin:
		model = &models.UniversityAdminProfile{}
	case models.RoleStudent:
		model = &models.StudentProfile{}
	case models.RoleEmployer:
		model = &models.EmployerProfile{}
	default:
		return nil
	}
	return r.db.WithContext(ctx).Delete(model, "account_id = ?", accountID).Error
}

func (r *profileRepository) TouchLastLogin(ctx context.Context, role, accountID string) error {
	now := time.Now()
	switch role {
	case models.RolePlatformAdmin:
		return r.db.WithContext(ctx).Model(&models.PlatformAdminProfile{}).
			Where("account_id = ?", accountID).Update("last_login", now).Error
	case models.RoleUniversityAdmin:
		return r.db.WithContext(ctx).Model(&models.UniversityAdminProfile{}).
			Where("account_id = ?", accountID).Update("last_login", now).Error
	default:
		return nil
	}
}
