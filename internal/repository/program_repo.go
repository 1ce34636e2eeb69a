package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/acadverify/acadverify-api/internal/models"
)

// ProgramRepository provides tenant-scoped access to academic programs. Every
// read and mutation is filtered by university id; rows outside the caller's
// tenant behave as if they do not exist.
type ProgramRepository interface {
	Create(ctx context.Context, program *models.AcademicProgram) error
	GetByID(ctx context.Context, universityID, id string) (models.AcademicProgram, error)
	List(ctx context.Context, universityID string, page, pageSize int) ([]models.AcademicProgram, int64, error)
	ListActive(ctx context.Context, universityID string) ([]models.AcademicProgram, error)
	Update(ctx context.Context, universityID, id string, updates map[string]interface{}) (models.AcademicProgram, error)
	Delete(ctx context.Context, universityID, id string) error
	ReplaceAll(ctx context.Context, universityID string, programs []models.AcademicProgram) error
}

type programRepository struct {
	db *gorm.DB
}

// NewProgramRepository constructs a program repository.
func NewProgramRepository(db *gorm.DB) ProgramRepository {
	return &programRepository{db: db}
}

func (r *programRepository) Create(ctx context.Context, program *models.AcademicProgram) error {
	return r.db.WithContext(ctx).Create(program).Error
}

func (r *programRepository) GetByID(ctx context.Context, universityID, id string) (models.AcademicProgram, error) {
	var program models.AcademicProgram
	err := r.db.WithContext(ctx).
		First(&program, "id = ? AND university_id = ?", id, universityID).Error
	if err != nil {
		return models.AcademicProgram{}, err
	}
	return program, nil
}

func (r *programRepository) List(ctx context.Context, universityID string, page, pageSize int) ([]models.AcademicProgram, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AcademicProgram{}).
		Where("university_id = ?", universityID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	var programs []models.AcademicProgram
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&programs).Error
	if err != nil {
		return nil, 0, err
	}

	return programs, total, nil
}

func (r *programRepository) ListActive(ctx context.Context, universityID string) ([]models.AcademicProgram, error) {
	var programs []models.AcademicProgram
	err := r.db.WithContext(ctx).
		Where("university_id = ? AND is_active = ?", universityID, true).
		Order("program ASC").
		Find(&programs).Error
	return programs, err
}

func (r *programRepository) Update(ctx context.Context, universityID, id string, updates map[string]interface{}) (models.AcademicProgram, error) {
	result := r.db.WithContext(ctx).Model(&models.AcademicProgram{}).
		Where("id = ? AND university_id = ?", id, universityID).
		Updates(updates)
	if result.Error != nil {
		return models.AcademicProgram{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.AcademicProgram{}, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, universityID, id)
}

func (r *programRepository) Delete(ctx context.Context, universityID, id string) error {
	result := r.db.WithContext(ctx).
		Delete(&models.AcademicProgram{}, "id = ? AND university_id = ?", id, universityID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReplaceAll swaps the university's whole program set inside one transaction,
// matching the bulk-replace semantics of a settings update.
func (r *programRepository) ReplaceAll(ctx context.Context, universityID string, programs []models.AcademicProgram) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.AcademicProgram{}, "university_id = ?", universityID).Error; err != nil {
			return err
		}
		if len(programs) == 0 {
			return nil
		}
		return tx.Create(&programs).Error
	})
}
