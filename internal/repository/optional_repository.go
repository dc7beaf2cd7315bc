package repository

import (
	"civilprep_backend/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OptionalRepository 选修科目章节进度
type OptionalRepository struct {
	DB *gorm.DB
}

func NewOptionalRepository(db *gorm.DB) *OptionalRepository {
	return &OptionalRepository{DB: db}
}

func (r *OptionalRepository) FindByUserID(ctx context.Context, userID uint) ([]model.OptionalSection, error) {
	var sections []model.OptionalSection
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("section_name").Find(&sections).Error
	return sections, err
}

func (r *OptionalRepository) FindByIDAndUserID(ctx context.Context, id, userID uint) (*model.OptionalSection, error) {
	var section model.OptionalSection
	err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&section).Error
	return &section, err
}

func (r *OptionalRepository) FindByName(ctx context.Context, userID uint, name string) (*model.OptionalSection, error) {
	var section model.OptionalSection
	err := r.DB.WithContext(ctx).Where("user_id = ? AND section_name = ?", userID, name).First(&section).Error
	return &section, err
}

// Upsert 以 (user_id, section_name) 为唯一键
func (r *OptionalRepository) Upsert(ctx context.Context, section *model.OptionalSection) error {
	now := time.Now()
	section.CreatedAt = now
	section.UpdatedAt = now
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "section_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_items", "completed_items", "updated_at"}),
	}).Create(section).Error
}

// CreateBatch 已存在的章节被忽略
func (r *OptionalRepository) CreateBatch(ctx context.Context, sections []model.OptionalSection) error {
	if len(sections) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&sections).Error
}

func (r *OptionalRepository) Save(ctx context.Context, section *model.OptionalSection) error {
	return r.DB.WithContext(ctx).Save(section).Error
}

func (r *OptionalRepository) Delete(ctx context.Context, id, userID uint) (int64, error) {
	res := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.OptionalSection{})
	return res.RowsAffected, res.Error
}
