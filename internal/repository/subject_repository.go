package repository

import (
	"civilprep_backend/internal/model"
	"context"

	"gorm.io/gorm"
)

// SubjectRepository 科目进度的数据访问
type SubjectRepository struct {
	DB *gorm.DB
}

func NewSubjectRepository(db *gorm.DB) *SubjectRepository {
	return &SubjectRepository{DB: db}
}

func (r *SubjectRepository) Create(ctx context.Context, subject *model.SubjectProgress) error {
	return r.DB.WithContext(ctx).Create(subject).Error
}

func (r *SubjectRepository) Save(ctx context.Context, subject *model.SubjectProgress) error {
	return r.DB.WithContext(ctx).Save(subject).Error
}

func (r *SubjectRepository) FindByUserID(ctx context.Context, userID uint) ([]model.SubjectProgress, error) {
	var subjects []model.SubjectProgress
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("category, subject_name").
		Find(&subjects).Error
	return subjects, err
}

func (r *SubjectRepository) FindByIDAndUserID(ctx context.Context, id, userID uint) (*model.SubjectProgress, error) {
	var subject model.SubjectProgress
	err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&subject).Error
	return &subject, err
}

func (r *SubjectRepository) FindByName(ctx context.Context, userID uint, name string) (*model.SubjectProgress, error) {
	var subject model.SubjectProgress
	err := r.DB.WithContext(ctx).Where("user_id = ? AND subject_name = ?", userID, name).First(&subject).Error
	return &subject, err
}

// Delete 返回受影响行数
func (r *SubjectRepository) Delete(ctx context.Context, id, userID uint) (int64, error) {
	res := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.SubjectProgress{})
	return res.RowsAffected, res.Error
}
