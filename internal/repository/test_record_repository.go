package repository

import (
	"civilprep_backend/internal/model"
	"context"

	"gorm.io/gorm"
)

type TestRecordRepository struct {
	DB *gorm.DB
}

func NewTestRecordRepository(db *gorm.DB) *TestRecordRepository {
	return &TestRecordRepository{DB: db}
}

func (r *TestRecordRepository) Create(ctx context.Context, record *model.TestRecord) error {
	return r.DB.WithContext(ctx).Create(record).Error
}

func (r *TestRecordRepository) Save(ctx context.Context, record *model.TestRecord) error {
	return r.DB.WithContext(ctx).Save(record).Error
}

// FindByUserID 按考试日期升序；testType 为空时不过滤
func (r *TestRecordRepository) FindByUserID(ctx context.Context, userID uint, testType model.TestType) ([]model.TestRecord, error) {
	var records []model.TestRecord
	query := r.DB.WithContext(ctx).Where("user_id = ?", userID)
	if testType != "" {
		query = query.Where("test_type = ?", testType)
	}
	err := query.Order("attempt_date ASC, id ASC").Find(&records).Error
	return records, err
}

// Recent 最近 limit 条，最新的在前
func (r *TestRecordRepository) Recent(ctx context.Context, userID uint, limit int) ([]model.TestRecord, error) {
	var records []model.TestRecord
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("attempt_date DESC, id DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

func (r *TestRecordRepository) FindByIDAndUserID(ctx context.Context, id, userID uint) (*model.TestRecord, error) {
	var record model.TestRecord
	err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&record).Error
	return &record, err
}

func (r *TestRecordRepository) Delete(ctx context.Context, id, userID uint) (int64, error) {
	res := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.TestRecord{})
	return res.RowsAffected, res.Error
}
