package repository

import (
	"civilprep_backend/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MoodRepository struct {
	DB *gorm.DB
}

func NewMoodRepository(db *gorm.DB) *MoodRepository {
	return &MoodRepository{DB: db}
}

// Upsert 同一天已有记录时覆盖心情与备注
func (r *MoodRepository) Upsert(ctx context.Context, entry *model.MoodEntry) error {
	now := time.Now()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"mood", "note", "updated_at"}),
	}).Create(entry).Error
}

func (r *MoodRepository) FindByDate(ctx context.Context, userID uint, date string) (*model.MoodEntry, error) {
	var entry model.MoodEntry
	err := r.DB.WithContext(ctx).Where("user_id = ? AND date = ?", userID, date).First(&entry).Error
	return &entry, err
}

// FindBetween from/to 为空表示不限
func (r *MoodRepository) FindBetween(ctx context.Context, userID uint, from, to string) ([]model.MoodEntry, error) {
	var entries []model.MoodEntry
	query := r.DB.WithContext(ctx).Where("user_id = ?", userID)
	if from != "" {
		query = query.Where("date >= ?", from)
	}
	if to != "" {
		query = query.Where("date <= ?", to)
	}
	err := query.Order("date DESC").Find(&entries).Error
	return entries, err
}

func (r *MoodRepository) Recent(ctx context.Context, userID uint, limit int) ([]model.MoodEntry, error) {
	var entries []model.MoodEntry
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("date DESC").Limit(limit).Find(&entries).Error
	return entries, err
}

func (r *MoodRepository) DeleteByDate(ctx context.Context, userID uint, date string) (int64, error) {
	res := r.DB.WithContext(ctx).Where("user_id = ? AND date = ?", userID, date).Delete(&model.MoodEntry{})
	return res.RowsAffected, res.Error
}
