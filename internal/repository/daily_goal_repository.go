package repository

import (
	"civilprep_backend/internal/model"
	"context"

	"gorm.io/gorm"
)

// DailyGoalRepository 每日学习记录的数据访问
type DailyGoalRepository struct {
	DB *gorm.DB
}

func NewDailyGoalRepository(db *gorm.DB) *DailyGoalRepository {
	return &DailyGoalRepository{DB: db}
}

func (r *DailyGoalRepository) Create(ctx context.Context, goal *model.DailyGoal) error {
	return r.DB.WithContext(ctx).Create(goal).Error
}

func (r *DailyGoalRepository) Save(ctx context.Context, goal *model.DailyGoal) error {
	return r.DB.WithContext(ctx).Save(goal).Error
}

// FindByUserID date 为空时返回全部记录
func (r *DailyGoalRepository) FindByUserID(ctx context.Context, userID uint, date string) ([]model.DailyGoal, error) {
	var goals []model.DailyGoal
	query := r.DB.WithContext(ctx).Where("user_id = ?", userID)
	if date != "" {
		query = query.Where("date = ?", date)
	}
	err := query.Order("date DESC, id ASC").Find(&goals).Error
	return goals, err
}

// FindBetween 闭区间 [from, to]
func (r *DailyGoalRepository) FindBetween(ctx context.Context, userID uint, from, to string) ([]model.DailyGoal, error) {
	var goals []model.DailyGoal
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Order("date ASC, id ASC").
		Find(&goals).Error
	return goals, err
}

func (r *DailyGoalRepository) FindByIDAndUserID(ctx context.Context, id, userID uint) (*model.DailyGoal, error) {
	var goal model.DailyGoal
	err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&goal).Error
	return &goal, err
}

func (r *DailyGoalRepository) Delete(ctx context.Context, id, userID uint) (int64, error) {
	res := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.DailyGoal{})
	return res.RowsAffected, res.Error
}
