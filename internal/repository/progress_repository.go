package repository

import (
	"civilprep_backend/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressRepository 时事与作文这类每用户单行的进度表
type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// firstOrInit 读取 user_id 对应的单行，不存在时插入空行。
// 并发首次读取时插入冲突被忽略，随后重新读取
func firstOrInit(ctx context.Context, db *gorm.DB, userID uint, dest interface{}, empty interface{}) error {
	tx := db.WithContext(ctx)
	err := tx.Where("user_id = ?", userID).First(dest).Error
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(empty).Error; err != nil {
		return err
	}
	return tx.Where("user_id = ?", userID).First(dest).Error
}

// GetCurrentAffairs 不存在时创建空行
func (r *ProgressRepository) GetCurrentAffairs(ctx context.Context, userID uint) (*model.CurrentAffairsProgress, error) {
	var progress model.CurrentAffairsProgress
	err := firstOrInit(ctx, r.DB, userID, &progress, &model.CurrentAffairsProgress{UserID: userID})
	return &progress, err
}

func (r *ProgressRepository) SaveCurrentAffairs(ctx context.Context, progress *model.CurrentAffairsProgress) error {
	return r.DB.WithContext(ctx).Save(progress).Error
}

func (r *ProgressRepository) GetEssay(ctx context.Context, userID uint) (*model.EssayProgress, error) {
	var progress model.EssayProgress
	err := firstOrInit(ctx, r.DB, userID, &progress, &model.EssayProgress{UserID: userID})
	return &progress, err
}

func (r *ProgressRepository) SaveEssay(ctx context.Context, progress *model.EssayProgress) error {
	return r.DB.WithContext(ctx).Save(progress).Error
}
