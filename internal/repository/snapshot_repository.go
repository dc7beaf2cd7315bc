package repository

import (
	"civilprep_backend/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SnapshotRepository struct {
	DB *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{DB: db}
}

// Upsert 同一天重复执行时覆盖
func (r *SnapshotRepository) Upsert(ctx context.Context, snapshot *model.PredictionSnapshot) error {
	now := time.Now()
	snapshot.CreatedAt = now
	snapshot.UpdatedAt = now
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "snapshot_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"readiness", "prelims_score", "mains_score", "interview_score",
			"predicted_rank", "qualification_probability", "details", "updated_at",
		}),
	}).Create(snapshot).Error
}

// List 按日期升序返回最近 limit 条
func (r *SnapshotRepository) List(ctx context.Context, userID uint, limit int) ([]model.PredictionSnapshot, error) {
	var snapshots []model.PredictionSnapshot
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("snapshot_date DESC").
		Limit(limit).
		Find(&snapshots).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(snapshots)-1; i < j; i, j = i+1, j-1 {
		snapshots[i], snapshots[j] = snapshots[j], snapshots[i]
	}
	return snapshots, nil
}
