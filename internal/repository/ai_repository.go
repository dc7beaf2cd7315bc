package repository

import (
	"civilprep_backend/internal/model"
	"context"

	"gorm.io/gorm"
)

// AIRepository 生成器审计记录与作文评分
type AIRepository struct {
	DB *gorm.DB
}

func NewAIRepository(db *gorm.DB) *AIRepository {
	return &AIRepository{DB: db}
}

func (r *AIRepository) CreateInteraction(ctx context.Context, interaction *model.AIInteraction) error {
	return r.DB.WithContext(ctx).Create(interaction).Error
}

// ListInteractions 最新的在前；kind 为空时返回全部类型
func (r *AIRepository) ListInteractions(ctx context.Context, userID uint, kind model.AIInteractionKind, limit int) ([]model.AIInteraction, error) {
	var interactions []model.AIInteraction
	query := r.DB.WithContext(ctx).Where("user_id = ?", userID)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	err := query.Order("id DESC").Limit(limit).Find(&interactions).Error
	return interactions, err
}

// ChatHistory 最近 limit 轮聊天，按时间正序
func (r *AIRepository) ChatHistory(ctx context.Context, userID uint, limit int) ([]model.AIInteraction, error) {
	interactions, err := r.ListInteractions(ctx, userID, model.AIKindChat, limit)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(interactions)-1; i < j; i, j = i+1, j-1 {
		interactions[i], interactions[j] = interactions[j], interactions[i]
	}
	return interactions, nil
}

func (r *AIRepository) CreateEvaluation(ctx context.Context, evaluation *model.EssayEvaluation) error {
	return r.DB.WithContext(ctx).Create(evaluation).Error
}

func (r *AIRepository) ListEvaluations(ctx context.Context, userID uint, limit int) ([]model.EssayEvaluation, error) {
	var evaluations []model.EssayEvaluation
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id DESC").Limit(limit).Find(&evaluations).Error
	return evaluations, err
}
