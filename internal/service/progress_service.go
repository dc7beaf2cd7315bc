package service

import (
	"civilprep_backend/internal/model"
	"civilprep_backend/internal/repository"
	"context"
	"fmt"
)

// ProgressService 时事与作文进度，每个用户各一行
type ProgressService struct {
	ProgressRepo *repository.ProgressRepository
}

func NewProgressService(progressRepo *repository.ProgressRepository) *ProgressService {
	return &ProgressService{ProgressRepo: progressRepo}
}

// 指针字段：只更新请求中出现的字段
type CurrentAffairsRequest struct {
	CompletedTopics   *int `json:"completed_topics" binding:"omitempty,gte=0"`
	CompletedLectures *int `json:"completed_lectures" binding:"omitempty,gte=0"`
}

type EssayProgressRequest struct {
	EssaysWritten     *int `json:"essays_written" binding:"omitempty,gte=0"`
	CompletedLectures *int `json:"completed_lectures" binding:"omitempty,gte=0"`
	TopicsPractised   *int `json:"topics_practised" binding:"omitempty,gte=0"`
}

func (s *ProgressService) GetCurrentAffairs(ctx context.Context, userID uint) (*model.ProgressView, error) {
	progress, err := s.ProgressRepo.GetCurrentAffairs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load current affairs progress: %w", err)
	}
	return currentAffairsView(progress), nil
}

func (s *ProgressService) UpdateCurrentAffairs(ctx context.Context, userID uint, req *CurrentAffairsRequest) (*model.ProgressView, error) {
	progress, err := s.ProgressRepo.GetCurrentAffairs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load current affairs progress: %w", err)
	}

	if req.CompletedTopics != nil {
		progress.CompletedTopics = *req.CompletedTopics
	}
	if req.CompletedLectures != nil {
		progress.CompletedLectures = *req.CompletedLectures
	}

	if err := s.ProgressRepo.SaveCurrentAffairs(ctx, progress); err != nil {
		return nil, fmt.Errorf("save current affairs progress: %w", err)
	}
	return currentAffairsView(progress), nil
}

func (s *ProgressService) GetEssay(ctx context.Context, userID uint) (*model.ProgressView, error) {
	progress, err := s.ProgressRepo.GetEssay(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load essay progress: %w", err)
	}
	return essayView(progress), nil
}

func (s *ProgressService) UpdateEssay(ctx context.Context, userID uint, req *EssayProgressRequest) (*model.ProgressView, error) {
	progress, err := s.ProgressRepo.GetEssay(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load essay progress: %w", err)
	}

	if req.EssaysWritten != nil {
		progress.EssaysWritten = *req.EssaysWritten
	}
	if req.CompletedLectures != nil {
		progress.CompletedLectures = *req.CompletedLectures
	}
	if req.TopicsPractised != nil {
		progress.TopicsPractised = *req.TopicsPractised
	}

	if err := s.ProgressRepo.SaveEssay(ctx, progress); err != nil {
		return nil, fmt.Errorf("save essay progress: %w", err)
	}
	return essayView(progress), nil
}

func currentAffairsView(p *model.CurrentAffairsProgress) *model.ProgressView {
	return &model.ProgressView{
		Completed: map[string]int{
			"topics":   p.CompletedTopics,
			"lectures": p.CompletedLectures,
		},
		Totals: map[string]int{
			"topics":   model.CurrentAffairsTotalTopics,
			"lectures": model.CurrentAffairsTotalLectures,
		},
		Percentage: p.Percentage(),
	}
}

func essayView(p *model.EssayProgress) *model.ProgressView {
	return &model.ProgressView{
		Completed: map[string]int{
			"essays":   p.EssaysWritten,
			"lectures": p.CompletedLectures,
			"topics":   p.TopicsPractised,
		},
		Totals: map[string]int{
			"essays":   model.EssayTotalEssays,
			"lectures": model.EssayTotalLectures,
			"topics":   model.EssayTotalTopics,
		},
		Percentage: p.Percentage(),
	}
}
