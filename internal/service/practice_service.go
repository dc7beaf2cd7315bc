package service

import (
	"civilprep_backend/internal/model"
	"civilprep_backend/internal/repository"
	"civilprep_backend/internal/util"
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"
)

const (
	DefaultAttemptLimit = 50
	MaxAttemptLimit     = 500
	MaxAttemptBatch     = 200
	DefaultSessionLimit = 30
)

// PracticeService 练习作答与计时学习
type PracticeService struct {
	PracticeRepo *repository.PracticeRepository
	now          func() time.Time
}

func NewPracticeService(practiceRepo *repository.PracticeRepository) *PracticeService {
	return &PracticeService{PracticeRepo: practiceRepo, now: time.Now}
}

type AttemptRequest struct {
	Subject          string     `json:"subject" binding:"max=100"`
	IsCorrect        bool       `json:"is_correct"`
	TimeTakenSeconds int        `json:"time_taken_seconds" binding:"gte=0"`
	AttemptedAt      *time.Time `json:"attempted_at"`
}

// AttemptBatchRequest 单条提交时放在 Attempts 中的一个元素
type AttemptBatchRequest struct {
	Attempts []AttemptRequest `json:"attempts" binding:"required,min=1,dive"`
}

type StartSessionRequest struct {
	Subject  string `json:"subject" binding:"max=100"`
	Activity string `json:"activity"`
}

type EndSessionRequest struct {
	Activity string `json:"activity"`
}

func (s *PracticeService) RecordAttempts(ctx context.Context, userID uint, reqs []AttemptRequest) ([]model.QuestionAttempt, error) {
	if len(reqs) == 0 || len(reqs) > MaxAttemptBatch {
		return nil, fmt.Errorf("%w: between 1 and %d attempts per request", util.ErrInvalidValue, MaxAttemptBatch)
	}

	now := s.now()
	attempts := make([]model.QuestionAttempt, len(reqs))
	for i, r := range reqs {
		attempts[i] = model.QuestionAttempt{
			UserID:           userID,
			Subject:          r.Subject,
			IsCorrect:        r.IsCorrect,
			TimeTakenSeconds: r.TimeTakenSeconds,
			AttemptedAt:      now,
		}
		if r.AttemptedAt != nil {
			attempts[i].AttemptedAt = *r.AttemptedAt
		}
	}

	if err := s.PracticeRepo.CreateAttempts(ctx, attempts); err != nil {
		return nil, fmt.Errorf("save attempts: %w", err)
	}
	return attempts, nil
}

func (s *PracticeService) RecentAttempts(ctx context.Context, userID uint, limit int) ([]model.QuestionAttempt, error) {
	if limit <= 0 {
		limit = DefaultAttemptLimit
	}
	if limit > MaxAttemptLimit {
		limit = MaxAttemptLimit
	}
	return s.PracticeRepo.RecentAttempts(ctx, userID, limit)
}

func (s *PracticeService) StartSession(ctx context.Context, userID uint, req *StartSessionRequest) (*model.StudySession, error) {
	session := &model.StudySession{
		UserID:    userID,
		Subject:   req.Subject,
		Activity:  req.Activity,
		StartedAt: s.now(),
	}
	if err := s.PracticeRepo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	return session, nil
}

// EndSession 结束计时并按分钟计算时长
func (s *PracticeService) EndSession(ctx context.Context, userID, id uint, req *EndSessionRequest) (*model.StudySession, error) {
	session, err := s.PracticeRepo.FindSession(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	if session.EndedAt != nil {
		return nil, util.ErrSessionEnded
	}

	ended := s.now()
	session.EndedAt = &ended
	session.DurationMinutes = int(math.Max(0, math.Round(ended.Sub(session.StartedAt).Minutes())))
	if req != nil && req.Activity != "" {
		session.Activity = req.Activity
	}

	if err := s.PracticeRepo.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("end session: %w", err)
	}
	return session, nil
}

func (s *PracticeService) ListSessions(ctx context.Context, userID uint, limit int) ([]model.StudySession, error) {
	if limit <= 0 {
		limit = DefaultSessionLimit
	}
	return s.PracticeRepo.ListSessions(ctx, userID, limit)
}
