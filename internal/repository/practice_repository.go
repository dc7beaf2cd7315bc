package repository

import (
	"civilprep_backend/internal/model"
	"context"

	"gorm.io/gorm"
)

// PracticeRepository 练习作答与计时学习
type PracticeRepository struct {
	DB *gorm.DB
}

func NewPracticeRepository(db *gorm.DB) *PracticeRepository {
	return &PracticeRepository{DB: db}
}

func (r *PracticeRepository) CreateAttempts(ctx context.Context, attempts []model.QuestionAttempt) error {
	if len(attempts) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Create(&attempts).Error
}

// RecentAttempts 最近 limit 次作答，最新的在前
func (r *PracticeRepository) RecentAttempts(ctx context.Context, userID uint, limit int) ([]model.QuestionAttempt, error) {
	var attempts []model.QuestionAttempt
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("attempted_at DESC, id DESC").
		Limit(limit).
		Find(&attempts).Error
	return attempts, err
}

func (r *PracticeRepository) CreateSession(ctx context.Context, session *model.StudySession) error {
	return r.DB.WithContext(ctx).Create(session).Error
}

func (r *PracticeRepository) FindSession(ctx context.Context, id, userID uint) (*model.StudySession, error) {
	var session model.StudySession
	err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&session).Error
	return &session, err
}

func (r *PracticeRepository) SaveSession(ctx context.Context, session *model.StudySession) error {
	return r.DB.WithContext(ctx).Save(session).Error
}

func (r *PracticeRepository) ListSessions(ctx context.Context, userID uint, limit int) ([]model.StudySession, error) {
	var sessions []model.StudySession
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}
