package service

import (
	"civilprep_backend/internal/model"
	"civilprep_backend/internal/repository"
	"civilprep_backend/internal/util"
	"context"
	"fmt"
	"strings"
)

type MoodService struct {
	MoodRepo *repository.MoodRepository
}

func NewMoodService(moodRepo *repository.MoodRepository) *MoodService {
	return &MoodService{MoodRepo: moodRepo}
}

type MoodRequest struct {
	Date string `json:"date"`
	Mood string `json:"mood" binding:"required"`
	Note string `json:"note"`
}

// Upsert 每天一条，重复提交覆盖当天记录。日期缺省为今天
func (s *MoodService) Upsert(ctx context.Context, userID uint, req *MoodRequest) (*model.MoodEntry, error) {
	mood := model.Mood(strings.ToLower(strings.TrimSpace(req.Mood)))
	if !mood.Valid() {
		return nil, fmt.Errorf("%w: %s", util.ErrInvalidMood, req.Mood)
	}

	date := req.Date
	if date == "" {
		date = util.Today()
	}
	if !util.ValidDate(date) {
		return nil, util.ErrInvalidDate
	}

	entry := &model.MoodEntry{UserID: userID, Date: date, Mood: mood, Note: req.Note}
	if err := s.MoodRepo.Upsert(ctx, entry); err != nil {
		return nil, fmt.Errorf("save mood: %w", err)
	}

	// 冲突更新时驱动不一定回填主键，重新读取
	return s.MoodRepo.FindByDate(ctx, userID, date)
}

func (s *MoodService) List(ctx context.Context, userID uint, from, to string) ([]model.MoodEntry, error) {
	if (from != "" && !util.ValidDate(from)) || (to != "" && !util.ValidDate(to)) {
		return nil, util.ErrInvalidDate
	}
	return s.MoodRepo.FindBetween(ctx, userID, from, to)
}

func (s *MoodService) Delete(ctx context.Context, userID uint, date string) error {
	if !util.ValidDate(date) {
		return util.ErrInvalidDate
	}
	affected, err := s.MoodRepo.DeleteByDate(ctx, userID, date)
	if err != nil {
		return err
	}
	if affected == 0 {
		return util.ErrMoodNotFound
	}
	return nil
}
