package service

import (
	"civilprep_backend/internal/model"
	"civilprep_backend/internal/repository"
	"civilprep_backend/internal/util"
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const (
	DefaultSummaryDays = 7
	MaxSummaryDays     = 90
)

// DailyGoalService 每日学习记录
type DailyGoalService struct {
	GoalRepo *repository.DailyGoalRepository
	now      func() time.Time
}

func NewDailyGoalService(goalRepo *repository.DailyGoalRepository) *DailyGoalService {
	return &DailyGoalService{GoalRepo: goalRepo, now: time.Now}
}

// DailyGoalRequest 创建与更新共用
type DailyGoalRequest struct {
	Date            string  `json:"date" binding:"required"`
	Subject         string  `json:"subject" binding:"max=100"`
	HoursStudied    float64 `json:"hours_studied" binding:"gte=0,lte=24"`
	TopicsCovered   int     `json:"topics_covered" binding:"gte=0"`
	QuestionsSolved int     `json:"questions_solved" binding:"gte=0"`
	Notes           string  `json:"notes"`
}

func (r *DailyGoalRequest) apply(goal *model.DailyGoal) {
	goal.Date = r.Date
	goal.Subject = r.Subject
	goal.HoursStudied = r.HoursStudied
	goal.TopicsCovered = r.TopicsCovered
	goal.QuestionsSolved = r.QuestionsSolved
	goal.Notes = r.Notes
}

func (s *DailyGoalService) Create(ctx context.Context, userID uint, req *DailyGoalRequest) (*model.DailyGoal, error) {
	if !util.ValidDate(req.Date) {
		return nil, util.ErrInvalidDate
	}

	goal := &model.DailyGoal{UserID: userID}
	req.apply(goal)
	if err := s.GoalRepo.Create(ctx, goal); err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}
	return goal, nil
}

// List date 为空时返回全部
func (s *DailyGoalService) List(ctx context.Context, userID uint, date string) ([]model.DailyGoal, error) {
	if date != "" && !util.ValidDate(date) {
		return nil, util.ErrInvalidDate
	}
	return s.GoalRepo.FindByUserID(ctx, userID, date)
}

func (s *DailyGoalService) Update(ctx context.Context, userID, id uint, req *DailyGoalRequest) (*model.DailyGoal, error) {
	if !util.ValidDate(req.Date) {
		return nil, util.ErrInvalidDate
	}

	goal, err := s.GoalRepo.FindByIDAndUserID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrGoalNotFound
		}
		return nil, err
	}

	req.apply(goal)
	if err := s.GoalRepo.Save(ctx, goal); err != nil {
		return nil, fmt.Errorf("update goal: %w", err)
	}
	return goal, nil
}

func (s *DailyGoalService) Delete(ctx context.Context, userID, id uint) error {
	affected, err := s.GoalRepo.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return util.ErrGoalNotFound
	}
	return nil
}

// Summary 最近 days 天（含今天）的逐日汇总，没有记录的日期补 0
func (s *DailyGoalService) Summary(ctx context.Context, userID uint, days int) (*model.GoalSummary, error) {
	if days <= 0 {
		days = DefaultSummaryDays
	}
	if days > MaxSummaryDays {
		days = MaxSummaryDays
	}

	today := s.now()
	from := today.AddDate(0, 0, -(days - 1)).Format(util.DateFormat)
	to := today.Format(util.DateFormat)

	goals, err := s.GoalRepo.FindBetween(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load goals: %w", err)
	}
	return SummarizeGoals(goals, today, days), nil
}

// SummarizeGoals 按日期聚合学习记录
func SummarizeGoals(goals []model.DailyGoal, today time.Time, days int) *model.GoalSummary {
	byDate := make(map[string]*model.DayHours, days)
	summary := &model.GoalSummary{
		Days:         make([]model.DayHours, days),
		SubjectHours: make(map[string]float64),
	}

	for i := 0; i < days; i++ {
		date := today.AddDate(0, 0, -(days - 1 - i)).Format(util.DateFormat)
		summary.Days[i] = model.DayHours{Date: date}
		byDate[date] = &summary.Days[i]
	}

	for _, g := range goals {
		day, ok := byDate[g.Date]
		if !ok {
			continue
		}
		day.Hours += g.HoursStudied
		day.QuestionsSolved += g.QuestionsSolved
		day.TopicsCovered += g.TopicsCovered

		summary.TotalHours += g.HoursStudied
		summary.TotalQuestions += g.QuestionsSolved
		if g.Subject != "" {
			summary.SubjectHours[g.Subject] = model.Round2(summary.SubjectHours[g.Subject] + g.HoursStudied)
		}
	}

	for i := range summary.Days {
		summary.Days[i].Hours = model.Round2(summary.Days[i].Hours)
		if summary.Days[i].Hours > 0 {
			summary.ActiveDays++
		}
	}
	summary.TotalHours = model.Round2(summary.TotalHours)
	summary.AverageHours = model.Round2(summary.TotalHours / float64(days))
	return summary
}
