package service

import (
	"civilprep_backend/internal/model"
	"civilprep_backend/internal/repository"
	"civilprep_backend/internal/util"
	"context"
	"errors"
	"fmt"
	"math"

	"gorm.io/gorm"
)

// trendThreshold 斜率绝对值低于该值视为平稳（百分点/次）
const trendThreshold = 1.0

type TestService struct {
	TestRepo *repository.TestRecordRepository
}

func NewTestService(testRepo *repository.TestRecordRepository) *TestService {
	return &TestService{TestRepo: testRepo}
}

// TestRecordRequest 得分可以大于总分，统计时截断到 100%
type TestRecordRequest struct {
	TestType    model.TestType `json:"test_type" binding:"required"`
	Category    string         `json:"category" binding:"omitempty,oneof=mock sectional full_length pyq"`
	Subject     string         `json:"subject" binding:"max=100"`
	TotalMarks  float64        `json:"total_marks" binding:"gte=0"`
	ScoredMarks float64        `json:"scored_marks" binding:"gte=0"`
	AttemptDate string         `json:"attempt_date" binding:"required"`
}

func (r *TestRecordRequest) validate() error {
	if r.TestType != model.TestPrelims && r.TestType != model.TestMains {
		return util.ErrInvalidTestType
	}
	if !util.ValidDate(r.AttemptDate) {
		return util.ErrInvalidDate
	}
	return nil
}

func (r *TestRecordRequest) apply(record *model.TestRecord) {
	record.TestType = r.TestType
	record.Category = r.Category
	if record.Category == "" {
		record.Category = string(model.CategoryMock)
	}
	record.Subject = r.Subject
	record.TotalMarks = r.TotalMarks
	record.ScoredMarks = r.ScoredMarks
	record.AttemptDate = r.AttemptDate
}

func (s *TestService) Create(ctx context.Context, userID uint, req *TestRecordRequest) (*model.TestRecord, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	record := &model.TestRecord{UserID: userID}
	req.apply(record)
	if err := s.TestRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("create test record: %w", err)
	}
	return record, nil
}

// List testType 为空时返回全部
func (s *TestService) List(ctx context.Context, userID uint, testType string) ([]model.TestRecord, error) {
	t := model.TestType(testType)
	if t != "" && t != model.TestPrelims && t != model.TestMains {
		return nil, util.ErrInvalidTestType
	}
	return s.TestRepo.FindByUserID(ctx, userID, t)
}

func (s *TestService) Update(ctx context.Context, userID, id uint, req *TestRecordRequest) (*model.TestRecord, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	record, err := s.TestRepo.FindByIDAndUserID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}

	req.apply(record)
	if err := s.TestRepo.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("update test record: %w", err)
	}
	return record, nil
}

func (s *TestService) Delete(ctx context.Context, userID, id uint) error {
	affected, err := s.TestRepo.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return util.ErrTestNotFound
	}
	return nil
}

// Stats 按考试阶段统计平均、最好、最近得分率与趋势
func (s *TestService) Stats(ctx context.Context, userID uint) ([]model.TestTypeStats, error) {
	records, err := s.TestRepo.FindByUserID(ctx, userID, "")
	if err != nil {
		return nil, fmt.Errorf("load test records: %w", err)
	}
	return ComputeTestStats(records), nil
}

// ComputeTestStats records 须按考试日期升序
func ComputeTestStats(records []model.TestRecord) []model.TestTypeStats {
	byType := map[model.TestType][]model.TestRecord{}
	for _, r := range records {
		byType[r.TestType] = append(byType[r.TestType], r)
	}

	stats := make([]model.TestTypeStats, 0, 2)
	for _, t := range []model.TestType{model.TestPrelims, model.TestMains} {
		group := byType[t]
		st := model.TestTypeStats{TestType: t, Count: len(group), Trend: "stable"}
		if len(group) > 0 {
			total := 0.0
			for _, r := range group {
				p := math.Min(r.Percentage(), 100)
				total += p
				st.BestPercent = math.Max(st.BestPercent, p)
			}
			st.AveragePercent = model.Round2(total / float64(len(group)))
			st.BestPercent = model.Round2(st.BestPercent)
			st.LatestPercent = model.Round2(math.Min(group[len(group)-1].Percentage(), 100))

			switch slope := TestTrend(group); {
			case slope > trendThreshold:
				st.Trend = "improving"
			case slope < -trendThreshold:
				st.Trend = "declining"
			}
		}
		stats = append(stats, st)
	}
	return stats
}
