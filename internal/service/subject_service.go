package service

import (
	"civilprep_backend/internal/model"
	"civilprep_backend/internal/repository"
	"civilprep_backend/internal/util"
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// 每完成一份 DPP 计入的题目数区间
const (
	MinQuestionsPerDPP = 5
	MaxQuestionsPerDPP = 30
	// MaxSubjectCount 讲次、DPP、复习轮数的上限
	MaxSubjectCount = 100000
)

// SubjectService 科目进度的业务逻辑
type SubjectService struct {
	SubjectRepo *repository.SubjectRepository
	// randIntn 返回 [0,n) 的随机数，测试中可替换
	randIntn func(n int) int
}

func NewSubjectService(subjectRepo *repository.SubjectRepository) *SubjectService {
	return &SubjectService{
		SubjectRepo: subjectRepo,
		randIntn:    rand.IntN,
	}
}

// WithRand 替换随机源
func (s *SubjectService) WithRand(intn func(n int) int) *SubjectService {
	s.randIntn = intn
	return s
}

// CreateSubjectRequest 创建科目的请求结构
type CreateSubjectRequest struct {
	SubjectName       string `json:"subject_name" binding:"required,max=100"`
	Category          string `json:"category" binding:"max=50"`
	TotalLectures     int    `json:"total_lectures" binding:"gte=0,lte=100000"`
	CompletedLectures int    `json:"completed_lectures" binding:"gte=0,lte=100000"`
	TotalDPPs         int    `json:"total_dpps" binding:"gte=0,lte=100000"`
	CompletedDPPs     int    `json:"completed_dpps" binding:"gte=0,lte=100000"`
	RevisionCount     int    `json:"revision_count" binding:"gte=0,lte=100000"`
}

// UpdateFieldRequest 单字段更新
type UpdateFieldRequest struct {
	ID    uint        `json:"id" binding:"required"`
	Field string      `json:"field" binding:"required"`
	Value interface{} `json:"value"`
}

// subjectIntFields 允许更新的整型字段
var subjectIntFields = map[string]func(s *model.SubjectProgress) *int{
	"total_lectures":     func(s *model.SubjectProgress) *int { return &s.TotalLectures },
	"completed_lectures": func(s *model.SubjectProgress) *int { return &s.CompletedLectures },
	"total_dpps":         func(s *model.SubjectProgress) *int { return &s.TotalDPPs },
	"completed_dpps":     func(s *model.SubjectProgress) *int { return &s.CompletedDPPs },
	"revision_count":     func(s *model.SubjectProgress) *int { return &s.RevisionCount },
}

// AllowedSubjectField 字段是否在可更新白名单内
func AllowedSubjectField(field string) bool {
	_, ok := subjectIntFields[field]
	return ok || field == "category"
}

func (s *SubjectService) List(ctx context.Context, userID uint) ([]model.SubjectProgress, error) {
	subjects, err := s.SubjectRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

func (s *SubjectService) Create(ctx context.Context, userID uint, req *CreateSubjectRequest) (*model.SubjectProgress, error) {
	name := strings.TrimSpace(req.SubjectName)
	if name == "" {
		return nil, util.ErrInvalidValue
	}
	for _, n := range []int{req.TotalLectures, req.CompletedLectures, req.TotalDPPs, req.CompletedDPPs, req.RevisionCount} {
		if n < 0 || n > MaxSubjectCount {
			return nil, fmt.Errorf("%w: counts must be between 0 and %d", util.ErrInvalidValue, MaxSubjectCount)
		}
	}

	_, err := s.SubjectRepo.FindByName(ctx, userID, name)
	if err == nil {
		return nil, util.ErrDuplicateSubject
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	subject := &model.SubjectProgress{
		UserID:            userID,
		SubjectName:       name,
		Category:          req.Category,
		TotalLectures:     req.TotalLectures,
		CompletedLectures: req.CompletedLectures,
		TotalDPPs:         req.TotalDPPs,
		CompletedDPPs:     req.CompletedDPPs,
		RevisionCount:     req.RevisionCount,
	}
	subject.QuestionsCount = s.questionsFor(req.CompletedDPPs)
	subject.Recalculate()

	if err := s.SubjectRepo.Create(ctx, subject); err != nil {
		return nil, fmt.Errorf("create subject: %w", err)
	}
	return subject, nil
}

// UpdateField 按白名单更新单个字段。completed_dpps 增加 n 时，题目数随机增加 [5n, 30n]
func (s *SubjectService) UpdateField(ctx context.Context, userID uint, req *UpdateFieldRequest) (*model.SubjectProgress, error) {
	if !AllowedSubjectField(req.Field) {
		return nil, fmt.Errorf("%w: %s", util.ErrFieldNotAllowed, req.Field)
	}

	subject, err := s.SubjectRepo.FindByIDAndUserID(ctx, req.ID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubjectNotFound
		}
		return nil, err
	}

	if req.Field == "category" {
		category, ok := req.Value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: category must be a string", util.ErrInvalidValue)
		}
		subject.Category = category
	} else {
		value, err := toCount(req.Value)
		if err != nil {
			return nil, err
		}

		target := subjectIntFields[req.Field](subject)
		if req.Field == "completed_dpps" && value > *target {
			subject.QuestionsCount += s.questionsFor(value - *target)
		}
		*target = value
	}

	subject.Recalculate()
	if err := s.SubjectRepo.Save(ctx, subject); err != nil {
		return nil, fmt.Errorf("update subject: %w", err)
	}
	return subject, nil
}

func (s *SubjectService) Delete(ctx context.Context, userID, id uint) error {
	affected, err := s.SubjectRepo.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return util.ErrSubjectNotFound
	}
	return nil
}

// questionsFor 为 n 份新完成的 DPP 抽取题目数
func (s *SubjectService) questionsFor(n int) int {
	total := 0
	for i := 0; i < n; i++ {
		total += MinQuestionsPerDPP + s.randIntn(MaxQuestionsPerDPP-MinQuestionsPerDPP+1)
	}
	return total
}

// toCount 将 JSON 值转换为 [0, MaxSubjectCount] 内的整数
func toCount(v interface{}) (int, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", util.ErrInvalidValue, n)
		}
		f = float64(parsed)
	default:
		return 0, fmt.Errorf("%w: value must be a number", util.ErrInvalidValue)
	}

	if f < 0 || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: value must be a non-negative integer", util.ErrInvalidValue)
	}
	if f > MaxSubjectCount {
		return 0, fmt.Errorf("%w: value must not exceed %d", util.ErrInvalidValue, MaxSubjectCount)
	}
	return int(f), nil
}
