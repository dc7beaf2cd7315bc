package service

import (
	"civilprep_backend/internal/model"
	"civilprep_backend/internal/repository"
	"civilprep_backend/internal/util"
	"civilprep_backend/pkg/logger"
	"civilprep_backend/pkg/monitoring"
	"civilprep_backend/pkg/tracing"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	sessionSampleLimit  = 200
	moodSampleLimit     = MoodWindow
	DefaultHistoryLimit = 30
	snapshotJobTimeout  = 5 * time.Minute
)

// AnalyticsService 聚合原始记录并生成就绪度与排名预测
type AnalyticsService struct {
	SubjectRepo  *repository.SubjectRepository
	GoalRepo     *repository.DailyGoalRepository
	TestRepo     *repository.TestRecordRepository
	MoodRepo     *repository.MoodRepository
	OptionalRepo *repository.OptionalRepository
	ProgressRepo *repository.ProgressRepository
	PracticeRepo *repository.PracticeRepository
	SnapshotRepo *repository.SnapshotRepository
	UserRepo     *repository.UserRepository
	now          func() time.Time
}

func NewAnalyticsService(
	subjectRepo *repository.SubjectRepository,
	goalRepo *repository.DailyGoalRepository,
	testRepo *repository.TestRecordRepository,
	moodRepo *repository.MoodRepository,
	optionalRepo *repository.OptionalRepository,
	progressRepo *repository.ProgressRepository,
	practiceRepo *repository.PracticeRepository,
	snapshotRepo *repository.SnapshotRepository,
	userRepo *repository.UserRepository,
) *AnalyticsService {
	return &AnalyticsService{
		SubjectRepo:  subjectRepo,
		GoalRepo:     goalRepo,
		TestRepo:     testRepo,
		MoodRepo:     moodRepo,
		OptionalRepo: optionalRepo,
		ProgressRepo: progressRepo,
		PracticeRepo: practiceRepo,
		SnapshotRepo: snapshotRepo,
		UserRepo:     userRepo,
		now:          time.Now,
	}
}

// LoadInput 并发读取预测所需的全部记录，任一读取失败即返回错误
func (s *AnalyticsService) LoadInput(ctx context.Context, userID uint) (*PredictionInput, error) {
	ctx, span := tracing.StartSpan(ctx, "analytics.LoadInput")
	defer span.End()

	today := s.now()
	in := &PredictionInput{Today: today}
	from := today.AddDate(0, 0, -(ConsistencyWindowDays - 1)).Format(util.DateFormat)
	to := today.Format(util.DateFormat)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		in.Subjects, err = s.SubjectRepo.FindByUserID(gctx, userID)
		return wrapLoad("subjects", err)
	})
	g.Go(func() (err error) {
		in.Attempts, err = s.PracticeRepo.RecentAttempts(gctx, userID, RecentAttemptWindow)
		return wrapLoad("attempts", err)
	})
	g.Go(func() (err error) {
		in.Goals, err = s.GoalRepo.FindBetween(gctx, userID, from, to)
		return wrapLoad("goals", err)
	})
	g.Go(func() (err error) {
		in.Sessions, err = s.PracticeRepo.ListSessions(gctx, userID, sessionSampleLimit)
		return wrapLoad("sessions", err)
	})
	g.Go(func() (err error) {
		in.Tests, err = s.TestRepo.FindByUserID(gctx, userID, "")
		return wrapLoad("tests", err)
	})
	g.Go(func() (err error) {
		in.Moods, err = s.MoodRepo.Recent(gctx, userID, moodSampleLimit)
		return wrapLoad("moods", err)
	})
	g.Go(func() (err error) {
		in.Optional, err = s.OptionalRepo.FindByUserID(gctx, userID)
		return wrapLoad("optional sections", err)
	})
	g.Go(func() (err error) {
		in.CurrentAffairs, err = s.ProgressRepo.GetCurrentAffairs(gctx, userID)
		return wrapLoad("current affairs", err)
	})
	g.Go(func() (err error) {
		in.Essay, err = s.ProgressRepo.GetEssay(gctx, userID)
		return wrapLoad("essay progress", err)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return in, nil
}

func wrapLoad(what string, err error) error {
	if err != nil {
		return fmt.Errorf("load %s: %w", what, err)
	}
	return nil
}

// GetMetrics 聚合后的指标
func (s *AnalyticsService) GetMetrics(ctx context.Context, userID uint) (model.Metrics, error) {
	in, err := s.LoadInput(ctx, userID)
	if err != nil {
		return model.Metrics{}, err
	}
	return Aggregate(in), nil
}

func (s *AnalyticsService) GetReadiness(ctx context.Context, userID uint) (*model.Readiness, error) {
	m, err := s.GetMetrics(ctx, userID)
	if err != nil {
		return nil, err
	}
	r := ReadinessScore(m)
	return &r, nil
}

// GetPrediction 不返回错误：数据读取失败时返回固定的兜底结果。seed 为 nil 时由指标推导
func (s *AnalyticsService) GetPrediction(ctx context.Context, userID uint, seed *int64) *model.Prediction {
	ctx, span := tracing.StartSpan(ctx, "analytics.GetPrediction", attribute.Bool("prediction.seeded", seed != nil))
	defer span.End()

	m, err := s.GetMetrics(ctx, userID)
	if err != nil {
		logger.Log.Error("Prediction data fetch failed, returning fallback",
			zap.Uint("userID", userID),
			zap.Error(err))
		monitoring.PredictionFallbacks.Inc()
		return FallbackPrediction(s.now())
	}

	useSeed := DeriveSeed(m)
	if seed != nil {
		useSeed = *seed
	}
	return Predict(m, useSeed, s.now())
}

// History 最近 limit 条每日快照，按日期升序
func (s *AnalyticsService) History(ctx context.Context, userID uint, limit int) ([]model.PredictionSnapshot, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.SnapshotRepo.List(ctx, userID, limit)
}

// SnapshotUser 保存当天的预测快照。兜底结果不落库
func (s *AnalyticsService) SnapshotUser(ctx context.Context, userID uint) error {
	p := s.GetPrediction(ctx, userID, nil)
	if p.Fallback {
		return fmt.Errorf("snapshot user %d: prediction unavailable", userID)
	}

	details, err := json.Marshal(p)
	if err != nil {
		return err
	}

	return s.SnapshotRepo.Upsert(ctx, &model.PredictionSnapshot{
		UserID:                   userID,
		SnapshotDate:             s.now().Format(util.DateFormat),
		Readiness:                p.Readiness,
		PrelimsScore:             p.Stages.Prelims,
		MainsScore:               p.Stages.Mains,
		InterviewScore:           p.Stages.Interview,
		PredictedRank:            p.PredictedRank,
		QualificationProbability: p.QualificationProbability,
		Details:                  details,
	})
}

// SnapshotAll 定时任务入口：为每个账号保存快照，单个失败只记录日志
func (s *AnalyticsService) SnapshotAll(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, snapshotJobTimeout)
	defer cancel()

	ids, err := s.UserRepo.ListIDs(ctx)
	if err != nil {
		logger.Log.Error("Failed to list users for snapshot", zap.Error(err))
		return
	}

	saved := 0
	for _, id := range ids {
		if err := s.SnapshotUser(ctx, id); err != nil {
			logger.Log.Warn("Prediction snapshot failed", zap.Uint("userID", id), zap.Error(err))
			monitoring.SnapshotResults.WithLabelValues("error").Inc()
			continue
		}
		monitoring.SnapshotResults.WithLabelValues("ok").Inc()
		saved++
	}
	logger.Log.Info("Prediction snapshots saved", zap.Int("saved", saved), zap.Int("users", len(ids)))
}
