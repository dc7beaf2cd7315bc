package service

import (
	"civilprep_backend/internal/model"
	"civilprep_backend/internal/repository"
	"civilprep_backend/internal/util"
	"civilprep_backend/pkg/tracing"
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

const dashboardRecentTests = 5

// DashboardService 首页仪表盘
type DashboardService struct {
	SubjectRepo  *repository.SubjectRepository
	GoalRepo     *repository.DailyGoalRepository
	TestRepo     *repository.TestRecordRepository
	MoodRepo     *repository.MoodRepository
	OptionalRepo *repository.OptionalRepository
	ProgressRepo *repository.ProgressRepository
	Analytics    *AnalyticsService
	now          func() time.Time
}

func NewDashboardService(
	subjectRepo *repository.SubjectRepository,
	goalRepo *repository.DailyGoalRepository,
	testRepo *repository.TestRecordRepository,
	moodRepo *repository.MoodRepository,
	optionalRepo *repository.OptionalRepository,
	progressRepo *repository.ProgressRepository,
	analytics *AnalyticsService,
) *DashboardService {
	return &DashboardService{
		SubjectRepo:  subjectRepo,
		GoalRepo:     goalRepo,
		TestRepo:     testRepo,
		MoodRepo:     moodRepo,
		OptionalRepo: optionalRepo,
		ProgressRepo: progressRepo,
		Analytics:    analytics,
		now:          time.Now,
	}
}

func (s *DashboardService) GetOverview(ctx context.Context, userID uint) (*model.DashboardOverview, error) {
	ctx, span := tracing.StartSpan(ctx, "dashboard.GetOverview")
	defer span.End()

	today := s.now()
	todayStr := today.Format(util.DateFormat)
	weekStart := today.AddDate(0, 0, -(DefaultSummaryDays - 1)).Format(util.DateFormat)

	var (
		overview  model.DashboardOverview
		weekGoals []model.DailyGoal
		optional  []model.OptionalSection
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		overview.Subjects, err = s.SubjectRepo.FindByUserID(gctx, userID)
		return wrapLoad("subjects", err)
	})
	g.Go(func() (err error) {
		overview.TodayGoals, err = s.GoalRepo.FindByUserID(gctx, userID, todayStr)
		return wrapLoad("today goals", err)
	})
	g.Go(func() (err error) {
		weekGoals, err = s.GoalRepo.FindBetween(gctx, userID, weekStart, todayStr)
		return wrapLoad("weekly goals", err)
	})
	g.Go(func() (err error) {
		overview.RecentTests, err = s.TestRepo.Recent(gctx, userID, dashboardRecentTests)
		return wrapLoad("recent tests", err)
	})
	g.Go(func() error {
		moods, err := s.MoodRepo.Recent(gctx, userID, 1)
		if err != nil {
			return wrapLoad("mood", err)
		}
		if len(moods) > 0 {
			overview.LatestMood = &moods[0]
		}
		return nil
	})
	g.Go(func() (err error) {
		optional, err = s.OptionalRepo.FindByUserID(gctx, userID)
		return wrapLoad("optional sections", err)
	})
	g.Go(func() error {
		ca, err := s.ProgressRepo.GetCurrentAffairs(gctx, userID)
		if err != nil {
			return wrapLoad("current affairs", err)
		}
		overview.CurrentAffairsPct = ca.Percentage()
		return nil
	})
	g.Go(func() error {
		essay, err := s.ProgressRepo.GetEssay(gctx, userID)
		if err != nil {
			return wrapLoad("essay progress", err)
		}
		overview.EssayPercent = essay.Percentage()
		return nil
	})
	g.Go(func() error {
		r, err := s.Analytics.GetReadiness(gctx, userID)
		if err != nil {
			return err
		}
		overview.Readiness = r.Score
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	overview.WeeklySummary = SummarizeGoals(weekGoals, today, DefaultSummaryDays)
	overview.OptionalPercent = optionalPercent(optional)
	if len(overview.Subjects) > 0 {
		total := 0.0
		for _, sp := range overview.Subjects {
			total += sp.CompletionPercentage
		}
		overview.OverallCompletion = model.Round2(total / float64(len(overview.Subjects)))
	}
	return &overview, nil
}
