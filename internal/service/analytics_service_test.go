package service

import (
	"civilprep_backend/internal/config"
	"civilprep_backend/internal/model"
	"civilprep_backend/internal/repository"
	"civilprep_backend/internal/util"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var analyticsNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.Local)

// seedPreparation 写入一份有代表性的备考数据
func seedPreparation(t *testing.T, db *gorm.DB, userID uint) {
	t.Helper()

	subjects := []model.SubjectProgress{
		{UserID: userID, SubjectName: "Polity", Category: "GS2", TotalLectures: 40, CompletedLectures: 30, TotalDPPs: 20, CompletedDPPs: 12, RevisionCount: 1},
		{UserID: userID, SubjectName: "Economy", Category: "GS3", TotalLectures: 50, CompletedLectures: 10, TotalDPPs: 25, CompletedDPPs: 4},
	}
	for i := range subjects {
		subjects[i].Recalculate()
	}
	require.NoError(t, db.Create(&subjects).Error)

	for i := 0; i < ConsistencyWindowDays; i++ {
		date := analyticsNow.AddDate(0, 0, -i).Format(util.DateFormat)
		require.NoError(t, db.Create(&model.DailyGoal{UserID: userID, Date: date, Subject: "Polity", HoursStudied: 5}).Error)
	}

	for i, pct := range []float64{48, 52, 57} {
		require.NoError(t, db.Create(&model.TestRecord{
			UserID: userID, TestType: model.TestPrelims, Category: "mock", TotalMarks: 200, ScoredMarks: pct * 2,
			AttemptDate: analyticsNow.AddDate(0, 0, -20+i*5).Format(util.DateFormat),
		}).Error)
	}

	attempts := make([]model.QuestionAttempt, 40)
	for i := range attempts {
		attempts[i] = model.QuestionAttempt{
			UserID: userID, Subject: "Polity", IsCorrect: i%4 != 0, TimeTakenSeconds: 80,
			AttemptedAt: analyticsNow.Add(-time.Duration(i) * time.Hour),
		}
	}
	require.NoError(t, db.Create(&attempts).Error)

	require.NoError(t, db.Create(&model.MoodEntry{UserID: userID, Date: analyticsNow.Format(util.DateFormat), Mood: model.MoodGood}).Error)
	require.NoError(t, db.Create(&model.CurrentAffairsProgress{UserID: userID, CompletedTopics: 90, CompletedLectures: 45}).Error)
}

func TestAnalyticsPredictionIsReproducible(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	seedPreparation(t, db, user.ID)
	svc := newAnalytics(db)
	svc.now = fixedClock(analyticsNow)
	ctx := context.Background()

	readiness, err := svc.GetReadiness(ctx, user.ID)
	require.NoError(t, err)
	assert.Greater(t, readiness.Score, 0.0)
	assert.Equal(t, 100.0, readiness.Metrics.Consistency, "equal hours on every day of the window")

	first := svc.GetPrediction(ctx, user.ID, nil)
	second := svc.GetPrediction(ctx, user.ID, nil)
	assert.False(t, first.Fallback)
	assert.Equal(t, first, second)
	assert.Equal(t, readiness.Score, first.Readiness)
	assert.Len(t, first.SubjectRanks, 2)

	seed := int64(7)
	seeded := svc.GetPrediction(ctx, user.ID, &seed)
	assert.Equal(t, int64(7), seeded.Seed)
	assert.Equal(t, first.BaseRank, seeded.BaseRank, "seed only moves the jitter")
}

func TestAnalyticsFallsBackWhenStoreFails(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	svc := newAnalytics(db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	p := svc.GetPrediction(context.Background(), user.ID, nil)
	assert.True(t, p.Fallback)
	assert.Equal(t, 1800, p.PredictedRank)

	_, err = svc.GetReadiness(context.Background(), user.ID)
	assert.Error(t, err)
}

func TestSnapshotAllAndHistory(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	seedPreparation(t, db, user.ID)
	svc := newAnalytics(db)
	svc.now = fixedClock(analyticsNow)
	ctx := context.Background()

	svc.SnapshotAll(ctx)
	svc.SnapshotAll(ctx)

	history, err := svc.History(ctx, user.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1, "one snapshot per day")
	assert.Equal(t, analyticsNow.Format(util.DateFormat), history[0].SnapshotDate)
	assert.NotZero(t, history[0].PredictedRank)
	assert.NotEmpty(t, history[0].Details)
}

func TestDashboardOverview(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	seedPreparation(t, db, user.ID)
	analytics := newAnalytics(db)
	analytics.now = fixedClock(analyticsNow)

	svc := NewDashboardService(
		repository.NewSubjectRepository(db),
		repository.NewDailyGoalRepository(db),
		repository.NewTestRecordRepository(db),
		repository.NewMoodRepository(db),
		repository.NewOptionalRepository(db),
		repository.NewProgressRepository(db),
		analytics,
	)
	svc.now = fixedClock(analyticsNow)

	overview, err := svc.GetOverview(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, overview.Subjects, 2)
	assert.Len(t, overview.TodayGoals, 1)
	assert.Equal(t, 35.0, overview.WeeklySummary.TotalHours)
	assert.Len(t, overview.RecentTests, 3)
	assert.Equal(t, 114.0, overview.RecentTests[0].ScoredMarks, "newest test first")
	require.NotNil(t, overview.LatestMood)
	assert.Equal(t, model.MoodGood, overview.LatestMood.Mood)
	assert.Equal(t, 30.0, overview.CurrentAffairsPct)
	assert.Greater(t, overview.Readiness, 0.0)
	assert.Greater(t, overview.OverallCompletion, 0.0)
}

func newReportService(t *testing.T, db *gorm.DB, dir string) *ReportService {
	analytics := newAnalytics(db)
	analytics.now = fixedClock(analyticsNow)
	svc := NewReportService(
		repository.NewSubjectRepository(db),
		repository.NewDailyGoalRepository(db),
		repository.NewTestRecordRepository(db),
		repository.NewMoodRepository(db),
		analytics,
		NewStorageService(&config.StorageConfig{Type: util.StorageLocal, LocalPath: dir}),
	)
	svc.now = fixedClock(analyticsNow)
	return svc
}

func TestReportBuild(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	seedPreparation(t, db, user.ID)
	svc := newReportService(t, db, t.TempDir())

	f, err := svc.Build(context.Background(), user.ID)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Subjects", "Goals", "Tests", "Moods", "Prediction"}, f.GetSheetList())

	rows, err := f.GetRows("Subjects")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Subject", rows[0][0])
	assert.Equal(t, "Polity", rows[1][0])

	goals, err := f.GetRows("Goals")
	require.NoError(t, err)
	assert.Len(t, goals, ConsistencyWindowDays+1)

	prediction, err := f.GetRows("Prediction")
	require.NoError(t, err)
	require.Greater(t, len(prediction), 8)
	assert.Equal(t, "Predicted rank", prediction[6][0])
}

func TestReportExportToLocalStorage(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	dir := t.TempDir()
	svc := newReportService(t, db, dir)

	export, err := svc.ExportProgress(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(export.ObjectName, "reports/1/progress-20250615-"))
	assert.Equal(t, "/uploads/"+export.ObjectName, export.URL)

	path := filepath.Join(dir, filepath.FromSlash(export.ObjectName))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, export.Size, info.Size())

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	wb, err := excelize.OpenReader(file)
	require.NoError(t, err)
	defer wb.Close()
	assert.Contains(t, wb.GetSheetList(), "Prediction")
}

func TestLocalStorageRejectsEscapes(t *testing.T) {
	p := &LocalStorageProvider{Config: &config.StorageConfig{LocalPath: t.TempDir()}}
	_, err := p.Upload(context.Background(), "../outside.txt", strings.NewReader("x"), 1, "text/plain")
	assert.Error(t, err)
}
