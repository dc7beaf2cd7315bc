package service

import (
	"civilprep_backend/internal/model"
	"civilprep_backend/internal/repository"
	"civilprep_backend/pkg/database"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB 每个测试一个独立的内存库；单连接保证并发读取看到同一份数据
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()
	user := &model.User{Username: "aspirant", Password: "x", DisplayName: "Aspirant"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

// newAnalytics 组装读取全部仓储的 AnalyticsService
func newAnalytics(db *gorm.DB) *AnalyticsService {
	return NewAnalyticsService(
		repository.NewSubjectRepository(db),
		repository.NewDailyGoalRepository(db),
		repository.NewTestRecordRepository(db),
		repository.NewMoodRepository(db),
		repository.NewOptionalRepository(db),
		repository.NewProgressRepository(db),
		repository.NewPracticeRepository(db),
		repository.NewSnapshotRepository(db),
		repository.NewUserRepository(db),
	)
}
