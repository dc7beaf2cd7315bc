package database

import (
	"civilprep_backend/internal/config"
	"civilprep_backend/internal/model"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models 需要迁移的全部表
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.SubjectProgress{},
		&model.DailyGoal{},
		&model.TestRecord{},
		&model.MoodEntry{},
		&model.OptionalSection{},
		&model.CurrentAffairsProgress{},
		&model.EssayProgress{},
		&model.QuestionAttempt{},
		&model.StudySession{},
		&model.AIInteraction{},
		&model.EssayEvaluation{},
		&model.PredictionSnapshot{},
	}
}

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		dbCfg.User,
		dbCfg.Password,
		dbCfg.Host,
		dbCfg.Port,
		dbCfg.DBName,
		dbCfg.Charset,
		dbCfg.ParseTime,
	)

	logLevel := logger.Info
	if cfg.Server.Mode == "release" {
		logLevel = logger.Warn
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	// 所有仓储共享同一个连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(dbCfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(dbCfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(dbCfg.ConnMaxLifetime) * time.Minute)

	log.Println("Database connection established")

	if cfg.ForceMigrate || cfg.Server.Mode != "release" {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		log.Println("Database migration completed")
	}

	if err := SeedPrincipal(db, &cfg.Auth); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate 幂等地创建/更新全部表结构，只在启动时执行一次
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// SeedPrincipal 确保配置中的备考账号存在
func SeedPrincipal(db *gorm.DB, auth *config.AuthConfig) error {
	var user model.User
	err := db.Where("username = ?", auth.Username).First(&user).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(auth.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user = model.User{
		Username:    auth.Username,
		Password:    string(hashed),
		DisplayName: auth.DisplayName,
		ExamYear:    auth.ExamYear,
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}

	log.Printf("Seeded study account %q", auth.Username)
	return nil
}
