// @title CivilPrep 后端 API
// @version 1.0
// @description 公务员考试备考追踪：科目与每日目标记录、模考统计、排名预测和 AI 辅助。

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"civilprep_backend/internal/app"
	"civilprep_backend/internal/config"
	"civilprep_backend/pkg/logger"
	"context"
	"flag"
	"log"
	"path/filepath"
)

func main() {
	configDir := flag.String("config", "configs", "配置文件目录（包含 config.yaml）")
	migrateOnly := flag.Bool("migrate-only", false, "执行数据库迁移并写入备考账号后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（release 模式默认跳过）")
	snapshot := flag.Bool("snapshot", false, "立即为所有账号生成当天的预测快照后退出")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly
	if *snapshot {
		// 一次性任务不启动定时器
		cfg.Scheduler.Enabled = false
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	switch {
	case *migrateOnly:
		log.Println("Migration finished")
	case *snapshot:
		application.SnapshotNow(context.Background())
		log.Println("Prediction snapshots written")
	default:
		application.Run(filepath.Join(*configDir, "config.yaml"))
	}
}
