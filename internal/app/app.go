package app

import (
	"civilprep_backend/internal/config"
	"civilprep_backend/internal/controller"
	"civilprep_backend/internal/middleware"
	"civilprep_backend/internal/repository"
	"civilprep_backend/internal/service"
	"civilprep_backend/pkg/cache"
	"civilprep_backend/pkg/configwatcher"
	"civilprep_backend/pkg/database"
	"civilprep_backend/pkg/logger"
	"civilprep_backend/pkg/monitoring"
	"civilprep_backend/pkg/scheduler"
	"civilprep_backend/pkg/security"
	"civilprep_backend/pkg/tracing"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	Cache           cache.Store
	services        *services
	scheduler       *scheduler.Scheduler
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user     *repository.UserRepository
	subject  *repository.SubjectRepository
	goal     *repository.DailyGoalRepository
	test     *repository.TestRecordRepository
	mood     *repository.MoodRepository
	optional *repository.OptionalRepository
	progress *repository.ProgressRepository
	practice *repository.PracticeRepository
	ai       *repository.AIRepository
	snapshot *repository.SnapshotRepository
}

type services struct {
	auth      *service.AuthService
	subject   *service.SubjectService
	goal      *service.DailyGoalService
	test      *service.TestService
	mood      *service.MoodService
	optional  *service.OptionalService
	progress  *service.ProgressService
	practice  *service.PracticeService
	analytics *service.AnalyticsService
	dashboard *service.DashboardService
	ai        *service.AIService
	generator *service.GeneratorService
	storage   *service.StorageService
	report    *service.ReportService
}

type controllers struct {
	auth      *controller.AuthController
	subject   *controller.SubjectController
	goal      *controller.DailyGoalController
	test      *controller.TestController
	mood      *controller.MoodController
	optional  *controller.OptionalController
	progress  *controller.ProgressController
	practice  *controller.PracticeController
	analytics *controller.AnalyticsController
	dashboard *controller.DashboardController
	ai        *controller.AIController
	report    *controller.ReportController
	health    *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ReloadConfig 配置文件变更后由 configwatcher 调用
func (a *App) ReloadConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
	logger.Log.Info("Configuration reloaded")
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		subject:  repository.NewSubjectRepository(db),
		goal:     repository.NewDailyGoalRepository(db),
		test:     repository.NewTestRecordRepository(db),
		mood:     repository.NewMoodRepository(db),
		optional: repository.NewOptionalRepository(db),
		progress: repository.NewProgressRepository(db),
		practice: repository.NewPracticeRepository(db),
		ai:       repository.NewAIRepository(db),
		snapshot: repository.NewSnapshotRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.subject = service.NewSubjectService(repos.subject)
	s.goal = service.NewDailyGoalService(repos.goal)
	s.test = service.NewTestService(repos.test)
	s.mood = service.NewMoodService(repos.mood)
	s.optional = service.NewOptionalService(repos.optional)
	s.progress = service.NewProgressService(repos.progress)
	s.practice = service.NewPracticeService(repos.practice)

	s.analytics = service.NewAnalyticsService(
		repos.subject,
		repos.goal,
		repos.test,
		repos.mood,
		repos.optional,
		repos.progress,
		repos.practice,
		repos.snapshot,
		repos.user,
	)
	s.dashboard = service.NewDashboardService(
		repos.subject,
		repos.goal,
		repos.test,
		repos.mood,
		repos.optional,
		repos.progress,
		s.analytics,
	)

	s.ai = service.NewAIService(cfg.AI)
	a.RegisterConfigCallback(func(c *config.Config) { s.ai.UpdateConfig(c.AI) })

	s.generator = service.NewGeneratorService(
		s.ai,
		s.analytics,
		repos.ai,
		a.Cache,
		time.Duration(cfg.Cache.SuggestionTTLMinutes)*time.Minute,
	)

	s.storage = service.NewStorageService(&cfg.Storage)
	s.report = service.NewReportService(repos.subject, repos.goal, repos.test, repos.mood, s.analytics, s.storage)

	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth),
		subject:   controller.NewSubjectController(s.subject),
		goal:      controller.NewDailyGoalController(s.goal),
		test:      controller.NewTestController(s.test),
		mood:      controller.NewMoodController(s.mood),
		optional:  controller.NewOptionalController(s.optional),
		progress:  controller.NewProgressController(s.progress),
		practice:  controller.NewPracticeController(s.practice),
		analytics: controller.NewAnalyticsController(s.analytics),
		dashboard: controller.NewDashboardController(s.dashboard),
		ai:        controller.NewAIController(s.generator),
		report:    controller.NewReportController(s.report),
		health:    controller.NewHealthController(a.DB, a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID(), middleware.AccessLog())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))

	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(s *services, cfg *config.Config) {
	if !cfg.Scheduler.Enabled {
		return
	}

	a.scheduler = scheduler.New(time.Local)
	if err := a.scheduler.Daily("prediction-snapshot", cfg.Scheduler.SnapshotTime, func() {
		s.analytics.SnapshotAll(context.Background())
	}); err != nil {
		logger.Log.Error("Failed to schedule prediction snapshot", zap.Error(err))
	}

	if mem, ok := a.Cache.(*cache.MemoryStore); ok {
		if err := a.scheduler.Every("cache-sweep", time.Hour, func() {
			if n := mem.Sweep(); n > 0 {
				logger.Log.Debug("Expired cache entries removed", zap.Int("count", n))
			}
		}); err != nil {
			logger.Log.Error("Failed to schedule cache sweep", zap.Error(err))
		}
	}

	a.scheduler.Start()
}

// New 用已建立的数据库与 Redis 连接组装应用，rdb 为 nil 时使用内存缓存
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	if rdb != nil {
		app.Cache = cache.NewRedisStore(rdb, "civilprep:")
	} else {
		app.Cache = cache.NewMemoryStore()
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg)
	app.services = services
	controllers := app.initControllers(services)

	// 监控初始化
	monitoring.Init()

	router := gin.New()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")
	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := New(cfg, db, rdb)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.CollectorEndpoint, cfg.Tracing.SampleRatio)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.startBackgroundTasks(app.services, cfg)

	return app
}

// SnapshotNow 立即执行一次每日快照任务，供 -snapshot 命令使用
func (a *App) SnapshotNow(ctx context.Context) {
	a.services.analytics.SnapshotAll(ctx)
}

func (a *App) Run(configFile string) {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if err := configwatcher.WatchConfig(ctx, configFile, a.ReloadConfig); err != nil {
		logger.Log.Warn("Config watcher disabled", zap.Error(err))
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	if a.scheduler != nil {
		a.scheduler.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Log.Info("Server exiting")
}
