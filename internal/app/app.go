package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"qbank_backend/internal/config"
	"qbank_backend/internal/controller"
	"qbank_backend/internal/repository"
	"qbank_backend/internal/service"
	"qbank_backend/internal/util"
	"qbank_backend/pkg/configwatcher"
	"qbank_backend/pkg/database"
	"qbank_backend/pkg/logger"
	"qbank_backend/pkg/monitoring"
	"qbank_backend/pkg/security"
	"qbank_backend/pkg/tracing"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const serviceName = "qbank"

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	ctx             context.Context
	cancel          context.CancelFunc
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user      *repository.UserRepository
	subject   *repository.SubjectRepository
	system    *repository.SystemRepository
	subSystem *repository.SubSystemRepository
	question  *repository.QuestionRepository
	quiz      *repository.QuizRepository
}

type services struct {
	auth     *service.AuthService
	user     *service.UserService
	storage  *service.StorageService
	count    *service.CountService
	subject  *service.SubjectService
	system   *service.SystemService
	question *service.QuestionService
	quiz     *service.QuizService
}

type controllers struct {
	auth     *controller.AuthController
	user     *controller.UserController
	subject  *controller.SubjectController
	system   *controller.SystemController
	question *controller.QuestionController
	count    *controller.CountController
	quiz     *controller.QuizController
	health   *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:      repository.NewUserRepository(db),
		subject:   repository.NewSubjectRepository(db),
		system:    repository.NewSystemRepository(db),
		subSystem: repository.NewSubSystemRepository(db),
		question:  repository.NewQuestionRepository(db),
		quiz:      repository.NewQuizRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.count = service.NewCountService(repos.question, rdb, cfg.Quiz)
	s.subject = service.NewSubjectService(repos.subject, s.count)
	s.system = service.NewSystemService(repos.system, repos.subSystem, s.subject, s.count)
	s.question = service.NewQuestionService(repos.question, s.subject, s.system, s.storage, s.count)
	s.quiz = service.NewQuizService(repos.quiz, repos.question, cfg.Quiz)

	// 组卷默认值与计数缓存时长支持热加载
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		s.quiz.ApplyConfig(newCfg.Quiz)
		s.count.ApplyConfig(newCfg.Quiz)
	})

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth),
		user:     controller.NewUserController(s.user),
		subject:  controller.NewSubjectController(s.subject),
		system:   controller.NewSystemController(s.system),
		question: controller.NewQuestionController(s.question),
		count:    controller.NewCountController(s.count),
		quiz:     controller.NewQuizController(s.quiz),
		health:   controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(a.ctx, cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// openDatabase 连接数据库，非 release 模式或显式要求时执行迁移
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == gin.DebugMode)
	if err != nil {
		return nil, err
	}
	if cfg.Server.Mode != gin.ReleaseMode || cfg.ForceMigrate || cfg.MigrateOnly {
		if err := database.Migrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// openRedis Redis 只承担计数缓存，连接失败时降级为无缓存
func openRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	rdb, err := database.InitRedis(ctx, &cfg.Redis)
	if err != nil {
		logger.Log.Warn("Redis unavailable, count cache disabled", zap.Error(err))
		return nil
	}
	return rdb
}

func NewApp(cfg *config.Config) (*App, error) {
	if err := logger.InitLogger(cfg); err != nil {
		return nil, err
	}
	logger.Log.Info("Logger initialized successfully", zap.String("file", cfg.Log.File))

	gin.SetMode(cfg.Server.Mode)

	db, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	rdb := openRedis(ctx, cfg)

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		ctx:    ctx,
		cancel: cancel,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(serviceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
		} else {
			app.tracer = tp
		}
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app, nil
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 配置文件热加载
	if a.Config.FilePath != "" {
		go func() {
			if err := configwatcher.WatchConfig(a.ctx, a.Config.FilePath, a.applyConfig); err != nil {
				logger.Log.Error("Config watcher stopped", zap.Error(err))
			}
		}()
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	a.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
	a.Close(ctx)

	logger.Log.Info("Server exiting")
}

// Close 释放追踪、缓存与数据库连接
func (a *App) Close(ctx context.Context) {
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
	_ = logger.Log.Sync()
}

// Migrate 仅执行数据库迁移，adminEmail 非空时同时确保管理员账号存在
func Migrate(ctx context.Context, cfg *config.Config, adminEmail, adminPassword string) error {
	if err := logger.InitLogger(cfg); err != nil {
		return err
	}
	defer logger.Log.Sync()

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == gin.DebugMode)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	if adminEmail == "" {
		return nil
	}
	auth := service.NewAuthService(repository.NewUserRepository(db), cfg)
	admin, err := auth.EnsureAdmin(ctx, adminEmail, adminPassword)
	if err != nil {
		return err
	}
	logger.Log.Info("Admin account ready", zap.Uint("userId", admin.ID), zap.String("email", admin.Email))
	return nil
}
