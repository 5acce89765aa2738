package app

import (
	"audit_market_backend/internal/config"
	"audit_market_backend/internal/controller"
	"audit_market_backend/internal/repository"
	"audit_market_backend/internal/service"
	"audit_market_backend/pkg/configwatcher"
	"audit_market_backend/pkg/database"
	"audit_market_backend/pkg/logger"
	"audit_market_backend/pkg/monitoring"
	"audit_market_backend/pkg/security"
	"audit_market_backend/pkg/tracing"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	corsPolicy      *security.CORSPolicy
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user        *repository.UserRepository
	profile     *repository.AuditorProfileRepository
	analytics   *repository.AnalyticsRepository
	badge       *repository.BadgeRepository
	checkin     *repository.CheckinRepository
	challenge   *repository.ChallengeRepository
	marketplace *repository.MarketplaceRepository
}

type services struct {
	auth            *service.AuthService
	user            *service.UserService
	storage         *service.StorageService
	tracker         *service.EventTracker
	personalization *service.PersonalizationService
	gamification    *service.GamificationService
	marketplace     *service.MarketplaceService
	views           *service.ViewRegistry
	dashboard       *service.DashboardService
}

type controllers struct {
	auth            *controller.AuthController
	user            *controller.UserController
	onboarding      *controller.OnboardingController
	personalization *controller.PersonalizationController
	gamification    *controller.GamificationController
	marketplace     *controller.MarketplaceController
	dashboard       *controller.DashboardController
	health          *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:        repository.NewUserRepository(db),
		profile:     repository.NewAuditorProfileRepository(db),
		analytics:   repository.NewAnalyticsRepository(db),
		badge:       repository.NewBadgeRepository(db),
		checkin:     repository.NewCheckinRepository(db),
		challenge:   repository.NewChallengeRepository(db),
		marketplace: repository.NewMarketplaceRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user, repos.profile)
	s.tracker = service.NewEventTracker(repos.analytics)
	s.personalization = service.NewPersonalizationService(
		repos.profile,
		repos.analytics,
		repos.challenge,
		repos.badge,
		cfg.Personalization,
	)
	s.gamification = service.NewGamificationService(
		repos.profile,
		repos.badge,
		repos.checkin,
		repos.analytics,
		repos.challenge,
		rdb,
	)
	s.marketplace = service.NewMarketplaceService(repos.marketplace, s.tracker)
	s.views = service.NewViewRegistry(s.personalization, s.gamification, s.tracker, cfg.Personalization)
	s.dashboard = service.NewDashboardService(s.views, s.marketplace)

	return s
}

func (a *App) initControllers(s *services, repos *repositories, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:            controller.NewAuthController(s.auth, s.user),
		user:            controller.NewUserController(s.user, s.storage),
		onboarding:      controller.NewOnboardingController(s.personalization, s.tracker, repos.user),
		personalization: controller.NewPersonalizationController(s.views, s.personalization, s.tracker, s.user),
		gamification:    controller.NewGamificationController(s.gamification, s.personalization),
		marketplace:     controller.NewMarketplaceController(s.marketplace, s.personalization),
		dashboard:       controller.NewDashboardController(s.dashboard, s.tracker),
		health:          controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	a.corsPolicy = security.NewCORSPolicy(cfg.CORS.AllowedOrigins)
	router.Use(a.corsPolicy.Middleware())
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 100000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(s *services) {
	// 空闲视图定期回收
	go func() {
		ticker := time.NewTicker(time.Minute)
		for range ticker.C {
			if n := s.views.EvictIdle(); n > 0 {
				logger.Log.Debug("evicted idle personalization views", zap.Int("count", n))
			}
		}
	}()

	// 配置热更新：目前只有 CORS 白名单支持运行时变更
	go configwatcher.WatchConfig("configs/config.yaml", func(newCfg *config.Config) {
		logger.Log.Info("config reloaded")
		a.corsPolicy.UpdateOrigins(newCfg.CORS.AllowedOrigins)
		for _, callback := range a.configCallbacks {
			callback(newCfg)
		}
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// 排行榜与实时排名依赖 Redis，连不上时降级运行
		logger.Log.Warn("Redis unavailable, leaderboard features degraded", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, repos, db, rdb)

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("audit-market", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
			}
		}()
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
