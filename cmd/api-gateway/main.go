package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/kbm-attendance-api/api/swagger"
	"github.com/noah-isme/kbm-attendance-api/internal/handler"
	"github.com/noah-isme/kbm-attendance-api/internal/middleware"
	"github.com/noah-isme/kbm-attendance-api/internal/models"
	"github.com/noah-isme/kbm-attendance-api/internal/repository"
	"github.com/noah-isme/kbm-attendance-api/internal/service"
	"github.com/noah-isme/kbm-attendance-api/pkg/cache"
	"github.com/noah-isme/kbm-attendance-api/pkg/config"
	"github.com/noah-isme/kbm-attendance-api/pkg/database"
	"github.com/noah-isme/kbm-attendance-api/pkg/export"
	"github.com/noah-isme/kbm-attendance-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/kbm-attendance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/kbm-attendance-api/pkg/middleware/requestid"
)

// @title KBM Attendance API
// @version 1.0.0
// @description Attendance and records API for teaching and learning (KBM) sessions.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Statistics.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("statistics cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close() //nolint:errcheck
		}
	}

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	if err := registerRoutes(ctx, r, cfg, db, redisClient, metricsSvc, logr); err != nil {
		logr.Sugar().Fatalw("failed to register routes", "error", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

func registerRoutes(ctx context.Context, r *gin.Engine, cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, metricsSvc *service.MetricsService, logr *zap.Logger) error {
	validate := service.NewValidator()

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	statisticsRepo := repository.NewStatisticsRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Statistics.CacheTTL, logr, redisClient != nil)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	sessionSvc := service.NewSessionService(sessionRepo, studentRepo, userRepo, cacheSvc, metricsSvc, validate, logr)
	materialSvc := service.NewMaterialService(materialRepo, userRepo, validate, logr)
	statisticsSvc := service.NewStatisticsService(statisticsRepo, sessionRepo, studentRepo, cacheSvc, metricsSvc, logr)
	exportSvc := service.NewExportService(statisticsSvc, export.NewCSVExporter(), export.NewPDFExporter(), logr)

	if cfg.Seed.Enabled {
		seedSvc := service.NewSeedService(userRepo, logr)
		created, err := seedSvc.SeedDefaultUsers(ctx, []service.SeedAccount{
			{Username: cfg.Seed.Teacher.Username, Password: cfg.Seed.Teacher.Password, FullName: cfg.Seed.Teacher.FullName, Role: models.RoleTeacher},
			{Username: cfg.Seed.Coordinator.Username, Password: cfg.Seed.Coordinator.Password, FullName: cfg.Seed.Coordinator.FullName, Role: models.RoleCoordinator},
		})
		if err != nil {
			return err
		}
		logr.Info("default users seeded", zap.Int("created", created))
	}

	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc, statisticsSvc)
	sessionHandler := handler.NewSessionHandler(sessionSvc)
	materialHandler := handler.NewMaterialHandler(materialSvc)
	statisticsHandler := handler.NewStatisticsHandler(statisticsSvc, exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if metricsSvc != nil {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.EnableDocs && cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(authSvc))
	secured.GET("/auth/me", authHandler.Me)

	coordinatorOnly := middleware.RequireRoles(models.RoleCoordinator)

	students := secured.Group("/students")
	students.GET("", studentHandler.List)
	students.GET("/:id", studentHandler.Get)
	students.GET("/:id/attendance", studentHandler.Attendance)
	students.POST("", coordinatorOnly, middleware.Audit(logr, "create", "student"), studentHandler.Create)
	students.PATCH("/:id", coordinatorOnly, middleware.Audit(logr, "update", "student"), studentHandler.Update)
	students.DELETE("/:id", coordinatorOnly, middleware.Audit(logr, "delete", "student"), studentHandler.Delete)

	sessions := secured.Group("/sessions")
	sessions.GET("", sessionHandler.List)
	sessions.GET("/mine", sessionHandler.Mine)
	sessions.GET("/:id", sessionHandler.Get)
	sessions.GET("/:id/attendance", sessionHandler.Attendance)
	sessions.POST("", middleware.Audit(logr, "create", "session"), sessionHandler.Create)
	sessions.DELETE("/:id", middleware.Audit(logr, "delete", "session"), sessionHandler.Delete)
	secured.GET("/users/:id/sessions", middleware.RequireRolesOrSelf("id", models.RoleCoordinator), sessionHandler.ByUser)

	statistics := secured.Group("/statistics")
	statistics.GET("/summary", statisticsHandler.Summary)
	statistics.GET("/monthly", statisticsHandler.Monthly)
	statistics.GET("/monthly/export", statisticsHandler.Export)

	materials := secured.Group("/materials")
	materials.GET("", materialHandler.List)
	materials.GET("/:id", materialHandler.Get)
	materials.POST("", coordinatorOnly, middleware.Audit(logr, "create", "material"), materialHandler.Create)
	materials.PATCH("/:id", coordinatorOnly, middleware.Audit(logr, "update", "material"), materialHandler.Update)
	materials.DELETE("/:id", coordinatorOnly, middleware.Audit(logr, "delete", "material"), materialHandler.Delete)

	secured.GET("/system/metrics", coordinatorOnly, metricsHandler.Snapshot)
	return nil
}
