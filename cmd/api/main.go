package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/qc-checklist/api/swagger"
	"github.com/noah-isme/qc-checklist/internal/handler"
	"github.com/noah-isme/qc-checklist/internal/middleware"
	"github.com/noah-isme/qc-checklist/internal/models"
	"github.com/noah-isme/qc-checklist/internal/repository"
	"github.com/noah-isme/qc-checklist/internal/service"
	"github.com/noah-isme/qc-checklist/pkg/cache"
	"github.com/noah-isme/qc-checklist/pkg/config"
	"github.com/noah-isme/qc-checklist/pkg/database"
	"github.com/noah-isme/qc-checklist/pkg/jobs"
	"github.com/noah-isme/qc-checklist/pkg/logger"
	corsmiddleware "github.com/noah-isme/qc-checklist/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/qc-checklist/pkg/middleware/requestid"
)

const (
	loginAttemptsPerMinute = 10
	loginBurst             = 5
	shutdownTimeout        = 15 * time.Second
)

// @title Quality Checklist API
// @version 1.0.0
// @description Defect checklist documents, assistance workflow and production volume.
// @BasePath /api
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

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.Dashboard.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("dashboard cache disabled", zap.Error(err))
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	validate := validator.New()
	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, redisClient != nil)

	userRepo := repository.NewUserRepository(db)
	checklistRepo := repository.NewChecklistRepository(db)
	producaoRepo := repository.NewProducaoRepository(db)

	auditSvc := service.NewAuditService(repository.NewAuditRepository(db), logr)
	auditQueue := jobs.NewQueue[*models.AuditLog]("audit", auditSvc.Write, jobs.QueueConfig{
		Workers:    2,
		BufferSize: 256,
		MaxRetries: 3,
		RetryDelay: 2 * time.Second,
		Logger:     logr,
	})
	auditSvc.WithQueue(auditQueue)
	auditQueue.Start(ctx)
	defer auditQueue.Stop()

	authSvc := service.NewAuthService(userRepo, auditSvc, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "qc-checklist",
	}).WithMetrics(metrics)
	userSvc := service.NewUserService(userRepo, auditSvc, validate, logr)
	if err := userSvc.EnsureAdmin(ctx, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	var analyzer service.Analyzer
	if a := service.NewOpenAIAnalyzer(service.OpenAIAnalyzerConfig{
		APIKey:  cfg.Analyzer.APIKey,
		Model:   cfg.Analyzer.Model,
		BaseURL: cfg.Analyzer.BaseURL,
		Timeout: cfg.Analyzer.Timeout,
	}, logr); a != nil {
		analyzer = a
	} else {
		logr.Info("OPENAI_API_KEY not set, /analyze will answer 503")
	}

	handlers := handler.Handlers{
		Auth:      handler.NewAuthHandler(authSvc),
		Checklist: handler.NewChecklistHandler(service.NewChecklistService(checklistRepo, auditSvc, cacheSvc, metrics, validate, logr), service.NewExportService(checklistRepo, logr, nil, nil)),
		User:      handler.NewUserHandler(userSvc),
		Producao:  handler.NewProducaoHandler(service.NewProducaoService(producaoRepo, auditSvc, cacheSvc, validate, logr)),
		Dashboard: handler.NewDashboardHandler(service.NewDashboardService(checklistRepo, producaoRepo, cacheSvc, logr, service.DashboardServiceConfig{CacheTTL: cfg.Dashboard.CacheTTL})),
		Analysis:  handler.NewAnalysisHandler(service.NewAnalysisService(checklistRepo, analyzer, metrics, validate, logr, cfg.Analyzer.PeriodDays)),
		Metrics:   handler.NewMetricsHandler(metrics),
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	handler.Register(r, cfg.APIPrefix, handlers, handler.RouteDeps{
		Tokens:       authSvc,
		Audit:        auditSvc,
		LoginLimiter: middleware.NewRateLimiter(loginAttemptsPerMinute, loginBurst),
	})
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Analyzer.Timeout + 10*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("prefix", cfg.APIPrefix))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
