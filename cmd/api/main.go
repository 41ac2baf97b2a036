package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/georgemunganga/life360-ops/internal/cache"
	"github.com/georgemunganga/life360-ops/internal/config"
	"github.com/georgemunganga/life360-ops/internal/database"
	"github.com/georgemunganga/life360-ops/internal/logger"
	"github.com/georgemunganga/life360-ops/internal/middleware"
	"github.com/georgemunganga/life360-ops/internal/modules/assistant"
	"github.com/georgemunganga/life360-ops/internal/modules/auth"
	"github.com/georgemunganga/life360-ops/internal/modules/dashboard"
	"github.com/georgemunganga/life360-ops/internal/modules/document"
	"github.com/georgemunganga/life360-ops/internal/modules/order"
	"github.com/georgemunganga/life360-ops/internal/modules/practitioner"
	"github.com/georgemunganga/life360-ops/internal/modules/provider"
	"github.com/georgemunganga/life360-ops/internal/modules/report"
	"github.com/georgemunganga/life360-ops/internal/modules/sms"
	"github.com/georgemunganga/life360-ops/internal/modules/stock"
	"github.com/georgemunganga/life360-ops/internal/modules/task"
	"github.com/georgemunganga/life360-ops/internal/modules/user"
	"github.com/georgemunganga/life360-ops/internal/seed"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.Log.Level, cfg.Log.Format, "life360-ops")
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		zl.Fatal("database unavailable", zap.Error(err))
	}
	defer db.Close()
	zl.Info("connected to database")

	rc, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		zl.Fatal("redis unavailable", zap.Error(err))
	}
	defer rc.Close()
	if !rc.Enabled() {
		zl.Info("REDIS_ADDR not set, dashboard cache disabled")
	}

	// ── Core services ───────────────────────────────────────
	dashboardService := dashboard.NewService(db, rc, zl)

	stockService := stock.NewService(stock.NewPostgresRepository(db), zl)
	orderService := order.NewService(order.NewPostgresRepository(db), order.Config{
		SLAHours: cfg.Orders.SLAHours,
		Notifier: dashboardService,
	}, zl)
	practitionerService := practitioner.NewService(practitioner.NewPostgresRepository(db), dashboardService, zl)
	dashboardService.Bind(orderService, practitionerService)

	taskService := task.NewService(task.NewPostgresRepository(db), zl)

	store, err := documentStore(ctx, cfg.Storage)
	if err != nil {
		zl.Fatal("document storage unavailable", zap.Error(err))
	}
	documentService := document.NewService(document.NewPostgresRepository(db), store, zl)

	userRepo := user.NewPostgresRepository(db)
	userService := user.NewService(userRepo, zl)
	authService := auth.NewService(userRepo, cfg.Auth.JWTSecret)

	// ── Bootstrap ───────────────────────────────────────────
	var demo *seed.Demo
	if cfg.SeedDemo {
		demo = seed.NewDemo(orderService, practitionerService, zl)
	}
	if err := seed.Bootstrap(ctx, db, rc, demo, zl); err != nil {
		zl.Fatal("bootstrap failed", zap.Error(err))
	}
	if cfg.Auth.OperatorEmail != "" && cfg.Auth.OperatorPassword != "" {
		_, created, err := userService.EnsureUser(ctx, user.RegisterRequest{
			Email:    cfg.Auth.OperatorEmail,
			Password: cfg.Auth.OperatorPassword,
		})
		if err != nil {
			zl.Fatal("bootstrap operator failed", zap.Error(err))
		}
		if created {
			zl.Info("bootstrap operator created", zap.String("email", cfg.Auth.OperatorEmail))
		}
	} else if cfg.Auth.Required {
		zl.Warn("AUTH_REQUIRED is set without OPERATOR_EMAIL/OPERATOR_PASSWORD, only existing operators can sign in")
	}

	// ── Integrations ────────────────────────────────────────
	smsClient := sms.NewClient(sms.Config{
		URL:           cfg.SMS.URL,
		Username:      cfg.SMS.Username,
		Password:      cfg.SMS.Password,
		DefaultRegion: cfg.SMS.DefaultRegion,
	}, zl)
	if cfg.SMS.Username == "" || cfg.SMS.Password == "" {
		zl.Warn("SMS gateway credentials not set, /sms/send will answer 503")
	}

	var model assistant.Model
	if cfg.OpenRouter.APIKey != "" {
		model = assistant.NewOpenRouter(assistant.ChatConfig{
			APIKey: cfg.OpenRouter.APIKey,
			URL:    cfg.OpenRouter.URL,
			Model:  cfg.OpenRouter.Model,
		})
	} else {
		zl.Warn("OPENROUTER_API_KEY not set, free-form questions get a local summary")
	}
	assistantService := assistant.NewService(orderService, stockService, model, zl)

	smsLimit, err := middleware.RateLimit(cfg.RateLimit)
	if err != nil {
		zl.Fatal("invalid RATE_LIMIT", zap.Error(err))
	}
	askLimit, err := middleware.RateLimit(cfg.RateLimit)
	if err != nil {
		zl.Fatal("invalid RATE_LIMIT", zap.Error(err))
	}

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)

	dashboardHandler := dashboard.NewHandler(dashboardService, zl)
	dashboardHandler.RegisterHealth(router)
	auth.NewHandler(authService).RegisterRoutes(router)

	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(authService, cfg.Auth.Required))

		user.NewHandler(userService).RegisterRoutes(r)

		dashboardHandler.RegisterRoutes(r)
		provider.NewHandler().RegisterRoutes(r)
		stock.NewHandler(stockService, zl).RegisterRoutes(r)
		order.NewHandler(orderService, zl).RegisterRoutes(r)
		practitioner.NewHandler(practitionerService, zl).RegisterRoutes(r)
		task.NewHandler(taskService, zl).RegisterRoutes(r)
		document.NewHandler(documentService, zl).RegisterRoutes(r)
		report.NewHandler(report.NewService(orderService, practitionerService, stockService), zl).RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(smsLimit)
			sms.NewHandler(smsClient, zl).RegisterRoutes(r)
		})
		r.Group(func(r chi.Router) {
			r.Use(askLimit)
			assistant.NewHandler(assistantService, zl).RegisterRoutes(r)
		})
	})

	// ── Start Server ────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("Life360 ops API starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		closer.Close()
	}
}

func documentStore(ctx context.Context, cfg config.StorageConfig) (document.Store, error) {
	if cfg.Backend == "gcs" {
		return document.NewGCSStore(ctx, cfg.GCSBucket)
	}
	return document.NewLocalStore(cfg.UploadRoot)
}
