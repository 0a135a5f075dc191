package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docker/go-units"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"studocs/internal/auth"
	"studocs/internal/config"
	"studocs/internal/dashboard"
	"studocs/internal/database"
	handlers "studocs/internal/http/handler"
	"studocs/internal/http/middleware"
	"studocs/internal/http/view"
	"studocs/internal/logger"
	tracing "studocs/internal/otel"
	"studocs/internal/repository/postgres"
	"studocs/internal/service"
	"studocs/internal/storage"
)

func main() {
	// Configuration comes from the environment; .env is auto-loaded if present.
	cfg := config.Load()
	log := logger.New(cfg.Location())
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, log)
	if err != nil {
		log.Fatal("tracing_init_failed", zap.Error(err))
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		log.Fatal("db_connect_failed", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
			log.Fatal("db_migration_failed", zap.Error(err))
		}
	}

	objStore, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatal("storage_init_failed", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}

	sessions, err := auth.NewClient(cfg.Auth, log)
	if err != nil {
		log.Fatal("auth_init_failed", zap.Error(err))
	}

	maxUpload := cfg.MaxUploadBytes()
	docSvc := service.NewDocumentService(objStore, postgres.NewDocumentPostgres(db), log,
		service.WithMaxUploadBytes(maxUpload),
		service.WithSignedURLTTL(cfg.Storage.SignedURLTTL()),
	)

	views, err := view.New(cfg.Location())
	if err != nil {
		log.Fatal("templates_parse_failed", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		Views:        views,
		ErrorHandler: handlers.ErrorHandler(views, log),
		// Room for the multipart envelope around a maximum-size file.
		BodyLimit: int(maxUpload + units.MB),
	})

	metrics, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal("metrics_init_failed", zap.Error(err))
	}

	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(metrics.Handler())

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:        db,
		Documents: docSvc,
		Sessions:  sessions,
		Dashboard: dashboard.NewController(docSvc, sessions, log),
		Cookies: handlers.CookieSettings{
			SessionName: cfg.Auth.CookieName,
			Secure:      cfg.Auth.CookieSecure,
		},
		SignupRedirect: cfg.PublicURL + cfg.Auth.ConfirmPath,
		MaxUpload:      maxUpload,
		SignedURLTTL:   cfg.Storage.SignedURLTTL(),
		Gatherer:       prometheus.DefaultGatherer,
		Log:            log,
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("server_shutdown_failed", zap.Error(err))
		}
	}()

	log.Info("server_starting",
		zap.String("addr", ":"+cfg.Port),
		zap.String("public_url", cfg.PublicURL),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("max_upload", units.HumanSize(float64(maxUpload))),
	)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("server_start_failed", zap.Error(err))
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		log.Error("tracing_shutdown_failed", zap.Error(err))
	}
	log.Info("server_stopped")
}
