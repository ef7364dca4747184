package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/poolforyou/poolforyou-api/internal/config"
	"github.com/poolforyou/poolforyou-api/internal/database"
	"github.com/poolforyou/poolforyou-api/internal/form"
	"github.com/poolforyou/poolforyou-api/internal/handler"
	"github.com/poolforyou/poolforyou-api/internal/notify"
	"github.com/poolforyou/poolforyou-api/internal/queue"
	"github.com/poolforyou/poolforyou-api/internal/repository"
	"github.com/poolforyou/poolforyou-api/internal/router"
	"github.com/poolforyou/poolforyou-api/internal/service"
	"github.com/poolforyou/poolforyou-api/internal/storage"
	"github.com/poolforyou/poolforyou-api/internal/utils"
)

func main() {
	logger := log.New("poolforyou")
	logger.SetHeader("${time_rfc3339} ${level} ${prefix}")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	if cfg.Env == "dev" {
		logger.SetLevel(log.DEBUG)
	} else {
		logger.SetLevel(log.INFO)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName))
	if err != nil {
		logger.Fatalf("mysql: %v", err)
	}
	defer db.Close()
	if cfg.MigrateOnStart {
		if err := database.MigrateUp(db); err != nil {
			logger.Fatalf("migrations: %v", err)
		}
	}

	rdb := config.NewRedisClient(ctx)
	if rdb == nil {
		logger.Warn("redis unreachable: rate limit, cache and session revocation disabled")
	} else {
		defer rdb.Close()
	}

	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL, cfg.ActivationTTL)
	users := repository.NewUserRepo(db)
	reports := repository.NewReportRepo(db)

	var revoked service.RevocationList
	switch {
	case cfg.SessionRevocation && rdb != nil:
		revoked = repository.NewTokenRepo(rdb, "revoked")
	case cfg.SessionRevocation:
		logger.Warn("SESSION_REVOCATION needs redis; sessions stay valid until they expire")
	}

	mailer := notify.NewMailer(cfg.SMTP, logger)
	var notifier service.Notifier = mailer
	if cfg.RabbitMQURL != "" {
		notifier = queue.NewPublisher(cfg.RabbitMQURL, logger)
		consumer := queue.NewConsumer(cfg.RabbitMQURL, mailer, logger)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorf("activation-consumer: %v", err)
			}
		}()
	}

	var files service.FileStore
	uploadDir := ""
	if cfg.StorageBackend == config.StorageS3 {
		s3, err := storage.NewS3(ctx, cfg.S3)
		if err != nil {
			logger.Fatalf("s3: %v", err)
		}
		files = s3
	} else {
		files = storage.NewLocal(cfg.UploadDir)
		uploadDir = cfg.UploadDir
	}

	forms := form.NewRegistry(form.WorkReportV1)
	access := service.NewAccessControl(users, tokens, revoked)
	userSvc := service.NewUserService(users, tokens, notifier, cfg.BcryptCost, cfg.ActivationURL, logger)
	reportSvc := service.NewReportService(reports, files, forms)

	e := echo.New()
	e.HideBanner = true
	e.Logger = logger
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(echomw.CORS())

	router.Register(e, router.Handlers{
		Auth:    handler.NewAuthHandler(userSvc, access),
		Users:   handler.NewUserHandler(userSvc),
		Reports: handler.NewReportHandler(reportSvc),
		Form:    handler.NewFormHandler(forms),
	}, router.Options{
		Access:      access,
		Redis:       rdb,
		RateLimit:   config.LoadRateLimitConfig(),
		Cache:       config.LoadCacheConfig(),
		UploadDir:   uploadDir,
		UploadLimit: cfg.UploadLimit,
	})

	go func() {
		addr := ":" + cfg.Port
		logger.Infof("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}
