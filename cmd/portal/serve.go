package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	_ "github.com/vikram-software/portal/docs"
	"github.com/vikram-software/portal/internal/api"
	"github.com/vikram-software/portal/internal/api/handler"
	"github.com/vikram-software/portal/internal/core/service"
	"github.com/vikram-software/portal/internal/infrastructure/db/mongo"
	"github.com/vikram-software/portal/internal/infrastructure/db/redis"
	"github.com/vikram-software/portal/internal/infrastructure/queue"
	"github.com/vikram-software/portal/internal/infrastructure/storage/s3"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, *envFile)
		},
	}
}

func serve(ctx context.Context, envFile string) error {
	cfg, log, err := bootstrap(ctx, envFile)
	if err != nil {
		return err
	}

	// --- Storage ---
	mongoClient, db, err := connectMongo(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	var rdb *goredis.Client
	err = withRetry(ctx, log, "redis", func(ctx context.Context) error {
		var err error
		rdb, err = redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		return err
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	presigner, err := s3.NewPresigner(ctx, s3.Config{
		Endpoint:   cfg.S3.Endpoint,
		Region:     cfg.S3.Region,
		Bucket:     cfg.S3.Bucket,
		AccessKey:  cfg.S3.AccessKey,
		SecretKey:  cfg.S3.SecretKey,
		PresignTTL: cfg.S3.PresignTTL,
	})
	if err != nil {
		return err
	}

	// --- Repositories ---
	accounts := mongo.NewAccountRepository(db)
	projects := mongo.NewProjectRepository(db)
	requests := mongo.NewServiceRequestRepository(db)
	messages := mongo.NewMessageRepository(db)
	notificationsRepo := mongo.NewNotificationRepository(db)
	resets := redis.NewResetTokenStore(rdb)

	// --- Notifications ---
	notifications := service.NewNotificationService(notificationsRepo, log.With().Str("component", "notifications").Logger())
	dispatcher := queue.NewDispatcher(cfg.NotifyWorkers, notifications, log.With().Str("component", "dispatcher").Logger())
	dispatcher.Start(context.WithoutCancel(ctx))
	defer dispatcher.Stop()

	// --- Services ---
	svcLog := log.With().Str("component", "service").Logger()
	auth := service.NewAuthService(accounts, resets, cfg.JWTSecret, cfg.JWTExpire, cfg.ResetTokenTTL, svcLog)
	services := api.Services{
		Auth:            auth,
		Accounts:        service.NewAccountService(accounts, svcLog),
		Projects:        service.NewProjectService(projects, accounts, dispatcher, svcLog),
		ServiceRequests: service.NewServiceRequestService(requests, projects, accounts, dispatcher, svcLog),
		Messages:        service.NewMessageService(messages, accounts, dispatcher, svcLog),
		Notifications:   notifications,
		Attachments:     service.NewAttachmentService(presigner, svcLog),
	}

	if cfg.Bootstrap.AdminPassword != "" {
		created, err := auth.EnsureAdmin(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword)
		if err != nil {
			return err
		}
		if created {
			log.Info().Str("email", cfg.Bootstrap.AdminEmail).Msg("bootstrap administrator created")
		}
	} else {
		log.Debug().Msg("BOOTSTRAP_ADMIN_PASSWORD not set, skipping administrator bootstrap")
	}

	// --- HTTP ---
	e := api.NewRouter(services, api.Options{
		JWTSecret:        cfg.JWTSecret,
		AllowedOrigins:   cfg.AllowedOrigins,
		ExposeResetToken: cfg.Env == "development",
		Readiness: map[string]handler.Pinger{
			"mongodb": mongo.Pinger{Client: mongoClient},
			"redis":   redis.Pinger{Client: rdb},
		},
		Logger: log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("http server listening")
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

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
