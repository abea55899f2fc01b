package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"github.com/spf13/cobra"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/vikram-software/portal/internal/infrastructure/config"
	"github.com/vikram-software/portal/internal/infrastructure/db/mongo"
	"github.com/vikram-software/portal/pkg/logger"
)

const (
	connectAttempts = 5
	connectBackoff  = 500 * time.Millisecond
)

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "portal",
		Short:         "Business portal API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional dotenv file loaded before the environment")

	root.AddCommand(newServeCmd(&envFile), newSeedCmd(&envFile))
	return root
}

// bootstrap loads configuration and initialises the process logger.
func bootstrap(ctx context.Context, envFile string) (*config.Config, zerolog.Logger, error) {
	cfg, fallbackSecret, err := config.Load(ctx, envFile)
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "portal",
		Env:     cfg.Env,
	})
	if fallbackSecret {
		log.Warn().Msg("JWT_SECRET not set, using development secret")
	}
	return cfg, log, nil
}

// withRetry runs connect with exponential backoff. Every failure is retried.
func withRetry(ctx context.Context, log zerolog.Logger, name string, connect func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(connectAttempts, retry.NewExponential(connectBackoff))
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := connect(ctx); err != nil {
			log.Warn().Err(err).Str("dependency", name).Int("attempt", attempt).Msg("connect failed, retrying")
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("connect %s: %w", name, err)
	}
	return nil
}

// connectMongo connects with retries and returns the client and database.
func connectMongo(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*mongodriver.Client, *mongodriver.Database, error) {
	var (
		client *mongodriver.Client
		db     *mongodriver.Database
	)
	err := withRetry(ctx, log, "mongodb", func(ctx context.Context) error {
		var err error
		client, db, err = mongo.Connect(ctx, mongo.Config{
			URI:         cfg.Mongo.URI,
			Database:    cfg.Mongo.Database,
			MaxPoolSize: cfg.Mongo.MaxPool,
			MinPoolSize: cfg.Mongo.MinPool,
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return client, db, nil
}
