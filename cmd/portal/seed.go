package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vikram-software/portal/internal/core/service"
	"github.com/vikram-software/portal/internal/infrastructure/db/mongo"
	"github.com/vikram-software/portal/internal/infrastructure/seed"
)

func newSeedCmd(envFile *string) *cobra.Command {
	var (
		file  string
		reset bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load fixture accounts and service requests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file == "" {
				return errors.New("--file is required")
			}
			res, err := runSeed(cmd.Context(), *envFile, file, reset)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "accounts created: %d, skipped: %d, service requests created: %d\n",
				res.AccountsCreated, res.AccountsSkipped, res.RequestsCreated)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML fixture file")
	cmd.Flags().BoolVar(&reset, "reset", false, "drop every collection before seeding")
	return cmd
}

func runSeed(ctx context.Context, envFile, file string, reset bool) (*seed.Result, error) {
	fixture, err := seed.LoadFile(file)
	if err != nil {
		return nil, err
	}

	cfg, log, err := bootstrap(ctx, envFile)
	if err != nil {
		return nil, err
	}

	client, db, err := connectMongo(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if reset {
		if cfg.IsProduction() {
			return nil, errors.New("refusing to reset a production database")
		}
		if err := mongo.DropAll(ctx, db); err != nil {
			return nil, err
		}
		log.Warn().Str("database", cfg.Mongo.Database).Msg("collections dropped")
	}
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		return nil, err
	}

	accounts := mongo.NewAccountRepository(db)
	seeder := seed.NewSeeder(
		service.NewAccountService(accounts, log),
		accounts,
		mongo.NewServiceRequestRepository(db),
		log,
	)
	return seeder.Apply(ctx, fixture)
}
