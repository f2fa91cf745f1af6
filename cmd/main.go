// Package main is the usersvc command line. It loads the configuration,
// sets up logging and dispatches to the serve and migrate subcommands.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"usersvc/internal/config"
	"usersvc/pkg/logger"
	"usersvc/pkg/storage/postgres"
)

func postgresOptions(cfg *config.Config) postgres.Options {
	db := cfg.Database

	return postgres.Options{
		Username:           db.Username,
		Password:           db.Password,
		Host:               db.Host,
		Port:               db.Port,
		Database:           db.DatabaseName,
		SslMode:            db.SslMode,
		ConnMaxLifetime:    db.ConnMaxLifetime,
		ConnMaxIdleTime:    db.ConnMaxIdleTime,
		MaxOpenConnections: db.MaxOpenConnections,
		MaxIdleConnections: db.MaxIdleConnections,
	}
}

// getPostgres connects to PostgreSQL or exits. The returned func closes the pool.
func getPostgres(ctx context.Context, cfg *config.Config) (*postgres.PgSQL, func()) {
	pg, err := postgres.New(ctx, postgresOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not connect to postgres", zap.Error(err))
	}

	return pg, func() {
		logger.Info(ctx, "closing postgres pool...")
		if err := pg.Close(); err != nil {
			logger.Warn(ctx, "could not close postgres pool", zap.Error(err))
		}
	}
}

func newRootCommand(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:          "usersvc",
		Short:        "User registration service",
		SilenceUsage: true,
	}
	// -c is read with the flag package before cobra runs, the persistent flag
	// only keeps cobra from rejecting it.
	root.PersistentFlags().StringP("config", "c", "config.yml", "Config File Path")

	root.AddCommand(
		serveCommand(cfg),
		migrateCommand(cfg),
	)

	return root
}

func main() {
	configPath := flag.String("c", "config.yml", "The config file path")
	flag.Parse()

	log.Println("loading config ...")
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("could not load config: ", err)
	}

	logger.Setup(cfg.Environment, cfg.LogLevel)
	ctx := context.Background()

	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "captured panic, exiting...", zap.Any("panic", p))
			_ = logger.Get(ctx).Sync()

			panic(p)
		}
	}()

	err = newRootCommand(cfg).Execute()
	_ = logger.Get(ctx).Sync()
	if err != nil {
		os.Exit(1) //nolint: gocritic
	}
}
