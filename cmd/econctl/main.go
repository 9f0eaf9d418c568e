// Package main implements econctl, the operator CLI: seed the reference series, build the
// macroeconomic report and refresh a user's stored insights.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Gelzieny/remix-of-economic-insight/internal/config"
	"github.com/Gelzieny/remix-of-economic-insight/internal/db"
	"github.com/Gelzieny/remix-of-economic-insight/internal/logging"
)

var (
	// logLevel overrides LOG_LEVEL for the CLI.
	logLevel string
	version  = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "econctl",
	Short: "Operator CLI for the economic insights backend",
	Long: `econctl runs maintenance tasks directly against the database.
Configuration comes from the environment and an optional .env file, like the server.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); defaults to LOG_LEVEL")
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(insightsCmd)
}

// env is what every subcommand needs: config, a console logger and an open database.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *sql.DB
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	logger, err := logging.New(logging.Config{Level: level, Format: "console"}, nil)
	if err != nil {
		return nil, err
	}
	conn, err := db.Open(ctx, cfg.DatabaseURL, db.PoolConfig{MaxOpenConns: 2})
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	return &env{cfg: cfg, logger: logger, db: conn}, nil
}

func (e *env) Close() {
	_ = e.db.Close()
	_ = logging.Sync(e.logger)
}
