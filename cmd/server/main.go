package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"hospitalhr/internal/app/server"
	"hospitalhr/internal/platform/config"
	"hospitalhr/internal/platform/db"
	"hospitalhr/internal/platform/logging"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "hospitalhr",
	Short: "Hospital HR employee records service",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := server.New(ctx, config.Load())
		if err != nil {
			return err
		}
		defer app.Close()
		return app.Run(ctx)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending SQL migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		logging.Init(cfg.Environment, cfg.LogLevel)
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required")
		}

		pool, err := db.Connect(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer pool.Close()

		applied, err := db.Migrate(cmd.Context(), pool, cfg.MigrationsDir)
		if err != nil {
			return err
		}
		slog.Info("migrations complete", "applied", len(applied), "versions", applied)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
