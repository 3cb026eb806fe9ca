package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flowuphq/flowup/internal/config"
	"github.com/flowuphq/flowup/internal/server"
	"github.com/flowuphq/flowup/pkg/logger"
)

var (
	configPath string
	version    = "0.1.0"
	gitCommit  = "unknown"
	buildTime  = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "flowup",
	Short: "FlowUp - Social media publishing backend",
	Long:  `FlowUp schedules and publishes posts to Instagram and Facebook, proxies Google Business Profile, and serves the marketing dashboard API.`,
	RunE:  runServer,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("FlowUp %s\n", version)
		fmt.Printf("Git commit: %s\n", gitCommit)
		fmt.Printf("Build time: %s\n", buildTime)
	},
}

// publish-due runs a single scan-and-publish pass and exits, for
// external cron setups that prefer a process over the HTTP trigger.
var publishDueCmd = &cobra.Command{
	Use:   "publish-due",
	Short: "Run one publish pass over due posts and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, appLogger, err := loadConfigAndLogger()
		if err != nil {
			return err
		}
		defer appLogger.Sync()

		srv, err := server.NewServer(cfg, appLogger)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		if err := srv.Orchestrator.ProcessDuePosts(cmd.Context()); err != nil {
			return fmt.Errorf("publish pass failed: %w", err)
		}

		appLogger.Info("Publish pass completed")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/server.yaml", "config file path")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(publishDueCmd)
}

func loadConfigAndLogger() (*config.Config, *zap.Logger, error) {
	// .env is optional; environment overrides still apply without it.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	appLogger, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, appLogger, nil
}

func runServer(*cobra.Command, []string) error {
	cfg, appLogger, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	appLogger.Info("Starting FlowUp server", zap.String("version", version))

	// Create server
	srv, err := server.NewServer(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Start server
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := srv.Start(ctx); err != nil {
			appLogger.Error("Server failed to start", zap.Error(err))
			cancel()
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		appLogger.Info("Shutting down server...")
	case <-ctx.Done():
		appLogger.Info("Server context cancelled")
	}

	// Graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	appLogger.Info("Server exited")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
