package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"strreg/internal/api"
	"strreg/internal/config"
	"strreg/internal/logging"
	"strreg/internal/registry"
	"strreg/internal/seed"

	"github.com/spf13/cobra"
)

var (
	servePort    int
	serveHost    string
	serveBackend string
	serveSeed    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP API server",
	Long: `Start the string registry HTTP API server.

Records live in memory by default and are lost when the process exits.
Flags override values from the config file and environment.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config, PORT or 3000)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to")
	serveCmd.Flags().StringVar(&serveBackend, "storage", "", "Storage backend: memory or sqlite")
	serveCmd.Flags().StringVar(&serveSeed, "seed", "", "TOML or YAML file of values to load at startup")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyServeFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New(logging.Config{
		Format: logging.ParseFormat(cfg.Logging.Format),
		Level:  cfg.Logging.Level,
	})

	ctx := context.Background()
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	svc := registry.NewService(store, logger)

	if cfg.Seed.File != "" {
		f, err := seed.Load(cfg.Seed.File)
		if err != nil {
			return err
		}
		if _, err := seed.Apply(ctx, svc, f, logger); err != nil {
			return fmt.Errorf("apply seed: %w", err)
		}
	}

	server := api.NewServer(cfg.Addr(), svc, logger, api.ServerConfig{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		CORSOrigin:   cfg.Server.CORSOrigin,
	})

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting string registry server",
			"addr", cfg.Addr(),
			"storage", cfg.Storage.Backend,
		)
		serverErr <- server.Start()
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server error", "error", err.Error())
			return err
		}
	case sig := <-shutdown:
		logger.Info("Received shutdown signal", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during shutdown", "error", err.Error())
			return err
		}
		logger.Info("Server stopped gracefully")
	}

	return nil
}

// applyServeFlags copies explicitly set flags over the loaded config.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serveHost
	}
	if cmd.Flags().Changed("storage") {
		cfg.Storage.Backend = serveBackend
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed.File = serveSeed
	}
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (registry.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		store, err := registry.OpenSQLite(ctx, cfg.Storage.DSN, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return registry.NewMemoryStore(), nil
	}
}
