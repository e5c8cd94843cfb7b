// cmd/main.go

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SecretEndpoint-Go/internal/app"
	"SecretEndpoint-Go/internal/config"
	"SecretEndpoint-Go/internal/logging"
	"SecretEndpoint-Go/internal/secrets"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "secret-endpoint",
		Short:         "serve the latest value of a managed secret over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("secret-endpoint version %s\n", Version)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	bootLogger, err := zap.NewProduction()
	if err != nil {
		return errors.Wrap(err, "build logger")
	}

	cfg, err := config.Load(bootLogger)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		bootLogger.Warn("Falling back to info logging", zap.Error(err))
		logger = bootLogger
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	accessor, err := secrets.Open(ctx, cfg)
	if err != nil {
		return errors.Wrapf(err, "open %s secret backend", cfg.Provider)
	}
	defer accessor.Close()

	application := app.NewApp(cfg, accessor, logger)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           application.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	logger.Info("Server started", zap.String("addr", cfg.Addr))

	// Graceful shutdown on interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return errors.Wrap(err, "server failed")
	case <-quit:
	}
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "server forced to shutdown")
	}

	logger.Info("Server exiting")
	return nil
}
