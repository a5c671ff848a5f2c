package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/foxzi/wadesk/internal/config"
	"github.com/foxzi/wadesk/internal/metrics"
	"github.com/foxzi/wadesk/internal/server"
	"github.com/foxzi/wadesk/internal/server/db"
	"github.com/foxzi/wadesk/internal/server/delivery"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

var serveSeed bool

func init() {
	serveCmd.Flags().BoolVar(&serveSeed, "seed", false, "Load demo data when the database has no users")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	logger := cfg.Logging.NewLogger(os.Stdout)
	logger.Info("starting wadesk-server", "version", version)

	database, err := db.New(cfg.Server.DatabasePath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		return err
	}

	if serveSeed {
		if err := seedIfEmpty(database, logger); err != nil {
			return err
		}
	}

	m := metrics.New()

	worker := delivery.New(database.DB, m, logger, delivery.Config{
		Interval: cfg.Server.DeliveryInterval,
		Delay:    cfg.Server.DeliveryInterval,
	})
	worker.Start()
	defer worker.Stop()

	srv := server.New(database.DB, server.Config{
		ListenAddr: cfg.Server.ListenAddr,
		JWTSecret:  cfg.Server.JWTSecret,
		TokenTTL:   cfg.Server.TokenTTL,
		Version:    version,
	}, m, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", "signal", sig)
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
