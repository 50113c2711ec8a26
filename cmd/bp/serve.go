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

	"github.com/alfredjeanlab/blueprint/internal/server"
	bpsync "github.com/alfredjeanlab/blueprint/internal/sync"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the HTTP API",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTPAddr = addr
		}

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		pub, err := openPublisher(cfg)
		if err != nil {
			st.Close()
			return err
		}
		svc := &services{store: st, publisher: pub}
		defer svc.Close()
		dests := openDestinations(context.Background(), cfg)

		srv := server.New(st, pub, dests, server.Defaults{
			ProjectID:     cfg.ProjectID,
			Category:      cfg.Category,
			StatusMapping: cfg.StatusMapping,
		}, logger)
		if cfg.AuthToken == "" {
			logger.Warn("auth disabled (BLUEPRINT_AUTH_TOKEN not set)")
		}

		httpServer := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           srv.NewHTTPHandler(cfg.AuthToken),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		// Start sync scheduler if any destinations are configured.
		var scheduler *bpsync.Scheduler
		if cfg.SyncInterval > 0 && len(dests) > 0 && cfg.DatabaseURL != "" {
			scheduler = bpsync.NewScheduler(st, cfg.ProjectID, dests, cfg.SyncInterval, logger)
			scheduler.Start()
			logger.Info("sync scheduler started", "interval", cfg.SyncInterval)
		}

		// Wait for SIGINT or SIGTERM.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		if scheduler != nil {
			scheduler.Stop()
			logger.Info("sync scheduler stopped")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("shutdown complete")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default $BLUEPRINT_HTTP_ADDR or :8080)")
}
