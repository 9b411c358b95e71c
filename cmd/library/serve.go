package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/R3E-Network/library_service/internal/app/runtime"
	"github.com/R3E-Network/library_service/internal/config"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := runtime.NewLogger(cfg)
			defer log.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt, err := runtime.NewApplication(ctx, cfg, log)
			if err != nil {
				log.WithError(err).Error("failed to initialise application")
				return err
			}

			runErr := rt.Run(ctx)
			if runErr != nil {
				log.WithError(runErr).Error("server stopped")
			} else {
				log.Info("shutdown signal received")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout+5*time.Second)
			defer cancel()
			if err := rt.Shutdown(shutdownCtx); err != nil {
				log.WithError(err).Warn("unclean shutdown")
			}
			return runErr
		},
	}
}
