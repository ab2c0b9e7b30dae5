package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/bulkload/internal/core"
	"github.com/JonMunkholm/bulkload/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the import API and run the cron schedule",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	service := newService()
	server := web.NewServer(service, cfg.Server)

	// Cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	schedulerDone := make(chan struct{})
	if cfg.Schedule.Cron != "" {
		go func() {
			defer close(schedulerDone)
			err := service.StartScheduler(jobCtx, core.ScheduleConfig{
				Spec:       cfg.Schedule.Cron,
				Group:      cfg.Schedule.Group,
				RunOnStart: cfg.Schedule.RunOnStart,
			})
			if err != nil {
				slog.Error("scheduler stopped", "error", err)
			}
		}()
	} else {
		close(schedulerDone)
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Stop cron ticks. A scheduled run already in flight keeps its own
		// context and is drained below.
		cancelJobs()
		select {
		case <-schedulerDone:
		case <-shutdownCtx.Done():
		}

		if st := service.Status(); st.Limiter.Active > 0 {
			slog.Info("waiting for import run to complete", "run_id", st.RunID)
		}
		if err := service.WaitForRuns(shutdownCtx); err != nil {
			slog.Warn("import run did not complete in time", "error", err)
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr(), "entities", core.EntityCount())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	slog.Info("server stopped")
	return nil
}
