package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/campusbot/internal/api/http"
	"github.com/i474232898/campusbot/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and sample temperatures in the background",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	b, err := loadBot(cmd)
	if err != nil {
		return err
	}
	defer b.Close()

	sched := scheduler.New(b.sampler, b.cfg.SampleInterval, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start sampler: %w", err)
	}
	defer sched.Stop()

	app := httpapi.NewApp(httpapi.Deps{
		Resolver:     b.resolver,
		Answers:      b.answers,
		Temperatures: b.temps,
		Logger:       logger,
	})

	addr := ":" + b.cfg.Port
	errc := make(chan error, 1)
	go func() {
		errc <- app.Listen(addr)
	}()
	fmt.Fprintf(cmd.OutOrStdout(), "listening on %s\n", addr)

	select {
	case err := <-errc:
		return fmt.Errorf("fiber server stopped: %w", err)
	case <-cmd.Context().Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
		return err
	}
	return nil
}
