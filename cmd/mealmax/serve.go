package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/maloquacious/mealmax/internal/api"
	"github.com/maloquacious/mealmax/internal/store"
	"github.com/spf13/cobra"
)

// runServe starts both the public and admin servers with graceful shutdown.
func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	state, err := db.CheckState()
	if err != nil {
		return fmt.Errorf("check store state: %w", err)
	}
	if state != store.StateReady {
		log.Warn("datastore %s is %s; run 'mealmax db create'", cfg.DBPath, state)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	h := api.NewHandler(db, log)
	h.Ready = func() error {
		state, err := db.CheckState()
		if err != nil {
			return err
		}
		if state != store.StateReady {
			return fmt.Errorf("datastore is %s", state)
		}
		return nil
	}
	h.Status = func() map[string]string {
		state, _ := db.CheckState()
		return map[string]string{
			"version":       version.String(),
			"schemaVersion": schemaVersion,
			"buildDate":     buildDate,
			"time":          time.Now().UTC().Format(time.RFC3339),
			"mode":          "running",
			"store":         state.String(),
		}
	}
	h.Shutdown = func() {
		// give the response a moment to flush
		time.Sleep(200 * time.Millisecond)
		stop()
	}

	publicSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: h.PublicRoutes(),
	}

	// Bind admin to 127.0.0.1 only (loopback enforcement)
	adminListener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", cfg.AdminPort))
	if err != nil {
		return fmt.Errorf("admin listener bind failed (loopback only): %w", err)
	}
	adminSrv := &http.Server{
		Handler: h.AdminRoutes(),
	}

	errCh := make(chan error, 2)

	go func() {
		log.Info("public server listening on :%d", cfg.Port)
		if err := publicSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("public server error: %w", err)
		}
	}()

	go func() {
		log.Info("admin server listening on 127.0.0.1:%d (JSON-only)", cfg.AdminPort)
		if err := adminSrv.Serve(adminListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("admin server error: %w", err)
		}
	}()

	if exitAfter > 0 {
		log.Info("exit-after timer set: %s", exitAfter)
		time.AfterFunc(exitAfter, stop)
	}

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
		log.Error("server error: %v", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	_ = publicSrv.Shutdown(shutdownCtx)
	_ = adminSrv.Shutdown(shutdownCtx)
	log.Info("shutdown complete")
	return serveErr
}
