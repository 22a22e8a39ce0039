package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fentz26/recur/internal/audit"
	"github.com/fentz26/recur/internal/board"
	"github.com/fentz26/recur/internal/scheduler"
	"github.com/fentz26/recur/internal/server"
	"github.com/fentz26/recur/internal/store"
	"github.com/fentz26/recur/internal/tasks"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Start the recur daemon",
	Long:  `Starts the recur daemon which keeps the sorted task list current and serves it over HTTP.`,
	RunE:  runDaemon,
}

func init() {
	daemonCmd.Flags().String("listen", "", "Listen address for the API server (overrides config)")
	daemonCmd.Flags().String("db", "", "Path to SQLite database (overrides config)")
	daemonCmd.Flags().String("order", "", "Task order: recurring or simple (overrides config)")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	if err := applyDaemonFlags(cmd); err != nil {
		return err
	}
	order, err := tasks.OrderByName(cfg.Order)
	if err != nil {
		return err
	}

	log.Println("Starting recur daemon...")

	// Initialize store
	s, err := store.New(cfg.DB)
	if err != nil {
		return err
	}

	// Initialize components
	clock := scheduler.SystemClock{}
	b := board.New(s, audit.NewWriter(s), order)
	srv := server.NewServer(b, s, clock, cfg.Listen)

	sched := scheduler.New(b, clock, s, &cfg.Scheduler)
	sched.Start()
	log.Printf("Loaded %d tasks (order: %s)", len(b.View()), cfg.Order)

	// Set up signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Channel to receive server errors
	serverErr := make(chan error, 1)

	// Start server in goroutine
	go func() {
		err := srv.Start()
		if err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for shutdown signal or server error
	select {
	case sig := <-sigCh:
		log.Printf("Received signal %v, initiating graceful shutdown...", sig)
	case err := <-serverErr:
		if err != nil {
			log.Printf("Server error: %v", err)
			sched.Stop()
			s.Close()
			return err
		}
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Println("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	sched.Stop()
	stats := sched.GetStats()
	log.Printf("Scheduler folded %d ticks, %d reloads, %d events", stats.Ticks, stats.Reloads, stats.Events)

	log.Println("Closing database connection...")
	if err := s.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("Shutdown complete")
	return nil
}

// applyDaemonFlags lets explicitly set flags override the config file.
func applyDaemonFlags(cmd *cobra.Command) error {
	for name, field := range map[string]*string{
		"listen": &cfg.Listen,
		"db":     &cfg.DB,
		"order":  &cfg.Order,
	} {
		if !cmd.Flags().Changed(name) {
			continue
		}
		v, err := cmd.Flags().GetString(name)
		if err != nil {
			return err
		}
		*field = v
	}
	return cfg.Validate()
}
