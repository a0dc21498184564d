package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ferenimedez-stab/Focus-Breaker/internal/config"
	"github.com/ferenimedez-stab/Focus-Breaker/internal/controlplane"
	"github.com/ferenimedez-stab/Focus-Breaker/internal/session"
	"github.com/ferenimedez-stab/Focus-Breaker/internal/store"
	"github.com/spf13/cobra"
)

var (
	listenAddr string
	dbPath     string
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Start the FocusBreaker daemon",
	Long:  `Starts the FocusBreaker daemon which runs the session timers and provides the HTTP API.`,
	RunE:  runDaemon,
}

func init() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: failed to load config: %v (using defaults)", err)
		cfg = config.Default()
	}

	daemonCmd.Flags().StringVar(&listenAddr, "listen", cfg.ListenAddr, "Listen address for the API server")
	daemonCmd.Flags().StringVar(&dbPath, "db", cfg.DBPath, "Path to SQLite database")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	log.Println("Starting FocusBreaker daemon...")

	// Initialize store
	s, err := store.New(dbPath)
	if err != nil {
		return err
	}

	// Create the session manager and fold in any session left behind by a
	// crash or power loss.
	manager := session.NewManager(s, session.Options{})
	if err := manager.RecoverOrphanedSession(); err != nil {
		log.Printf("Warning: orphan recovery failed: %v", err)
	}

	// Create service and server
	service := controlplane.NewService(s, manager)
	server := controlplane.NewServer(service, s, listenAddr)

	// Set up signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Channel to receive server errors
	serverErr := make(chan error, 1)

	// Start server in goroutine
	go func() {
		err := server.Start()
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
			manager.Shutdown()
			s.Close()
			return err
		}
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Println("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Stopping session timers...")
	manager.Shutdown()

	log.Println("Closing database connection...")
	if err := s.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("Shutdown complete")
	return nil
}
