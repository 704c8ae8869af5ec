package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/warp/avalanche-engine/api"
	"github.com/warp/avalanche-engine/internal/config"
	"github.com/warp/avalanche-engine/internal/logger"
	"github.com/warp/avalanche-engine/store"
	"github.com/warp/avalanche-engine/store/memory"
	"github.com/warp/avalanche-engine/store/postgres"
	"github.com/warp/avalanche-engine/store/redis"
	"github.com/warp/avalanche-engine/store/sqlite"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve game sessions over HTTP",
	Long: `Start the HTTP API. Sessions are kept in the backend named by
STORE_BACKEND; idle sessions are dropped after SESSION_TTL when it is set.

On SIGINT/SIGTERM the server stops accepting connections, waits up to 30s
for active requests and then closes the store.`,
	Example: `  # In-memory sessions on port 3000
  STORE_BACKEND=memory avalanche serve --port 3000

  # Postgres-backed sessions that expire after a day
  STORE_BACKEND=postgres DATABASE_URL=postgres://... SESSION_TTL=24h avalanche serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("port", "", "HTTP server port (overrides PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	port := cfg.Port
	if p, _ := cmd.Flags().GetString("port"); p != "" {
		port = p
	}

	defaultGame, err := cfg.GameJSON()
	if err != nil {
		return fmt.Errorf("default game: %w", err)
	}

	ctx := context.Background()
	st, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize %s store: %w", cfg.StoreBackend, err)
	}
	defer st.Close()

	handler := api.NewHandler(st, defaultGame, logger.WithComponent("api"))
	router := api.NewRouter(handler, cfg.CORSOrigins)

	// Redis expires idle keys itself.
	if cfg.StoreBackend != config.BackendRedis {
		janitor := api.NewSessionJanitor(handler, cfg.SessionTTL)
		janitor.Start()
		defer janitor.Stop()
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", port).
			Str("store", cfg.StoreBackend).
			Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("Server stopped")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return memory.New(), nil
	case config.BackendSQLite:
		st, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.BackendPostgres:
		st, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.BackendRedis:
		st, err := redis.New(ctx, cfg.RedisAddr, cfg.SessionTTL)
		if err != nil {
			return nil, err
		}
		return st, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
