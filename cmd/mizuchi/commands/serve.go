package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mizuchi/internal/cache"
	"mizuchi/internal/handlers"
	"mizuchi/internal/logger"
	"mizuchi/internal/repository"
	"mizuchi/internal/repository/db"
	"mizuchi/internal/server"
	"mizuchi/internal/service"
)

const (
	shutdownTimeout = 10 * time.Second
	cacheTTL        = 30 * time.Second
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.InsecureKey() {
		log.Warnw("SECRET_KEY not set, using a generated insecure key; do not run this in production")
	}

	conn, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Errorw("failed to init sqlite", "err", err, "path", cfg.DBPath)
		return err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	if err := db.EnsureSchema(conn); err != nil {
		log.Errorw("failed to apply schema", "err", err)
		return err
	}

	c := cache.New(cfg.RedisAddr, cacheTTL)
	if c != nil {
		if err := c.Ping(context.Background()); err != nil {
			log.Warnw("redis unreachable, continuing without cache", "err", err, "addr", cfg.RedisAddr)
			c = nil
		}
	}

	repos := repository.NewRepository(conn)
	services := service.NewService(service.Deps{
		Repos:     repos,
		Cache:     c,
		SecretKey: cfg.SecretKey,
	})
	apiHandler := handlers.NewHandler(services, cfg, log)

	srv := &server.Server{}
	go func() {
		log.Infow("starting server", "port", cfg.Port, "debug", cfg.Debug)
		if err := srv.Run(cfg.Port, apiHandler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()

	return waitForShutdown(srv, log)
}

// waitForShutdown blocks on termination signals and drains in-flight
// requests before returning.
func waitForShutdown(srv *server.Server, log *logger.Logger) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
		return err
	}
	return nil
}
