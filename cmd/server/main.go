/*
main.go - HTTP server entry point

PURPOSE:
  Starts the pay computation API server: configuration, store, engine,
  router, graceful shutdown.

STARTUP SEQUENCE:
  1. Load PAYBOOK_* environment configuration, apply flag overrides
  2. Open the SQLite store (records, settings, users)
  3. Wire the Calculator and, when a token secret is set, the auth service
  4. Start the HTTP server; SIGINT/SIGTERM drains for up to 30s

MODES:
  Single-user (default): no PAYBOOK_TOKEN_SECRET; every request operates
  on the default owner and the auth endpoints are absent.
  Multi-user: set PAYBOOK_TOKEN_SECRET; requests require a bearer token
  obtained from /api/auth/login.

EXAMPLES:
  ./server -db=./data/paybook.db
  PAYBOOK_TOKEN_SECRET=s3cret ./server -port=3000
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shiftwork/paybook/api"
	"github.com/shiftwork/paybook/auth"
	"github.com/shiftwork/paybook/config"
	"github.com/shiftwork/paybook/logger"
	"github.com/shiftwork/paybook/pay"
	"github.com/shiftwork/paybook/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Flag overrides for local development
	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	dev := flag.Bool("dev", cfg.DevMode, "verbose logging")
	flag.Parse()

	log := logger.New(*dev)

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer store.Close()

	var authSvc *auth.Service
	if cfg.TokenSecret != "" {
		authSvc = auth.NewService(store, auth.Config{
			Secret: cfg.TokenSecret,
			Issuer: cfg.TokenIssuer,
		})
		log.Info().Msg("authentication enabled")
	} else {
		log.Info().Msg("running single-user, authentication disabled")
	}

	calc := pay.NewCalculator(store, store, log)
	handler := api.NewHandler(calc, store, store, authSvc, log)
	router := api.NewRouter(handler, authSvc, log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", *port).Str("db", *dbPath).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}
