package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/chris/virtual-roulette/pkg/bets"
	"github.com/chris/virtual-roulette/pkg/config"
	"github.com/chris/virtual-roulette/pkg/handlers"
	"github.com/chris/virtual-roulette/pkg/jackpot"
	"github.com/chris/virtual-roulette/pkg/settlement"
	"github.com/chris/virtual-roulette/pkg/storage/postgres"
	"github.com/chris/virtual-roulette/pkg/websockets"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using environment variables")
	}

	cfg, err := config.New()
	if err != nil {
		logger.Error("failed to parse configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Create our storage implementation
	store, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	pool := jackpot.NewMemoryPool()

	hub := websockets.NewHub(logger)
	go hub.Run(ctx)

	engine := settlement.NewEngine(
		store,
		pool,
		bets.NewChecker(),
		hub,
		logger,
		cfg.JackpotContributionBasisPoints,
	)

	router := handlers.NewRouter(engine, pool, store, hub, logger)

	logger.Info("starting server", "port", cfg.HTTPPort)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, router); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
