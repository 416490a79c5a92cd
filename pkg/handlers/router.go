// Package handlers assembles the HTTP surface around the settlement engine.
// Routing, session auth, rate limiting and CORS are external concerns;
// everything here is a thin mapping from HTTP to the engine and the read
// repositories.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	accountshandler "github.com/chris/virtual-roulette/pkg/handlers/accounts"
	jackpothandler "github.com/chris/virtual-roulette/pkg/handlers/jackpot"
	roulettehandler "github.com/chris/virtual-roulette/pkg/handlers/roulette"
	"github.com/chris/virtual-roulette/pkg/jackpot"
	"github.com/chris/virtual-roulette/pkg/middleware"
	"github.com/chris/virtual-roulette/pkg/storage"
	"github.com/chris/virtual-roulette/pkg/websockets"
)

// NewRouter wires every handler onto a chi router.
func NewRouter(
	engine roulettehandler.Settler,
	pool jackpot.Pool,
	store storage.Store,
	hub *websockets.Hub,
	logger *slog.Logger,
) http.Handler {
	rouletteH := roulettehandler.NewRouletteHandler(engine, logger)
	jackpotH := jackpothandler.NewJackpotHandler(pool)
	accountsH := accountshandler.NewAccountsHandler(store, store)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/roulette/bet", rouletteH.PlaceBet)
		r.Get("/jackpot", jackpotH.GetCurrent)
		r.Get("/accounts/{id}", accountsH.GetAccount)
		r.Get("/accounts/{id}/bets", accountsH.ListBets)
	})

	r.Get("/ws/jackpot", hub.ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
