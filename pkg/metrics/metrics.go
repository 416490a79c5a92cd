package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	settlementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlements_total",
			Help: "Total settlement attempts by result",
		},
		[]string{"result"},
	)

	settlementDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "settlement_duration_ms",
			Help:    "Settlement duration in milliseconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"result"},
	)

	jackpotValue = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jackpot_internal_units",
			Help: "Current jackpot pool value in internal fixed-point units",
		},
	)
)

// Settlement result labels.
const (
	ResultWin                 = "win"
	ResultLose                = "lose"
	ResultInvalidBet          = "invalid_bet"
	ResultUserNotFound        = "user_not_found"
	ResultInsufficientBalance = "insufficient_balance"
	ResultError               = "error"
)

// RecordSettlement records one settlement attempt.
func RecordSettlement(result string, started time.Time) {
	settlementsTotal.WithLabelValues(result).Inc()
	settlementDuration.WithLabelValues(result).Observe(float64(time.Since(started).Milliseconds()))
}

// SetJackpot reports the latest durably stored jackpot value.
func SetJackpot(internalUnits int64) {
	jackpotValue.Set(float64(internalUnits))
}
