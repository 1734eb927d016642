// Package metrics collects Prometheus metrics for the savings API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// MetricsCollector is the recording surface used by use cases, clients and middleware.
type MetricsCollector interface {
	RecordDeposit(symbol string, amountUSD decimal.Decimal)
	RecordOracleRequest(outcome string, duration time.Duration)
	RecordPriceCache(hit bool)
	RecordPush(sent, failed int)
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
	RecordStreakResets(count int64)
}

// Oracle request outcomes
const (
	OutcomeSuccess     = "success"
	OutcomeError       = "error"
	OutcomeRateLimited = "rate_limited"
)

// Collector records metrics into a Prometheus registry.
type Collector struct {
	deposits       *prometheus.CounterVec
	depositedUSD   *prometheus.CounterVec
	oracleRequests *prometheus.CounterVec
	oracleLatency  prometheus.Histogram
	priceCache     *prometheus.CounterVec
	pushMessages   *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpLatency    *prometheus.HistogramVec
	streakResets   prometheus.Counter
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		deposits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "savingz_deposits_total",
			Help: "Recorded deposits by asset symbol",
		}, []string{"symbol"}),
		depositedUSD: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "savingz_deposited_usd_total",
			Help: "USD amount recorded by asset symbol",
		}, []string{"symbol"}),
		oracleRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "savingz_price_oracle_requests_total",
			Help: "Price oracle requests by outcome",
		}, []string{"outcome"}),
		oracleLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "savingz_price_oracle_latency_seconds",
			Help:    "Price oracle request latency",
			Buckets: prometheus.DefBuckets,
		}),
		priceCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "savingz_price_cache_total",
			Help: "Price cache lookups by result",
		}, []string{"result"}),
		pushMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "savingz_push_messages_total",
			Help: "Push messages by delivery outcome",
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "savingz_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "savingz_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		streakResets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "savingz_streak_resets_total",
			Help: "Streaks reset by the expiry job",
		}),
	}

	reg.MustRegister(
		c.deposits,
		c.depositedUSD,
		c.oracleRequests,
		c.oracleLatency,
		c.priceCache,
		c.pushMessages,
		c.httpRequests,
		c.httpLatency,
		c.streakResets,
	)

	return c
}

// RecordDeposit counts one deposit and its USD amount
func (c *Collector) RecordDeposit(symbol string, amountUSD decimal.Decimal) {
	c.deposits.WithLabelValues(symbol).Inc()
	c.depositedUSD.WithLabelValues(symbol).Add(amountUSD.InexactFloat64())
}

// RecordOracleRequest counts an oracle call and observes its latency
func (c *Collector) RecordOracleRequest(outcome string, duration time.Duration) {
	c.oracleRequests.WithLabelValues(outcome).Inc()
	if outcome != OutcomeRateLimited {
		c.oracleLatency.Observe(duration.Seconds())
	}
}

// RecordPriceCache counts a cache hit or miss
func (c *Collector) RecordPriceCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.priceCache.WithLabelValues(result).Inc()
}

// RecordPush counts dispatched push messages
func (c *Collector) RecordPush(sent, failed int) {
	c.pushMessages.WithLabelValues("sent").Add(float64(sent))
	c.pushMessages.WithLabelValues("failed").Add(float64(failed))
}

// RecordHTTPRequest counts a served request
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordStreakResets counts streaks zeroed by one job run
func (c *Collector) RecordStreakResets(count int64) {
	c.streakResets.Add(float64(count))
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
