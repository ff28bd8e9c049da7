package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/prepstack-backend/internal/platform/logger"
)

// Metrics is safe to use through a nil pointer; every method is a no-op when
// metrics are disabled.
type Metrics struct {
	apiRequests       *CounterVec
	apiLatency        *HistogramVec
	apiInflight       *Gauge
	progressMutations *CounterVec
	leaderboardCache  *CounterVec
	sseClients        *Gauge
	dbStats           *GaugeVec
	redisUp           *Gauge
	redisPing         *Gauge

	scrapeInterval time.Duration
}

var current atomic.Pointer[Metrics]

// Init builds the registry when enabled and records it for Current.
func Init(enabled bool, scrapeInterval time.Duration) *Metrics {
	if !enabled {
		return nil
	}
	m := New(scrapeInterval)
	current.Store(m)
	return m
}

func Current() *Metrics { return current.Load() }

func New(scrapeInterval time.Duration) *Metrics {
	if scrapeInterval <= 0 {
		scrapeInterval = 10 * time.Second
	}
	return &Metrics{
		apiRequests: NewCounterVec("prep_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"prep_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		apiInflight:       NewGauge("prep_api_inflight_requests", "In-flight API requests."),
		progressMutations: NewCounterVec("prep_progress_mutations_total", "Progress writes by kind and outcome.", []string{"kind", "outcome"}),
		leaderboardCache:  NewCounterVec("prep_leaderboard_cache_total", "Leaderboard cache lookups by result.", []string{"result"}),
		sseClients:        NewGauge("prep_sse_clients", "Connected SSE clients on this instance."),
		dbStats:           NewGaugeVec("prep_db_pool", "database/sql pool statistics.", []string{"stat"}),
		redisUp:           NewGauge("prep_redis_up", "Redis connectivity (1=up, 0=down)."),
		redisPing:         NewGauge("prep_redis_ping_seconds", "Redis ping latency in seconds."),
		scrapeInterval:    scrapeInterval,
	}
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.progressMutations,
		m.leaderboardCache,
		m.sseClients,
		m.dbStats,
		m.redisUp,
		m.redisPing,
	}
	for _, mw := range writers {
		if err := mw.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// IncProgressMutation counts a streak/counter/points write. outcome is one of
// "ok", "no_change", "not_found", "invalid" or "error".
func (m *Metrics) IncProgressMutation(kind, outcome string) {
	if m == nil {
		return
	}
	m.progressMutations.Inc(kind, outcome)
}

func (m *Metrics) IncLeaderboardCache(result string) {
	if m == nil {
		return
	}
	m.leaderboardCache.Inc(result)
}

func (m *Metrics) SSEClientConnected() {
	if m == nil {
		return
	}
	m.sseClients.Inc()
}

func (m *Metrics) SSEClientDisconnected() {
	if m == nil {
		return
	}
	m.sseClients.Dec()
}

func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(m.scrapeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.dbStats.Set(float64(stats.OpenConnections), "open_connections")
				m.dbStats.Set(float64(stats.InUse), "in_use")
				m.dbStats.Set(float64(stats.Idle), "idle")
				m.dbStats.Set(float64(stats.WaitCount), "wait_count")
				m.dbStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
				m.dbStats.Set(float64(stats.MaxOpenConnections), "max_open_connections")
			}
		}
	}()
}

// StartRedisCollector pings through the shared client; it does not close it.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb goredis.UniversalClient) {
	if m == nil || rdb == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(m.scrapeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
