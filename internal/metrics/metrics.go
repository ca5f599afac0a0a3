package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Chat metrics
	ChatRequestsTotal   *prometheus.CounterVec
	ChatDurationSeconds *prometheus.HistogramVec

	// LLM metrics
	LLMRequestsTotal *prometheus.CounterVec
	LLMTokensTotal   *prometheus.CounterVec

	// Embedding metrics
	EmbeddingRequestsTotal *prometheus.CounterVec

	// Scraper metrics
	ScraperRequestsTotal   *prometheus.CounterVec
	ScraperDurationSeconds *prometheus.HistogramVec

	// ETL metrics
	RefreshTotal           *prometheus.CounterVec
	RefreshDurationSeconds prometheus.Histogram
	ChunksStored           prometheus.Counter

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec

	// Rate limiter metrics
	RateLimiterWaitDuration *prometheus.HistogramVec
	RateLimiterDropped      *prometheus.CounterVec

	// Singleflight metrics
	SingleflightDedupTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		// Chat metrics
		ChatRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "knu_chat_requests_total",
				Help: "Total number of chat requests by flow and status",
			},
			[]string{"flow", "status"}, // flow: personal, common, general, error
		),

		ChatDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "knu_chat_duration_seconds",
				Help:    "Chat request duration in seconds by flow",
				Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30}, // Greeting path is sub-10ms, LLM path can take seconds
			},
			[]string{"flow"},
		),

		// LLM metrics
		LLMRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "knu_llm_requests_total",
				Help: "Total number of LLM calls by provider and status",
			},
			[]string{"provider", "status"}, // status: success, error, fallback
		),

		LLMTokensTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "knu_llm_tokens_total",
				Help: "Total LLM tokens consumed by provider and direction",
			},
			[]string{"provider", "direction"}, // direction: prompt, response
		),

		// Embedding metrics
		EmbeddingRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "knu_embedding_requests_total",
				Help: "Total number of embedding calls by status",
			},
			[]string{"status"}, // status: success, error
		),

		// Scraper metrics
		ScraperRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "knu_scraper_requests_total",
				Help: "Total number of LMS scraper requests by stage and status",
			},
			[]string{"stage", "status"}, // stage: login, courses, weeks
		),

		ScraperDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "knu_scraper_duration_seconds",
				Help:    "LMS scraper request duration in seconds by stage",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60}, // Matches scrape timeout + backoff
			},
			[]string{"stage"},
		),

		// ETL metrics
		RefreshTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "knu_refresh_total",
				Help: "Total number of ETL refresh runs by status",
			},
			[]string{"status"}, // status: success, error, cached
		),

		RefreshDurationSeconds: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "knu_refresh_duration_seconds",
				Help:    "Total duration of one ETL refresh run",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600}, // Scrape plus embedding dominates
			},
		),

		ChunksStored: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "knu_chunks_stored_total",
				Help: "Total number of chunks written to the vector store",
			},
		),

		// Cache metrics
		CacheHitsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "knu_cache_hits_total",
				Help: "Total number of cache hits by module",
			},
			[]string{"module"},
		),

		CacheMissesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "knu_cache_misses_total",
				Help: "Total number of cache misses by module",
			},
			[]string{"module"},
		),

		// HTTP metrics
		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "knu_http_errors_total",
				Help: "Total HTTP errors by type and module",
			},
			[]string{"error_type", "module"}, // error_type: timeout, rate_limit, bad_request, etc.
		),

		// Rate limiter metrics
		RateLimiterWaitDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "knu_rate_limiter_wait_duration_seconds",
				Help:    "Time spent waiting for rate limiter token by limiter type",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5}, // 1ms to 5s
			},
			[]string{"limiter_type"}, // limiter_type: scraper, user, global
		),

		RateLimiterDropped: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "knu_rate_limiter_dropped_total",
				Help: "Total number of requests dropped by rate limiter",
			},
			[]string{"limiter_type"}, // limiter_type: user, global
		),

		// Singleflight metrics
		SingleflightDedupTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "knu_singleflight_dedup_total",
				Help: "Total number of deduplicated requests (requests that waited instead of executing)",
			},
			[]string{"module"}, // module: refresh, chat
		),
	}

	return m
}

// RecordChatRequest records a chat request with its final flow
func (m *Metrics) RecordChatRequest(flow, status string, duration float64) {
	m.ChatRequestsTotal.WithLabelValues(flow, status).Inc()
	m.ChatDurationSeconds.WithLabelValues(flow).Observe(duration)
}

// RecordLLMRequest records an LLM call with status
func (m *Metrics) RecordLLMRequest(provider, status string) {
	m.LLMRequestsTotal.WithLabelValues(provider, status).Inc()
}

// RecordLLMTokens records token consumption of one LLM call
func (m *Metrics) RecordLLMTokens(provider string, promptTokens, responseTokens int) {
	m.LLMTokensTotal.WithLabelValues(provider, "prompt").Add(float64(promptTokens))
	m.LLMTokensTotal.WithLabelValues(provider, "response").Add(float64(responseTokens))
}

// RecordEmbeddingRequest records an embedding call with status
func (m *Metrics) RecordEmbeddingRequest(status string) {
	m.EmbeddingRequestsTotal.WithLabelValues(status).Inc()
}

// RecordScraperRequest records an LMS scraper request with status
func (m *Metrics) RecordScraperRequest(stage, status string, duration float64) {
	m.ScraperRequestsTotal.WithLabelValues(stage, status).Inc()
	m.ScraperDurationSeconds.WithLabelValues(stage).Observe(duration)
}

// RecordRefresh records one ETL refresh run
func (m *Metrics) RecordRefresh(status string, duration float64, chunksStored int) {
	m.RefreshTotal.WithLabelValues(status).Inc()
	m.RefreshDurationSeconds.Observe(duration)
	if chunksStored > 0 {
		m.ChunksStored.Add(float64(chunksStored))
	}
}

// RecordCacheHit records a cache hit
func (m *Metrics) RecordCacheHit(module string) {
	m.CacheHitsTotal.WithLabelValues(module).Inc()
}

// RecordCacheMiss records a cache miss
func (m *Metrics) RecordCacheMiss(module string) {
	m.CacheMissesTotal.WithLabelValues(module).Inc()
}

// RecordHTTPError records HTTP error metrics
func (m *Metrics) RecordHTTPError(errorType, module string) {
	m.HTTPErrorsTotal.WithLabelValues(errorType, module).Inc()
}

// RecordRateLimiterWait records time spent waiting for rate limiter
func (m *Metrics) RecordRateLimiterWait(limiterType string, duration float64) {
	m.RateLimiterWaitDuration.WithLabelValues(limiterType).Observe(duration)
}

// RecordRateLimiterDrop records a request dropped by rate limiter
func (m *Metrics) RecordRateLimiterDrop(limiterType string) {
	m.RateLimiterDropped.WithLabelValues(limiterType).Inc()
}

// RecordSingleflightDedup records a deduplicated request
func (m *Metrics) RecordSingleflightDedup(module string) {
	m.SingleflightDedupTotal.WithLabelValues(module).Inc()
}
