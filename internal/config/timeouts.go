// Package config provides centralized timeout constants for the application.
//
// These values are tuned around three realities:
//   - The Kangnam e-Campus portal is slow under load, so scraping gets
//     generous timeouts and a per-request rate limit.
//   - Chat requests chain LLM calls (resolve, optimize, generate) plus
//     a vector search, so the chat budget is measured in tens of seconds.
//   - A full refresh scrapes every course and embeds every chunk, which
//     can take minutes for a heavy semester.
package config

import "time"

// Chat timeouts
const (
	// ChatProcessing is the timeout for answering a single chat message.
	// Covers course resolution, query optimization, retrieval and the
	// final generation, each of which may retry with backoff.
	ChatProcessing = 60 * time.Second

	// ChatHTTPRead is the HTTP server read timeout for API requests.
	ChatHTTPRead = 10 * time.Second

	// ChatHTTPWrite is the HTTP server write timeout.
	// Should accommodate ChatProcessing + response serialization.
	ChatHTTPWrite = 65 * time.Second

	// ChatHTTPIdle is the HTTP server idle timeout for keep-alive connections.
	ChatHTTPIdle = 120 * time.Second
)

// Scraper timeouts
const (
	// ScraperRequest is the timeout for a single HTTP request to the
	// e-Campus portal. The portal can be slow during peak hours.
	ScraperRequest = 60 * time.Second

	// ScraperRetryInitial is the initial delay before retrying a failed request.
	// Uses exponential backoff: 4s -> 8s -> 16s -> 32s -> 64s
	ScraperRetryInitial = 4 * time.Second

	// ScraperRateLimit is the minimum delay between consecutive scraping requests.
	// Prevents overwhelming the portal and getting blocked.
	ScraperRateLimit = 2 * time.Second
)

// Refresh timeouts
const (
	// RefreshTimeout bounds a full ETL refresh: scraping every course,
	// chunking, embedding and replacing the vector index.
	RefreshTimeout = 10 * time.Minute
)

// Database timeouts
const (
	// DatabaseBusyTimeout is SQLite busy_timeout pragma value.
	// Handles concurrent write contention during refresh runs.
	DatabaseBusyTimeout = 30 * time.Second

	// DatabaseConnMaxLifetime is the maximum lifetime of database connections.
	// Prevents stale connections and allows connection pool refresh.
	DatabaseConnMaxLifetime = time.Hour
)

// Background job intervals
const (
	// CacheCleanupInterval is how often expired scrape snapshots are deleted.
	CacheCleanupInterval = 12 * time.Hour

	// CacheCleanupInitialDelay is the delay before first cache cleanup.
	// Allows server to stabilize before running cleanup.
	CacheCleanupInitialDelay = 5 * time.Minute

	// RateLimiterCleanupInterval is how often inactive user rate limiters are cleaned.
	RateLimiterCleanupInterval = 5 * time.Minute
)

// Graceful shutdown
const (
	// GracefulShutdown is the timeout for graceful server shutdown.
	// Allows in-flight requests to complete before forceful termination.
	GracefulShutdown = 30 * time.Second
)
