package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNew(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	if m == nil {
		t.Fatal("New() returned nil")
	}

	// Verify all metric fields are initialized
	if m.ChatRequestsTotal == nil {
		t.Error("ChatRequestsTotal is nil")
	}
	if m.ChatDurationSeconds == nil {
		t.Error("ChatDurationSeconds is nil")
	}
	if m.LLMRequestsTotal == nil {
		t.Error("LLMRequestsTotal is nil")
	}
	if m.LLMTokensTotal == nil {
		t.Error("LLMTokensTotal is nil")
	}
	if m.EmbeddingRequestsTotal == nil {
		t.Error("EmbeddingRequestsTotal is nil")
	}
	if m.ScraperRequestsTotal == nil {
		t.Error("ScraperRequestsTotal is nil")
	}
	if m.ScraperDurationSeconds == nil {
		t.Error("ScraperDurationSeconds is nil")
	}
	if m.RefreshTotal == nil {
		t.Error("RefreshTotal is nil")
	}
	if m.ChunksStored == nil {
		t.Error("ChunksStored is nil")
	}
	if m.CacheHitsTotal == nil {
		t.Error("CacheHitsTotal is nil")
	}
	if m.CacheMissesTotal == nil {
		t.Error("CacheMissesTotal is nil")
	}
	if m.HTTPErrorsTotal == nil {
		t.Error("HTTPErrorsTotal is nil")
	}
	if m.RateLimiterDropped == nil {
		t.Error("RateLimiterDropped is nil")
	}
	if m.SingleflightDedupTotal == nil {
		t.Error("SingleflightDedupTotal is nil")
	}
}

func TestRecordChatRequest(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	// Should not panic
	m.RecordChatRequest("personal", "success", 1.2)
	m.RecordChatRequest("general", "success", 0.005)
	m.RecordChatRequest("error", "error", 3.0)
}

func TestRecordLLMMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecordLLMRequest("gemini", "success")
	m.RecordLLMRequest("groq", "fallback")
	m.RecordLLMTokens("gemini", 120, 45)
	m.RecordEmbeddingRequest("success")
	m.RecordEmbeddingRequest("error")
}

func TestRecordScraperRequest(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecordScraperRequest("login", "success", 1.5)
	m.RecordScraperRequest("courses", "error", 2.0)
	m.RecordScraperRequest("weeks", "timeout", 60.0)
}

func TestRecordRefresh(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecordRefresh("success", 42.0, 120)
	m.RecordRefresh("cached", 0.1, 0)
	m.RecordRefresh("error", 5.0, 0)
}

func TestRecordCacheMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecordCacheHit("scrape")
	m.RecordCacheMiss("scrape")
	m.RecordHTTPError("rate_limit", "chat")
}

func TestRecordRateLimiterMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecordRateLimiterWait("scraper", 0.02)
	m.RecordRateLimiterDrop("user")
	m.RecordSingleflightDedup("refresh")
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	New(registry)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	New(registry)
}
