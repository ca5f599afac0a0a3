package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		LLMProviders:    []string{"gemini", "groq"},
		MetricsUsername: "prometheus",
		Port:            "8000",
		LogLevel:        "error",
		ShutdownTimeout: 5 * time.Second,
		DataDir:         t.TempDir(),
		CacheTTL:        time.Hour,
		ScraperTimeout:  5 * time.Second,
		Chat: config.ChatConfig{
			ChatTimeout:               10 * time.Second,
			RefreshTimeout:            30 * time.Second,
			UserRateLimitBurst:        15,
			UserRateLimitRefillPerSec: 0.1,
			GlobalRateLimitRPS:        100,
			MaxMessageLength:          1000,
			MaxChunksPerQuery:         5,
		},
	}
}

func newTestApp(t *testing.T) *Application {
	t.Helper()
	app, err := Initialize(context.Background(), testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = app.db.Close()
		app.userLimiter.Stop()
	})
	return app
}

func doRequest(app *Application, method, path string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	app.server.Handler.ServeHTTP(w, req)
	return w
}

func TestLivenessCheck(t *testing.T) {
	app := newTestApp(t)

	w := doRequest(app, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alive")
}

func TestReadinessCheck(t *testing.T) {
	app := newTestApp(t)

	w := doRequest(app, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, "connected", body["database"])

	features, ok := body["features"].(map[string]any)
	require.True(t, ok)
	// No API keys in test config.
	assert.Equal(t, false, features["llm"])
	assert.Equal(t, true, features["hybrid_search"])
}

func TestRootRedirect(t *testing.T) {
	app := newTestApp(t)

	w := doRequest(app, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "github.com")
}

func TestSecurityHeaders(t *testing.T) {
	app := newTestApp(t)

	w := doRequest(app, http.MethodGet, "/healthz", nil)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestChatRejectsMalformedBody(t *testing.T) {
	app := newTestApp(t)

	w := doRequest(app, http.MethodPost, "/api/chat", []byte(`{"student_id":""}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatRejectsOverlongMessage(t *testing.T) {
	app := newTestApp(t)

	long := make([]byte, 0, 1100)
	for range 1100 {
		long = append(long, 'a')
	}
	body, _ := json.Marshal(map[string]string{
		"student_id": "20230001",
		"message":    string(long),
	})

	w := doRequest(app, http.MethodPost, "/api/chat", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "too long")
}

func TestChatUnknownUser(t *testing.T) {
	app := newTestApp(t)

	body, _ := json.Marshal(map[string]string{
		"student_id": "20230001",
		"message":    "운영체제 과제 알려줘",
	})

	w := doRequest(app, http.MethodPost, "/api/chat", body)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "동기화")
}

func TestRefreshRejectsMalformedBody(t *testing.T) {
	app := newTestApp(t)

	w := doRequest(app, http.MethodPost, "/api/refresh", []byte(`{"student_id":"20230001"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChunkCountEmpty(t *testing.T) {
	app := newTestApp(t)

	w := doRequest(app, http.MethodGet, "/api/chunks/20230001/count", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "20230001", body["student_id"])
	assert.Equal(t, float64(0), body["count"])
}

func TestChunkDeleteEmpty(t *testing.T) {
	app := newTestApp(t)

	w := doRequest(app, http.MethodDelete, "/api/chunks/20230001", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"deleted":0`)
}

func TestMetricsWithoutAuth(t *testing.T) {
	app := newTestApp(t)

	// Empty password disables auth.
	w := doRequest(app, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestUserRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Chat.UserRateLimitBurst = 1
	cfg.Chat.UserRateLimitRefillPerSec = 0.001

	app, err := Initialize(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = app.db.Close()
		app.userLimiter.Stop()
	})

	body, _ := json.Marshal(map[string]string{
		"student_id": "20230001",
		"message":    "운영체제 과제 알려줘",
	})

	first := doRequest(app, http.MethodPost, "/api/chat", body)
	assert.Equal(t, http.StatusNotFound, first.Code)

	second := doRequest(app, http.MethodPost, "/api/chat", body)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
