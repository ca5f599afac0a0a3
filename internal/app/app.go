// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/chat"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/config"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/ctxutil"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/etl"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/genai"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/lms"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/logger"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/metrics"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/rag"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/ratelimit"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/resolver"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/sentry"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/storage"
)

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg           *config.Config
	logger        *logger.Logger
	db            *storage.DB
	metrics       *metrics.Metrics
	registry      *prometheus.Registry
	lmsClient     *lms.Client
	generator     genai.Generator
	searcher      *rag.HybridSearcher
	names         *rag.CourseNameStore
	pipeline      *etl.Pipeline
	router        *chat.Router
	userLimiter   *ratelimit.PerKeyLimiter
	globalLimiter *ratelimit.Limiter
	server        *http.Server
	wg            sync.WaitGroup // Track background goroutines for graceful shutdown
}

// Initialize creates and initializes a new application with all dependencies.
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	log := logger.New(cfg.LogLevel).WithField("service", "kangnam-chatbot")
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}
	slog.SetDefault(log.Logger)

	log.Info("Initializing application...")

	if err := sentry.Initialize(cfg.SentryConfig()); err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	if sentry.IsEnabled() {
		log.WithField("environment", cfg.SentryEnvironment).Info("Sentry error tracking enabled")
	}

	db, err := storage.New(cfg.SQLitePath(), cfg.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	log.WithField("path", cfg.SQLitePath()).WithField("cache_ttl", cfg.CacheTTL).Info("Database connected")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)

	lmsClient := lms.NewClient(cfg.ScraperTimeout, cfg.ScraperMaxRetries, log)

	var generator genai.Generator
	if cfg.HasLLMProvider() {
		generator, err = genai.NewGenerator(ctx, cfg.LLMConfig(), log)
		if err != nil {
			log.WithError(err).Warn("LLM initialization failed, continuing without generation")
			generator = nil
		} else {
			log.WithField("provider", generator.Provider().String()).Info("LLM features enabled")
		}
	} else {
		log.Warn("No LLM provider configured, chat responses will be degraded")
	}

	embeddingFunc := genai.NewEmbeddingFunc(cfg.GeminiAPIKey)

	store, err := rag.NewVectorStore(cfg.VectorDir(), embeddingFunc, db, log)
	if err != nil {
		return nil, fmt.Errorf("vector store: %w", err)
	}
	keyword := rag.NewKeywordIndex(log)
	searcher := rag.NewHybridSearcher(store, keyword, log)

	names, err := rag.NewCourseNameStore(store.DB(), embeddingFunc, log)
	if err != nil {
		return nil, fmt.Errorf("course name store: %w", err)
	}

	courseResolver := resolver.New(generator, names, log)
	pipeline := etl.NewPipeline(lmsClient, db, searcher, names, log)
	chatRouter := chat.NewRouter(generator, searcher, courseResolver, log)

	userLimiter := ratelimit.NewPerKeyLimiter(ratelimit.PerKeyConfig{
		MaxTokens:     cfg.Chat.UserRateLimitBurst,
		RefillRate:    cfg.Chat.UserRateLimitRefillPerSec,
		CleanupPeriod: config.RateLimiterCleanupInterval,
	})
	globalLimiter := ratelimit.New(cfg.Chat.GlobalRateLimitRPS, cfg.Chat.GlobalRateLimitRPS)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	if sentry.IsEnabled() {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(log))

	app := &Application{
		cfg:           cfg,
		logger:        log,
		db:            db,
		metrics:       m,
		registry:      registry,
		lmsClient:     lmsClient,
		generator:     generator,
		searcher:      searcher,
		names:         names,
		pipeline:      pipeline,
		router:        chatRouter,
		userLimiter:   userLimiter,
		globalLimiter: globalLimiter,
	}

	router.GET("/", app.redirectToGitHub)
	router.GET("/healthz", app.livenessCheck)
	router.HEAD("/healthz", app.livenessCheck)
	router.GET("/readyz", app.readinessCheck)
	router.HEAD("/readyz", app.readinessCheck)
	router.POST("/api/chat", app.handleChat)
	router.POST("/api/refresh", app.handleRefresh)
	router.GET("/api/chunks/:student_id/count", app.handleChunkCount)
	router.DELETE("/api/chunks/:student_id", app.handleChunkDelete)
	router.GET("/metrics",
		metricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword),
		gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: config.ChatHTTPRead,
		ReadTimeout:       config.ChatHTTPRead,
		WriteTimeout:      config.ChatHTTPWrite,
		IdleTimeout:       config.ChatHTTPIdle,
	}

	log.Info("Initialization complete")
	return app, nil
}

// Run starts the HTTP server and background jobs, then blocks until a
// shutdown signal arrives.
//
// Graceful shutdown sequence:
//  1. Receive shutdown signal (SIGINT/SIGTERM)
//  2. Cancel context so background jobs stop
//  3. Wait for background jobs to complete
//  4. Close resources in order (HTTP server, LLM clients, database, rate limiters)
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.startBackgroundJobs(ctx)
	a.startHTTPServer()

	sig := a.waitForShutdownSignal()
	a.logger.WithField("signal", sig.String()).Info("Received shutdown signal")

	cancel()

	a.logger.Info("Waiting for background jobs to finish...")
	start := time.Now()
	a.wg.Wait()
	a.logger.WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("All background jobs completed")

	return a.shutdown()
}

// startBackgroundJobs starts all background goroutines tracked by WaitGroup.
func (a *Application) startBackgroundJobs(ctx context.Context) {
	a.wg.Go(func() {
		a.cacheCleanup(ctx)
	})
}

// startHTTPServer starts the HTTP server in a goroutine.
func (a *Application) startHTTPServer() {
	go func() {
		a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.WithError(err).Error("HTTP server error")
		}
	}()
}

// waitForShutdownSignal blocks until SIGINT/SIGTERM is received.
func (a *Application) waitForShutdownSignal() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return <-quit
}

// shutdown performs graceful shutdown of HTTP server and resources.
// This method should be called AFTER background jobs have completed.
func (a *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Stopping HTTP server...")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
	}

	a.logger.Info("Closing resources...")

	if a.generator != nil {
		if err := a.generator.Close(); err != nil {
			a.logger.WithError(err).WithField("component", "generator").Error("Component close error")
		}
	}

	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).WithField("component", "database").Error("Component close error")
	}

	if a.userLimiter != nil {
		a.userLimiter.Stop()
	}

	if sentry.IsEnabled() {
		sentry.Flush(2 * time.Second)
	}

	a.logger.Info("Shutdown complete")
	return nil
}

// cacheCleanup periodically removes expired scrape snapshots. Snapshot
// expiry is TTL-based, so a fixed interval is enough.
func (a *Application) cacheCleanup(ctx context.Context) {
	a.logger.Debug("Cache cleanup job started")
	defer a.logger.Debug("Cache cleanup job stopped")

	select {
	case <-ctx.Done():
		return
	case <-time.After(config.CacheCleanupInitialDelay):
	}

	a.runCacheCleanup(ctx)

	ticker := time.NewTicker(config.CacheCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			a.logger.Debug("Cache cleanup received shutdown signal")
			return
		case <-ticker.C:
			a.runCacheCleanup(ctx)
		}
	}
}

// runCacheCleanup performs the actual cache cleanup operation.
func (a *Application) runCacheCleanup(ctx context.Context) {
	startTime := time.Now()
	a.logger.Info("Starting cache cleanup...")

	deleted, err := a.db.DeleteExpiredSnapshots(ctx)
	if err != nil {
		a.logger.WithError(err).Error("Failed to cleanup expired snapshots")
		return
	}

	a.logger.WithField("deleted", deleted).
		WithField("duration_ms", time.Since(startTime).Milliseconds()).
		Info("Cache cleanup completed")
}

func (a *Application) redirectToGitHub(c *gin.Context) {
	c.Redirect(http.StatusTemporaryRedirect, "https://github.com/CodeBBakGoSu/kangnam-Unv-chatbot")
}

func (a *Application) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

func (a *Application) getFeatures() map[string]bool {
	return map[string]bool{
		"llm":           a.generator != nil && a.generator.IsEnabled(),
		"embeddings":    a.cfg.GeminiAPIKey != "",
		"hybrid_search": a.searcher != nil,
	}
}

func (a *Application) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := a.db.Conn().PingContext(ctx); err != nil {
		a.logger.WithError(err).Warn("Readiness check failed: database unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "database unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"database": "connected",
		"index": gin.H{
			"chunks":       a.searcher.Store().TotalCount(),
			"course_names": a.names.Count(),
		},
		"features": a.getFeatures(),
	})
}

// securityHeadersMiddleware adds security headers to responses.
func securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'none'")
		c.Header("X-Permitted-Cross-Domain-Policies", "none")
		c.Next()
	}
}

// loggingMiddleware logs HTTP requests with status-based log levels:
// 5xx=Error, 4xx=Warn, 404=Debug, 3xx/2xx=Debug.
func loggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = c.GetHeader("X-Request-ID")
		}
		if requestID != "" {
			ctx := ctxutil.WithRequestID(c.Request.Context(), requestID)
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		entry := log.WithField("http_method", method).
			WithField("http_path", path).
			WithField("http_status", status).
			WithField("duration_ms", duration.Milliseconds()).
			WithField("client_ip", c.ClientIP())

		if requestID != "" {
			entry = entry.WithField("request_id", requestID)
		}

		if status >= 500 {
			entry.Error("HTTP request failed")
		} else if status >= 400 && status != 404 {
			entry.Warn("HTTP request rejected")
		} else if status == 404 {
			entry.Debug("HTTP request not found")
		} else {
			entry.Debug("HTTP request completed")
		}
	}
}
