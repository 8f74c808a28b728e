package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	apihttp "aycom/exploreservice/internal/api/http"
	"aycom/exploreservice/internal/app"
	"aycom/exploreservice/internal/explore"
	"aycom/exploreservice/internal/metrics"
	"aycom/exploreservice/internal/providers/communities"
	"aycom/exploreservice/internal/providers/profiles"
	"aycom/exploreservice/internal/providers/tags"
	"aycom/exploreservice/internal/providers/threads"
	"aycom/exploreservice/internal/telemetry"
)

func main() {
	_ = godotenv.Load()

	cfg := app.LoadConfig()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	metrics.Register(prometheus.DefaultRegisterer)

	shutdownTracer, err := telemetry.Init(context.Background(), "explore-service")
	if err != nil {
		logger.Warn("otel init failed", slog.String("error", err.Error()))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	logger.Info("configuration loaded",
		slog.String("service", "explore-service"),
		slog.String("httpAddr", cfg.HTTPAddr),
		slog.String("logLevel", cfg.LogLevel),
		slog.String("logFormat", cfg.LogFormat),
		slog.Duration("providerTimeout", cfg.ProviderTimeout),
		slog.Duration("debounceWindow", cfg.DebounceWindow),
		slog.String("profileEndpoint", cfg.ProfileEndpoint),
		slog.String("threadEndpoint", cfg.ThreadEndpoint),
		slog.String("communityEndpoint", cfg.CommunityEndpoint),
		slog.String("tagEndpoint", cfg.TagEndpoint),
		slog.Bool("hasRedis", strings.TrimSpace(cfg.RedisURL) != ""),
	)

	newClient := func() *http.Client {
		return &http.Client{
			Timeout:   cfg.ProviderTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	svc := explore.NewService(explore.Providers{
		Profiles: profiles.NewClient(profiles.Config{
			Endpoint:  cfg.ProfileEndpoint,
			UserAgent: cfg.UserAgent,
			Client:    newClient(),
		}),
		Threads: threads.NewClient(threads.Config{
			Endpoint:  cfg.ThreadEndpoint,
			UserAgent: cfg.UserAgent,
			Client:    newClient(),
		}),
		Communities: communities.NewClient(communities.Config{
			Endpoint:  cfg.CommunityEndpoint,
			UserAgent: cfg.UserAgent,
			Client:    newClient(),
		}),
		Tags: tags.NewClient(tags.Config{
			Endpoint:  cfg.TagEndpoint,
			UserAgent: cfg.UserAgent,
			Client:    newClient(),
		}),
	},
		explore.WithProviderTimeout(cfg.ProviderTimeout),
		explore.WithDefaultPerPage(cfg.DefaultPerPage),
		explore.WithLogger(logger),
	)

	coordinator := explore.NewCoordinator(svc,
		explore.WithQuietWindow(cfg.DebounceWindow),
		explore.WithRecentStore(buildRecentStore(cfg, logger)),
		explore.WithCoordinatorLogger(logger),
	)

	handler := apihttp.NewServer(svc,
		apihttp.WithLogger(logger),
		apihttp.WithRecents(coordinator),
	).Handler()
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// SSE streaming (/explore/stream) can legitimately exceed short
		// write timeouts; rely on provider timeouts instead.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	logger.Info("explore service started",
		slog.String("addr", cfg.HTTPAddr),
		slog.Duration("timeout", cfg.ProviderTimeout),
	)

	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown error", slog.String("error", err.Error()))
	}
	logger.Info("explore service stopped")
}

func newLogger(levelRaw, formatRaw string) *slog.Logger {
	level := parseLogLevel(levelRaw)
	options := &slog.HandlerOptions{Level: level}
	format := strings.ToLower(strings.TrimSpace(formatRaw))
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, options))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, options))
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildRecentStore(cfg app.Config, logger *slog.Logger) explore.RecentStore {
	redisURL := strings.TrimSpace(cfg.RedisURL)
	if redisURL == "" {
		return explore.NewMemoryRecentStore()
	}
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Warn("invalid redis url, recent searches kept in memory", slog.String("error", err.Error()))
		return explore.NewMemoryRecentStore()
	}
	client := redis.NewClient(redisOpts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not reachable, recent searches kept in memory", slog.String("error", err.Error()))
		return explore.NewMemoryRecentStore()
	}
	logger.Info("redis connected", slog.String("addr", redisOpts.Addr))
	return explore.NewRedisRecentStore(client, cfg.RecentSearchUserTTL)
}
