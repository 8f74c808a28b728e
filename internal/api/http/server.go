package apihttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"aycom/exploreservice/internal/domain"
	"aycom/exploreservice/internal/explore"
)

// ExploreService is what the HTTP surface needs from the engine.
type ExploreService interface {
	Explore(ctx context.Context, req domain.ExploreRequest) (domain.ExploreSnapshot, error)
	ExploreStream(ctx context.Context, req domain.ExploreRequest) (<-chan domain.ExploreSnapshot, error)
	SetPage(ctx context.Context, cat domain.Category, page int) (domain.ExploreSnapshot, error)
	SetPerPage(ctx context.Context, cat domain.Category, perPage int) (domain.ExploreSnapshot, error)
	LoadMoreMedia(ctx context.Context) (domain.ExploreSnapshot, error)
	Retry(ctx context.Context, cat domain.Category) (domain.ExploreSnapshot, error)
	LoadDefault(ctx context.Context, cat domain.Category) (domain.ExploreSnapshot, error)
	Suggest(ctx context.Context, query string) ([]domain.ProfileResult, error)
	TrendingTags(ctx context.Context, limit int) ([]domain.TagResult, error)
	FacetCategories(ctx context.Context) ([]domain.FacetCategory, error)
	ProviderDiagnostics() []domain.ProviderDiagnostics
}

// RecentsService records searches and lists the recent-search entries.
type RecentsService interface {
	Recents() []domain.RecentSearchEntry
	RecordSearch(query string)
}

type Server struct {
	explore ExploreService
	recents RecentsService
	logger  *slog.Logger
}

type ServerOption func(*Server)

func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func WithRecents(recents RecentsService) ServerOption {
	return func(s *Server) {
		s.recents = recents
	}
}

func NewServer(exploreService ExploreService, options ...ServerOption) *Server {
	server := &Server{
		explore: exploreService,
		logger:  slog.Default(),
	}
	for _, option := range options {
		if option != nil {
			option(server)
		}
	}
	if server.logger == nil {
		server.logger = slog.Default()
	}
	return server
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/explore/stream", s.handleExploreStream)
	mux.HandleFunc("/explore/category", s.handleCategory)
	mux.HandleFunc("/explore/media/more", s.handleMediaMore)
	mux.HandleFunc("/explore/retry", s.handleRetry)
	mux.HandleFunc("/explore/default", s.handleDefault)
	mux.HandleFunc("/explore/suggest", s.handleSuggest)
	mux.HandleFunc("/explore/trending", s.handleTrending)
	mux.HandleFunc("/explore/categories", s.handleFacetCategories)
	mux.HandleFunc("/explore/recent", s.handleRecent)
	mux.HandleFunc("/explore/providers/health", s.handleProvidersHealth)
	mux.HandleFunc("/explore", s.handleExplore)
	traced := otelhttp.NewHandler(loggingMiddleware(s.logger, mux), "explore-service",
		otelhttp.WithFilter(func(r *http.Request) bool {
			p := r.URL.Path
			return p != "/metrics" && p != "/health"
		}),
	)
	return recoveryMiddleware(s.logger, rateLimitMiddleware(50, 100, metricsMiddleware(traced)))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

func parseExploreRequest(r *http.Request) domain.ExploreRequest {
	query := r.URL.Query()
	perPage, _ := strconv.Atoi(strings.TrimSpace(query.Get("per_page")))
	return domain.ExploreRequest{
		Query:   strings.TrimSpace(query.Get("q")),
		Filter:  domain.NormalizeFilter(strings.TrimSpace(query.Get("filter"))),
		Facet:   strings.TrimSpace(query.Get("category")),
		PerPage: perPage,
	}
}

func (s *Server) handleExplore(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/explore" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	req := parseExploreRequest(r)
	snapshot, err := s.explore.Explore(r.Context(), req)
	if err != nil {
		s.writeExploreError(w, req.Query, err)
		return
	}
	if s.recents != nil {
		s.recents.RecordSearch(req.Query)
	}

	failed := 0
	for _, status := range snapshot.Providers {
		if !status.OK {
			failed++
		}
	}
	s.logger.Info("explore completed",
		slog.String("query", truncate(req.Query, 80)),
		slog.Int("categories", len(snapshot.Providers)),
		slog.Int("failed", failed),
		slog.Int64("elapsedMs", snapshot.ElapsedMS),
	)
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleExploreStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal_error", "streaming is not supported")
		return
	}

	req := parseExploreRequest(r)
	ch, err := s.explore.ExploreStream(r.Context(), req)
	if err != nil {
		s.writeExploreError(w, req.Query, err)
		return
	}
	if s.recents != nil {
		s.recents.RecordSearch(req.Query)
	}

	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	if err := writeSSEEvent(w, flusher, "bootstrap", map[string]any{
		"query":  req.Query,
		"status": "started",
	}); err != nil {
		return // Client disconnected
	}

	for snapshot := range ch {
		select {
		case <-r.Context().Done():
			return // Client disconnected
		default:
		}
		event := "update"
		if snapshot.Final {
			event = "final"
		}
		if err := writeSSEEvent(w, flusher, event, snapshot); err != nil {
			return // Client disconnected
		}
	}
	_ = writeSSEEvent(w, flusher, "done", map[string]any{"final": true})
}

// handleCategory serves page and page-size changes for one category.
func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	cat, ok := domain.NormalizeCategory(strings.TrimSpace(r.URL.Query().Get("name")))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", "unknown category")
		return
	}

	if rawPerPage := strings.TrimSpace(r.URL.Query().Get("per_page")); rawPerPage != "" {
		perPage, err := strconv.Atoi(rawPerPage)
		if err != nil || perPage <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid per_page")
			return
		}
		snapshot, err := s.explore.SetPerPage(r.Context(), cat, perPage)
		if err != nil {
			s.writeExploreError(w, "", err)
			return
		}
		writeJSON(w, http.StatusOK, snapshot)
		return
	}

	page, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("page")))
	if err != nil || page <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid page")
		return
	}
	snapshot, err := s.explore.SetPage(r.Context(), cat, page)
	if err != nil {
		s.writeExploreError(w, "", err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleMediaMore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	snapshot, err := s.explore.LoadMoreMedia(r.Context())
	if err != nil {
		s.writeExploreError(w, "", err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	cat, ok := domain.NormalizeCategory(strings.TrimSpace(r.URL.Query().Get("category")))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", "unknown category")
		return
	}
	snapshot, err := s.explore.Retry(r.Context(), cat)
	if err != nil {
		s.writeExploreError(w, "", err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// handleDefault loads a category's browse-mode content.
func (s *Server) handleDefault(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	cat, ok := domain.NormalizeCategory(strings.TrimSpace(r.URL.Query().Get("category")))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", "unknown category")
		return
	}
	snapshot, err := s.explore.LoadDefault(r.Context(), cat)
	if err != nil {
		s.writeExploreError(w, "", err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	items, err := s.explore.Suggest(r.Context(), query)
	if err != nil {
		if errors.Is(err, explore.ErrQueryTooShort) {
			writeJSON(w, http.StatusOK, map[string]any{"items": []any{}})
			return
		}
		s.logger.Warn("suggest failed", slog.String("query", truncate(query, 60)), slog.String("error", err.Error()))
		writeJSON(w, http.StatusOK, map[string]any{"items": []any{}})
		return
	}
	if items == nil {
		items = []domain.ProfileResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	limit, _ := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("limit")))
	items, err := s.explore.TrendingTags(r.Context(), limit)
	if err != nil {
		s.writeExploreError(w, "", err)
		return
	}
	if items == nil {
		items = []domain.TagResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleFacetCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	items, err := s.explore.FacetCategories(r.Context())
	if err != nil {
		s.writeExploreError(w, "", err)
		return
	}
	if items == nil {
		items = []domain.FacetCategory{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// handleRecent lists the recent searches, or records one on POST.
func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.recents == nil {
		writeJSON(w, http.StatusOK, map[string]any{"items": []any{}})
		return
	}
	if r.Method == http.MethodPost {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "missing q")
			return
		}
		s.recents.RecordSearch(query)
	}
	entries := s.recents.Recents()
	if entries == nil {
		entries = []domain.RecentSearchEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": entries})
}

func (s *Server) handleProvidersHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	items := s.explore.ProviderDiagnostics()
	if items == nil {
		items = []domain.ProviderDiagnostics{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) writeExploreError(w http.ResponseWriter, query string, err error) {
	if query != "" {
		s.logger.Warn("explore request failed",
			slog.String("query", truncate(query, 80)),
			slog.String("error", err.Error()),
		)
	}
	switch {
	case errors.Is(err, explore.ErrQueryTooShort):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, explore.ErrUnknownCategory):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, explore.ErrCategoryNotPaginated):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, explore.ErrNoProviders):
		writeError(w, http.StatusServiceUnavailable, "service_unavailable", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "explore failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func writeSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if event != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", event); err != nil {
			return err // Client disconnected
		}
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err // Client disconnected
	}
	flusher.Flush()
	return nil
}
