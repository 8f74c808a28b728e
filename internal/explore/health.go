package explore

import (
	"sort"
	"time"

	"aycom/exploreservice/internal/domain"
	"aycom/exploreservice/internal/metrics"
)

// providerHealth tracks per-category upstream behavior for diagnostics.
// It is observational only: a failing category is never skipped or blocked,
// every execution calls every configured provider again.
type providerHealth struct {
	consecutiveFailures int
	lastError           string
	lastKind            domain.ErrorKind
	lastSuccessAt       time.Time
	lastFailureAt       time.Time
	lastLatency         time.Duration
	totalRequests       int64
	totalFailures       int64
	timeoutCount        int64
}

func (s *Service) recordProviderResult(cat domain.Category, err error, kind domain.ErrorKind, latency time.Duration, now time.Time) {
	s.healthMu.Lock()
	defer s.healthMu.Unlock()

	state := s.health[cat]
	if state == nil {
		state = &providerHealth{}
		s.health[cat] = state
	}
	state.totalRequests++
	if latency > 0 {
		state.lastLatency = latency
		metrics.ProviderRequestDuration.WithLabelValues(string(cat)).Observe(latency.Seconds())
	}

	if err == nil {
		state.consecutiveFailures = 0
		state.lastError = ""
		state.lastKind = domain.ErrorKindNone
		state.lastSuccessAt = now
		metrics.ProviderRequestsTotal.WithLabelValues(string(cat), "ok").Inc()
		return
	}

	state.consecutiveFailures++
	state.totalFailures++
	state.lastFailureAt = now
	state.lastError = err.Error()
	state.lastKind = kind
	if kind == domain.ErrorKindTimeout {
		state.timeoutCount++
	}
	metrics.ProviderRequestsTotal.WithLabelValues(string(cat), string(kind)).Inc()
}

// ProviderDiagnostics returns the health view for every category that has
// seen at least one request, ordered by category name.
func (s *Service) ProviderDiagnostics() []domain.ProviderDiagnostics {
	s.healthMu.Lock()
	defer s.healthMu.Unlock()

	items := make([]domain.ProviderDiagnostics, 0, len(s.health))
	for cat, state := range s.health {
		item := domain.ProviderDiagnostics{
			Category:            cat,
			ConsecutiveFailures: state.consecutiveFailures,
			LastError:           state.lastError,
			LastKind:            state.lastKind,
			LastLatencyMS:       state.lastLatency.Milliseconds(),
			TotalRequests:       state.totalRequests,
			TotalFailures:       state.totalFailures,
			TimeoutCount:        state.timeoutCount,
		}
		if !state.lastSuccessAt.IsZero() {
			lastSuccessAt := state.lastSuccessAt
			item.LastSuccessAt = &lastSuccessAt
		}
		if !state.lastFailureAt.IsZero() {
			lastFailureAt := state.lastFailureAt
			item.LastFailureAt = &lastFailureAt
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Category < items[j].Category
	})
	return items
}
