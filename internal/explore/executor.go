package explore

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"aycom/exploreservice/internal/domain"
	"aycom/exploreservice/internal/metrics"
)

// maxConcurrentCategories bounds the fan-out. Six categories exist, so this
// effectively lets one execution run fully parallel while keeping retries
// and page changes from piling up connections.
const maxConcurrentCategories = 6

var ErrCategoryNotPaginated = errors.New("category does not support page selection")

type preparedExplore struct {
	query   string
	filter  domain.Filter
	facet   string
	perPage int
	// hashtag is set when the query starts with '#'; top and latest route
	// through the hashtag lookup instead of full-text search.
	hashtag string
	token   domain.SearchToken
}

func (s *Service) prepareExplore(req domain.ExploreRequest) (preparedExplore, error) {
	if !s.providers.configured() {
		return preparedExplore{}, ErrNoProviders
	}
	query := strings.TrimSpace(req.Query)
	if len([]rune(query)) < minQueryLength {
		return preparedExplore{}, ErrQueryTooShort
	}
	if runes := []rune(query); len(runes) > maxQueryRunes {
		query = string(runes[:maxQueryRunes])
	}
	perPage := req.PerPage
	if perPage <= 0 {
		perPage = s.perPage
	}
	prepared := preparedExplore{
		query:   query,
		filter:  domain.NormalizeFilter(string(req.Filter)),
		facet:   strings.TrimSpace(req.Facet),
		perPage: perPage,
	}
	if strings.HasPrefix(query, "#") {
		if tag := strings.TrimSpace(strings.TrimPrefix(query, "#")); tag != "" {
			prepared.hashtag = tag
		}
	}
	return prepared, nil
}

// Explore runs one full search execution: fan out to every configured
// category provider, apply results under the minted token and return the
// fan-in snapshot. Provider failures are folded into per-category statuses,
// never into the returned error.
func (s *Service) Explore(ctx context.Context, req domain.ExploreRequest) (domain.ExploreSnapshot, error) {
	prepared, err := s.prepareExplore(req)
	if err != nil {
		return domain.ExploreSnapshot{}, err
	}
	return s.executeExplore(ctx, prepared, nil), nil
}

// ExploreStream is the streaming variant: one snapshot per completed
// category plus a final fan-in snapshot, then the channel closes.
func (s *Service) ExploreStream(ctx context.Context, req domain.ExploreRequest) (<-chan domain.ExploreSnapshot, error) {
	prepared, err := s.prepareExplore(req)
	if err != nil {
		return nil, err
	}
	ch := make(chan domain.ExploreSnapshot, 8)
	go func() {
		defer close(ch)
		emit := func(snapshot domain.ExploreSnapshot) {
			select {
			case ch <- snapshot:
			case <-ctx.Done():
			}
		}
		emit(s.executeExplore(ctx, prepared, emit))
	}()
	return ch, nil
}

func (s *Service) executeExplore(ctx context.Context, prepared preparedExplore, emit func(domain.ExploreSnapshot)) domain.ExploreSnapshot {
	runCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	prepared.token = s.NextToken()
	categories := s.activeCategories()
	s.cache.BeginSearch(prepared.token, prepared.query, prepared.filter, prepared.perPage, categories)
	s.rememberRequest(domain.ExploreRequest{
		Query:   prepared.query,
		Filter:  prepared.filter,
		Facet:   prepared.facet,
		PerPage: prepared.perPage,
	})

	startedAt := time.Now()
	statuses := make([]domain.ProviderStatus, len(categories))

	s.logger.Info("explore execution started",
		"token", int64(prepared.token),
		"query", prepared.query,
		"filter", string(prepared.filter),
		"categories", len(categories),
	)

	var mu sync.Mutex
	sem := semaphore.NewWeighted(maxConcurrentCategories)
	var wg sync.WaitGroup
	for i, cat := range categories {
		wg.Add(1)
		go func(index int, cat domain.Category) {
			defer wg.Done()

			if err := sem.Acquire(runCtx, 1); err != nil {
				s.cache.Fail(cat, prepared.token, domain.ErrorKindNetwork)
				mu.Lock()
				statuses[index] = domain.ProviderStatus{
					Category: cat,
					Error:    "context cancelled",
					Kind:     domain.ErrorKindNetwork,
				}
				mu.Unlock()
				return
			}
			defer sem.Release(1)

			status := s.fetchCategory(runCtx, prepared, cat, 1)
			mu.Lock()
			statuses[index] = status
			snapshot := s.buildSnapshot(prepared.token, statuses, startedAt)
			mu.Unlock()

			if emit != nil {
				snapshot.Completed = cat
				emit(snapshot)
			}
		}(i, cat)
	}
	wg.Wait()

	final := s.buildSnapshot(prepared.token, statuses, startedAt)
	final.Final = true
	final.Suggested = RankProfiles(prepared.query, final.State.People.Items)

	failed := 0
	for _, status := range statuses {
		if !status.OK {
			failed++
		}
	}
	s.logger.Info("explore execution completed",
		"token", int64(prepared.token),
		"query", prepared.query,
		"categories", len(statuses),
		"failed", failed,
		"elapsedMs", final.ElapsedMS,
	)
	return final
}

// activeCategories lists the categories the configured provider set can
// serve. Missing providers simply produce no status, not a failure.
func (s *Service) activeCategories() []domain.Category {
	categories := make([]domain.Category, 0, 6)
	if s.providers.Tags != nil {
		categories = append(categories, domain.CategoryTrending)
	}
	if s.providers.Threads != nil {
		categories = append(categories, domain.CategoryTop, domain.CategoryLatest, domain.CategoryMedia)
	}
	if s.providers.Profiles != nil {
		categories = append(categories, domain.CategoryPeople)
	}
	if s.providers.Communities != nil {
		categories = append(categories, domain.CategoryCommunities)
	}
	return categories
}

// fetchCategory performs one provider call for one category and applies the
// outcome to the cache under the prepared token. It is the single funnel for
// fan-out, page changes and retries.
func (s *Service) fetchCategory(ctx context.Context, prepared preparedExplore, cat domain.Category, page int) domain.ProviderStatus {
	status := domain.ProviderStatus{Category: cat}
	perPage := s.cache.PageState(cat).PerPage
	if perPage <= 0 {
		perPage = prepared.perPage
	}

	startedAt := time.Now()
	raw, err := s.callProvider(ctx, prepared, cat, page, perPage)
	latency := time.Since(startedAt)

	if err != nil {
		kind := classifyFailure(err)
		s.recordProviderResult(cat, err, kind, latency, time.Now())
		s.cache.Fail(cat, prepared.token, kind)
		status.Error = err.Error()
		status.Kind = kind
		s.logger.Warn("category provider failed",
			"category", string(cat),
			"token", int64(prepared.token),
			"kind", string(kind),
			"elapsedMs", latency.Milliseconds(),
			"error", err.Error(),
		)
		return status
	}
	if raw == nil {
		s.recordProviderResult(cat, errEmptyPayload, domain.ErrorKindEmpty, latency, time.Now())
		s.cache.Fail(cat, prepared.token, domain.ErrorKindEmpty)
		status.Error = errEmptyPayload.Error()
		status.Kind = domain.ErrorKindEmpty
		return status
	}

	count, ok := s.applyPayload(prepared, cat, page, raw)
	if !ok {
		s.recordProviderResult(cat, errMalformedPayload, domain.ErrorKindMalformed, latency, time.Now())
		s.cache.Fail(cat, prepared.token, domain.ErrorKindMalformed)
		status.Error = errMalformedPayload.Error()
		status.Kind = domain.ErrorKindMalformed
		return status
	}

	s.recordProviderResult(cat, nil, domain.ErrorKindNone, latency, time.Now())
	status.OK = true
	status.Count = count
	return status
}

var (
	errEmptyPayload     = errors.New("empty upstream payload")
	errMalformedPayload = errors.New("malformed upstream payload")
)

func (s *Service) callProvider(ctx context.Context, prepared preparedExplore, cat domain.Category, page, perPage int) (any, error) {
	switch cat {
	case domain.CategoryPeople:
		if s.providers.Profiles == nil {
			return nil, ErrNoProviders
		}
		return s.providers.Profiles.SearchProfiles(ctx, prepared.query, page, perPage, domain.ProfileQueryOptions{
			Filter: prepared.filter,
		})
	case domain.CategoryTop, domain.CategoryLatest:
		if prepared.hashtag != "" && s.providers.Tags != nil {
			return s.providers.Tags.ThreadsByHashtag(ctx, prepared.hashtag, page, perPage)
		}
		if s.providers.Threads == nil {
			return nil, ErrNoProviders
		}
		sortBy := domain.SortByPopular
		if cat == domain.CategoryLatest {
			sortBy = domain.SortByRecent
		}
		return s.providers.Threads.SearchThreads(ctx, prepared.query, page, perPage, domain.ThreadQueryOptions{
			Filter: prepared.filter,
			Facet:  prepared.facet,
			SortBy: sortBy,
		})
	case domain.CategoryMedia:
		if s.providers.Threads == nil {
			return nil, ErrNoProviders
		}
		return s.providers.Threads.SearchThreadsWithMedia(ctx, prepared.query, page, perPage, domain.ThreadQueryOptions{
			Filter: prepared.filter,
			Facet:  prepared.facet,
			SortBy: domain.SortByRecent,
		})
	case domain.CategoryCommunities:
		if s.providers.Communities == nil {
			return nil, ErrNoProviders
		}
		return s.providers.Communities.SearchCommunities(ctx, prepared.query, page, perPage)
	case domain.CategoryTrending:
		if s.providers.Tags == nil {
			return nil, ErrNoProviders
		}
		return s.providers.Tags.TrendingTags(ctx, perPage)
	default:
		return nil, ErrUnknownCategory
	}
}

func (s *Service) applyPayload(prepared preparedExplore, cat domain.Category, page int, raw any) (count int, ok bool) {
	switch cat {
	case domain.CategoryPeople:
		items, total, dropped, wellFormed := normalizeProfilePage(raw)
		if !wellFormed {
			return 0, false
		}
		countDropped(cat, dropped)
		AnnotateProfiles(prepared.query, items)
		s.cache.ApplyProfiles(prepared.token, items, page, total)
		return len(items), true
	case domain.CategoryTop, domain.CategoryLatest, domain.CategoryMedia:
		items, total, dropped, wellFormed := normalizeThreadPage(raw)
		if !wellFormed {
			return 0, false
		}
		countDropped(cat, dropped)
		if cat == domain.CategoryMedia {
			items = withMediaOnly(items)
		}
		s.cache.ApplyThreads(cat, prepared.token, items, page, total)
		return len(items), true
	case domain.CategoryCommunities:
		items, total, dropped, wellFormed := normalizeCommunityPage(raw)
		if !wellFormed {
			return 0, false
		}
		countDropped(cat, dropped)
		s.cache.ApplyCommunities(prepared.token, items, page, total)
		return len(items), true
	case domain.CategoryTrending:
		items, dropped, wellFormed := normalizeTagList(raw)
		if !wellFormed {
			return 0, false
		}
		countDropped(cat, dropped)
		s.cache.ApplyTags(prepared.token, items)
		return len(items), true
	default:
		return 0, false
	}
}

func countDropped(cat domain.Category, dropped int) {
	if dropped > 0 {
		metrics.NormalizerDroppedItems.WithLabelValues(string(cat)).Add(float64(dropped))
	}
}

// withMediaOnly drops threads without any media attachment. The upstream
// media search should already filter, but payloads have leaked bare threads
// before.
func withMediaOnly(items []domain.ThreadResult) []domain.ThreadResult {
	filtered := items[:0]
	for _, item := range items {
		if len(item.Media) > 0 {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

func classifyFailure(err error) domain.ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrorKindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.ErrorKindTimeout
	}
	return domain.ErrorKindNetwork
}

func (s *Service) buildSnapshot(token domain.SearchToken, statuses []domain.ProviderStatus, startedAt time.Time) domain.ExploreSnapshot {
	filled := make([]domain.ProviderStatus, 0, len(statuses))
	for _, status := range statuses {
		if status.Category != "" {
			filled = append(filled, status)
		}
	}
	return domain.ExploreSnapshot{
		Token:     token,
		State:     s.cache.Snapshot(),
		Providers: filled,
		ElapsedMS: time.Since(startedAt).Milliseconds(),
	}
}

// SetPage moves one category to the requested page under a fresh token. The
// call is refused while that category is still loading; media pages through
// LoadMoreMedia instead.
func (s *Service) SetPage(ctx context.Context, cat domain.Category, page int) (domain.ExploreSnapshot, error) {
	if cat == domain.CategoryMedia || cat == domain.CategoryTrending {
		return domain.ExploreSnapshot{}, ErrCategoryNotPaginated
	}
	if _, known := domain.NormalizeCategory(string(cat)); !known {
		return domain.ExploreSnapshot{}, ErrUnknownCategory
	}
	req, active := s.lastRequest()
	if !active {
		return domain.ExploreSnapshot{}, ErrQueryTooShort
	}
	prepared, err := s.prepareExplore(req)
	if err != nil {
		return domain.ExploreSnapshot{}, err
	}
	target := s.cache.PageState(cat).WithPage(page)
	return s.runCategory(ctx, prepared, cat, target.Page)
}

// SetPerPage changes a category's page size, which resets it to the first
// page and refetches.
func (s *Service) SetPerPage(ctx context.Context, cat domain.Category, perPage int) (domain.ExploreSnapshot, error) {
	if _, known := domain.NormalizeCategory(string(cat)); !known {
		return domain.ExploreSnapshot{}, ErrUnknownCategory
	}
	req, active := s.lastRequest()
	if !active {
		return domain.ExploreSnapshot{}, ErrQueryTooShort
	}
	prepared, err := s.prepareExplore(req)
	if err != nil {
		return domain.ExploreSnapshot{}, err
	}
	s.cache.SetPerPage(cat, perPage)
	return s.runCategory(ctx, prepared, cat, 1)
}

// Retry re-runs a single failed category under a fresh token. Retries are
// always manual; nothing in the engine retries on its own.
func (s *Service) Retry(ctx context.Context, cat domain.Category) (domain.ExploreSnapshot, error) {
	if _, known := domain.NormalizeCategory(string(cat)); !known {
		return domain.ExploreSnapshot{}, ErrUnknownCategory
	}
	req, active := s.lastRequest()
	if !active {
		return domain.ExploreSnapshot{}, ErrQueryTooShort
	}
	prepared, err := s.prepareExplore(req)
	if err != nil {
		return domain.ExploreSnapshot{}, err
	}
	page := s.cache.PageState(cat).Page
	return s.runCategory(ctx, prepared, cat, page)
}

// runCategory is the single-category execution path shared by page changes,
// page-size changes and retries.
func (s *Service) runCategory(ctx context.Context, prepared preparedExplore, cat domain.Category, page int) (domain.ExploreSnapshot, error) {
	runCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	prepared.token = s.NextToken()
	if !s.cache.TryBeginCategory(cat, prepared.token) {
		// Still in flight; the caller gets the current state unchanged.
		return s.buildSnapshot(prepared.token, nil, time.Now()), nil
	}

	startedAt := time.Now()
	status := s.fetchCategory(runCtx, prepared, cat, page)
	snapshot := s.buildSnapshot(prepared.token, []domain.ProviderStatus{status}, startedAt)
	snapshot.Completed = cat
	snapshot.Final = true
	return snapshot, nil
}

// LoadMoreMedia fetches the next media page and appends it to the
// accumulated list. Calls made while a fetch is in flight or after the last
// page are silent no-ops.
func (s *Service) LoadMoreMedia(ctx context.Context) (domain.ExploreSnapshot, error) {
	req, active := s.lastRequest()
	if !active {
		return domain.ExploreSnapshot{}, ErrQueryTooShort
	}
	prepared, err := s.prepareExplore(req)
	if err != nil {
		return domain.ExploreSnapshot{}, err
	}

	nextPage, hasMore, loading := s.cache.MediaProgress()
	if loading || !hasMore {
		return s.buildSnapshot(s.CurrentToken(), nil, time.Now()), nil
	}

	runCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	prepared.token = s.NextToken()
	if !s.cache.TryBeginCategory(domain.CategoryMedia, prepared.token) {
		return s.buildSnapshot(prepared.token, nil, time.Now()), nil
	}

	startedAt := time.Now()
	perPage := s.cache.PageState(domain.CategoryMedia).PerPage
	raw, callErr := s.providers.Threads.SearchThreadsWithMedia(runCtx, prepared.query, nextPage, perPage, domain.ThreadQueryOptions{
		Filter: prepared.filter,
		Facet:  prepared.facet,
		SortBy: domain.SortByRecent,
	})
	latency := time.Since(startedAt)

	status := domain.ProviderStatus{Category: domain.CategoryMedia}
	switch {
	case callErr != nil:
		kind := classifyFailure(callErr)
		s.recordProviderResult(domain.CategoryMedia, callErr, kind, latency, time.Now())
		s.cache.Fail(domain.CategoryMedia, prepared.token, kind)
		status.Error = callErr.Error()
		status.Kind = kind
	case raw == nil:
		s.recordProviderResult(domain.CategoryMedia, errEmptyPayload, domain.ErrorKindEmpty, latency, time.Now())
		s.cache.Fail(domain.CategoryMedia, prepared.token, domain.ErrorKindEmpty)
		status.Error = errEmptyPayload.Error()
		status.Kind = domain.ErrorKindEmpty
	default:
		items, total, dropped, wellFormed := normalizeThreadPage(raw)
		if !wellFormed {
			s.recordProviderResult(domain.CategoryMedia, errMalformedPayload, domain.ErrorKindMalformed, latency, time.Now())
			s.cache.Fail(domain.CategoryMedia, prepared.token, domain.ErrorKindMalformed)
			status.Error = errMalformedPayload.Error()
			status.Kind = domain.ErrorKindMalformed
			break
		}
		countDropped(domain.CategoryMedia, dropped)
		items = withMediaOnly(items)
		s.cache.AppendMedia(prepared.token, items, nextPage, total)
		s.recordProviderResult(domain.CategoryMedia, nil, domain.ErrorKindNone, latency, time.Now())
		status.OK = true
		status.Count = len(items)
	}

	snapshot := s.buildSnapshot(prepared.token, []domain.ProviderStatus{status}, startedAt)
	snapshot.Completed = domain.CategoryMedia
	snapshot.Final = true
	return snapshot, nil
}

// LoadDefault fills a category with its browse-mode content, shown when no
// search is active: suggested profiles, all communities, trending tags.
// Thread categories have no browse default and return the current state
// untouched.
func (s *Service) LoadDefault(ctx context.Context, cat domain.Category) (domain.ExploreSnapshot, error) {
	switch cat {
	case domain.CategoryPeople:
		if s.providers.Profiles == nil {
			return domain.ExploreSnapshot{}, ErrNoProviders
		}
	case domain.CategoryCommunities:
		if s.providers.Communities == nil {
			return domain.ExploreSnapshot{}, ErrNoProviders
		}
	case domain.CategoryTrending:
		if s.providers.Tags == nil {
			return domain.ExploreSnapshot{}, ErrNoProviders
		}
	default:
		return s.buildSnapshot(s.CurrentToken(), nil, time.Now()), nil
	}

	runCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	token := s.NextToken()
	if !s.cache.TryBeginCategory(cat, token) {
		return s.buildSnapshot(token, nil, time.Now()), nil
	}

	startedAt := time.Now()
	perPage := s.cache.PageState(cat).PerPage
	status := domain.ProviderStatus{Category: cat}
	fail := func(err error, kind domain.ErrorKind, latency time.Duration) {
		s.recordProviderResult(cat, err, kind, latency, time.Now())
		s.cache.Fail(cat, token, kind)
		status.Error = err.Error()
		status.Kind = kind
	}

	switch cat {
	case domain.CategoryPeople:
		raw, err := s.providers.Profiles.SearchProfiles(runCtx, "", 1, perPage, domain.ProfileQueryOptions{Sort: "popular"})
		latency := time.Since(startedAt)
		if err != nil {
			fail(err, classifyFailure(err), latency)
			break
		}
		items, total, dropped, wellFormed := normalizeProfilePage(raw)
		if !wellFormed {
			fail(errMalformedPayload, domain.ErrorKindMalformed, latency)
			break
		}
		countDropped(cat, dropped)
		s.cache.ApplyProfiles(token, items, 1, total)
		s.recordProviderResult(cat, nil, domain.ErrorKindNone, latency, time.Now())
		status.OK = true
		status.Count = len(items)
	case domain.CategoryCommunities:
		raw, err := s.providers.Communities.SearchCommunities(runCtx, "", 1, perPage)
		latency := time.Since(startedAt)
		if err != nil {
			fail(err, classifyFailure(err), latency)
			break
		}
		items, total, dropped, wellFormed := normalizeCommunityPage(raw)
		if !wellFormed {
			fail(errMalformedPayload, domain.ErrorKindMalformed, latency)
			break
		}
		countDropped(cat, dropped)
		s.cache.ApplyCommunities(token, items, 1, total)
		s.recordProviderResult(cat, nil, domain.ErrorKindNone, latency, time.Now())
		status.OK = true
		status.Count = len(items)
	case domain.CategoryTrending:
		raw, err := s.providers.Tags.TrendingTags(runCtx, perPage)
		latency := time.Since(startedAt)
		if err != nil {
			fail(err, classifyFailure(err), latency)
			break
		}
		items, dropped, wellFormed := normalizeTagList(raw)
		if !wellFormed {
			fail(errMalformedPayload, domain.ErrorKindMalformed, latency)
			break
		}
		countDropped(cat, dropped)
		s.cache.ApplyTags(token, items)
		s.recordProviderResult(cat, nil, domain.ErrorKindNone, latency, time.Now())
		status.OK = true
		status.Count = len(items)
	}

	snapshot := s.buildSnapshot(token, []domain.ProviderStatus{status}, startedAt)
	snapshot.Completed = cat
	snapshot.Final = true
	return snapshot, nil
}

// Suggest returns the ranked profile shortlist for a query without touching
// the category cache; the search bar dropdown uses it.
func (s *Service) Suggest(ctx context.Context, query string) ([]domain.ProfileResult, error) {
	if s.providers.Profiles == nil {
		return nil, ErrNoProviders
	}
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minQueryLength {
		return nil, ErrQueryTooShort
	}
	if runes := []rune(query); len(runes) > maxQueryRunes {
		query = string(runes[:maxQueryRunes])
	}

	runCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	raw, err := s.providers.Profiles.SearchProfiles(runCtx, query, 1, s.perPage, domain.ProfileQueryOptions{})
	if err != nil {
		return nil, err
	}
	items, _, _, wellFormed := normalizeProfilePage(raw)
	if !wellFormed {
		return nil, errMalformedPayload
	}
	return RankProfiles(query, items), nil
}

// TrendingTags fetches the current trending hashtags without mutating the
// session cache.
func (s *Service) TrendingTags(ctx context.Context, limit int) ([]domain.TagResult, error) {
	if s.providers.Tags == nil {
		return nil, ErrNoProviders
	}
	if limit <= 0 {
		limit = s.perPage
	}
	raw, err := s.providers.Tags.TrendingTags(ctx, limit)
	if err != nil {
		return nil, err
	}
	items, _, wellFormed := normalizeTagList(raw)
	if !wellFormed {
		return nil, errMalformedPayload
	}
	return items, nil
}

// FacetCategories lists the content categories available for narrowing
// thread search.
func (s *Service) FacetCategories(ctx context.Context) ([]domain.FacetCategory, error) {
	if s.providers.Communities == nil {
		return nil, ErrNoProviders
	}
	raw, err := s.providers.Communities.Categories(ctx)
	if err != nil {
		return nil, err
	}
	items, wellFormed := normalizeFacetList(raw)
	if !wellFormed {
		return nil, errMalformedPayload
	}
	return items, nil
}
