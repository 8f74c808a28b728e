package explore

import (
	"sync"

	"aycom/exploreservice/internal/domain"
	"aycom/exploreservice/internal/metrics"
)

// categoryCache owns the last-known-good CategoryResultSet per category.
// Every mutation compares the incoming token against the last token applied
// to that category; older tokens are discarded silently. Losing the race is
// normal operation, not an error.
type categoryCache struct {
	mu          sync.Mutex
	state       domain.ExploreState
	lastApplied map[domain.Category]domain.SearchToken
	perPage     int
	// mediaPage counts loadMore steps; media accumulates instead of
	// replacing pages.
	mediaPage int
}

func newCategoryCache(perPage int) *categoryCache {
	if perPage <= 0 {
		perPage = domain.DefaultPerPage
	}
	return &categoryCache{
		state: domain.ExploreState{
			Filter:      domain.FilterAll,
			People:      domain.EmptyResultSet[domain.ProfileResult](perPage),
			Top:         domain.EmptyResultSet[domain.ThreadResult](perPage),
			Latest:      domain.EmptyResultSet[domain.ThreadResult](perPage),
			Media:       domain.EmptyResultSet[domain.ThreadResult](perPage),
			Communities: domain.EmptyResultSet[domain.CommunityResult](perPage),
			Trending:    domain.EmptyResultSet[domain.TagResult](perPage),
		},
		lastApplied: make(map[domain.Category]domain.SearchToken),
		perPage:     perPage,
		mediaPage:   1,
	}
}

// admitLocked is the token-ordering guard. Equal tokens are admitted so the
// execution that marked a category loading can complete it.
func (c *categoryCache) admitLocked(cat domain.Category, token domain.SearchToken) bool {
	if token < c.lastApplied[cat] {
		metrics.StaleResponsesDiscarded.WithLabelValues(string(cat)).Inc()
		metrics.CacheAppliesTotal.WithLabelValues(string(cat), "stale").Inc()
		return false
	}
	c.lastApplied[cat] = token
	return true
}

// BeginSearch marks the listed categories loading under one fresh token and
// resets per-category pages for the new query. Only categories the fan-out
// will actually serve may be listed; marking an unserved category would leave
// it loading forever. A positive perPage replaces the page size of every
// category.
func (c *categoryCache) BeginSearch(token domain.SearchToken, query string, filter domain.Filter, perPage int, active []domain.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Query = query
	c.state.Filter = filter
	c.mediaPage = 1
	if perPage > 0 {
		c.state.People.Pagination = c.state.People.Pagination.WithPerPage(perPage)
		c.state.Top.Pagination = c.state.Top.Pagination.WithPerPage(perPage)
		c.state.Latest.Pagination = c.state.Latest.Pagination.WithPerPage(perPage)
		c.state.Media.Pagination = c.state.Media.Pagination.WithPerPage(perPage)
		c.state.Communities.Pagination = c.state.Communities.Pagination.WithPerPage(perPage)
		c.state.Trending.Pagination = c.state.Trending.Pagination.WithPerPage(perPage)
	}
	// Raise the floor for every category, served or not, so a straggler
	// from an older execution cannot land after the new search begins.
	for _, cat := range domain.AllCategories() {
		if token > c.lastApplied[cat] {
			c.lastApplied[cat] = token
		}
	}
	for _, cat := range active {
		switch cat {
		case domain.CategoryPeople:
			markLoading(&c.state.People, token, true)
		case domain.CategoryTop:
			markLoading(&c.state.Top, token, true)
		case domain.CategoryLatest:
			markLoading(&c.state.Latest, token, true)
		case domain.CategoryMedia:
			markLoading(&c.state.Media, token, true)
		case domain.CategoryCommunities:
			markLoading(&c.state.Communities, token, true)
		case domain.CategoryTrending:
			markLoading(&c.state.Trending, token, true)
		}
	}
}

// TryBeginCategory marks a single category loading; it refuses while a
// previous category-scoped call is still in flight (back-pressure guard).
func (c *categoryCache) TryBeginCategory(cat domain.Category, token domain.SearchToken) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch cat {
	case domain.CategoryPeople:
		return tryMarkLoading(&c.state.People, token)
	case domain.CategoryTop:
		return tryMarkLoading(&c.state.Top, token)
	case domain.CategoryLatest:
		return tryMarkLoading(&c.state.Latest, token)
	case domain.CategoryMedia:
		return tryMarkLoading(&c.state.Media, token)
	case domain.CategoryCommunities:
		return tryMarkLoading(&c.state.Communities, token)
	case domain.CategoryTrending:
		return tryMarkLoading(&c.state.Trending, token)
	default:
		return false
	}
}

func markLoading[T any](set *domain.CategoryResultSet[T], token domain.SearchToken, resetPage bool) {
	set.IsLoading = true
	set.Token = token
	if resetPage {
		set.Pagination = set.Pagination.WithPage(1)
	}
}

func tryMarkLoading[T any](set *domain.CategoryResultSet[T], token domain.SearchToken) bool {
	if set.IsLoading {
		return false
	}
	markLoading(set, token, false)
	return true
}

func applyOK[T any](set *domain.CategoryResultSet[T], token domain.SearchToken, items []T, page, total int) {
	if items == nil {
		items = []T{}
	}
	set.Items = items
	set.Pagination = set.Pagination.WithTotal(total).WithPage(page)
	set.IsLoading = false
	set.LastError = domain.ErrorKindNone
	set.Token = token
}

// applyFail keeps the previous items and pagination so consumers degrade to
// the last-known-good data with a retry affordance.
func applyFail[T any](set *domain.CategoryResultSet[T], token domain.SearchToken, kind domain.ErrorKind) {
	set.IsLoading = false
	set.LastError = kind
	set.Token = token
}

func (c *categoryCache) ApplyProfiles(token domain.SearchToken, items []domain.ProfileResult, page, total int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.admitLocked(domain.CategoryPeople, token) {
		return false
	}
	applyOK(&c.state.People, token, items, page, total)
	metrics.CacheAppliesTotal.WithLabelValues(string(domain.CategoryPeople), "ok").Inc()
	return true
}

func (c *categoryCache) ApplyThreads(cat domain.Category, token domain.SearchToken, items []domain.ThreadResult, page, total int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.admitLocked(cat, token) {
		return false
	}
	switch cat {
	case domain.CategoryTop:
		applyOK(&c.state.Top, token, items, page, total)
	case domain.CategoryLatest:
		applyOK(&c.state.Latest, token, items, page, total)
	case domain.CategoryMedia:
		c.mediaPage = 1
		applyOK(&c.state.Media, token, items, page, total)
	default:
		return false
	}
	metrics.CacheAppliesTotal.WithLabelValues(string(cat), "ok").Inc()
	return true
}

// AppendMedia implements the infinite-scroll accumulation semantics: new
// items are appended, never replacing the accumulated list.
func (c *categoryCache) AppendMedia(token domain.SearchToken, items []domain.ThreadResult, page, total int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.admitLocked(domain.CategoryMedia, token) {
		return false
	}
	merged := append(c.state.Media.Items, items...)
	c.mediaPage = page
	applyOK(&c.state.Media, token, merged, page, total)
	metrics.CacheAppliesTotal.WithLabelValues(string(domain.CategoryMedia), "ok").Inc()
	return true
}

func (c *categoryCache) ApplyCommunities(token domain.SearchToken, items []domain.CommunityResult, page, total int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.admitLocked(domain.CategoryCommunities, token) {
		return false
	}
	applyOK(&c.state.Communities, token, items, page, total)
	metrics.CacheAppliesTotal.WithLabelValues(string(domain.CategoryCommunities), "ok").Inc()
	return true
}

func (c *categoryCache) ApplyTags(token domain.SearchToken, items []domain.TagResult) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.admitLocked(domain.CategoryTrending, token) {
		return false
	}
	applyOK(&c.state.Trending, token, items, 1, len(items))
	metrics.CacheAppliesTotal.WithLabelValues(string(domain.CategoryTrending), "ok").Inc()
	return true
}

func (c *categoryCache) Fail(cat domain.Category, token domain.SearchToken, kind domain.ErrorKind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.admitLocked(cat, token) {
		return false
	}
	switch cat {
	case domain.CategoryPeople:
		applyFail(&c.state.People, token, kind)
	case domain.CategoryTop:
		applyFail(&c.state.Top, token, kind)
	case domain.CategoryLatest:
		applyFail(&c.state.Latest, token, kind)
	case domain.CategoryMedia:
		applyFail(&c.state.Media, token, kind)
	case domain.CategoryCommunities:
		applyFail(&c.state.Communities, token, kind)
	case domain.CategoryTrending:
		applyFail(&c.state.Trending, token, kind)
	default:
		return false
	}
	metrics.CacheAppliesTotal.WithLabelValues(string(cat), "failed").Inc()
	return true
}

// MediaProgress reports the loadMore cursor: next page to fetch and whether
// more items remain upstream.
func (c *categoryCache) MediaProgress() (nextPage int, hasMore, loading bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	accumulated := len(c.state.Media.Items)
	total := c.state.Media.Pagination.TotalCount
	return c.mediaPage + 1, accumulated < total, c.state.Media.IsLoading
}

func (c *categoryCache) PageState(cat domain.Category) domain.PageState {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch cat {
	case domain.CategoryPeople:
		return c.state.People.Pagination
	case domain.CategoryTop:
		return c.state.Top.Pagination
	case domain.CategoryLatest:
		return c.state.Latest.Pagination
	case domain.CategoryMedia:
		return c.state.Media.Pagination
	case domain.CategoryCommunities:
		return c.state.Communities.Pagination
	case domain.CategoryTrending:
		return c.state.Trending.Pagination
	default:
		return domain.NewPageState(c.perPage)
	}
}

func (c *categoryCache) SetPerPage(cat domain.Category, perPage int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch cat {
	case domain.CategoryPeople:
		c.state.People.Pagination = c.state.People.Pagination.WithPerPage(perPage)
	case domain.CategoryTop:
		c.state.Top.Pagination = c.state.Top.Pagination.WithPerPage(perPage)
	case domain.CategoryLatest:
		c.state.Latest.Pagination = c.state.Latest.Pagination.WithPerPage(perPage)
	case domain.CategoryMedia:
		c.state.Media.Pagination = c.state.Media.Pagination.WithPerPage(perPage)
	case domain.CategoryCommunities:
		c.state.Communities.Pagination = c.state.Communities.Pagination.WithPerPage(perPage)
	case domain.CategoryTrending:
		c.state.Trending.Pagination = c.state.Trending.Pagination.WithPerPage(perPage)
	}
}

// Snapshot returns a deep copy; consumers never see shared slices.
func (c *categoryCache) Snapshot() domain.ExploreState {
	c.mu.Lock()
	defer c.mu.Unlock()
	cloned := c.state
	cloned.People = cloneSet(c.state.People)
	cloned.Top = cloneSet(c.state.Top)
	cloned.Latest = cloneSet(c.state.Latest)
	cloned.Media = cloneSet(c.state.Media)
	cloned.Communities = cloneSet(c.state.Communities)
	cloned.Trending = cloneSet(c.state.Trending)
	return cloned
}

func cloneSet[T any](set domain.CategoryResultSet[T]) domain.CategoryResultSet[T] {
	cloned := set
	cloned.Items = make([]T, len(set.Items))
	copy(cloned.Items, set.Items)
	return cloned
}
