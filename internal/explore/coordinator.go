package explore

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bep/debounce"

	"aycom/exploreservice/internal/domain"
	"aycom/exploreservice/internal/metrics"
)

const defaultQuietWindow = 300 * time.Millisecond

// Notifier is told when a search execution cannot be scheduled at all.
// Per-category provider failures, whatever their count, stay in the category
// result sets and never reach it.
type Notifier interface {
	SearchFailed(query string, err error)
}

// Coordinator sits between raw query input and the engine: it debounces
// keystrokes, fires executions, keeps the recent-search list and fans
// snapshots out to subscribers. One coordinator serves one session.
type Coordinator struct {
	svc      *Service
	quiet    time.Duration
	store    RecentStore
	notifier Notifier
	logger   *slog.Logger
	userID   string

	mu        sync.Mutex
	debounced func(func())
	pending   string
	// timerPending is true while a debounced execution is scheduled but has
	// not fired; a keystroke arriving then is a coalesced one.
	timerPending bool
	filter       domain.Filter
	facet        string
	hasSearched  bool
	recents      []domain.RecentSearchEntry
	subscribers  map[int]chan domain.ExploreSnapshot
	nextSub      int
}

type CoordinatorOption func(*Coordinator)

func WithQuietWindow(quiet time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if quiet > 0 {
			c.quiet = quiet
		}
	}
}

func WithRecentStore(store RecentStore) CoordinatorOption {
	return func(c *Coordinator) {
		if store != nil {
			c.store = store
		}
	}
}

func WithNotifier(notifier Notifier) CoordinatorOption {
	return func(c *Coordinator) {
		c.notifier = notifier
	}
}

func WithCoordinatorLogger(logger *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithUserID(userID string) CoordinatorOption {
	return func(c *Coordinator) {
		c.userID = strings.TrimSpace(userID)
	}
}

func NewCoordinator(svc *Service, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		svc:         svc,
		quiet:       defaultQuietWindow,
		store:       NewMemoryRecentStore(),
		logger:      slog.Default(),
		filter:      domain.FilterAll,
		subscribers: make(map[int]chan domain.ExploreSnapshot),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.debounced = debounce.New(c.quiet)

	if entries, err := c.store.List(context.Background(), c.userID); err == nil {
		c.recents = entries
	}
	return c
}

// OnInput feeds one keystroke's worth of query text. Sub-threshold input
// clears the search state immediately; anything else waits out the quiet
// window, with newer input replacing older before it fires.
func (c *Coordinator) OnInput(text string) {
	text = strings.TrimSpace(text)
	if len([]rune(text)) < minQueryLength {
		c.mu.Lock()
		c.pending = text
		c.hasSearched = false
		c.timerPending = false
		c.mu.Unlock()
		c.svc.Deactivate()
		// Reschedule a noop so an older pending execution never fires.
		c.debounced(func() {})
		return
	}

	c.mu.Lock()
	c.pending = text
	if c.timerPending {
		metrics.DebounceCoalescedTotal.Inc()
	}
	c.timerPending = true
	c.mu.Unlock()
	c.debounced(func() {
		c.mu.Lock()
		c.timerPending = false
		query := c.pending
		c.mu.Unlock()
		c.execute(query)
	})
}

// OnSubmit runs the query immediately, bypassing the quiet window.
func (c *Coordinator) OnSubmit(text string) {
	text = strings.TrimSpace(text)
	c.debounced(func() {})
	c.mu.Lock()
	c.pending = text
	c.timerPending = false
	c.mu.Unlock()
	c.execute(text)
}

// OnFilterChange re-runs the active search under the new filter; with no
// active search it only records the filter for the next one.
func (c *Coordinator) OnFilterChange(filter domain.Filter) {
	filter = domain.NormalizeFilter(string(filter))
	c.mu.Lock()
	c.filter = filter
	query := c.pending
	active := c.hasSearched
	c.mu.Unlock()
	if active {
		c.execute(query)
	}
}

// OnFacetChange narrows thread search to one content category and re-runs
// the active search.
func (c *Coordinator) OnFacetChange(facet string) {
	c.mu.Lock()
	c.facet = strings.TrimSpace(facet)
	query := c.pending
	active := c.hasSearched
	c.mu.Unlock()
	if active {
		c.execute(query)
	}
}

// OnCategoryChange handles a tab switch. During an active search the cached
// category sets already hold the data; in browse mode the category's
// default content is loaded instead.
func (c *Coordinator) OnCategoryChange(cat domain.Category) {
	c.mu.Lock()
	active := c.hasSearched
	c.mu.Unlock()
	if active {
		return
	}
	snapshot, err := c.svc.LoadDefault(context.Background(), cat)
	if err != nil {
		c.logger.Warn("default category load failed", "category", string(cat), "error", err.Error())
		return
	}
	c.broadcast(snapshot)
}

// OnClear drops the query and leaves search mode. Cached results stay in
// the engine so re-entering the same search is cheap.
func (c *Coordinator) OnClear() {
	c.debounced(func() {})
	c.mu.Lock()
	c.pending = ""
	c.hasSearched = false
	c.timerPending = false
	c.mu.Unlock()
	c.svc.Deactivate()
}

func (c *Coordinator) execute(query string) {
	if len([]rune(strings.TrimSpace(query))) < minQueryLength {
		return
	}
	metrics.DebounceExecutionsTotal.Inc()

	c.mu.Lock()
	filter := c.filter
	facet := c.facet
	c.mu.Unlock()

	snapshot, err := c.svc.Explore(context.Background(), domain.ExploreRequest{
		Query:  query,
		Filter: filter,
		Facet:  facet,
	})
	if err != nil {
		// The execution never ran; this is the one failure the user hears
		// about directly.
		c.logger.Warn("search execution rejected", "query", query, "error", err.Error())
		if c.notifier != nil {
			c.notifier.SearchFailed(query, err)
		}
		return
	}

	c.mu.Lock()
	c.hasSearched = true
	c.mu.Unlock()
	c.RecordSearch(query)

	c.broadcast(snapshot)
}

// RecordSearch pushes a query onto the recent-search list and persists it.
func (c *Coordinator) RecordSearch(query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}
	c.mu.Lock()
	c.recents = pushRecent(c.recents, query, time.Now().UTC())
	entries := make([]domain.RecentSearchEntry, len(c.recents))
	copy(entries, c.recents)
	c.mu.Unlock()

	if err := c.store.Save(context.Background(), c.userID, entries); err != nil {
		c.logger.Warn("recent searches save failed", "error", err.Error())
	}
}

// HasSearched reports whether the session is in search mode.
func (c *Coordinator) HasSearched() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasSearched
}

// Recents returns a copy of the recent-search list, most recent first.
func (c *Coordinator) Recents() []domain.RecentSearchEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := make([]domain.RecentSearchEntry, len(c.recents))
	copy(entries, c.recents)
	return entries
}

// Subscribe registers a snapshot listener. Slow listeners drop snapshots
// rather than blocking executions. The returned func unsubscribes.
func (c *Coordinator) Subscribe() (<-chan domain.ExploreSnapshot, func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	ch := make(chan domain.ExploreSnapshot, 8)
	c.subscribers[id] = ch
	c.mu.Unlock()

	return ch, func() {
		c.mu.Lock()
		if existing, ok := c.subscribers[id]; ok {
			delete(c.subscribers, id)
			close(existing)
		}
		c.mu.Unlock()
	}
}

func (c *Coordinator) broadcast(snapshot domain.ExploreSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.subscribers {
		select {
		case ch <- snapshot:
		default:
		}
	}
}
