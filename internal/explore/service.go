package explore

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"aycom/exploreservice/internal/domain"
)

var (
	ErrQueryTooShort   = errors.New("query must be at least 2 characters")
	ErrUnknownCategory = errors.New("unknown category")
	ErrNoProviders     = errors.New("no upstream providers configured")
)

// minQueryLength is the sub-threshold contract: shorter queries issue no
// provider calls at all.
const minQueryLength = 2

// maxQueryRunes mirrors the gateway-side cap; longer queries are truncated
// before fan-out rather than rejected.
const maxQueryRunes = 100

// ProfileSearcher searches user profiles. The raw decoded JSON payload is
// returned as-is; the engine normalizes it defensively.
type ProfileSearcher interface {
	SearchProfiles(ctx context.Context, query string, page, perPage int, opts domain.ProfileQueryOptions) (any, error)
}

// ThreadSearcher covers full-text thread search, once per sort order, and
// the media-only variant.
type ThreadSearcher interface {
	SearchThreads(ctx context.Context, query string, page, perPage int, opts domain.ThreadQueryOptions) (any, error)
	SearchThreadsWithMedia(ctx context.Context, query string, page, perPage int, opts domain.ThreadQueryOptions) (any, error)
}

type CommunitySearcher interface {
	SearchCommunities(ctx context.Context, query string, page, perPage int) (any, error)
	Categories(ctx context.Context) (any, error)
}

type TagProvider interface {
	TrendingTags(ctx context.Context, limit int) (any, error)
	ThreadsByHashtag(ctx context.Context, tag string, page, perPage int) (any, error)
}

// Providers is the upstream set one execution fans out to.
type Providers struct {
	Profiles    ProfileSearcher
	Threads     ThreadSearcher
	Communities CommunitySearcher
	Tags        TagProvider
}

func (p Providers) configured() bool {
	return p.Profiles != nil || p.Threads != nil || p.Communities != nil || p.Tags != nil
}

// Service is the explore engine for one session: it owns the category
// result cache, the monotonic token source and per-category provider
// health. All provider failures stop at this boundary.
type Service struct {
	providers Providers
	timeout   time.Duration
	perPage   int
	logger    *slog.Logger

	tokens atomic.Int64
	cache  *categoryCache

	reqMu   sync.Mutex
	lastReq domain.ExploreRequest
	active  bool

	healthMu sync.Mutex
	health   map[domain.Category]*providerHealth
}

type ServiceOption func(*Service)

func WithProviderTimeout(timeout time.Duration) ServiceOption {
	return func(s *Service) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

func WithDefaultPerPage(perPage int) ServiceOption {
	return func(s *Service) {
		if perPage > 0 {
			s.perPage = perPage
		}
	}
}

func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(providers Providers, opts ...ServiceOption) *Service {
	svc := &Service{
		providers: providers,
		timeout:   10 * time.Second,
		perPage:   domain.DefaultPerPage,
		logger:    slog.Default(),
		health:    make(map[domain.Category]*providerHealth),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	svc.cache = newCategoryCache(svc.perPage)
	return svc
}

// NextToken mints a strictly increasing search token.
func (s *Service) NextToken() domain.SearchToken {
	return domain.SearchToken(s.tokens.Add(1))
}

// CurrentToken returns the most recently minted token.
func (s *Service) CurrentToken() domain.SearchToken {
	return domain.SearchToken(s.tokens.Load())
}

// State returns a deep copy of the per-category result sets.
func (s *Service) State() domain.ExploreState {
	return s.cache.Snapshot()
}

func (s *Service) rememberRequest(req domain.ExploreRequest) {
	s.reqMu.Lock()
	s.lastReq = req
	s.active = true
	s.reqMu.Unlock()
}

func (s *Service) lastRequest() (domain.ExploreRequest, bool) {
	s.reqMu.Lock()
	defer s.reqMu.Unlock()
	return s.lastReq, s.active
}

// Deactivate marks the session as no longer searching. Cached category
// sets survive so a cleared search can be restored cheaply.
func (s *Service) Deactivate() {
	s.reqMu.Lock()
	s.active = false
	s.reqMu.Unlock()
}
