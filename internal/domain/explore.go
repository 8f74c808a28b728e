package domain

import (
	"encoding/json"
	"time"
)

// SearchToken identifies one search execution. Tokens are strictly
// increasing; a response carrying a token older than the last one applied
// to a category is stale and must be discarded.
type SearchToken int64

type Filter string

const (
	FilterAll       Filter = "all"
	FilterFollowing Filter = "following"
	FilterVerified  Filter = "verified"
)

func NormalizeFilter(raw string) Filter {
	switch Filter(raw) {
	case FilterFollowing:
		return FilterFollowing
	case FilterVerified:
		return FilterVerified
	default:
		return FilterAll
	}
}

// Category is one of the independently paginated result groups.
type Category string

const (
	CategoryTrending    Category = "trending"
	CategoryLatest      Category = "latest"
	CategoryPeople      Category = "people"
	CategoryMedia       Category = "media"
	CategoryCommunities Category = "communities"
	CategoryTop         Category = "top"
)

func AllCategories() []Category {
	return []Category{
		CategoryTrending,
		CategoryLatest,
		CategoryPeople,
		CategoryMedia,
		CategoryCommunities,
		CategoryTop,
	}
}

func NormalizeCategory(raw string) (Category, bool) {
	switch Category(raw) {
	case CategoryTrending, CategoryLatest, CategoryPeople,
		CategoryMedia, CategoryCommunities, CategoryTop:
		return Category(raw), true
	default:
		return "", false
	}
}

type SortBy string

const (
	SortByPopular SortBy = "popular"
	SortByRecent  SortBy = "recent"
)

// ErrorKind classifies a failed provider call. Failures never cross the
// fan-out executor; the kind is recorded on the category result set so
// consumers can offer a retry affordance.
type ErrorKind string

const (
	ErrorKindNone      ErrorKind = ""
	ErrorKindNetwork   ErrorKind = "network_error"
	ErrorKindMalformed ErrorKind = "malformed_response"
	ErrorKindEmpty     ErrorKind = "empty_response"
	ErrorKindTimeout   ErrorKind = "upstream_timeout"
)

// PageState carries the pagination invariants for one category:
// TotalPages == max(1, ceil(TotalCount/PerPage)) and Page in [1, TotalPages].
type PageState struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	TotalCount int `json:"totalCount"`
	TotalPages int `json:"totalPages"`
}

func NewPageState(perPage int) PageState {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return PageState{Page: 1, PerPage: perPage, TotalPages: 1}
}

const DefaultPerPage = 25

// WithTotal recomputes TotalPages from a new total count and clamps Page.
func (p PageState) WithTotal(totalCount int) PageState {
	if totalCount < 0 {
		totalCount = 0
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	p.TotalCount = totalCount
	p.TotalPages = (totalCount + p.PerPage - 1) / p.PerPage
	if p.TotalPages < 1 {
		p.TotalPages = 1
	}
	return p.clamped()
}

// WithPage moves to the requested page, clamped into [1, TotalPages].
func (p PageState) WithPage(page int) PageState {
	p.Page = page
	return p.clamped()
}

// WithPerPage changes the page size and resets to the first page.
func (p PageState) WithPerPage(perPage int) PageState {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	p.PerPage = perPage
	p.Page = 1
	return p.WithTotal(p.TotalCount)
}

func (p PageState) clamped() PageState {
	if p.TotalPages < 1 {
		p.TotalPages = 1
	}
	if p.Page > p.TotalPages {
		p.Page = p.TotalPages
	}
	if p.Page < 1 {
		p.Page = 1
	}
	return p
}

func (p PageState) HasMore() bool {
	return p.Page < p.TotalPages
}

// MarshalJSON includes the derived hasMore flag so consumers do not have to
// recompute it from page and totalPages.
func (p PageState) MarshalJSON() ([]byte, error) {
	type pageStateJSON struct {
		Page       int  `json:"page"`
		PerPage    int  `json:"perPage"`
		TotalCount int  `json:"totalCount"`
		TotalPages int  `json:"totalPages"`
		HasMore    bool `json:"hasMore"`
	}
	return json.Marshal(pageStateJSON{
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalCount: p.TotalCount,
		TotalPages: p.TotalPages,
		HasMore:    p.HasMore(),
	})
}

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
	MediaTypeGIF   MediaType = "gif"
)

type MediaRef struct {
	URL  string    `json:"url"`
	Type MediaType `json:"type"`
}

type ProfileResult struct {
	ID             string  `json:"id"`
	Username       string  `json:"username"`
	DisplayName    string  `json:"displayName"`
	AvatarURL      string  `json:"avatarUrl,omitempty"`
	Bio            string  `json:"bio,omitempty"`
	IsVerified     bool    `json:"isVerified"`
	FollowerCount  int     `json:"followerCount"`
	IsFollowing    bool    `json:"isFollowing"`
	RelevanceScore float64 `json:"relevanceScore,omitempty"`
}

type ThreadResult struct {
	ID                string     `json:"id"`
	Content           string     `json:"content"`
	AuthorUsername    string     `json:"authorUsername"`
	AuthorDisplayName string     `json:"authorDisplayName"`
	AuthorAvatarURL   string     `json:"authorAvatarUrl,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	LikeCount         int        `json:"likeCount"`
	ReplyCount        int        `json:"replyCount"`
	RepostCount       int        `json:"repostCount"`
	Media             []MediaRef `json:"media,omitempty"`
}

type CommunityResult struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	LogoURL     string `json:"logoUrl,omitempty"`
	MemberCount int    `json:"memberCount"`
	IsJoined    bool   `json:"isJoined"`
	IsPending   bool   `json:"isPending"`
}

type TagResult struct {
	Name       string `json:"name"`
	UsageCount int    `json:"usageCount,omitempty"`
}

// FacetCategory is one entry of the content-category dropdown; it selects a
// thread category to search within, not a result group.
type FacetCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategoryResultSet is the last-known-good state of one category. It is
// owned by the category result cache and only mutated there, under a
// matching-token check.
type CategoryResultSet[T any] struct {
	Items      []T         `json:"items"`
	Pagination PageState   `json:"pagination"`
	IsLoading  bool        `json:"isLoading"`
	LastError  ErrorKind   `json:"lastError,omitempty"`
	Token      SearchToken `json:"token"`
}

func EmptyResultSet[T any](perPage int) CategoryResultSet[T] {
	return CategoryResultSet[T]{
		Items:      []T{},
		Pagination: NewPageState(perPage),
	}
}

// ExploreRequest is the immutable snapshot of one search execution.
type ExploreRequest struct {
	Query   string `json:"query"`
	Filter  Filter `json:"filter"`
	Facet   string `json:"facet,omitempty"`
	PerPage int    `json:"perPage,omitempty"`
}

// ExploreState holds every category's result set for one explore session.
type ExploreState struct {
	Query       string                             `json:"query"`
	Filter      Filter                             `json:"filter"`
	People      CategoryResultSet[ProfileResult]   `json:"people"`
	Top         CategoryResultSet[ThreadResult]    `json:"top"`
	Latest      CategoryResultSet[ThreadResult]    `json:"latest"`
	Media       CategoryResultSet[ThreadResult]    `json:"media"`
	Communities CategoryResultSet[CommunityResult] `json:"communities"`
	Trending    CategoryResultSet[TagResult]       `json:"trending"`
}

type ProviderStatus struct {
	Category Category  `json:"category"`
	OK       bool      `json:"ok"`
	Count    int       `json:"count"`
	Error    string    `json:"error,omitempty"`
	Kind     ErrorKind `json:"kind,omitempty"`
}

// ExploreSnapshot is what subscribers and the streaming endpoint see: the
// full per-category state plus provider statuses for the triggering
// execution. Final marks the fan-in snapshot.
type ExploreSnapshot struct {
	Token     SearchToken      `json:"token"`
	State     ExploreState     `json:"state"`
	Providers []ProviderStatus `json:"providers"`
	Suggested []ProfileResult  `json:"suggested,omitempty"`
	ElapsedMS int64            `json:"elapsedMs"`
	Completed Category         `json:"completed,omitempty"`
	Final     bool             `json:"final"`
}

type RecentSearchEntry struct {
	Text    string    `json:"text"`
	SavedAt time.Time `json:"savedAt"`
}

// ProfileQueryOptions and ThreadQueryOptions carry the upstream call
// parameters that are not part of the query/page tuple.
type ProfileQueryOptions struct {
	Filter Filter
	Sort   string
}

type ThreadQueryOptions struct {
	Filter Filter
	Facet  string
	SortBy SortBy
}

// ProviderDiagnostics is the per-category health view exposed for
// operators; it never feeds back into routing decisions.
type ProviderDiagnostics struct {
	Category            Category   `json:"category"`
	ConsecutiveFailures int        `json:"consecutiveFailures"`
	LastError           string     `json:"lastError,omitempty"`
	LastKind            ErrorKind  `json:"lastKind,omitempty"`
	LastSuccessAt       *time.Time `json:"lastSuccessAt,omitempty"`
	LastFailureAt       *time.Time `json:"lastFailureAt,omitempty"`
	LastLatencyMS       int64      `json:"lastLatencyMs,omitempty"`
	TotalRequests       int64      `json:"totalRequests,omitempty"`
	TotalFailures       int64      `json:"totalFailures,omitempty"`
	TimeoutCount        int64      `json:"timeoutCount,omitempty"`
}
