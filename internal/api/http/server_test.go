package apihttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"aycom/exploreservice/internal/domain"
	"aycom/exploreservice/internal/explore"
)

type fakeExploreService struct {
	snapshot    domain.ExploreSnapshot
	err         error
	lastReq     domain.ExploreRequest
	lastCat     domain.Category
	lastPage    int
	lastPerPage int
}

func (f *fakeExploreService) Explore(_ context.Context, req domain.ExploreRequest) (domain.ExploreSnapshot, error) {
	f.lastReq = req
	return f.snapshot, f.err
}

func (f *fakeExploreService) ExploreStream(_ context.Context, req domain.ExploreRequest) (<-chan domain.ExploreSnapshot, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	ch := make(chan domain.ExploreSnapshot, 2)
	partial := f.snapshot
	partial.Final = false
	partial.Completed = domain.CategoryPeople
	ch <- partial
	final := f.snapshot
	final.Final = true
	ch <- final
	close(ch)
	return ch, nil
}

func (f *fakeExploreService) SetPage(_ context.Context, cat domain.Category, page int) (domain.ExploreSnapshot, error) {
	f.lastCat, f.lastPage = cat, page
	return f.snapshot, f.err
}

func (f *fakeExploreService) SetPerPage(_ context.Context, cat domain.Category, perPage int) (domain.ExploreSnapshot, error) {
	f.lastCat, f.lastPerPage = cat, perPage
	return f.snapshot, f.err
}

func (f *fakeExploreService) LoadMoreMedia(context.Context) (domain.ExploreSnapshot, error) {
	return f.snapshot, f.err
}

func (f *fakeExploreService) Retry(_ context.Context, cat domain.Category) (domain.ExploreSnapshot, error) {
	f.lastCat = cat
	return f.snapshot, f.err
}

func (f *fakeExploreService) LoadDefault(_ context.Context, cat domain.Category) (domain.ExploreSnapshot, error) {
	f.lastCat = cat
	return f.snapshot, f.err
}

func (f *fakeExploreService) Suggest(_ context.Context, _ string) ([]domain.ProfileResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []domain.ProfileResult{{ID: "u1", Username: "alice"}}, nil
}

func (f *fakeExploreService) TrendingTags(context.Context, int) ([]domain.TagResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []domain.TagResult{{Name: "golang"}}, nil
}

func (f *fakeExploreService) FacetCategories(context.Context) ([]domain.FacetCategory, error) {
	return []domain.FacetCategory{{ID: "tech", Name: "Technology"}}, nil
}

func (f *fakeExploreService) ProviderDiagnostics() []domain.ProviderDiagnostics {
	return []domain.ProviderDiagnostics{{Category: domain.CategoryPeople, TotalRequests: 3}}
}

type fakeRecents struct {
	recorded []string
	entries  []domain.RecentSearchEntry
}

func (f *fakeRecents) Recents() []domain.RecentSearchEntry { return f.entries }
func (f *fakeRecents) RecordSearch(query string)           { f.recorded = append(f.recorded, query) }

func newTestHandler(service *fakeExploreService, recents *fakeRecents) http.Handler {
	opts := []ServerOption{}
	if recents != nil {
		opts = append(opts, WithRecents(recents))
	}
	return NewServer(service, opts...).Handler()
}

func doRequest(t *testing.T, handler http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(method, target, nil))
	return recorder
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestHandler(&fakeExploreService{}, nil)
	recorder := doRequest(t, handler, http.MethodGet, "/health")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
}

func TestExploreEndpoint(t *testing.T) {
	service := &fakeExploreService{snapshot: domain.ExploreSnapshot{
		Token: 7,
		State: domain.ExploreState{Query: "rust"},
		Final: true,
	}}
	recents := &fakeRecents{}
	handler := newTestHandler(service, recents)

	recorder := doRequest(t, handler, http.MethodGet, "/explore?q=rust&filter=verified&per_page=10")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var snapshot domain.ExploreSnapshot
	if err := json.Unmarshal(recorder.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if snapshot.Token != 7 || snapshot.State.Query != "rust" {
		t.Fatalf("unexpected snapshot: %#v", snapshot)
	}
	if service.lastReq.Filter != domain.FilterVerified || service.lastReq.PerPage != 10 {
		t.Fatalf("request params not forwarded: %#v", service.lastReq)
	}
	if len(recents.recorded) != 1 || recents.recorded[0] != "rust" {
		t.Fatalf("expected search recorded, got %#v", recents.recorded)
	}
}

func TestExploreShortQueryRejected(t *testing.T) {
	service := &fakeExploreService{err: explore.ErrQueryTooShort}
	handler := newTestHandler(service, nil)

	recorder := doRequest(t, handler, http.MethodGet, "/explore?q=r")
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}

func TestExploreNoProvidersUnavailable(t *testing.T) {
	service := &fakeExploreService{err: explore.ErrNoProviders}
	handler := newTestHandler(service, nil)

	recorder := doRequest(t, handler, http.MethodGet, "/explore?q=rust")
	if recorder.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", recorder.Code)
	}
}

func TestCategoryPageChange(t *testing.T) {
	service := &fakeExploreService{}
	handler := newTestHandler(service, nil)

	recorder := doRequest(t, handler, http.MethodGet, "/explore/category?name=people&page=3")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if service.lastCat != domain.CategoryPeople || service.lastPage != 3 {
		t.Fatalf("page change not forwarded: %s/%d", service.lastCat, service.lastPage)
	}

	recorder = doRequest(t, handler, http.MethodGet, "/explore/category?name=people&per_page=50")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if service.lastPerPage != 50 {
		t.Fatalf("page size change not forwarded: %d", service.lastPerPage)
	}
}

func TestCategoryValidation(t *testing.T) {
	handler := newTestHandler(&fakeExploreService{}, nil)

	if recorder := doRequest(t, handler, http.MethodGet, "/explore/category?name=bogus&page=1"); recorder.Code != http.StatusBadRequest {
		t.Fatalf("unknown category: expected 400, got %d", recorder.Code)
	}
	if recorder := doRequest(t, handler, http.MethodGet, "/explore/category?name=people&page=0"); recorder.Code != http.StatusBadRequest {
		t.Fatalf("invalid page: expected 400, got %d", recorder.Code)
	}
	if recorder := doRequest(t, handler, http.MethodGet, "/explore/retry?category=bogus"); recorder.Code != http.StatusBadRequest {
		t.Fatalf("unknown retry category: expected 400, got %d", recorder.Code)
	}
}

func TestRetryEndpoint(t *testing.T) {
	service := &fakeExploreService{}
	handler := newTestHandler(service, nil)

	recorder := doRequest(t, handler, http.MethodPost, "/explore/retry?category=communities")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if service.lastCat != domain.CategoryCommunities {
		t.Fatalf("retry category not forwarded: %s", service.lastCat)
	}
}

func TestSuggestShortQueryReturnsEmptyList(t *testing.T) {
	service := &fakeExploreService{err: explore.ErrQueryTooShort}
	handler := newTestHandler(service, nil)

	recorder := doRequest(t, handler, http.MethodGet, "/explore/suggest?q=r")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var payload struct {
		Items []any `json:"items"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Items) != 0 {
		t.Fatalf("expected empty suggestion list, got %#v", payload.Items)
	}
}

func TestRecentEndpoint(t *testing.T) {
	recents := &fakeRecents{entries: []domain.RecentSearchEntry{
		{Text: "rust", SavedAt: time.Now().UTC()},
	}}
	handler := newTestHandler(&fakeExploreService{}, recents)

	recorder := doRequest(t, handler, http.MethodGet, "/explore/recent")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var payload struct {
		Items []domain.RecentSearchEntry `json:"items"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Items) != 1 || payload.Items[0].Text != "rust" {
		t.Fatalf("unexpected recents: %#v", payload.Items)
	}
}

func TestRecentEndpointRecordsOnPost(t *testing.T) {
	recents := &fakeRecents{}
	handler := newTestHandler(&fakeExploreService{}, recents)

	recorder := doRequest(t, handler, http.MethodPost, "/explore/recent?q=gophers")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if len(recents.recorded) != 1 || recents.recorded[0] != "gophers" {
		t.Fatalf("expected search recorded, got %#v", recents.recorded)
	}

	if recorder := doRequest(t, handler, http.MethodPost, "/explore/recent"); recorder.Code != http.StatusBadRequest {
		t.Fatalf("missing q: expected 400, got %d", recorder.Code)
	}
}

func TestProvidersHealthEndpoint(t *testing.T) {
	handler := newTestHandler(&fakeExploreService{}, nil)
	recorder := doRequest(t, handler, http.MethodGet, "/explore/providers/health")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var payload struct {
		Items []domain.ProviderDiagnostics `json:"items"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Items) != 1 || payload.Items[0].Category != domain.CategoryPeople {
		t.Fatalf("unexpected diagnostics: %#v", payload.Items)
	}
}

func TestExploreStreamEmitsSSE(t *testing.T) {
	service := &fakeExploreService{snapshot: domain.ExploreSnapshot{Token: 1}}
	handler := newTestHandler(service, nil)

	recorder := doRequest(t, handler, http.MethodGet, "/explore/stream?q=rust")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if got := recorder.Header().Get("Content-Type"); got != "text/event-stream; charset=utf-8" {
		t.Fatalf("unexpected content type %q", got)
	}
	body := recorder.Body.String()
	for _, marker := range []string{"event: bootstrap", "event: update", "event: final", "event: done"} {
		if !strings.Contains(body, marker) {
			t.Fatalf("missing %q in stream body:\n%s", marker, body)
		}
	}
}
