package profiles

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"aycom/exploreservice/internal/domain"
)

func TestSearchProfilesRequestAndDecode(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if got := query.Get("query"); got != "alice" {
			t.Errorf("unexpected query param %q", got)
		}
		if got := query.Get("page"); got != "2" {
			t.Errorf("unexpected page param %q", got)
		}
		if got := query.Get("per_page"); got != "25" {
			t.Errorf("unexpected per_page param %q", got)
		}
		if got := query.Get("filter"); got != "verified" {
			t.Errorf("unexpected filter param %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != "explore-test/1.0" {
			t.Errorf("unexpected user agent %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"users":[{"id":"u1","username":"alice"}],"pagination":{"total_count":1}}`))
	}))
	defer upstream.Close()

	client := NewClient(Config{
		Endpoint:  upstream.URL,
		UserAgent: "explore-test/1.0",
		Client:    upstream.Client(),
	})

	payload, err := client.SearchProfiles(context.Background(), "alice", 2, 25, domain.ProfileQueryOptions{
		Filter: domain.FilterVerified,
	})
	if err != nil {
		t.Fatalf("search error: %v", err)
	}

	page, ok := payload.(map[string]any)
	if !ok {
		t.Fatalf("expected object payload, got %T", payload)
	}
	users, ok := page["users"].([]any)
	if !ok || len(users) != 1 {
		t.Fatalf("unexpected users payload: %#v", page["users"])
	}
}

func TestSearchProfilesUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "user service unavailable", http.StatusBadGateway)
	}))
	defer upstream.Close()

	client := NewClient(Config{Endpoint: upstream.URL, Client: upstream.Client()})
	if _, err := client.SearchProfiles(context.Background(), "alice", 1, 25, domain.ProfileQueryOptions{}); err == nil {
		t.Fatalf("expected error for HTTP 502")
	}
}

func TestSearchProfilesAllFilterOmitted(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("filter") {
			t.Errorf("the all filter must not be sent upstream")
		}
		_, _ = w.Write([]byte(`{"users":[]}`))
	}))
	defer upstream.Close()

	client := NewClient(Config{Endpoint: upstream.URL, Client: upstream.Client()})
	if _, err := client.SearchProfiles(context.Background(), "alice", 1, 25, domain.ProfileQueryOptions{
		Filter: domain.FilterAll,
	}); err != nil {
		t.Fatalf("search error: %v", err)
	}
}
