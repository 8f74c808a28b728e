package explore

import (
	"fmt"
	"testing"

	"aycom/exploreservice/internal/domain"
)

func TestFieldSimilarity(t *testing.T) {
	cases := []struct {
		query, field string
		want         float64
	}{
		{"rust", "rust", 1},
		{"RUST", "rust", 1},
		{"rust", "rusty", containmentScore},
		{"rusty", "rust", containmentScore},
		{"", "rust", 0},
		{"rust", "", 0},
	}
	for _, tc := range cases {
		if got := fieldSimilarity(tc.query, tc.field); got != tc.want {
			t.Fatalf("fieldSimilarity(%q, %q) = %v, want %v", tc.query, tc.field, got, tc.want)
		}
	}

	// Typo distance: one edit over five runes.
	if got := fieldSimilarity("alise", "alice"); got < 0.7 {
		t.Fatalf("near-miss must score high, got %v", got)
	}
	if got := fieldSimilarity("xyz", "alice"); got >= similarityThreshold {
		t.Fatalf("unrelated strings must stay below the threshold, got %v", got)
	}
}

func TestProfileSimilarityUsesBestField(t *testing.T) {
	profile := domain.ProfileResult{Username: "zzz9000", DisplayName: "Alice"}
	if got := ProfileSimilarity("alice", profile); got != 1 {
		t.Fatalf("display name match must win, got %v", got)
	}
}

func TestRankProfilesOrderingAndThreshold(t *testing.T) {
	profiles := []domain.ProfileResult{
		{Username: "bob", FollowerCount: 9999},
		{Username: "alicia", FollowerCount: 5},
		{Username: "alice", FollowerCount: 100},
	}

	ranked := RankProfiles("ali", profiles)
	if len(ranked) != 2 {
		t.Fatalf("expected bob filtered out, got %d results", len(ranked))
	}
	// Both contain "ali" and tie on score; follower count breaks the tie.
	if ranked[0].Username != "alice" || ranked[1].Username != "alicia" {
		t.Fatalf("unexpected order: %q, %q", ranked[0].Username, ranked[1].Username)
	}
	if ranked[0].RelevanceScore != containmentScore {
		t.Fatalf("expected containment score, got %v", ranked[0].RelevanceScore)
	}
}

func TestRankProfilesCapsShortlist(t *testing.T) {
	profiles := make([]domain.ProfileResult, 0, 8)
	for i := 0; i < 8; i++ {
		profiles = append(profiles, domain.ProfileResult{
			Username:      fmt.Sprintf("gopher%d", i),
			FollowerCount: i,
		})
	}
	ranked := RankProfiles("gopher", profiles)
	if len(ranked) != shortlistLimit {
		t.Fatalf("expected shortlist capped at %d, got %d", shortlistLimit, len(ranked))
	}
	if ranked[0].Username != "gopher7" {
		t.Fatalf("follower count must break ties, got %q first", ranked[0].Username)
	}
}

func TestRankProfilesEmptyQuery(t *testing.T) {
	if got := RankProfiles("  ", []domain.ProfileResult{{Username: "a"}}); got != nil {
		t.Fatalf("blank query must rank nothing, got %#v", got)
	}
}

func TestAnnotateProfilesKeepsOrder(t *testing.T) {
	profiles := []domain.ProfileResult{
		{Username: "zeta"},
		{Username: "rust"},
	}
	AnnotateProfiles("rust", profiles)
	if profiles[0].Username != "zeta" {
		t.Fatalf("annotation must not reorder")
	}
	if profiles[1].RelevanceScore != 1 {
		t.Fatalf("exact match must score 1, got %v", profiles[1].RelevanceScore)
	}
}
