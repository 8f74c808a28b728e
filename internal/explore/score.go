package explore

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/cases"

	"aycom/exploreservice/internal/domain"
)

// Relevance scoring for the suggested-profiles shortlist. Containment wins
// outright; otherwise the better of common-prefix ratio and normalized edit
// distance decides.
const (
	containmentScore    = 0.90
	similarityThreshold = 0.30
	shortlistLimit      = 5
)

// fieldSimilarity scores one candidate field against the query in [0, 1].
// Comparison is case-folded; a cases.Caser is not safe for concurrent use,
// so each call builds its own.
func fieldSimilarity(query, field string) float64 {
	folder := cases.Fold()
	query = folder.String(strings.TrimSpace(query))
	field = folder.String(strings.TrimSpace(field))
	if query == "" || field == "" {
		return 0
	}
	if query == field {
		return 1
	}
	if strings.Contains(field, query) || strings.Contains(query, field) {
		return containmentScore
	}

	longer := len([]rune(field))
	if shorter := len([]rune(query)); shorter > longer {
		longer = shorter
	}

	prefix := commonPrefixLen(query, field)
	prefixScore := float64(prefix) / float64(longer)

	distance := fuzzy.LevenshteinDistance(query, field)
	editScore := 1 - float64(distance)/float64(longer)
	if editScore < 0 {
		editScore = 0
	}

	if prefixScore > editScore {
		return prefixScore
	}
	return editScore
}

func commonPrefixLen(a, b string) int {
	ar := []rune(a)
	br := []rune(b)
	n := 0
	for n < len(ar) && n < len(br) && ar[n] == br[n] {
		n++
	}
	return n
}

// ProfileSimilarity scores a profile as the better of its username and
// display name matches.
func ProfileSimilarity(query string, profile domain.ProfileResult) float64 {
	score := fieldSimilarity(query, profile.Username)
	if byName := fieldSimilarity(query, profile.DisplayName); byName > score {
		score = byName
	}
	return score
}

// AnnotateProfiles stamps each profile with its relevance score without
// filtering or reordering.
func AnnotateProfiles(query string, profiles []domain.ProfileResult) {
	for i := range profiles {
		profiles[i].RelevanceScore = ProfileSimilarity(query, profiles[i])
	}
}

// RankProfiles builds the suggested shortlist: profiles at or above the
// similarity threshold, best first, ties broken by follower count then
// username, capped at the shortlist limit.
func RankProfiles(query string, profiles []domain.ProfileResult) []domain.ProfileResult {
	if strings.TrimSpace(query) == "" || len(profiles) == 0 {
		return nil
	}
	ranked := make([]domain.ProfileResult, 0, len(profiles))
	for _, profile := range profiles {
		score := ProfileSimilarity(query, profile)
		if score < similarityThreshold {
			continue
		}
		profile.RelevanceScore = score
		ranked = append(ranked, profile)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].RelevanceScore != ranked[j].RelevanceScore {
			return ranked[i].RelevanceScore > ranked[j].RelevanceScore
		}
		if ranked[i].FollowerCount != ranked[j].FollowerCount {
			return ranked[i].FollowerCount > ranked[j].FollowerCount
		}
		return ranked[i].Username < ranked[j].Username
	})
	if len(ranked) > shortlistLimit {
		ranked = ranked[:shortlistLimit]
	}
	return ranked
}
