package explore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"aycom/exploreservice/internal/domain"
)

// maxRecentSearches caps the recent-search list. Newer entries push older
// ones out; duplicates are promoted instead of repeated.
const maxRecentSearches = 3

// RecentStore persists the recent-search list per user.
type RecentStore interface {
	List(ctx context.Context, userID string) ([]domain.RecentSearchEntry, error)
	Save(ctx context.Context, userID string, entries []domain.RecentSearchEntry) error
}

// MemoryRecentStore is the in-process fallback used when Redis is not
// configured; entries do not survive a restart.
type MemoryRecentStore struct {
	mu      sync.Mutex
	entries map[string][]domain.RecentSearchEntry
}

func NewMemoryRecentStore() *MemoryRecentStore {
	return &MemoryRecentStore{entries: make(map[string][]domain.RecentSearchEntry)}
}

func (m *MemoryRecentStore) List(_ context.Context, userID string) ([]domain.RecentSearchEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := m.entries[userID]
	entries := make([]domain.RecentSearchEntry, len(stored))
	copy(entries, stored)
	return entries, nil
}

func (m *MemoryRecentStore) Save(_ context.Context, userID string, entries []domain.RecentSearchEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]domain.RecentSearchEntry, len(entries))
	copy(stored, entries)
	m.entries[userID] = stored
	return nil
}

// RedisRecentStore keeps each user's recent searches as one JSON value with
// a rolling TTL.
type RedisRecentStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRecentStore(client *redis.Client, ttl time.Duration) *RedisRecentStore {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &RedisRecentStore{client: client, ttl: ttl}
}

func recentSearchKey(userID string) string {
	return "explore:recent:" + userID
}

func (r *RedisRecentStore) List(ctx context.Context, userID string) ([]domain.RecentSearchEntry, error) {
	payload, err := r.client.Get(ctx, recentSearchKey(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("recent searches get: %w", err)
	}
	var entries []domain.RecentSearchEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		// Corrupt value; treat as empty rather than poisoning the session.
		return nil, nil
	}
	return entries, nil
}

func (r *RedisRecentStore) Save(ctx context.Context, userID string, entries []domain.RecentSearchEntry) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("recent searches marshal: %w", err)
	}
	if err := r.client.Set(ctx, recentSearchKey(userID), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("recent searches set: %w", err)
	}
	return nil
}

// pushRecent prepends text to the list, promoting a case-insensitive
// duplicate instead of inserting twice, and trims to the cap.
func pushRecent(entries []domain.RecentSearchEntry, text string, now time.Time) []domain.RecentSearchEntry {
	kept := make([]domain.RecentSearchEntry, 0, len(entries)+1)
	kept = append(kept, domain.RecentSearchEntry{Text: text, SavedAt: now})
	for _, entry := range entries {
		if equalFoldTrim(entry.Text, text) {
			continue
		}
		kept = append(kept, entry)
	}
	if len(kept) > maxRecentSearches {
		kept = kept[:maxRecentSearches]
	}
	return kept
}

func equalFoldTrim(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
