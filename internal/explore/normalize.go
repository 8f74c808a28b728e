package explore

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"aycom/exploreservice/internal/domain"
)

// The upstream services disagree on casing, nesting and numeric encoding.
// Every logical field resolves through an ordered fallback chain; items
// that stay malformed after resolution are dropped, never emitted as
// zero-value placeholders.

func asMap(value any) (map[string]any, bool) {
	m, ok := value.(map[string]any)
	if !ok || m == nil {
		return nil, false
	}
	return m, true
}

func stringField(m map[string]any, keys ...string) string {
	for _, key := range keys {
		raw, ok := m[key]
		if !ok {
			continue
		}
		if value, ok := raw.(string); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

// intField coerces to a non-negative integer; unparsable or missing values
// default to 0.
func intField(m map[string]any, keys ...string) int {
	for _, key := range keys {
		raw, ok := m[key]
		if !ok {
			continue
		}
		if value, ok := coerceInt(raw); ok {
			if value < 0 {
				return 0
			}
			return value
		}
	}
	return 0
}

func coerceInt(raw any) (int, bool) {
	switch value := raw.(type) {
	case float64:
		return int(value), true
	case int:
		return value, true
	case int64:
		return int(value), true
	case json.Number:
		parsed, err := value.Int64()
		if err != nil {
			return 0, false
		}
		return int(parsed), true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func boolField(m map[string]any, keys ...string) bool {
	for _, key := range keys {
		raw, ok := m[key]
		if !ok {
			continue
		}
		switch value := raw.(type) {
		case bool:
			return value
		case string:
			switch strings.ToLower(strings.TrimSpace(value)) {
			case "true", "1", "yes":
				return true
			case "false", "0", "no":
				return false
			}
		}
	}
	return false
}

func subObject(m map[string]any, keys ...string) map[string]any {
	for _, key := range keys {
		if nested, ok := asMap(m[key]); ok {
			return nested
		}
	}
	return nil
}

func listField(m map[string]any, keys ...string) []any {
	for _, key := range keys {
		if list, ok := m[key].([]any); ok {
			return list
		}
	}
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// timeField normalizes timestamps to UTC; unparsable or missing dates fall
// back to now rather than failing the item.
func timeField(m map[string]any, keys ...string) time.Time {
	for _, key := range keys {
		raw, ok := m[key]
		if !ok {
			continue
		}
		if parsed, ok := parseTimestamp(raw); ok {
			return parsed
		}
	}
	return time.Now().UTC()
}

func parseTimestamp(raw any) (time.Time, bool) {
	switch value := raw.(type) {
	case string:
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return time.Time{}, false
		}
		for _, layout := range timestampLayouts {
			if parsed, err := time.Parse(layout, trimmed); err == nil {
				return parsed.UTC(), true
			}
		}
		if unix, err := strconv.ParseInt(trimmed, 10, 64); err == nil && unix > 0 {
			return time.Unix(unix, 0).UTC(), true
		}
		return time.Time{}, false
	case float64:
		if value <= 0 {
			return time.Time{}, false
		}
		return time.Unix(int64(value), 0).UTC(), true
	default:
		return time.Time{}, false
	}
}

// totalCount resolves the page total from flat fields or a nested
// pagination object, falling back to the item count itself.
func totalCount(m map[string]any, itemCount int) int {
	if total := intField(m, "total_count", "totalCount", "total"); total > 0 {
		return total
	}
	if pagination := subObject(m, "pagination", "meta", "page_info"); pagination != nil {
		if total := intField(pagination, "total_count", "totalCount", "total"); total > 0 {
			return total
		}
	}
	return itemCount
}

// normalizeProfilePage adapts a searchProfiles payload. ok is false only
// when the payload itself is not an object (malformed response); individual
// bad items are dropped and counted.
func normalizeProfilePage(raw any) (items []domain.ProfileResult, total, dropped int, ok bool) {
	m, isMap := asMap(raw)
	if !isMap {
		return nil, 0, 0, false
	}
	entries := listField(m, "users", "profiles", "items", "data", "results")
	items = make([]domain.ProfileResult, 0, len(entries))
	for _, entry := range entries {
		profile, wellFormed := normalizeProfile(entry)
		if !wellFormed {
			dropped++
			continue
		}
		items = append(items, profile)
	}
	return items, totalCount(m, len(items)), dropped, true
}

func normalizeProfile(entry any) (domain.ProfileResult, bool) {
	m, isMap := asMap(entry)
	if !isMap {
		return domain.ProfileResult{}, false
	}
	id := stringField(m, "id", "user_id", "userId", "uuid")
	username := stringField(m, "username", "handle", "screen_name", "screenName")
	if id == "" && username == "" {
		return domain.ProfileResult{}, false
	}
	displayName := stringField(m, "display_name", "displayName", "name", "full_name", "fullName")
	if displayName == "" {
		displayName = username
	}
	if displayName == "" {
		displayName = "User"
	}
	counts := subObject(m, "metrics", "counts", "stats")
	followerCount := intField(m, "follower_count", "followerCount", "followers_count", "followers")
	if followerCount == 0 && counts != nil {
		followerCount = intField(counts, "follower_count", "followerCount", "followers")
	}
	return domain.ProfileResult{
		ID:            id,
		Username:      username,
		DisplayName:   displayName,
		AvatarURL:     stringField(m, "profile_picture_url", "profilePictureUrl", "avatar_url", "avatarUrl", "avatar", "image_url"),
		Bio:           stringField(m, "bio", "description", "about"),
		IsVerified:    boolField(m, "is_verified", "isVerified", "verified"),
		FollowerCount: followerCount,
		IsFollowing:   boolField(m, "is_following", "isFollowing", "following"),
	}, true
}

// normalizeThreadPage adapts searchThreads / searchThreadsWithMedia /
// getThreadsByHashtag payloads, which share a shape but disagree on author
// nesting and counter names.
func normalizeThreadPage(raw any) (items []domain.ThreadResult, total, dropped int, ok bool) {
	m, isMap := asMap(raw)
	if !isMap {
		return nil, 0, 0, false
	}
	entries := listField(m, "threads", "items", "posts", "data", "results")
	items = make([]domain.ThreadResult, 0, len(entries))
	for _, entry := range entries {
		thread, wellFormed := normalizeThread(entry)
		if !wellFormed {
			dropped++
			continue
		}
		items = append(items, thread)
	}
	return items, totalCount(m, len(items)), dropped, true
}

func normalizeThread(entry any) (domain.ThreadResult, bool) {
	m, isMap := asMap(entry)
	if !isMap {
		return domain.ThreadResult{}, false
	}
	id := stringField(m, "id", "thread_id", "threadId", "uuid")
	content := stringField(m, "content", "text", "body")
	if id == "" && content == "" {
		return domain.ThreadResult{}, false
	}

	// Author fields may be flat on the thread or nested under author/user.
	author := subObject(m, "author", "user")
	username := stringField(m, "username", "author_username", "authorUsername")
	displayName := stringField(m, "name", "display_name", "displayName", "author_name")
	avatar := stringField(m, "profile_picture_url", "profilePictureUrl", "author_avatar_url", "avatar_url")
	if author != nil {
		if username == "" {
			username = stringField(author, "username", "handle", "screen_name")
		}
		if displayName == "" {
			displayName = stringField(author, "display_name", "displayName", "name", "full_name")
		}
		if avatar == "" {
			avatar = stringField(author, "profile_picture_url", "profilePictureUrl", "avatar_url", "avatarUrl", "avatar")
		}
	}
	if displayName == "" {
		displayName = username
	}
	if displayName == "" {
		displayName = "User"
	}

	counts := subObject(m, "metrics", "counts", "stats")
	likeCount := intField(m, "likes_count", "like_count", "likeCount", "likes")
	replyCount := intField(m, "replies_count", "reply_count", "replyCount", "replies")
	repostCount := intField(m, "reposts_count", "repost_count", "repostCount", "reposts")
	if counts != nil {
		if likeCount == 0 {
			likeCount = intField(counts, "likes", "like_count")
		}
		if replyCount == 0 {
			replyCount = intField(counts, "replies", "reply_count")
		}
		if repostCount == 0 {
			repostCount = intField(counts, "reposts", "repost_count")
		}
	}

	return domain.ThreadResult{
		ID:                id,
		Content:           content,
		AuthorUsername:    username,
		AuthorDisplayName: displayName,
		AuthorAvatarURL:   avatar,
		CreatedAt:         timeField(m, "created_at", "createdAt", "timestamp", "published_at"),
		LikeCount:         likeCount,
		ReplyCount:        replyCount,
		RepostCount:       repostCount,
		Media:             normalizeMediaList(listField(m, "media", "attachments", "media_urls")),
	}, true
}

func normalizeMediaList(entries []any) []domain.MediaRef {
	if len(entries) == 0 {
		return nil
	}
	refs := make([]domain.MediaRef, 0, len(entries))
	for _, entry := range entries {
		switch value := entry.(type) {
		case string:
			if url := strings.TrimSpace(value); url != "" {
				refs = append(refs, domain.MediaRef{URL: url, Type: guessMediaType(url, "")})
			}
		case map[string]any:
			url := stringField(value, "url", "media_url", "mediaUrl", "src")
			if url == "" {
				continue
			}
			kind := stringField(value, "type", "media_type", "mediaType", "kind")
			refs = append(refs, domain.MediaRef{URL: url, Type: guessMediaType(url, kind)})
		}
	}
	if len(refs) == 0 {
		return nil
	}
	return refs
}

func guessMediaType(url, declared string) domain.MediaType {
	switch strings.ToLower(strings.TrimSpace(declared)) {
	case "video":
		return domain.MediaTypeVideo
	case "gif":
		return domain.MediaTypeGIF
	case "image", "photo":
		return domain.MediaTypeImage
	}
	lower := strings.ToLower(url)
	switch {
	case strings.HasSuffix(lower, ".mp4"), strings.HasSuffix(lower, ".webm"), strings.HasSuffix(lower, ".mov"):
		return domain.MediaTypeVideo
	case strings.HasSuffix(lower, ".gif"):
		return domain.MediaTypeGIF
	default:
		return domain.MediaTypeImage
	}
}

func normalizeCommunityPage(raw any) (items []domain.CommunityResult, total, dropped int, ok bool) {
	m, isMap := asMap(raw)
	if !isMap {
		return nil, 0, 0, false
	}
	entries := listField(m, "communities", "items", "data", "results")
	items = make([]domain.CommunityResult, 0, len(entries))
	for _, entry := range entries {
		community, wellFormed := normalizeCommunity(entry)
		if !wellFormed {
			dropped++
			continue
		}
		items = append(items, community)
	}
	return items, totalCount(m, len(items)), dropped, true
}

func normalizeCommunity(entry any) (domain.CommunityResult, bool) {
	m, isMap := asMap(entry)
	if !isMap {
		return domain.CommunityResult{}, false
	}
	id := stringField(m, "id", "community_id", "communityId", "uuid")
	name := stringField(m, "name", "title")
	if id == "" && name == "" {
		return domain.CommunityResult{}, false
	}
	memberCount := intField(m, "member_count", "memberCount", "members_count", "members")
	if memberCount == 0 {
		if counts := subObject(m, "metrics", "counts", "stats"); counts != nil {
			memberCount = intField(counts, "member_count", "members")
		}
	}
	return domain.CommunityResult{
		ID:          id,
		Name:        name,
		Description: stringField(m, "description", "about", "bio"),
		LogoURL:     stringField(m, "logo_url", "logoUrl", "icon_url", "iconUrl", "avatar_url", "image_url"),
		MemberCount: memberCount,
		IsJoined:    boolField(m, "is_joined", "isJoined", "joined", "is_member", "isMember"),
		IsPending:   boolField(m, "is_pending", "isPending", "pending", "has_requested"),
	}, true
}

// normalizeTagList accepts a bare array or an object wrapping one; each
// entry may be a string or an object.
func normalizeTagList(raw any) (items []domain.TagResult, dropped int, ok bool) {
	entries, isList := raw.([]any)
	if !isList {
		m, isMap := asMap(raw)
		if !isMap {
			return nil, 0, false
		}
		entries = listField(m, "tags", "hashtags", "trending", "items", "data")
	}
	items = make([]domain.TagResult, 0, len(entries))
	for _, entry := range entries {
		switch value := entry.(type) {
		case string:
			if name := normalizeTagName(value); name != "" {
				items = append(items, domain.TagResult{Name: name})
			} else {
				dropped++
			}
		case map[string]any:
			name := normalizeTagName(stringField(value, "name", "tag", "hashtag", "text"))
			if name == "" {
				dropped++
				continue
			}
			items = append(items, domain.TagResult{
				Name:       name,
				UsageCount: intField(value, "usage_count", "usageCount", "count", "thread_count"),
			})
		default:
			dropped++
		}
	}
	return items, dropped, true
}

func normalizeTagName(raw string) string {
	return strings.TrimPrefix(strings.TrimSpace(raw), "#")
}

func normalizeFacetList(raw any) (items []domain.FacetCategory, ok bool) {
	entries, isList := raw.([]any)
	if !isList {
		m, isMap := asMap(raw)
		if !isMap {
			return nil, false
		}
		entries = listField(m, "categories", "items", "data")
	}
	items = make([]domain.FacetCategory, 0, len(entries))
	for _, entry := range entries {
		switch value := entry.(type) {
		case string:
			if name := strings.TrimSpace(value); name != "" {
				items = append(items, domain.FacetCategory{ID: name, Name: name})
			}
		case map[string]any:
			name := stringField(value, "name", "label", "title")
			id := stringField(value, "id", "slug", "key")
			if id == "" {
				id = name
			}
			if name == "" {
				name = id
			}
			if id == "" {
				continue
			}
			items = append(items, domain.FacetCategory{ID: id, Name: name})
		}
	}
	return items, true
}
