package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr            string
	LogLevel            string
	LogFormat           string
	UserAgent           string
	ProviderTimeout     time.Duration
	DebounceWindow      time.Duration
	DefaultPerPage      int
	ProfileEndpoint     string
	ThreadEndpoint      string
	CommunityEndpoint   string
	TagEndpoint         string
	RedisURL            string
	RecentSearchUserTTL time.Duration
}

func LoadConfig() Config {
	base := strings.TrimRight(getEnv("GATEWAY_BASE_URL", "http://api-gateway:8080/api/v1"), "/")
	return Config{
		HTTPAddr:            getEnv("HTTP_ADDR", ":8085"),
		LogLevel:            strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:           strings.ToLower(getEnv("LOG_FORMAT", "text")),
		UserAgent:           getEnv("EXPLORE_USER_AGENT", "aycom-explore/1.0"),
		ProviderTimeout:     time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 10)) * time.Second,
		DebounceWindow:      time.Duration(getEnvInt("DEBOUNCE_WINDOW_MS", 300)) * time.Millisecond,
		DefaultPerPage:      getEnvInt("DEFAULT_PER_PAGE", 25),
		ProfileEndpoint:     getEnv("PROFILE_SEARCH_ENDPOINT", base+"/users/search"),
		ThreadEndpoint:      getEnv("THREAD_SEARCH_ENDPOINT", base+"/threads/search"),
		CommunityEndpoint:   getEnv("COMMUNITY_SEARCH_ENDPOINT", base+"/communities/search"),
		TagEndpoint:         getEnv("TAG_ENDPOINT", base+"/tags"),
		RedisURL:            getEnv("REDIS_URL", ""),
		RecentSearchUserTTL: time.Duration(getEnvInt("RECENT_SEARCH_TTL_DAYS", 30)) * 24 * time.Hour,
	}
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
