package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrMissingBackendURL is returned when no backend service URL is configured.
	ErrMissingBackendURL = errors.New("BACKEND_URL must be set")
	// ErrMissingAPIKey is returned when no public API key is configured.
	ErrMissingAPIKey = errors.New("BACKEND_API_KEY must be set")
)

// Cache and realtime backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// AppConfig holds environment driven configuration values.
// The backend URL and API key have no defaults and must come from config.json or the environment.
type AppConfig struct {
	AppPort        string
	AllowedOrigins []string
	// Hosted backend
	BackendURL    string
	BackendAPIKey string
	SeedKasis     bool
	// Gin framework configuration
	GinMode string
	GinPath string
	// Query cache
	CacheBackend    string
	KasiCacheTTL    time.Duration
	PostCacheTTL    time.Duration
	CommentCacheTTL time.Duration
	// Change feed
	RealtimeBackend string
	// Redis for caching/change feed
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

// Load reads config/config.json, fills defaults and applies environment overrides.
// It does not validate; call Validate before connecting to the backend.
func Load() AppConfig {
	return LoadFrom(filepath.Join("config", "config.json"))
}

// LoadFrom is Load with an explicit JSON path.
func LoadFrom(path string) AppConfig {
	var cfg AppConfig
	// Precedence: JSON file -> defaults -> environment variable overrides
	if err := loadJSONConfig(path, &cfg); err != nil {
		log.Printf("ignoring invalid config file %s: %v", path, err)
	}
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return cfg
}

// Validate reports the first missing required value.
func (c AppConfig) Validate() error {
	if strings.TrimSpace(c.BackendURL) == "" {
		return ErrMissingBackendURL
	}
	if strings.TrimSpace(c.BackendAPIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadJSONConfig reads JSON file into cfg if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	getString := func(m map[string]any, key string) string {
		if s, ok := m[key].(string); ok {
			return s
		}
		return ""
	}
	getInt := func(m map[string]any, key string) int {
		if f, ok := m[key].(float64); ok {
			return int(f)
		}
		return 0
	}
	getBool := func(m map[string]any, key string) bool {
		b, _ := m[key].(bool)
		return b
	}
	getStringSlice := func(m map[string]any, key string) []string {
		arr, ok := m[key].([]any)
		if !ok {
			return nil
		}
		res := make([]string, 0, len(arr))
		for _, it := range arr {
			if s, ok := it.(string); ok {
				res = append(res, s)
			}
		}
		return res
	}

	if app, ok := raw["app"].(map[string]any); ok {
		out.AppPort = getString(app, "AppPort")
		out.AllowedOrigins = getStringSlice(app, "AllowedOrigins")
		out.GinMode = getString(app, "GinMode")
		out.GinPath = getString(app, "GinPath")
	}
	if be, ok := raw["backend"].(map[string]any); ok {
		out.BackendURL = getString(be, "URL")
		out.BackendAPIKey = getString(be, "APIKey")
		out.SeedKasis = getBool(be, "SeedKasis")
	}
	if c, ok := raw["cache"].(map[string]any); ok {
		out.CacheBackend = getString(c, "Backend")
		out.KasiCacheTTL = seconds(getInt(c, "KasisTTL"))
		out.PostCacheTTL = seconds(getInt(c, "PostsTTL"))
		out.CommentCacheTTL = seconds(getInt(c, "CommentsTTL"))
	}
	if rt, ok := raw["realtime"].(map[string]any); ok {
		out.RealtimeBackend = getString(rt, "Backend")
	}
	if r, ok := raw["redis"].(map[string]any); ok {
		out.RedisHost = getString(r, "Host")
		out.RedisPort = getInt(r, "Port")
		out.RedisDB = getInt(r, "DB")
		out.RedisPassword = getString(r, "Password")
	}
	if lg, ok := raw["log"].(map[string]any); ok {
		out.LogLevel = getString(lg, "Level")
		out.LogPath = getString(lg, "Path")
		out.LogMaxSizeMB = getInt(lg, "MaxSizeMB")
		out.LogMaxBackups = getInt(lg, "MaxBackups")
		out.LogMaxAgeDays = getInt(lg, "MaxAgeDays")
		out.LogCompress = getBool(lg, "Compress")
	}
	return nil
}

// applyDefaults fills zero values.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.GinPath == "" {
		c.GinPath = "logs/gin.log"
	}
	if c.CacheBackend == "" {
		c.CacheBackend = BackendMemory
	}
	if c.RealtimeBackend == "" {
		c.RealtimeBackend = BackendMemory
	}
	// kasis rarely change; comments are the most active list
	if c.KasiCacheTTL == 0 {
		c.KasiCacheTTL = 30 * time.Minute
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.CommentCacheTTL == 0 {
		c.CommentCacheTTL = 2 * time.Minute
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) {
	if v := getEnv("APP_PORT", ""); v != "" {
		c.AppPort = v
	}
	if v := getEnv("CORS_ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}
	if v := getEnv("BACKEND_URL", ""); v != "" {
		c.BackendURL = v
	}
	if v := getEnv("BACKEND_API_KEY", ""); v != "" {
		c.BackendAPIKey = v
	}
	if v := getEnv("SEED_KASIS", ""); v != "" {
		c.SeedKasis = v == "true"
	}
	if v := getEnv("GIN_MODE", ""); v != "" {
		c.GinMode = v
	}
	if v := getEnv("GIN_PATH", ""); v != "" {
		c.GinPath = v
	}
	if v := getEnv("CACHE_BACKEND", ""); v != "" {
		c.CacheBackend = strings.ToLower(v)
	}
	if v := getEnv("CACHE_TTL_KASIS", ""); v != "" {
		c.KasiCacheTTL = seconds(mustParseInt(v))
	}
	if v := getEnv("CACHE_TTL_POSTS", ""); v != "" {
		c.PostCacheTTL = seconds(mustParseInt(v))
	}
	if v := getEnv("CACHE_TTL_COMMENTS", ""); v != "" {
		c.CommentCacheTTL = seconds(mustParseInt(v))
	}
	if v := getEnv("REALTIME_BACKEND", ""); v != "" {
		c.RealtimeBackend = strings.ToLower(v)
	}
	if v := getEnv("REDIS_HOST", ""); v != "" {
		c.RedisHost = v
	}
	if v := getEnv("REDIS_PORT", ""); v != "" {
		c.RedisPort = mustParseInt(v)
	}
	if v := getEnv("REDIS_DB", ""); v != "" {
		c.RedisDB = mustParseInt(v)
	}
	if v := getEnv("REDIS_PASSWORD", ""); v != "" {
		c.RedisPassword = v
	}
	// Logging env overrides
	if v := getEnv("LOG_LEVEL", ""); v != "" {
		c.LogLevel = v
	}
	if v := getEnv("LOG_PATH", ""); v != "" {
		c.LogPath = v
	}
	if v := getEnv("LOG_MAX_SIZE_MB", ""); v != "" {
		c.LogMaxSizeMB = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_BACKUPS", ""); v != "" {
		c.LogMaxBackups = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_AGE_DAYS", ""); v != "" {
		c.LogMaxAgeDays = mustParseInt(v)
	}
	if v := getEnv("LOG_COMPRESS", ""); v != "" {
		c.LogCompress = v == "true"
	}
}

// NeedsRedis reports whether any component is configured to use Redis.
func (c AppConfig) NeedsRedis() bool {
	return c.CacheBackend == BackendRedis || c.RealtimeBackend == BackendRedis
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func mustParseInt(val string) int {
	i, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("invalid integer value %s: %v", val, err)
	}
	return i
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
