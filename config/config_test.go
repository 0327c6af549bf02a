package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/golang-jwt/jwt/v5"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BACKEND_URL", "")
	t.Setenv("BACKEND_API_KEY", "")
	cfg := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, BackendMemory, cfg.CacheBackend)
	assert.Equal(t, BackendMemory, cfg.RealtimeBackend)
	assert.Equal(t, 30*time.Minute, cfg.KasiCacheTTL)
	assert.Equal(t, 5*time.Minute, cfg.PostCacheTTL)
	assert.Equal(t, 2*time.Minute, cfg.CommentCacheTTL)
	assert.Equal(t, ErrMissingBackendURL, cfg.Validate())
}

func TestLoadJSONThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
		"app": {"AppPort": "9000"},
		"backend": {"URL": "sqlite://forum.db", "APIKey": "from-file", "SeedKasis": true},
		"cache": {"Backend": "redis", "PostsTTL": 60}
	}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BACKEND_API_KEY", "from-env")
	t.Setenv("CACHE_TTL_COMMENTS", "15")

	cfg := LoadFrom(path)
	assert.Equal(t, "9000", cfg.AppPort)
	assert.Equal(t, "sqlite://forum.db", cfg.BackendURL)
	assert.Equal(t, "from-env", cfg.BackendAPIKey)
	assert.Equal(t, true, cfg.SeedKasis)
	assert.Equal(t, BackendRedis, cfg.CacheBackend)
	assert.Equal(t, time.Minute, cfg.PostCacheTTL)
	assert.Equal(t, 15*time.Second, cfg.CommentCacheTTL)
	assert.Equal(t, true, cfg.NeedsRedis())
	assert.Equal(t, nil, cfg.Validate())
}

func TestValidateMissingKey(t *testing.T) {
	cfg := AppConfig{BackendURL: "sqlite://x.db", BackendAPIKey: "  "}
	assert.Equal(t, ErrMissingAPIKey, cfg.Validate())
}

func signedKey(t *testing.T, claims jwt.MapClaims) string {
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestInspectAPIKey(t *testing.T) {
	now := time.Now()

	anon := signedKey(t, jwt.MapClaims{"role": "anon", "exp": now.Add(time.Hour).Unix()})
	assert.Equal(t, 0, len(InspectAPIKey(anon, now)))

	service := signedKey(t, jwt.MapClaims{"role": "service_role", "exp": now.Add(-time.Hour).Unix()})
	assert.Equal(t, 2, len(InspectAPIKey(service, now)))

	assert.Equal(t, 0, len(InspectAPIKey("opaque-key", now)))
}

func TestDialector(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@db.example.co:5432/postgres": "postgres",
		"postgresql://u:p@localhost/forum":           "postgres",
		"mysql://root:pw@tcp(127.0.0.1:3306)/kasi":   "mysql",
		"root:pw@tcp(127.0.0.1:3306)/kasi":           "mysql",
		"sqlite://forum.db":                          "sqlite",
		"file::memory:?cache=shared":                 "sqlite",
	}
	for url, want := range cases {
		d, err := Dialector(url)
		assert.Equal(t, nil, err)
		assert.Equal(t, want, d.Name())
	}

	_, err := Dialector("")
	assert.Equal(t, ErrMissingBackendURL, err)

	_, err = Dialector("https://example.com")
	assert.NotEqual(t, nil, err)
}

func TestOpenDatabaseSQLite(t *testing.T) {
	db, err := OpenDatabase(AppConfig{BackendURL: "sqlite://" + filepath.Join(t.TempDir(), "forum.db"), LogLevel: "silent"})
	assert.Equal(t, nil, err)
	sqlDB, err := db.DB()
	assert.Equal(t, nil, err)
	assert.Equal(t, nil, sqlDB.Close())
}

func TestOpenDatabaseUnreachable(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-dir", "forum.db")
	db, err := OpenDatabase(AppConfig{BackendURL: "sqlite://" + missing, LogLevel: "silent"})
	assert.NotEqual(t, nil, err)
	assert.Equal(t, true, db == nil)
}
