package backend

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/assert/v2"

	"github.com/kasilami/kasilami/config"
	"github.com/kasilami/kasilami/models"
	"github.com/kasilami/kasilami/realtime"
)

func sqliteConfig(t *testing.T) config.AppConfig {
	return config.AppConfig{
		BackendURL:      "sqlite://" + filepath.Join(t.TempDir(), "kasilami.db"),
		BackendAPIKey:   "public-key",
		CacheBackend:    config.BackendMemory,
		RealtimeBackend: config.BackendMemory,
		LogLevel:        "silent",
	}
}

func TestConnectRejectsMissingConfiguration(t *testing.T) {
	_, err := Connect(config.AppConfig{})
	assert.Equal(t, config.ErrMissingBackendURL, err)

	// an unreachable host would fail differently if a dial were attempted
	_, err = Connect(config.AppConfig{BackendURL: "postgres://user@10.255.255.1:5432/forum", RealtimeBackend: config.BackendRedis})
	assert.Equal(t, config.ErrMissingAPIKey, err)
}

func TestConnectSeedsOnce(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.SeedKasis = true

	c, err := Connect(cfg)
	assert.Equal(t, nil, err)
	var n int64
	assert.Equal(t, nil, c.DB.Model(&models.Kasi{}).Count(&n).Error)
	assert.Equal(t, int64(len(models.DefaultKasis)), n)
	assert.Equal(t, nil, c.Close())

	c, err = Connect(cfg)
	assert.Equal(t, nil, err)
	defer c.Close()
	assert.Equal(t, nil, c.DB.Model(&models.Kasi{}).Count(&n).Error)
	assert.Equal(t, int64(len(models.DefaultKasis)), n)
}

func TestConnectWiresChangeFeed(t *testing.T) {
	c, err := Connect(sqliteConfig(t))
	assert.Equal(t, nil, err)
	defer c.Close()

	var tables []string
	_, err = c.Feed.Subscribe(context.Background(), realtime.Scope{Table: "kasis"}, func(ev realtime.Event) {
		tables = append(tables, ev.Table)
	})
	assert.Equal(t, nil, err)

	assert.Equal(t, nil, c.DB.Create(&models.Kasi{Name: "Langa"}).Error)
	assert.Equal(t, []string{"kasis"}, tables)
}

func TestConnectWithRedisFeed(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := sqliteConfig(t)
	cfg.RealtimeBackend = config.BackendRedis
	cfg.RedisHost = mr.Host()
	cfg.RedisPort = mustPort(t, mr.Port())

	c, err := Connect(cfg)
	assert.Equal(t, nil, err)
	defer c.Close()
	assert.NotEqual(t, nil, c.Redis)
	_, ok := c.Feed.(*realtime.RedisFeed)
	assert.Equal(t, true, ok)
}

func mustPort(t *testing.T, s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		t.Fatal(err)
	}
	return n
}
