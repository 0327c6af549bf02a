// Package backend builds the single connection handle every other layer
// shares: the database, its change feed and the optional Redis client.
package backend

import (
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/kasilami/kasilami/config"
	"github.com/kasilami/kasilami/models"
	"github.com/kasilami/kasilami/realtime"
	"github.com/kasilami/kasilami/utils"
)

// Client is immutable after Connect and safe for concurrent use.
type Client struct {
	DB     *gorm.DB
	Feed   realtime.Feed
	Redis  *redis.Client
	APIKey string
}

// Connect validates cfg, opens the database and change feed, migrates the
// schema and seeds the default kasis when asked to. Configuration errors are
// returned before any connection is attempted.
func Connect(cfg config.AppConfig) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		utils.Sugar.Warnf("backend configuration incomplete: %v", err)
		return nil, err
	}
	for _, w := range config.InspectAPIKey(cfg.BackendAPIKey, time.Now()) {
		utils.Sugar.Warn(w)
	}

	c := &Client{APIKey: cfg.BackendAPIKey}

	if cfg.NeedsRedis() {
		rc, err := utils.NewRedis(cfg)
		if err != nil {
			rc.Close()
			return nil, err
		}
		c.Redis = rc
	}

	db, err := config.OpenDatabase(cfg)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.DB = db

	if cfg.RealtimeBackend == config.BackendRedis {
		c.Feed = realtime.NewRedisFeed(c.Redis)
	} else {
		c.Feed = realtime.NewMemoryFeed()
	}
	if err := realtime.RegisterPublisher(db, c.Feed); err != nil {
		c.Close()
		return nil, fmt.Errorf("register change feed: %w", err)
	}

	if err := db.AutoMigrate(&models.Kasi{}, &models.Post{}, &models.Comment{}); err != nil {
		c.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if cfg.SeedKasis {
		if err := seedKasis(db); err != nil {
			c.Close()
			return nil, err
		}
	}
	return c, nil
}

func seedKasis(db *gorm.DB) error {
	var n int64
	if err := db.Model(&models.Kasi{}).Count(&n).Error; err != nil {
		return fmt.Errorf("count kasis: %w", err)
	}
	if n > 0 {
		return nil
	}
	kasis := make([]models.Kasi, 0, len(models.DefaultKasis))
	for _, name := range models.DefaultKasis {
		kasis = append(kasis, models.Kasi{Name: name})
	}
	if err := db.Create(&kasis).Error; err != nil {
		return fmt.Errorf("seed kasis: %w", err)
	}
	utils.Sugar.Infof("seeded %d kasis", len(kasis))
	return nil
}

// Close releases the feed, the database pool and Redis.
func (c *Client) Close() error {
	var errs []error
	if c.Feed != nil {
		errs = append(errs, c.Feed.Close())
	}
	if c.DB != nil {
		if sqlDB, err := c.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}
	return errors.Join(errs...)
}
