package main

import (
	"context"
	"log"

	"github.com/kasilami/kasilami/backend"
	"github.com/kasilami/kasilami/cache"
	"github.com/kasilami/kasilami/config"
	"github.com/kasilami/kasilami/forum"
	"github.com/kasilami/kasilami/realtime"
	"github.com/kasilami/kasilami/routes"
	"github.com/kasilami/kasilami/store"
	"github.com/kasilami/kasilami/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer utils.Logger.Sync()

	client, err := backend.Connect(cfg)
	if err != nil {
		utils.Sugar.Fatalf("cannot start without a backend: %v", err)
	}

	var cacheStore cache.Store
	var closeCache func()
	switch cfg.CacheBackend {
	case config.BackendRedis:
		cacheStore = cache.NewRedisStore(client.Redis)
		closeCache = func() {}
	default:
		mem := cache.NewMemoryStore()
		cacheStore = mem
		closeCache = mem.Close
	}
	qc := cache.NewQueryClient(cacheStore)
	bridge := realtime.NewBridge(client.Feed, qc)

	// a process-local cache has to hear about inserts made elsewhere
	var watchers *realtime.Group
	if cfg.CacheBackend != config.BackendRedis && cfg.RealtimeBackend == config.BackendRedis {
		watchers, err = bridge.WatchAll(context.Background())
		if err != nil {
			utils.Sugar.Fatalf("watch change feed: %v", err)
		}
	}

	svc := forum.NewService(store.New(client.DB), qc, forum.TTLs{
		Kasis:    cfg.KasiCacheTTL,
		Posts:    cfg.PostCacheTTL,
		Comments: cfg.CommentCacheTTL,
	})
	r := routes.SetupRouter(cfg, svc, bridge)

	cleanup := func() {
		if watchers != nil {
			watchers.Unsubscribe()
		}
		closeCache()
		if err := client.Close(); err != nil {
			utils.Sugar.Warnf("close backend: %v", err)
		}
	}

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r, cleanup); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
