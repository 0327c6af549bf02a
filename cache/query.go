package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kasilami/kasilami/utils"
)

const defaultTTL = time.Hour

// QueryClient maps query keys to fetch functions. Concurrent reads of the
// same key share one fetch; results are kept in the Store until their TTL
// runs out or the key is invalidated.
type QueryClient struct {
	store Store
	group singleflight.Group
	// bumped on every invalidation; part of the flight key, and a fetch that
	// straddles one is not stored
	epoch atomic.Uint64
}

func NewQueryClient(store Store) *QueryClient {
	return &QueryClient{store: store}
}

// Fetch returns the cached value for key or runs fn and caches its result.
// Errors from fn are returned as-is and never cached. A shared fetch runs
// detached from any one caller's cancellation; each caller stops waiting
// when its own ctx is done.
func Fetch[T any](ctx context.Context, qc *QueryClient, key Key, ttl time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	k := key.String()

	if b, ok := qc.store.Get(ctx, k); ok {
		var v T
		if err := json.Unmarshal(b, &v); err == nil {
			return v, nil
		}
		utils.Sugar.Warnf("dropping undecodable cache entry key=%s", k)
	}

	// flights started before an invalidation are not joinable after it
	epoch := qc.epoch.Load()
	flight := k + "@" + strconv.FormatUint(epoch, 10)
	detached := context.WithoutCancel(ctx)

	ch := qc.group.DoChan(flight, func() (interface{}, error) {
		v, err := fn(detached)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		if qc.epoch.Load() == epoch {
			qc.store.Set(detached, k, b, ttl)
			// an invalidation may have landed between the check and Set
			if qc.epoch.Load() != epoch {
				if err := qc.store.DeletePrefix(detached, k); err != nil {
					utils.Sugar.Warnf("drop stale cache entry key=%s: %v", k, err)
				}
			}
		}
		return b, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	if res.Err != nil {
		return zero, res.Err
	}
	if res.Shared {
		utils.Sugar.Debugf("cache fetch shared key=%s", k)
	}

	// decode per caller so shared results are not aliased between goroutines
	var v T
	if err := json.Unmarshal(res.Val.([]byte), &v); err != nil {
		return zero, err
	}
	return v, nil
}

// Invalidate marks key and every key below it as stale.
func (qc *QueryClient) Invalidate(ctx context.Context, key Key) error {
	qc.epoch.Add(1)
	return qc.store.DeletePrefix(ctx, key.String())
}
