package traffic

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// redisSnapshotKey is where the latest index reading is mirrored when a
// Redis client is configured, so other service instances can read it
// without sampling the source themselves.
const redisSnapshotKey = "traffic:index:latest"

// Refresher samples the congestion index on a fixed interval and serves
// the latest snapshot. It owns its ticker: Stop must be called on
// teardown so no timer outlives the owning component.
type Refresher struct {
	src      Source
	interval time.Duration
	rdb      *redis.Client // optional snapshot mirror

	mu       sync.RWMutex
	snapshot IndexReading

	started  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// RefresherOption configures a Refresher.
type RefresherOption func(*Refresher)

// WithRedisMirror mirrors each snapshot to Redis.
func WithRedisMirror(rdb *redis.Client) RefresherOption {
	return func(r *Refresher) {
		r.rdb = rdb
	}
}

// NewRefresher creates a refresher sampling src every interval.
func NewRefresher(src Source, interval time.Duration, opts ...RefresherOption) *Refresher {
	r := &Refresher{
		src:      src,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start takes an initial sample and launches the refresh loop.
func (r *Refresher) Start(ctx context.Context) {
	r.started.Store(true)
	r.refresh(ctx)

	go func() {
		defer close(r.done)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.refresh(ctx)
			case <-r.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop cancels the refresh loop and waits for it to exit. Safe to call
// more than once, and before Start, in which case there is no loop to
// wait for.
func (r *Refresher) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
	if r.started.Load() {
		<-r.done
	}
}

// Snapshot returns the most recent index reading.
func (r *Refresher) Snapshot() IndexReading {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

func (r *Refresher) refresh(ctx context.Context) {
	reading, err := r.src.Index(ctx, time.Now())
	if err != nil {
		// Keep serving the previous snapshot; a stale reading beats none.
		zap.L().Warn("traffic: index refresh failed", zap.Error(err))
		return
	}

	r.mu.Lock()
	r.snapshot = reading
	r.mu.Unlock()

	if r.rdb != nil {
		r.mirror(ctx, reading)
	}
}

func (r *Refresher) mirror(ctx context.Context, reading IndexReading) {
	data, err := json.Marshal(reading)
	if err != nil {
		zap.L().Warn("traffic: marshal snapshot", zap.Error(err))
		return
	}
	if err := r.rdb.Set(ctx, redisSnapshotKey, data, 2*r.interval).Err(); err != nil {
		zap.L().Warn("traffic: mirror snapshot to redis", zap.Error(err))
	}
}
