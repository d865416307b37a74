package scene

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mr1hm/balloon-scene/internal/metrics"
	"github.com/mr1hm/balloon-scene/internal/models"
)

const sceneKey = "scene"

type BuildFunc func(ctx context.Context) (*models.Scene, error)

// Cache holds the last built scene for a fixed TTL and rebuilds it lazily on
// the first read after it goes stale. Concurrent readers of a stale cache
// share a single build.
type Cache struct {
	build     BuildFunc
	ttl       time.Duration
	now       func() time.Time
	metrics   *metrics.Metrics
	onRebuild func(*models.Scene)

	group singleflight.Group

	mu      sync.RWMutex
	scene   *models.Scene
	builtAt time.Time
}

func NewCache(build BuildFunc, ttl time.Duration, m *metrics.Metrics) *Cache {
	return &Cache{
		build:   build,
		ttl:     ttl,
		now:     time.Now,
		metrics: m,
	}
}

// OnRebuild registers fn to receive every newly built scene. It must be set
// before the cache is shared.
func (c *Cache) OnRebuild(fn func(*models.Scene)) {
	c.onRebuild = fn
}

func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns the cached scene while it is fresh and rebuilds it otherwise.
// A failed build leaves the previous scene in place and returns the error.
func (c *Cache) Get(ctx context.Context) (*models.Scene, error) {
	if s, ok := c.fresh(); ok {
		c.metrics.CacheHit()
		return s, nil
	}
	c.metrics.CacheMiss()

	// The build outlives a caller that gives up; others may be waiting on it.
	buildCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(sceneKey, func() (any, error) {
		if s, ok := c.fresh(); ok {
			return s, nil
		}
		return c.rebuild(buildCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.Scene), nil
	}
}

func (c *Cache) fresh() (*models.Scene, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.scene == nil || c.now().Sub(c.builtAt) >= c.ttl {
		return nil, false
	}
	return c.scene, true
}

func (c *Cache) rebuild(ctx context.Context) (scene *models.Scene, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			scene, err = nil, fmt.Errorf("scene build panicked: %v", r)
		}
		c.metrics.BuildFinished(time.Since(start), err)
	}()

	scene, err = c.build(ctx)
	if err != nil {
		return nil, fmt.Errorf("error building scene: %w", err)
	}
	if scene == nil {
		return nil, errors.New("scene build returned no scene")
	}

	c.mu.Lock()
	c.scene = scene
	c.builtAt = c.now()
	c.mu.Unlock()

	c.metrics.SceneSize(len(scene.Flights), len(scene.Fires))
	if c.onRebuild != nil {
		c.onRebuild(scene)
	}

	return scene, nil
}
