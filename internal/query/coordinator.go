// Package query decides per cache key whether to serve from the resource
// cache or to fetch from the backend, sharing one in-flight fetch per key.
package query

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/steemit/postsmanager/internal/cache"
	"github.com/steemit/postsmanager/pkg/logging"
	"github.com/steemit/postsmanager/pkg/telemetry"
)

// FetchFunc loads the value for one key from the backend
type FetchFunc func(ctx context.Context) (interface{}, error)

// Coordinator serves reads through the resource cache
type Coordinator struct {
	cache  *cache.Store
	group  singleflight.Group
	logger *zap.Logger

	hits     metric.Int64Counter
	misses   metric.Int64Counter
	fetches  metric.Int64Counter
	failures metric.Int64Counter
}

// New creates a coordinator over store
func New(store *cache.Store) *Coordinator {
	meter := telemetry.Meter()
	c := &Coordinator{
		cache:  store,
		logger: logging.WithComponent("query-coordinator"),
	}
	// Instrument creation only fails on invalid names; fall back to no-op counters
	c.hits, _ = meter.Int64Counter("postsmanager.cache.hits", metric.WithDescription("Reads served from the resource cache"))
	c.misses, _ = meter.Int64Counter("postsmanager.cache.misses", metric.WithDescription("Reads that required a backend fetch"))
	c.fetches, _ = meter.Int64Counter("postsmanager.backend.fetches", metric.WithDescription("Backend fetches issued"))
	c.failures, _ = meter.Int64Counter("postsmanager.backend.fetch_failures", metric.WithDescription("Backend fetches that failed"))
	return c
}

// Fetch returns the fresh cached value for key or fetches it. Concurrent
// callers for the same key share one fetch; a failure is returned to all of
// them and is not cached. A caller whose ctx ends stops waiting, but the
// fetch itself runs to completion and its result is still cached.
func (c *Coordinator) Fetch(ctx context.Context, key cache.Key, fetch FetchFunc) (interface{}, error) {
	attrs := metric.WithAttributes(attribute.String("kind", string(key.Kind)))

	if e, ok := c.cache.Get(key); ok && !e.Stale {
		c.count(ctx, c.hits, attrs)
		return e.Value, nil
	}
	c.count(ctx, c.misses, attrs)

	return c.load(ctx, key, fetch)
}

// Refetch fetches key even when a fresh entry exists, still sharing any
// in-flight fetch for the same key
func (c *Coordinator) Refetch(ctx context.Context, key cache.Key, fetch FetchFunc) (interface{}, error) {
	return c.load(ctx, key, fetch)
}

// Peek returns the cached value for key, fresh or stale, without fetching
func (c *Coordinator) Peek(key cache.Key) (interface{}, bool) {
	e, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	return e.Value, true
}

func (c *Coordinator) load(ctx context.Context, key cache.Key, fetch FetchFunc) (interface{}, error) {
	attrs := metric.WithAttributes(attribute.String("kind", string(key.Kind)))
	detached := context.WithoutCancel(ctx)

	ch := c.group.DoChan(key.String(), func() (interface{}, error) {
		fctx, span := telemetry.StartSpan(detached, "query.fetch")
		defer span.End()
		span.SetAttributes(attribute.String("cache.key", key.String()))

		c.count(fctx, c.fetches, attrs)
		value, err := fetch(fctx)
		if err != nil {
			c.count(fctx, c.failures, attrs)
			telemetry.RecordError(span, err)
			logging.FromContext(fctx, c.logger).Warn("Fetch failed",
				zap.String("key", key.String()),
				zap.Error(err))
			return nil, err
		}

		c.cache.Set(key, value)
		return value, nil
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Coordinator) count(ctx context.Context, counter metric.Int64Counter, attrs metric.AddOption) {
	if counter != nil {
		counter.Add(ctx, 1, attrs)
	}
}
