package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/steemit/postsmanager/internal/cache"
)

func TestCoordinator_ServesFreshEntryWithoutFetching(t *testing.T) {
	store := cache.NewStore(nil)
	key := cache.Key{Kind: cache.KindPosts, Limit: 10}
	store.Set(key, "cached")

	c := New(store)
	var calls int32
	v, err := c.Fetch(context.Background(), key, func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return "fetched", nil
	})
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if v != "cached" || calls != 0 {
		t.Errorf("Fetch() = %v with %d calls, want cached value and no calls", v, calls)
	}
}

func TestCoordinator_DeduplicatesConcurrentFetches(t *testing.T) {
	tests := []struct {
		name        string
		skip, limit int
	}{
		{"first page", 0, 10},
		{"second page", 10, 10},
		{"large page", 0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(cache.NewStore(nil))
			key := cache.Key{Kind: cache.KindPosts, Skip: tt.skip, Limit: tt.limit}

			var calls int32
			started := make(chan struct{})
			release := make(chan struct{})
			fetch := func(ctx context.Context) (interface{}, error) {
				if atomic.AddInt32(&calls, 1) == 1 {
					close(started)
				}
				<-release
				return tt.skip + tt.limit, nil
			}

			results := make([]interface{}, 2)
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[0], _ = c.Fetch(context.Background(), key, fetch)
			}()
			<-started

			wg.Add(1)
			go func() {
				defer wg.Done()
				results[1], _ = c.Fetch(context.Background(), key, fetch)
			}()
			// Give the second caller time to join the in-flight fetch
			time.Sleep(50 * time.Millisecond)
			close(release)
			wg.Wait()

			if calls != 1 {
				t.Errorf("fetch calls = %d, want 1", calls)
			}
			if results[0] != tt.skip+tt.limit || results[1] != results[0] {
				t.Errorf("results = %v, want both %d", results, tt.skip+tt.limit)
			}
		})
	}
}

func TestCoordinator_FailureIsSharedAndNotCached(t *testing.T) {
	store := cache.NewStore(nil)
	c := New(store)
	key := cache.Key{Kind: cache.KindPostSearch, Query: "react"}
	boom := errors.New("boom")

	_, err := c.Fetch(context.Background(), key, func(ctx context.Context) (interface{}, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Fetch() error = %v, want boom", err)
	}
	if _, ok := store.Get(key); ok {
		t.Fatal("failed fetch must not be cached")
	}

	v, err := c.Fetch(context.Background(), key, func(ctx context.Context) (interface{}, error) {
		return "ok", nil
	})
	if err != nil || v != "ok" {
		t.Errorf("retry Fetch() = %v, %v", v, err)
	}
}

func TestCoordinator_StaleEntryIsRefetched(t *testing.T) {
	store := cache.NewStore(nil)
	c := New(store)
	key := cache.Key{Kind: cache.KindComments, ID: 1}
	store.Set(key, "old")
	store.Invalidate(cache.Prefix(cache.KindComments))

	if v, ok := c.Peek(key); !ok || v != "old" {
		t.Errorf("Peek() = %v, %v; stale value should still be visible", v, ok)
	}

	v, err := c.Fetch(context.Background(), key, func(ctx context.Context) (interface{}, error) {
		return "new", nil
	})
	if err != nil || v != "new" {
		t.Fatalf("Fetch() = %v, %v", v, err)
	}
	if e, _ := store.Get(key); e.Stale {
		t.Error("entry should be fresh after refetch")
	}
}

func TestCoordinator_Refetch(t *testing.T) {
	store := cache.NewStore(nil)
	c := New(store)
	key := cache.Key{Kind: cache.KindTags}
	store.Set(key, "old")

	v, err := c.Refetch(context.Background(), key, func(ctx context.Context) (interface{}, error) {
		return "new", nil
	})
	if err != nil || v != "new" {
		t.Errorf("Refetch() = %v, %v", v, err)
	}
}

func TestCoordinator_CallerCancellationStillCaches(t *testing.T) {
	store := cache.NewStore(nil)
	c := New(store)
	key := cache.Key{Kind: cache.KindPosts, Skip: 20, Limit: 10}

	release := make(chan struct{})
	done := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		defer close(done)
		_, err := c.Fetch(ctx, key, func(fctx context.Context) (interface{}, error) {
			<-release
			if fctx.Err() != nil {
				return nil, fctx.Err()
			}
			return "late", nil
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Fetch() error = %v, want context.Canceled", err)
		}
	}()

	cancel()
	<-done
	close(release)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if e, ok := store.Get(key); ok && e.Value == "late" {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("superseded fetch result was not cached")
}
