package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-telegram/bot/models"
)

type stubHandler struct{ id int }

func (stubHandler) HandleUpdate(context.Context, *models.Update) error { return nil }

func TestCacheReusesEntry(t *testing.T) {
	t.Parallel()
	c := NewCache()
	var builds int
	build := func() (Handler, error) {
		builds++
		return stubHandler{id: builds}, nil
	}

	first, err := c.GetOrCreate("shop-1", "ct", build)
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}
	second, err := c.GetOrCreate("shop-1", "ct", build)
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}
	if first != second || builds != 1 {
		t.Errorf("second lookup rebuilt: builds = %d", builds)
	}

	stats := c.Stats()
	if stats.Entries != 1 || stats.Hits != 1 || stats.Misses != 1 || stats.Builds != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestCacheRebuildsOnCiphertextChange(t *testing.T) {
	t.Parallel()
	c := NewCache()
	var builds int
	build := func() (Handler, error) {
		builds++
		return stubHandler{id: builds}, nil
	}

	old, _ := c.GetOrCreate("shop-1", "old-ct", build)
	fresh, err := c.GetOrCreate("shop-1", "new-ct", build)
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}
	if old == fresh || builds != 2 {
		t.Errorf("changed ciphertext did not rebuild: builds = %d", builds)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestCacheInvalidate(t *testing.T) {
	t.Parallel()
	c := NewCache()
	var builds int
	build := func() (Handler, error) {
		builds++
		return stubHandler{id: builds}, nil
	}

	_, _ = c.GetOrCreate("shop-1", "ct", build)
	_, _ = c.GetOrCreate("shop-2", "ct", build)
	c.Invalidate("shop-1")
	c.Invalidate("unknown")

	if c.Len() != 1 {
		t.Fatalf("Len after Invalidate = %d, want 1", c.Len())
	}
	_, _ = c.GetOrCreate("shop-1", "ct", build)
	if builds != 3 {
		t.Errorf("builds = %d, want 3 after invalidation", builds)
	}
}

func TestCacheDoesNotStoreBuildErrors(t *testing.T) {
	t.Parallel()
	c := NewCache()
	boom := errors.New("boom")

	if _, err := c.GetOrCreate("shop-1", "ct", func() (Handler, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}
	if c.Len() != 0 {
		t.Errorf("failed build was cached")
	}

	h, err := c.GetOrCreate("shop-1", "ct", func() (Handler, error) { return stubHandler{id: 1}, nil })
	if err != nil || h == nil {
		t.Errorf("retry after failure = %v, %v", h, err)
	}
}

func TestCacheConcurrentMissBuildsOnce(t *testing.T) {
	t.Parallel()
	c := NewCache()
	var builds atomic.Int32
	build := func() (Handler, error) {
		builds.Add(1)
		time.Sleep(50 * time.Millisecond)
		return stubHandler{id: 1}, nil
	}

	const n = 16
	start := make(chan struct{})
	results := make([]Handler, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			h, err := c.GetOrCreate("shop-1", "ct", build)
			if err != nil {
				t.Errorf("GetOrCreate error: %v", err)
			}
			results[i] = h
		}(i)
	}
	close(start)
	wg.Wait()

	if got := builds.Load(); got != 1 {
		t.Errorf("builds = %d, want 1", got)
	}
	for i, h := range results {
		if h != results[0] {
			t.Errorf("result %d differs from result 0", i)
		}
	}
}
