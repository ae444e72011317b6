package embed

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type stubEmbedder struct {
	calls int32
	data  *EmbedData
	err   error
	block chan struct{}
}

func (s *stubEmbedder) Embed(context.Context, string) (*EmbedData, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.block != nil {
		<-s.block
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}

func TestCachingEmbedderCachesResults(t *testing.T) {
	base := &stubEmbedder{data: NewEmbedData("https://example.com")}
	cache := NewCachingEmbedder(base, time.Minute)

	ctx := context.Background()

	data, err := cache.Embed(ctx, "https://example.com")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if data.URL != "https://example.com" {
		t.Fatalf("unexpected data: %+v", data)
	}
	if got := atomic.LoadInt32(&base.calls); got != 1 {
		t.Fatalf("expected base called once got %d", got)
	}

	if _, err := cache.Embed(ctx, "https://example.com"); err != nil {
		t.Fatalf("embed: %v", err)
	}
	if got := atomic.LoadInt32(&base.calls); got != 1 {
		t.Fatalf("expected cached result got %d calls", got)
	}
}

func TestCachingEmbedderDoesNotCacheFailures(t *testing.T) {
	base := &stubEmbedder{err: errors.New("boom")}
	cache := NewCachingEmbedder(base, time.Minute)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := cache.Embed(ctx, "https://example.com"); err == nil {
			t.Fatal("expected error")
		}
	}
	if got := atomic.LoadInt32(&base.calls); got != 2 {
		t.Fatalf("failures must not be cached, got %d calls", got)
	}
}

func TestCachingEmbedderCollapsesConcurrentMisses(t *testing.T) {
	base := &stubEmbedder{
		data:  NewEmbedData("https://example.com"),
		block: make(chan struct{}),
	}
	cache := NewCachingEmbedder(base, time.Minute)

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Embed(context.Background(), "https://example.com"); err != nil {
				t.Errorf("embed: %v", err)
			}
		}()
	}

	// Give every goroutine a chance to reach the cache miss.
	time.Sleep(20 * time.Millisecond)
	close(base.block)
	wg.Wait()

	if got := atomic.LoadInt32(&base.calls); got != 1 {
		t.Fatalf("expected one underlying resolution got %d", got)
	}
}

func TestCachingEmbedderUnconfigured(t *testing.T) {
	cache := NewCachingEmbedder(nil, time.Minute)
	if _, err := cache.Embed(context.Background(), "https://example.com"); !errors.Is(err, ErrEmbedderUnavailable) {
		t.Fatalf("expected ErrEmbedderUnavailable got %v", err)
	}
}
