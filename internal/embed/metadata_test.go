package embed

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestOnceSingleFlight(t *testing.T) {
	var calls int32
	once := &Once{}

	const n = 16
	results := make([]*EmbedData, n)
	start := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			data, err := once.Do(func() (*EmbedData, error) {
				atomic.AddInt32(&calls, 1)
				time.Sleep(10 * time.Millisecond)
				return NewEmbedData("https://example.com"), nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			results[i] = data
		}(i)
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected exactly one fetch got %d", got)
	}
	for i := 1; i < n; i++ {
		if results[i] != results[0] {
			t.Fatalf("caller %d observed a different result reference", i)
		}
	}
}

func TestOnceResolvedIsTerminal(t *testing.T) {
	once := &Once{}

	first, err := once.Do(func() (*EmbedData, error) {
		return NewEmbedData("https://example.com/a"), nil
	})
	if err != nil {
		t.Fatalf("first do: %v", err)
	}

	second, err := once.Do(func() (*EmbedData, error) {
		t.Fatal("second fetch must not run")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("second do: %v", err)
	}
	if second != first {
		t.Fatal("expected the cached result reference")
	}
}

func TestOnceCachesFailure(t *testing.T) {
	once := &Once{}
	fetchErr := errors.New("boom")

	if _, err := once.Do(func() (*EmbedData, error) { return nil, fetchErr }); !errors.Is(err, fetchErr) {
		t.Fatalf("expected fetch error got %v", err)
	}

	// Failure is terminal too: no retry on a later call.
	if _, err := once.Do(func() (*EmbedData, error) { return NewEmbedData("x"), nil }); !errors.Is(err, fetchErr) {
		t.Fatalf("expected cached error got %v", err)
	}
}
