package embed

import (
	"context"
	"sync"
)

// Metadata is a source-bound handle for one requested URL. Construction is
// cheap and performs no I/O; Fetch resolves the remote resource at most once
// and caches the result for every later caller.
type Metadata interface {
	Fetch(ctx context.Context, req *RequestContext) (*EmbedData, error)
}

// Once coordinates the single-fetch contract shared by all resolvers. The
// first caller installs a completion handle under the lock and performs the
// work; every concurrent or later caller awaits that same handle instead of
// issuing a second round trip. The lock is never held across the fetch
// itself.
type Once struct {
	mu   sync.Mutex
	done chan struct{}
	data *EmbedData
	err  error
}

// Do runs fetch if no fetch has started yet, otherwise waits for the stored
// result. All callers observe the same *EmbedData and error.
func (o *Once) Do(fetch func() (*EmbedData, error)) (*EmbedData, error) {
	o.mu.Lock()
	if o.done != nil {
		ch := o.done
		o.mu.Unlock()
		<-ch
		return o.data, o.err
	}
	ch := make(chan struct{})
	o.done = ch
	o.mu.Unlock()

	data, err := fetch()

	o.mu.Lock()
	o.data, o.err = data, err
	o.mu.Unlock()
	close(ch)

	return data, err
}
