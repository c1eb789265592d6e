package decompiler

import (
	"runtime"
	"sync"
	"time"

	"github.com/bnb-chain/evmdecompiler/core/decompiler/selectors"
	"github.com/panjf2000/ants/v2"
)

// Batch decompiles many programs on a bounded goroutine pool. Results go
// through a shared Cache, so repeated code is analysed once per batch
// lifetime.
type Batch struct {
	pool  *ants.Pool
	cache *Cache
}

// NewBatch creates a batch with the given number of workers, or one per
// CPU when workers is not positive.
func NewBatch(cfg *Config, resolver selectors.Resolver, workers int) (*Batch, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	pool, err := ants.NewPool(workers, ants.WithExpiryDuration(10*time.Second))
	if err != nil {
		return nil, err
	}
	return &Batch{pool: pool, cache: NewCache(cfg, resolver)}, nil
}

// Run decompiles every code and returns the results in input order. The
// error slice is nil when every input succeeded.
func (b *Batch) Run(codes [][]byte) ([]*Contract, []error) {
	var (
		out    = make([]*Contract, len(codes))
		errs   = make([]error, len(codes))
		failed bool
		mu     sync.Mutex
		wg     sync.WaitGroup
	)
	for i, code := range codes {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			c, err := b.cache.Decompile(code)
			out[i], errs[i] = c, err
			if err != nil {
				mu.Lock()
				failed = true
				mu.Unlock()
			}
		}
		if err := b.pool.Submit(task); err != nil {
			wg.Done()
			mu.Lock()
			errs[i], failed = err, true
			mu.Unlock()
		}
	}
	wg.Wait()
	if !failed {
		return out, nil
	}
	return out, errs
}

// Release stops the workers. The batch must not be used afterwards.
func (b *Batch) Release() {
	b.pool.Release()
}
