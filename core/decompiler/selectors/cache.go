package selectors

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/lru"
	"github.com/ethereum/go-ethereum/metrics"
)

var (
	resolverHitCounter  = metrics.NewRegisteredCounter("decompiler/resolver/hit", nil)
	resolverMissCounter = metrics.NewRegisteredCounter("decompiler/resolver/miss", nil)
)

// DefaultCacheSize bounds each of the two lookup caches.
const DefaultCacheSize = 4096

type lookup struct {
	sig string
	ok  bool
}

// Cached memoizes an underlying resolver, including negative answers.
// It is safe for concurrent use when the underlying resolver is.
type Cached struct {
	inner     Resolver
	functions *lru.Cache[string, lookup]
	events    *lru.Cache[common.Hash, lookup]
}

func NewCached(inner Resolver, size int) *Cached {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Cached{
		inner:     inner,
		functions: lru.NewCache[string, lookup](size),
		events:    lru.NewCache[common.Hash, lookup](size),
	}
}

func (c *Cached) Function(selector string) (string, bool) {
	selector = NormalizeSelector(selector)
	if l, ok := c.functions.Get(selector); ok {
		resolverHitCounter.Inc(1)
		return l.sig, l.ok
	}
	resolverMissCounter.Inc(1)
	sig, ok := c.inner.Function(selector)
	c.functions.Add(selector, lookup{sig, ok})
	return sig, ok
}

func (c *Cached) Event(topic common.Hash) (string, bool) {
	if l, ok := c.events.Get(topic); ok {
		resolverHitCounter.Inc(1)
		return l.sig, l.ok
	}
	resolverMissCounter.Inc(1)
	sig, ok := c.inner.Event(topic)
	c.events.Add(topic, lookup{sig, ok})
	return sig, ok
}

// Len is the number of cached answers.
func (c *Cached) Len() int { return c.functions.Len() + c.events.Len() }
