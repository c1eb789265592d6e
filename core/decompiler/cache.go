package decompiler

import (
	"github.com/bnb-chain/evmdecompiler/core/decompiler/asm"
	"github.com/bnb-chain/evmdecompiler/core/decompiler/selectors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/lru"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/metrics"
)

var (
	cacheHitCounter  = metrics.NewRegisteredCounter("decompiler/cache/hit", nil)
	cacheMissCounter = metrics.NewRegisteredCounter("decompiler/cache/miss", nil)
)

// Cache keeps decompiled contracts keyed by code hash. Contracts handed
// out by the cache are shared and must be treated as read-only.
type Cache struct {
	cfg      Config
	resolver selectors.Resolver
	results  *lru.Cache[common.Hash, *Contract]
}

func NewCache(cfg *Config, resolver selectors.Resolver) *Cache {
	if cfg == nil {
		cfg = &DefaultConfig
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = DefaultConfig.CacheSize
	}
	return &Cache{
		cfg:      *cfg,
		resolver: resolver,
		results:  lru.NewCache[common.Hash, *Contract](size),
	}
}

// Decompile returns the cached result for code or computes and stores it.
func (c *Cache) Decompile(code []byte) (*Contract, error) {
	if len(code) == 0 {
		return nil, asm.ErrEmptyCode
	}
	hash := crypto.Keccak256Hash(code)
	if con, ok := c.results.Get(hash); ok {
		cacheHitCounter.Inc(1)
		return con, nil
	}
	cacheMissCounter.Inc(1)
	con, err := Decompile(code, &c.cfg, c.resolver)
	if err != nil {
		return nil, err
	}
	c.results.Add(hash, con)
	return con, nil
}

// Remove drops the cached result of a code hash.
func (c *Cache) Remove(hash common.Hash) {
	c.results.Remove(hash)
}

func (c *Cache) Len() int { return c.results.Len() }
