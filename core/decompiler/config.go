package decompiler

import (
	"github.com/bnb-chain/evmdecompiler/core/decompiler/engine"
	"github.com/bnb-chain/evmdecompiler/core/decompiler/selectors"
)

// Config contains the decompiler options. It is loaded from the [Decompiler]
// section of the CLI configuration file.
type Config struct {
	// MaxBlockStates is the number of terminal states recorded per block
	// before further arrivals are dropped.
	MaxBlockStates int

	// StripMetadata removes the trailing solc CBOR metadata before
	// decoding so it is not executed as code.
	StripMetadata bool

	// Signatures are extra function/event signatures, e.g.
	// "mint(address,uint256)". SignatureFiles list one per line.
	Signatures     []string `toml:",omitempty"`
	SignatureFiles []string `toml:",omitempty"`

	ResolverCacheSize int
	CacheSize         int // decompiled contracts kept by Cache
}

// DefaultConfig contains the default settings.
var DefaultConfig = Config{
	MaxBlockStates:    engine.DefaultMaxBlockStates,
	StripMetadata:     true,
	ResolverCacheSize: selectors.DefaultCacheSize,
	CacheSize:         64,
}

func (c *Config) engineConfig() engine.Config {
	return engine.Config{MaxBlockStates: c.MaxBlockStates}
}

// NewResolver builds the resolver described by cfg: the configured
// signatures first, then the built-in table, behind an LRU.
func NewResolver(cfg *Config) (selectors.Resolver, error) {
	custom := selectors.NewTable()
	if err := custom.Add(cfg.Signatures...); err != nil {
		return nil, err
	}
	for _, path := range cfg.SignatureFiles {
		if _, err := custom.LoadFile(path); err != nil {
			return nil, err
		}
	}
	chain := selectors.Chain{selectors.Builtin()}
	if custom.Len() > 0 {
		chain = selectors.Chain{custom, selectors.Builtin()}
	}
	return selectors.NewCached(chain, cfg.ResolverCacheSize), nil
}
