package engine

// DefaultMaxBlockStates is the per-block bound on recorded states.
const DefaultMaxBlockStates = 10

// Config tunes exploration.
type Config struct {
	// MaxBlockStates drops arrivals at a block that already recorded more
	// than this many states. Long running loops are under-approximated.
	MaxBlockStates int
}

var DefaultConfig = Config{MaxBlockStates: DefaultMaxBlockStates}

func (c Config) sanitize() Config {
	if c.MaxBlockStates <= 0 {
		c.MaxBlockStates = DefaultMaxBlockStates
	}
	return c
}
