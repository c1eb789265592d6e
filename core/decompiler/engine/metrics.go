package engine

import "github.com/ethereum/go-ethereum/metrics"

var (
	blockCounter    = metrics.NewRegisteredCounter("decompiler/blocks", nil)
	stateCounter    = metrics.NewRegisteredCounter("decompiler/states", nil)
	droppedCounter  = metrics.NewRegisteredCounter("decompiler/dropped", nil)
	throwCounter    = metrics.NewRegisteredCounter("decompiler/throws", nil)
	selectorCounter = metrics.NewRegisteredCounter("decompiler/selectors", nil)
)
