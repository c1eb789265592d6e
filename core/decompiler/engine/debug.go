package engine

import (
	"os"

	"github.com/ethereum/go-ethereum/log"
)

// DebugLogsEnabled turns on per-instruction tracing of the engine.
var DebugLogsEnabled = false

func init() {
	if v := os.Getenv("EVMDECOMPILE_DEBUG"); v == "1" || v == "true" {
		DebugLogsEnabled = true
	}
}

// EnableDebugLogs toggles engine tracing.
func EnableDebugLogs(on bool) { DebugLogsEnabled = on }

func debugTrace(msg string, ctx ...interface{}) {
	if DebugLogsEnabled {
		log.Trace(msg, ctx...)
	}
}

func debugInfo(msg string, ctx ...interface{}) {
	if DebugLogsEnabled {
		log.Info(msg, ctx...)
	}
}
