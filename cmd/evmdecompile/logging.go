package main

import (
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

func isTerminal(f *os.File) bool {
	return (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) && os.Getenv("TERM") != "dumb"
}

// setupLogging installs a terminal handler on stderr at the given geth
// verbosity.
func setupLogging(verbosity int) {
	var (
		output   io.Writer = os.Stderr
		useColor           = isTerminal(os.Stderr)
	)
	if useColor {
		output = colorable.NewColorableStderr()
	}
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(output, log.FromLegacyLevel(verbosity), useColor)))
}
