// evmdecompile reconstructs structured pseudo-source from EVM runtime
// bytecode.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var (
	configFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	formatFlag = &cli.StringFlag{
		Name:  "format",
		Usage: "Output format: text, dot, svg or summary",
		Value: "text",
	}
	selectorFlag = &cli.StringFlag{
		Name:  "selector",
		Usage: "Print only the function with this 4-byte selector (0x...)",
	}
	signaturesFlag = &cli.StringSliceFlag{
		Name:  "signatures",
		Usage: "Signature file, one function or event signature per line",
	}
	outFlag = &cli.StringFlag{
		Name:  "out",
		Usage: "Output file (default stdout)",
	}
	maxStatesFlag = &cli.IntFlag{
		Name:  "max-states",
		Usage: "Terminal states recorded per basic block",
	}
	keepMetadataFlag = &cli.BoolFlag{
		Name:  "keep-metadata",
		Usage: "Do not strip the trailing compiler metadata",
	}
	verbosityFlag = &cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value: 3,
	}
)

func newApp() *cli.App {
	return &cli.App{
		Name:      "evmdecompile",
		Usage:     "decompile EVM runtime bytecode",
		ArgsUsage: "<bytecode-hex-or-file>...",
		Flags: []cli.Flag{
			configFileFlag,
			formatFlag,
			selectorFlag,
			signaturesFlag,
			outFlag,
			maxStatesFlag,
			keepMetadataFlag,
			verbosityFlag,
		},
		Before: func(ctx *cli.Context) error {
			setupLogging(ctx.Int(verbosityFlag.Name))
			return nil
		},
		Action: decompile,
		Commands: []*cli.Command{
			{
				Name:   "dumpconfig",
				Usage:  "Show configuration values",
				Flags:  []cli.Flag{configFileFlag, signaturesFlag, maxStatesFlag, keepMetadataFlag},
				Action: dumpConfig,
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "evmdecompile:", err)
		os.Exit(1)
	}
}
