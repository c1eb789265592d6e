package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/bnb-chain/evmdecompiler/core/decompiler"
	"github.com/bnb-chain/evmdecompiler/core/decompiler/asm"
	"github.com/bnb-chain/evmdecompiler/core/decompiler/engine"
	"github.com/bnb-chain/evmdecompiler/core/decompiler/render"
	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

var errThrows = errors.New("execution failures recorded")

// loadBytecode reads a hex literal or a file holding one. Files may
// contain whitespace and line breaks.
func loadBytecode(arg string) ([]byte, error) {
	src := arg
	if st, err := os.Stat(arg); err == nil && !st.IsDir() {
		data, err := os.ReadFile(arg)
		if err != nil {
			return nil, err
		}
		src = string(data)
	}
	return asm.ParseHex(src)
}

type result struct {
	input    string
	contract *decompiler.Contract
}

func decompile(ctx *cli.Context) error {
	inputs := ctx.Args().Slice()
	if len(inputs) == 0 {
		return errors.New("no bytecode given")
	}
	format := ctx.String(formatFlag.Name)
	switch format {
	case "text", "dot", "svg", "summary":
	default:
		return errors.Errorf("unknown format %q (use text, dot, svg or summary)", format)
	}
	if format == "svg" && len(inputs) > 1 {
		return errors.New("svg output takes a single input")
	}
	cfg, err := makeConfig(ctx)
	if err != nil {
		return errors.Wrap(err, "loading config")
	}
	resolver, err := decompiler.NewResolver(&cfg.Decompiler)
	if err != nil {
		return errors.Wrap(err, "loading signatures")
	}

	codes := make([][]byte, len(inputs))
	var g errgroup.Group
	for i, input := range inputs {
		g.Go(func() error {
			code, err := loadBytecode(input)
			if err != nil {
				return errors.Wrapf(err, "reading %s", input)
			}
			codes[i] = code
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// One engine per input; engines share only the resolver.
	batch, err := decompiler.NewBatch(&cfg.Decompiler, resolver, runtime.NumCPU())
	if err != nil {
		return err
	}
	defer batch.Release()
	contracts, errs := batch.Run(codes)
	for i, err := range errs {
		if err != nil {
			return errors.Wrapf(err, "decompiling %s", label(inputs[i]))
		}
	}
	results := make([]result, len(inputs))
	for i, c := range contracts {
		results[i] = result{input: inputs[i], contract: c}
	}

	var out bytes.Buffer
	failed := false
	for _, res := range results {
		if len(results) > 1 {
			fmt.Fprintf(&out, "==> %s <==\n", label(res.input))
		}
		throws, err := write(ctx, &out, res.contract, format)
		if err != nil {
			return err
		}
		if throws > 0 {
			failed = true
			log.Warn("Execution failures recorded", "input", label(res.input), "count", throws)
		}
	}
	if err := emit(ctx, out.Bytes()); err != nil {
		return err
	}
	if failed {
		return cli.Exit(errThrows, 1)
	}
	return nil
}

// write renders c and returns the failures of the requested entry point.
func write(ctx *cli.Context, w io.Writer, c *decompiler.Contract, format string) (int, error) {
	root := engine.MainRoot
	var fn *decompiler.Function
	if sel := ctx.String(selectorFlag.Name); sel != "" {
		if fn = c.Function(sel); fn == nil {
			return 0, errors.Errorf("selector %s not dispatched by %s", sel, c.Hash.TerminalString())
		}
		root = fn.Selector
	}
	switch format {
	case "text":
		p := render.NewTextPrinter(w, ctx.String(outFlag.Name) == "" && isTerminal(os.Stdout))
		if fn != nil {
			if err := p.Function(c, fn); err != nil {
				return 0, err
			}
		} else if err := p.Contract(c); err != nil {
			return 0, err
		}
	case "summary":
		render.Summary(w, c)
	case "dot", "svg":
		src := render.DOT(c, c.Hash.TerminalString())
		if format == "svg" {
			svg, err := render.SVG(ctx.Context, src)
			if err != nil {
				return 0, err
			}
			src = svg
		}
		if _, err := w.Write(src); err != nil {
			return 0, err
		}
	}
	return len(c.ErrorsFor(root)), nil
}

func emit(ctx *cli.Context, data []byte) error {
	path := ctx.String(outFlag.Name)
	if path == "" {
		_, err := ctx.App.Writer.Write(data)
		return err
	}
	return errors.Wrap(os.WriteFile(path, data, 0o644), "writing output")
}

// label shortens hex literals for headers and logs.
func label(input string) string {
	if len(input) > 24 && !strings.ContainsAny(input, "/\\.") {
		return input[:20] + "..."
	}
	return input
}
