package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bnb-chain/evmdecompiler/core/decompiler/asm"
	"github.com/bnb-chain/evmdecompiler/internal/evmtest"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var buf bytes.Buffer
	app.Writer = &buf
	app.ErrWriter = io.Discard
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"evmdecompile", "--verbosity", "0"}, args...))
	return buf.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDecompileText(t *testing.T) {
	out, err := runApp(t, evmtest.Token().Hex())
	require.NoError(t, err)
	require.Contains(t, out, "dispatcher {")
	require.Contains(t, out, "function transfer(address,uint256)")
	require.Contains(t, out, "function balanceOf(address) payable view")
}

func TestDecompileFileInput(t *testing.T) {
	hex := strings.TrimPrefix(evmtest.Token().Hex(), "0x")
	path := writeFile(t, "token.hex", hex[:40]+"\n"+hex[40:]+"\n")

	out, err := runApp(t, "--format", "summary", path)
	require.NoError(t, err)
	require.Contains(t, out, "balanceOf(address)")
	require.Contains(t, out, "0x18160ddd")
}

func TestSelectorOutput(t *testing.T) {
	out, err := runApp(t, "--selector", "0x70a08231", evmtest.Token().Hex())
	require.NoError(t, err)
	require.Contains(t, out, "function balanceOf(address)")
	require.NotContains(t, out, "dispatcher")

	_, err = runApp(t, "--selector", "0xdeadbeef", evmtest.Token().Hex())
	require.ErrorContains(t, err, "not dispatched")
}

func TestThrowsExitCode(t *testing.T) {
	out, err := runApp(t, "0x01")
	require.Error(t, err)
	var exit cli.ExitCoder
	require.ErrorAs(t, err, &exit)
	require.Equal(t, 1, exit.ExitCode())
	require.Contains(t, out, `throw("stack underflow")`)

	// A failure inside a function does not fail the dispatcher.
	p := evmtest.New().Dispatcher(0x01020304)
	p.Label(evmtest.FunctionLabel(0x01020304)).Op(asm.POP, asm.POP)
	_, err = runApp(t, p.Hex())
	require.NoError(t, err)
	_, err = runApp(t, "--selector", "01020304", p.Hex())
	require.ErrorAs(t, err, &exit)
}

func TestBadInput(t *testing.T) {
	_, err := runApp(t, "0x6")
	require.ErrorContains(t, err, "invalid bytecode hex")

	_, err = runApp(t)
	require.ErrorContains(t, err, "no bytecode given")

	_, err = runApp(t, "--format", "pdf", "0x00")
	require.ErrorContains(t, err, "unknown format")
}

func TestMultipleInputsAndOutFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.txt")
	out, err := runApp(t, "--out", dest, "--format", "dot", "0x00", evmtest.Token().Hex())
	require.NoError(t, err)
	require.Empty(t, out)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Contains(t, string(data), "==> 0x00 <==")
	require.Equal(t, 2, strings.Count(string(data), "digraph"))

	_, err = runApp(t, "--format", "svg", "0x00", "0x00")
	require.ErrorContains(t, err, "single input")
}

func TestConfigFile(t *testing.T) {
	cfg := writeFile(t, "config.toml", `
[Decompiler]
MaxBlockStates = 3
Signatures = ["frobnicate()"]
`)
	out, err := runApp(t, "dumpconfig", "--config", cfg)
	require.NoError(t, err)
	require.Contains(t, out, "MaxBlockStates = 3")
	require.Contains(t, out, "frobnicate()")

	out, err = runApp(t, "dumpconfig", "--config", cfg, "--max-states", "7", "--keep-metadata")
	require.NoError(t, err)
	require.Contains(t, out, "MaxBlockStates = 7")
	require.Contains(t, out, "StripMetadata = false")

	bad := writeFile(t, "bad.toml", "[Decompiler]\nBogus = 1\n")
	_, err = runApp(t, "--config", bad, "0x00")
	require.ErrorContains(t, err, "is not defined")
}

func TestSignatureFlag(t *testing.T) {
	sel := "0x4e487b71"
	sigs := writeFile(t, "sigs.txt", "Panic(uint256)\n")
	p := evmtest.New().Dispatcher(0x4e487b71)
	p.Label(evmtest.FunctionLabel(0x4e487b71)).Op(asm.STOP)

	out, err := runApp(t, "--signatures", sigs, "--selector", sel, p.Hex())
	require.NoError(t, err)
	require.Contains(t, out, "function Panic(uint256)")
}
