package render

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"
	"testing"

	"github.com/bnb-chain/evmdecompiler/core/decompiler"
	"github.com/bnb-chain/evmdecompiler/core/decompiler/selectors"
	"github.com/bnb-chain/evmdecompiler/internal/evmtest"
	"github.com/stretchr/testify/require"
)

func token(t *testing.T) *decompiler.Contract {
	t.Helper()
	c, err := decompiler.Decompile(evmtest.Token().Bytes(), nil, selectors.Builtin())
	require.NoError(t, err)
	return c
}

func TestTextPrinter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextPrinter(&buf, false).Contract(token(t)))
	out := buf.String()

	require.NotContains(t, out, "\x1b[")
	require.Contains(t, out, "uint256 totalSupply; // slot 0x2")
	require.Contains(t, out, "mapping(uint256 => uint256) balanceOf; // slot 0x3")
	require.Contains(t, out, "dispatcher {")
	require.Contains(t, out, "call 0xa9059cbb() // transfer(address,uint256)")
	require.Contains(t, out, "function transfer(address,uint256) { // 0xa9059cbb")
	require.Contains(t, out, "function totalSupply() payable view {")
	require.Contains(t, out, "emit Transfer(address,address,uint256)(")
	require.Contains(t, out, "    require(")
	require.Equal(t, strings.Count(out, "{"), strings.Count(out, "}"))
}

func TestTextPrinterColor(t *testing.T) {
	var buf bytes.Buffer
	c, err := decompiler.DecompileHex("0x01", nil, nil)
	require.NoError(t, err)
	require.NoError(t, NewTextPrinter(&buf, true).Contract(c))
	require.Contains(t, buf.String(), "\x1b[")
	require.Contains(t, buf.String(), `throw("stack underflow")`)
}

func TestDOT(t *testing.T) {
	c := token(t)
	src := string(DOT(c, "token"))

	require.True(t, strings.HasPrefix(src, "digraph"), src)
	require.Contains(t, src, "0x70a08231")
	require.Contains(t, src, "transfer")
	require.Contains(t, src, "bold")
	for _, pc := range c.Blocks.PCs() {
		require.Contains(t, src, "pc "+strconv.Itoa(pc)+"..")
	}

	if _, err := exec.LookPath("dot"); err != nil {
		_, err := SVG(context.Background(), []byte(src))
		require.ErrorIs(t, err, ErrNoGraphviz)
		return
	}
	svg, err := SVG(context.Background(), []byte(src))
	require.NoError(t, err)
	require.Contains(t, string(svg), "<svg")
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	Summary(&buf, token(t))
	out := buf.String()
	require.Contains(t, out, "0xa9059cbb")
	require.Contains(t, out, "balanceOf(address)")
	require.Contains(t, out, "totalSupply")
	require.Contains(t, out, "mapping")
	require.NotContains(t, out, "Root")

	buf.Reset()
	c, err := decompiler.DecompileHex("0x01", nil, nil)
	require.NoError(t, err)
	Summary(&buf, c)
	require.Contains(t, buf.String(), "stack underflow")
	require.Contains(t, buf.String(), "main")
}
