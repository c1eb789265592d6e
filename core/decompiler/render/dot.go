package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/bnb-chain/evmdecompiler/core/decompiler"
	"github.com/bnb-chain/evmdecompiler/core/decompiler/ast"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emicklei/dot"
)

// ErrNoGraphviz is returned by SVG when the dot binary is not installed.
var ErrNoGraphviz = errors.New("dot not found in PATH; install graphviz or choose the dot format")

// Graph builds the block graph: one node per explored block and one edge
// per distinct branch taken out of it.
func Graph(c *decompiler.Contract, title string) *dot.Graph {
	g := dot.NewGraph(dot.Directed)
	g.Attr("rankdir", "TB")
	if title != "" {
		g.Attr("label", title)
		g.Attr("labelloc", "t")
	}
	entries := make(map[int]string)
	for _, fn := range c.Functions {
		entries[fn.PC] = fn.Name()
	}

	nodes := make(map[int]dot.Node)
	for _, pc := range c.Blocks.PCs() {
		blk := c.Blocks[pc]
		label := fmt.Sprintf("pc %d..%d", blk.PC, blk.PCEnd)
		if len(blk.Opcodes) > 0 {
			label += fmt.Sprintf(" @0x%x", blk.Opcodes[0].Offset)
		}
		if name, ok := entries[pc]; ok {
			label += "\n" + name
		}
		label += fmt.Sprintf("\nstates=%d %s", len(blk.States), strings.Join(distinct(blk.Terminals(c.Arena)), ","))

		n := g.Node(fmt.Sprintf("b%d", pc)).Label(label).Box().Attr("fontname", "monospace")
		for _, kind := range blk.Terminals(c.Arena) {
			if kind == "Throw" {
				n.Attr("color", "red")
				break
			}
		}
		nodes[pc] = n
	}

	seen := mapset.NewThreadUnsafeSet[string]()
	edge := func(from int, to *ast.Branch, label, style string) {
		if to == nil {
			return
		}
		dst, ok := nodes[to.PC]
		if !ok {
			return
		}
		if !seen.Add(fmt.Sprintf("%d>%d:%s", from, to.PC, label)) {
			return
		}
		e := g.Edge(nodes[from], dst)
		if label != "" {
			e.Label(label)
		}
		if style != "" {
			e.Attr("style", style)
		}
	}
	for _, pc := range c.Blocks.PCs() {
		for _, id := range c.Blocks[pc].States {
			switch last := c.Arena.Get(id).Last().(type) {
			case *ast.Jump:
				edge(pc, &last.Dest, "", "")
			case *ast.Jumpi:
				edge(pc, last.Dest, "true", "")
				edge(pc, last.Fall, "false", "")
			case *ast.JumpDest:
				edge(pc, &last.Fall, "", "dotted")
			case *ast.SigCase:
				edge(pc, &last.Entry, "0x"+last.Sig.Selector, "bold")
				edge(pc, &last.Fall, "", "")
			}
		}
	}
	return g
}

// DOT renders the block graph in Graphviz syntax.
func DOT(c *decompiler.Contract, title string) []byte {
	return []byte(Graph(c, title).String())
}

// SVG runs Graphviz over src.
func SVG(ctx context.Context, src []byte) ([]byte, error) {
	if _, err := exec.LookPath("dot"); err != nil {
		return nil, ErrNoGraphviz
	}
	var out, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "dot", "-Tsvg")
	cmd.Stdin = bytes.NewReader(src)
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("dot render: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out.Bytes(), nil
}

func distinct(xs []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, x := range xs {
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}
	return out
}
