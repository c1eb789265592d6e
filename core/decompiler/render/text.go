// Package render prints decompiled contracts: an indented pseudo-source
// listing, a Graphviz view of the block graph and summary tables.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/bnb-chain/evmdecompiler/core/decompiler"
	"github.com/bnb-chain/evmdecompiler/core/decompiler/ast"
	"github.com/fatih/color"
)

const indent = "    "

// TextPrinter writes statement trees as indented pseudo-source. The
// first write error is kept and returned by the printing methods.
type TextPrinter struct {
	w   io.Writer
	err error

	fail    *color.Color // revert, throw, invalid
	keyword *color.Color
	comment *color.Color
}

// NewTextPrinter returns a printer writing to w. Colour escapes are
// emitted only when colored is set.
func NewTextPrinter(w io.Writer, colored bool) *TextPrinter {
	p := &TextPrinter{
		w:       w,
		fail:    color.New(color.FgRed, color.Bold),
		keyword: color.New(color.FgBlue),
		comment: color.New(color.FgHiBlack),
	}
	for _, c := range []*color.Color{p.fail, p.keyword, p.comment} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *TextPrinter) printf(depth int, format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, strings.Repeat(indent, depth)+format+"\n", args...)
}

// Contract prints storage, the dispatcher and every function.
func (p *TextPrinter) Contract(c *decompiler.Contract) error {
	if c.Metadata != nil {
		p.printf(0, "%s", p.comment.Sprintf("// %s", c.Metadata))
	}
	p.storage(c)
	p.printf(0, "%s {", p.keyword.Sprint("dispatcher"))
	p.Stmts(c, c.Main, 1)
	p.printf(0, "}")
	for _, fn := range c.Functions {
		p.printf(0, "")
		p.Function(c, fn)
	}
	return p.err
}

func (p *TextPrinter) storage(c *decompiler.Contract) {
	t := c.Tables
	if len(t.Variables) == 0 && len(t.Mappings) == 0 {
		return
	}
	for i, v := range t.Variables {
		p.printf(0, "%s %s; %s", v.Type(), c.VariableName(i), p.comment.Sprintf("// slot %s", v.Slot.Hex()))
	}
	for i, m := range t.Mappings {
		typ := m.ValueType()
		for k := 0; k < max(m.Depth(), 1); k++ {
			typ = "mapping(uint256 => " + typ + ")"
		}
		p.printf(0, "%s %s; %s", typ, c.MappingName(i), p.comment.Sprintf("// slot %s", m.Slot.Hex()))
	}
	p.printf(0, "")
}

// Function prints one function with its header.
func (p *TextPrinter) Function(c *decompiler.Contract, fn *decompiler.Function) error {
	name := fn.Label
	if name == "" {
		name = fmt.Sprintf("0x%s()", fn.Selector)
	}
	var mods []string
	if fn.Payable {
		mods = append(mods, "payable")
	}
	if fn.Constant {
		mods = append(mods, "view")
	}
	header := p.keyword.Sprint("function") + " " + name
	if len(mods) > 0 {
		header += " " + p.keyword.Sprint(strings.Join(mods, " "))
	}
	p.printf(0, "%s { %s", header, p.comment.Sprintf("// 0x%s, pc %d", fn.Selector, fn.PC))
	for _, rec := range c.ErrorsFor(fn.Selector) {
		p.printf(1, "%s", p.comment.Sprintf("// error: %v", rec.Err))
	}
	p.Stmts(c, fn.Body, 1)
	p.printf(0, "}")
	return p.err
}

// Stmts prints a statement list at the given depth.
func (p *TextPrinter) Stmts(c *decompiler.Contract, list []ast.Stmt, depth int) error {
	for _, s := range list {
		switch s := s.(type) {
		case *ast.If:
			p.printf(depth, "%s (%s) {", p.keyword.Sprint("if"), ast.Sprint(s.Cond, c))
			p.Stmts(c, s.Then, depth+1)
			if len(s.Else) > 0 {
				p.printf(depth, "} %s {", p.keyword.Sprint("else"))
				p.Stmts(c, s.Else, depth+1)
			}
			p.printf(depth, "}")
		case *ast.CallSite:
			line := ast.SprintStmt(s, c)
			if fn := c.Function(s.Selector); fn != nil && fn.Label != "" {
				line = fmt.Sprintf("%s %s", line, p.comment.Sprintf("// %s", fn.Label))
			}
			p.printf(depth, "%s", line)
		case *ast.Revert, *ast.Throw, *ast.Invalid:
			p.printf(depth, "%s", p.fail.Sprint(ast.SprintStmt(s, c)))
		default:
			p.printf(depth, "%s", ast.SprintStmt(s, c))
		}
	}
	return p.err
}
