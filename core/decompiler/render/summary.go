package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/bnb-chain/evmdecompiler/core/decompiler"
	"github.com/bnb-chain/evmdecompiler/core/decompiler/engine"
	"github.com/olekukonko/tablewriter"
)

// Summary writes the function, storage and error tables of c.
func Summary(w io.Writer, c *decompiler.Contract) {
	fmt.Fprintf(w, "code %s: %d bytes, %d instructions, %d blocks, %d dropped arrivals\n",
		c.Hash.Hex(), len(c.Code), len(c.Program.Opcodes), len(c.Blocks), c.Dropped)
	if c.Metadata != nil {
		fmt.Fprintf(w, "metadata: %s\n", c.Metadata)
	}

	fmt.Fprintln(w)
	table := newTable(w, "Selector", "Signature", "PC", "Offset", "Payable", "View", "Errors")
	for _, fn := range c.Functions {
		table.Append([]string{
			"0x" + fn.Selector, fn.Label,
			strconv.Itoa(fn.PC), fmt.Sprintf("0x%x", fn.Offset),
			strconv.FormatBool(fn.Payable), strconv.FormatBool(fn.Constant),
			strconv.Itoa(len(c.ErrorsFor(fn.Selector))),
		})
	}
	table.Render()

	fmt.Fprintln(w)
	table = newTable(w, "Kind", "Slot", "Name", "Type", "Writes")
	for i, v := range c.Tables.Variables {
		table.Append([]string{"variable", v.Slot.Hex(), c.VariableName(i), v.Type(), strconv.Itoa(len(v.Values))})
	}
	for i, m := range c.Tables.Mappings {
		kind := "mapping"
		if d := m.Depth(); d > 1 {
			kind = fmt.Sprintf("mapping^%d", d)
		}
		table.Append([]string{kind, m.Slot.Hex(), c.MappingName(i), m.ValueType(), strconv.Itoa(len(m.Values))})
	}
	table.Render()

	if len(c.Errors) == 0 {
		return
	}
	fmt.Fprintln(w)
	table = newTable(w, "Root", "PC", "Offset", "Op", "Error")
	for _, rec := range c.Errors {
		root := rec.Root
		if root != engine.MainRoot {
			root = "0x" + root
		}
		table.Append([]string{root, strconv.Itoa(rec.PC), fmt.Sprintf("0x%x", rec.Err.Offset), rec.Err.Op.String(), rec.Err.Err.Error()})
	}
	table.Render()
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	return table
}
