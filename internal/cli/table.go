package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
)

// Table writes kubectl-style listings: uppercase headers, columns aligned
// with spaces and no box-drawing characters, so output pipes cleanly into
// grep, awk and cut. Cell widths ignore ANSI colour sequences.
type Table struct {
	out       io.Writer
	headers   []string
	rows      [][]string
	widths    []int
	padding   int
	noHeaders bool
}

// NewTable creates a table with the given column headers.
func NewTable(out io.Writer, headers ...string) *Table {
	t := &Table{
		out:     out,
		headers: make([]string, len(headers)),
		widths:  make([]int, len(headers)),
		padding: 3,
	}
	for i, h := range headers {
		t.headers[i] = strings.ToUpper(h)
		t.widths[i] = text.StringWidthWithoutEscSequences(t.headers[i])
	}
	return t
}

// SetNoHeaders suppresses the header row.
func (t *Table) SetNoHeaders(noHeaders bool) {
	t.noHeaders = noHeaders
}

// AddRow appends a row. Missing cells are left blank and extra cells dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	for i := range row {
		if i >= len(cells) {
			break
		}
		row[i] = cells[i]
		if w := text.StringWidthWithoutEscSequences(cells[i]); w > t.widths[i] {
			t.widths[i] = w
		}
	}
	t.rows = append(t.rows, row)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render writes the table. Nothing is written for a table without columns,
// or without rows when headers are suppressed.
func (t *Table) Render() {
	if len(t.headers) == 0 || (len(t.rows) == 0 && t.noHeaders) {
		return
	}
	if !t.noHeaders {
		t.writeRow(t.headers)
	}
	for _, row := range t.rows {
		t.writeRow(row)
	}
}

func (t *Table) writeRow(row []string) {
	var sb strings.Builder
	for i, cell := range row {
		sb.WriteString(cell)
		if i < len(row)-1 {
			gap := t.widths[i] - text.StringWidthWithoutEscSequences(cell) + t.padding
			sb.WriteString(strings.Repeat(" ", gap))
		}
	}
	fmt.Fprintln(t.out, strings.TrimRight(sb.String(), " "))
}
