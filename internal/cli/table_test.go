package cli

import (
	"bytes"
	"testing"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/stretchr/testify/assert"
)

func TestNewTable(t *testing.T) {
	var buf bytes.Buffer
	tw := NewTable(&buf, "provider", "Tokens")

	assert.Equal(t, []string{"PROVIDER", "TOKENS"}, tw.headers)
	assert.Equal(t, []int{8, 6}, tw.widths)
	assert.Equal(t, 0, tw.Len())
}

func TestTable_Render(t *testing.T) {
	var buf bytes.Buffer
	tw := NewTable(&buf, "provider", "tokens")
	tw.AddRow("openstreetmap", "2")
	tw.AddRow("github", "1")
	tw.Render()

	expected := "" +
		"PROVIDER        TOKENS\n" +
		"openstreetmap   2\n" +
		"github          1\n"
	assert.Equal(t, expected, buf.String())
	assert.Equal(t, 2, tw.Len())
}

func TestTable_ColouredCellsAlign(t *testing.T) {
	var buf bytes.Buffer
	tw := NewTable(&buf, "name", "status")
	tw.AddRow(text.FgGreen.Sprint("ok"), "fine")
	tw.AddRow("longer", "x")
	tw.Render()

	lines := bytes.Split(bytes.TrimRight(buf.Bytes(), "\n"), []byte("\n"))
	assert.Len(t, lines, 3)
	assert.Equal(t, "NAME     STATUS", string(lines[0]))
	assert.Equal(t, text.FgGreen.Sprint("ok")+"       fine", string(lines[1]))
	assert.Equal(t, "longer   x", string(lines[2]))
}

func TestTable_RowShapes(t *testing.T) {
	var buf bytes.Buffer
	tw := NewTable(&buf, "a", "b", "c")
	tw.AddRow("1")
	tw.AddRow("1", "2", "3", "extra")
	tw.Render()

	expected := "" +
		"A   B   C\n" +
		"1\n" +
		"1   2   3\n"
	assert.Equal(t, expected, buf.String())
}

func TestTable_NoHeaders(t *testing.T) {
	var buf bytes.Buffer
	tw := NewTable(&buf, "name")
	tw.SetNoHeaders(true)
	tw.Render()
	assert.Empty(t, buf.String(), "no rows and no headers renders nothing")

	tw.AddRow("x")
	tw.Render()
	assert.Equal(t, "x\n", buf.String())
}

func TestTable_HeadersOnly(t *testing.T) {
	var buf bytes.Buffer
	NewTable(&buf, "name", "value").Render()
	assert.Equal(t, "NAME   VALUE\n", buf.String())

	buf.Reset()
	NewTable(&buf).Render()
	assert.Empty(t, buf.String())
}
