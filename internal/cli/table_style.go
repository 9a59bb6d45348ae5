package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
)

// PlainTableWriter writes kubectl-style tables without box-drawing characters,
// so the output stays easy to grep and cut.
type PlainTableWriter struct {
	headers      []string
	rows         [][]string
	columnWidths []int
	minPadding   int
	showHeaders  bool
	output       io.Writer
}

// NewPlainTableWriter creates a plain table writer. Headers are shown unless
// SetNoHeaders(true) is called.
func NewPlainTableWriter(output io.Writer) *PlainTableWriter {
	return &PlainTableWriter{
		minPadding:  3,
		showHeaders: true,
		output:      output,
	}
}

// SetHeaders sets the column headers, upper-cased.
func (w *PlainTableWriter) SetHeaders(headers []string) {
	w.headers = make([]string, len(headers))
	w.columnWidths = make([]int, len(headers))
	for i, h := range headers {
		upper := strings.ToUpper(h)
		w.headers[i] = upper
		w.columnWidths[i] = cellWidth(upper)
	}
}

// SetNoHeaders controls whether to suppress the header row.
func (w *PlainTableWriter) SetNoHeaders(noHeaders bool) {
	w.showHeaders = !noHeaders
}

// AppendRow adds a row, padding or truncating it to the header count.
func (w *PlainTableWriter) AppendRow(row []string) {
	normalized := make([]string, len(w.headers))
	for i := range w.headers {
		if i >= len(row) {
			continue
		}
		normalized[i] = row[i]
		if width := cellWidth(row[i]); width > w.columnWidths[i] {
			w.columnWidths[i] = width
		}
	}
	w.rows = append(w.rows, normalized)
}

// Render writes the table.
func (w *PlainTableWriter) Render() {
	if len(w.headers) == 0 {
		return
	}
	if len(w.rows) == 0 && !w.showHeaders {
		return
	}

	if w.showHeaders {
		w.printRow(w.headers)
	}
	for _, row := range w.rows {
		w.printRow(row)
	}
}

func (w *PlainTableWriter) printRow(row []string) {
	var sb strings.Builder
	for i, cell := range row {
		sb.WriteString(cell)
		if i == len(row)-1 {
			break
		}
		// Pad by display width so names like "Kök" keep the columns aligned.
		sb.WriteString(strings.Repeat(" ", w.columnWidths[i]+w.minPadding-cellWidth(cell)))
	}
	fmt.Fprintln(w.output, strings.TrimRight(sb.String(), " "))
}

func cellWidth(s string) int {
	return text.RuneWidthWithoutEscSequences(s)
}
