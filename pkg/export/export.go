package export

import (
	"fmt"
	"strings"
)

// Table is a titled grid of already-formatted cells.
type Table struct {
	Title   string
	Columns []Column
	Rows    [][]string
}

// Column describes one table column. Numeric columns are right-aligned where the format supports it.
type Column struct {
	Header  string
	Numeric bool
}

// Renderer turns a Table into a downloadable document.
type Renderer interface {
	Render(table Table) ([]byte, error)
	ContentType() string
	Extension() string
}

// ForFormat returns the renderer registered for format ("csv" or "pdf").
func ForFormat(format string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "csv":
		return NewCSVExporter(), nil
	case "pdf":
		return NewPDFExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

func (t Table) validate() error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("table requires at least one column")
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(t.Columns))
		}
	}
	return nil
}
