package export

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/gridkit/internal/core"
)

// DefaultSheetName is the worksheet rows are written to.
const DefaultSheetName = "Sheet1"

// maxColumnWidth is the widest column a worksheet accepts.
const maxColumnWidth = 255

// ErrTooManyRows is returned when an export exceeds Options.MaxRows.
var ErrTooManyRows = errors.New("exceeds export row limit")

// ErrNoColumns is returned when no column is left to export.
var ErrNoColumns = errors.New("no columns to export")

// Options controls which columns are exported.
type Options struct {
	// Fields lists the column ids to export. Empty exports the visible columns.
	Fields []string
	// Hidden marks columns hidden in the view.
	Hidden map[string]bool
	// SheetName defaults to DefaultSheetName.
	SheetName string
	// MaxRows rejects larger exports. Zero means no limit.
	MaxRows int
}

func (o Options) check(rows int) error {
	if o.MaxRows > 0 && rows > o.MaxRows {
		return fmt.Errorf("%d rows %w of %d", rows, ErrTooManyRows, o.MaxRows)
	}
	return nil
}

// XLSX writes a workbook with a header row followed by one row per record.
// Each column is as wide as its longest header or cell text.
func XLSX(w io.Writer, cols []core.Column, rows []core.Row, opts Options) error {
	cols = Columns(cols, opts.Fields, opts.Hidden)
	if len(cols) == 0 {
		return ErrNoColumns
	}
	if err := opts.check(len(rows)); err != nil {
		return err
	}

	sheet := opts.SheetName
	if sheet == "" {
		sheet = DefaultSheetName
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if sheet != DefaultSheetName {
		if err := f.SetSheetName(DefaultSheetName, sheet); err != nil {
			return fmt.Errorf("name sheet: %w", err)
		}
	}

	header := make([]any, len(cols))
	widths := make([]int, len(cols))
	for i, c := range cols {
		header[i] = c.Label()
		widths[i] = utf8.RuneCountInString(c.Label())
	}

	records := make([][]any, len(rows))
	for r, row := range rows {
		record := make([]any, len(cols))
		for i, c := range cols {
			v := CellValue(row[c.ID], c.Type)
			record[i] = v
			if n := utf8.RuneCountInString(CellText(row[c.ID], c.Type)); n > widths[i] {
				widths[i] = n
			}
		}
		records[r] = record
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("open sheet: %w", err)
	}

	// Widths must be set before the first row is written.
	for i, width := range widths {
		if err := sw.SetColWidth(i+1, i+1, float64(min(max(width, 1), maxColumnWidth))); err != nil {
			return fmt.Errorf("set width of %s: %w", cols[i].ID, err)
		}
	}

	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for r, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, record); err != nil {
			return fmt.Errorf("write row %d: %w", r+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
