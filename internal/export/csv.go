package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"

	"github.com/JonMunkholm/gridkit/internal/core"
)

// flushInterval is how many records are buffered between flushes.
const flushInterval = 1000

// CSV streams a header row and one record per row to w, flushing every
// flushInterval records. When w is an http.Flusher the response is flushed
// too so clients see chunks as they are produced.
func CSV(w io.Writer, cols []core.Column, rows []core.Row, opts Options) error {
	cols = Columns(cols, opts.Fields, opts.Hidden)
	if len(cols) == 0 {
		return ErrNoColumns
	}
	if err := opts.check(len(rows)); err != nil {
		return err
	}

	cw := csv.NewWriter(w)

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Label()
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(cols))
	for n, row := range rows {
		for i, c := range cols {
			record[i] = CellText(row[c.ID], c.Type)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", n+1, err)
		}

		if (n+1)%flushInterval == 0 {
			cw.Flush()
			if err := cw.Error(); err != nil {
				return fmt.Errorf("flush: %w", err)
			}
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}
