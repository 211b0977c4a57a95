package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/gridkit/internal/core"
	"github.com/JonMunkholm/gridkit/internal/export"
	"github.com/JonMunkholm/gridkit/internal/logging"
)

// exportSelection selects the view's filtered rows and the export options
// for them. Filters, search and sort come from the query string.
func (s *Server) exportSelection(r *http.Request) (*core.Selection, export.Options, error) {
	view, def, err := s.viewGrid(r)
	if err != nil {
		return nil, export.Options{}, err
	}

	sel, err := s.service.Select(r.Context(), chi.URLParam(r, "viewID"), parseQuery(r, def))
	if err != nil {
		return nil, export.Options{}, err
	}

	opts := export.Options{
		Fields:    parseFields(r),
		Hidden:    view.Hidden,
		SheetName: s.cfg.Export.SheetName,
		MaxRows:   s.cfg.Export.MaxRows,
	}
	return sel, opts, nil
}

func (s *Server) setDownloadHeaders(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Cache-Control", "no-store")
}

// handleExportXLSX builds the workbook in memory so a failed export can
// still be answered with a JSON error.
func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	err := s.exports.Do(r.Context(), func() error {
		sel, opts, err := s.exportSelection(r)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := export.XLSX(&buf, sel.Grid.Columns, sel.Rows, opts); err != nil {
			return err
		}

		filename := export.TimestampedFilename(sel.Grid.Info.Label, "xlsx", s.now())
		s.setDownloadHeaders(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", filename)
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		if _, err := buf.WriteTo(w); err != nil {
			logging.FromContext(r.Context()).Warn("xlsx write interrupted", "error", err)
			return nil
		}

		logging.FromContext(r.Context()).Info("export completed",
			"grid", sel.Grid.Info.Key,
			"format", "xlsx",
			"rows", len(sel.Rows),
			"bytes", buf.Len(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	})
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
	}
}

// handleExportCSV streams rows as they are encoded. Column and row limits
// are checked before the first byte is written.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	err := s.exports.Do(r.Context(), func() error {
		sel, opts, err := s.exportSelection(r)
		if err != nil {
			return err
		}
		if len(export.Columns(sel.Grid.Columns, opts.Fields, opts.Hidden)) == 0 {
			return export.ErrNoColumns
		}
		if opts.MaxRows > 0 && len(sel.Rows) > opts.MaxRows {
			return fmt.Errorf("%d rows %w of %d", len(sel.Rows), export.ErrTooManyRows, opts.MaxRows)
		}

		filename := export.TimestampedFilename(sel.Grid.Info.Label, "csv", s.now())
		s.setDownloadHeaders(w, "text/csv; charset=utf-8", filename)
		w.WriteHeader(http.StatusOK)

		if err := export.CSV(w, sel.Grid.Columns, sel.Rows, opts); err != nil {
			// Headers are sent; all that is left is to log.
			logging.FromContext(r.Context()).Error("csv export failed", "error", err)
			return nil
		}

		logging.FromContext(r.Context()).Info("export completed",
			"grid", sel.Grid.Info.Key,
			"format", "csv",
			"rows", len(sel.Rows),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	})
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
	}
}
