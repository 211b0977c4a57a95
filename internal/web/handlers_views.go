package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/gridkit/internal/chart"
	"github.com/JonMunkholm/gridkit/internal/core"
	"github.com/JonMunkholm/gridkit/internal/logging"
)

type createViewRequest struct {
	Grid string `json:"grid"`
}

type bulkRequest struct {
	Action string   `json:"action"`
	IDs    []string `json:"ids"`
}

type chartRequest struct {
	Type   string       `json:"type"`
	Config chart.Config `json:"config"`
}

func (s *Server) handleCreateView(w http.ResponseWriter, r *http.Request) {
	var req createViewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	view, err := s.service.NewView(req.Grid)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	logging.FromContext(r.Context()).Info("view opened", "view_id", view.ID, "grid", view.GridKey)
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleGetView(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.View(chi.URLParam(r, "viewID"))
	if err != nil {
		respondError(w, r, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleCloseView(w http.ResponseWriter, r *http.Request) {
	if err := s.service.CloseView(chi.URLParam(r, "viewID")); err != nil {
		respondError(w, r, err, http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings core.Settings
	if err := decodeJSON(w, r, &settings); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	view, err := s.service.UpdateSettings(chi.URLParam(r, "viewID"), settings)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	_, def, err := s.viewGrid(r)
	if err != nil {
		respondError(w, r, err, http.StatusNotFound)
		return
	}

	result, err := s.service.Rows(r.Context(), chi.URLParam(r, "viewID"), parseQuery(r, def))
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	logging.FromContext(r.Context()).Debug("rows served",
		"grid", def.Info.Key,
		"rows", len(result.Rows),
		"total", result.TotalRows,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTogglePin(w http.ResponseWriter, r *http.Request) {
	rowID := chi.URLParam(r, "rowID")
	pinned, err := s.service.TogglePin(chi.URLParam(r, "viewID"), rowID)
	if err != nil {
		respondError(w, r, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rowId":  rowID,
		"pinned": pinned,
	})
}

func (s *Server) handleBulkAction(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	result, err := s.service.RunBulkAction(r.Context(), chi.URLParam(r, "viewID"), req.Action, req.IDs)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleColumnStats(w http.ResponseWriter, r *http.Request) {
	_, def, err := s.viewGrid(r)
	if err != nil {
		respondError(w, r, err, http.StatusNotFound)
		return
	}

	stats, err := s.service.ColumnStats(r.Context(), chi.URLParam(r, "viewID"),
		chi.URLParam(r, "column"), parseQuery(r, def))
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleChart builds chart options from the view's filtered rows. Filters
// come from the query string like the rows endpoint.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	var req chartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	chartType, err := chart.ParseType(req.Type)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	_, def, err := s.viewGrid(r)
	if err != nil {
		respondError(w, r, err, http.StatusNotFound)
		return
	}

	sel, err := s.service.Select(r.Context(), chi.URLParam(r, "viewID"), parseQuery(r, def))
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, chart.Options(chartType, sel.Rows, req.Config))
}
