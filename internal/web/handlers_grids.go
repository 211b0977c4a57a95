package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/gridkit/internal/core"
)

// errFormNotFound is returned for grids that declare no form.
var errFormNotFound = errors.New("form not found")

// columnInfo describes a column together with the filter operators it offers.
type columnInfo struct {
	core.Column
	Operators []core.Operator `json:"operators"`
}

// gridDetail is the response of GET /api/grids/{gridKey}.
type gridDetail struct {
	core.GridInfo
	IDField   string       `json:"idField"`
	Columns   []columnInfo `json:"columns"`
	PageSizes []int        `json:"pageSizes"`
	Actions   []string     `json:"actions"`
	HasForm   bool         `json:"hasForm"`
	Deletable bool         `json:"deletable"`
}

func (s *Server) handleListGrids(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"groups": s.service.ListGridsByGroup(),
	})
}

func (s *Server) handleGetGrid(w http.ResponseWriter, r *http.Request) {
	def, err := s.service.Grid(chi.URLParam(r, "gridKey"))
	if err != nil {
		respondError(w, r, err, http.StatusNotFound)
		return
	}

	cols := make([]columnInfo, 0, len(def.Columns))
	for _, c := range def.Columns {
		var ops []core.Operator
		if c.ID != core.ActionsColumn {
			ops = core.OperatorsFor(c.Type)
		}
		cols = append(cols, columnInfo{Column: c, Operators: ops})
	}

	idField := def.IDField
	if idField == "" {
		idField = core.DefaultIDField
	}
	_, hasForm := s.forms.Get(def.Info.Key)
	_, deletable := def.Source.(core.Deleter)

	writeJSON(w, http.StatusOK, gridDetail{
		GridInfo:  def.Info,
		IDField:   idField,
		Columns:   cols,
		PageSizes: core.PageSizes,
		Actions:   s.service.Actions(),
		HasForm:   hasForm,
		Deletable: deletable,
	})
}

func (s *Server) handleGetForm(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "gridKey")
	if _, err := s.service.Grid(key); err != nil {
		respondError(w, r, err, http.StatusNotFound)
		return
	}
	schema, ok := s.forms.Get(key)
	if !ok {
		respondError(w, r, errFormNotFound, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"grid":     key,
		"fields":   schema,
		"defaults": schema.Defaults(),
	})
}

func (s *Server) handleValidateForm(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "gridKey")
	schema, ok := s.forms.Get(key)
	if !ok {
		if _, err := s.service.Grid(key); err != nil {
			respondError(w, r, err, http.StatusNotFound)
			return
		}
		respondError(w, r, errFormNotFound, http.StatusNotFound)
		return
	}

	var values map[string]any
	if err := decodeJSON(w, r, &values); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	if err := schema.Validate(r.Context(), values); err != nil {
		respondError(w, r, err, http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true})
}
