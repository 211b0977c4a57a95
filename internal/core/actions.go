package core

import (
	"context"
	"fmt"
)

// BulkAction is an operation applied to a set of selected rows.
// Apply runs with the view locked, so it may change view state directly but
// must not call back into the Service.
type BulkAction interface {
	Name() string
	Apply(ctx context.Context, view *View, def GridDefinition, rows []Row) error
}

// pinAction pins or unpins the selected rows.
type pinAction struct {
	pinned bool
}

func (a pinAction) Name() string {
	if a.pinned {
		return "pin"
	}
	return "unpin"
}

func (a pinAction) Apply(_ context.Context, view *View, def GridDefinition, rows []Row) error {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID(def.idField()))
	}
	view.Pinned.Set(ids, a.pinned)
	return nil
}

// deleteAction removes the selected rows from sources that support it.
// Deleted rows are also dropped from the pinned set.
type deleteAction struct{}

func (deleteAction) Name() string { return "delete" }

func (deleteAction) Apply(ctx context.Context, view *View, def GridDefinition, rows []Row) error {
	deleter, ok := def.Source.(Deleter)
	if !ok {
		return fmt.Errorf("grid %s: %w", def.Info.Key, ErrReadOnlySource)
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID(def.idField()))
	}
	if len(ids) == 0 {
		return nil
	}

	if _, err := deleter.Delete(ctx, ids); err != nil {
		return fmt.Errorf("delete rows: %w", err)
	}
	for _, id := range ids {
		delete(view.Pinned, id)
	}
	return nil
}

// builtinActions returns the actions every service starts with.
func builtinActions() []BulkAction {
	return []BulkAction{
		pinAction{pinned: true},
		pinAction{pinned: false},
		deleteAction{},
	}
}

// BulkResult reports the outcome of a bulk action.
type BulkResult struct {
	Action   string `json:"action"`
	Selected int    `json:"selected"`
	Pinned   int    `json:"pinned"`
}
