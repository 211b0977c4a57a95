package core

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Defaults used when Options fields are zero.
const (
	DefaultPageSize    = 10
	DefaultMaxPageSize = 100
	DefaultViewTTL     = 30 * time.Minute
	DefaultMaxViews    = 10000
)

// Options configures a Service.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
	ViewTTL         time.Duration
	MaxViews        int
}

func (o Options) withDefaults() Options {
	if o.DefaultPageSize <= 0 {
		o.DefaultPageSize = DefaultPageSize
	}
	if o.MaxPageSize <= 0 {
		o.MaxPageSize = DefaultMaxPageSize
	}
	if o.DefaultPageSize > o.MaxPageSize {
		o.DefaultPageSize = o.MaxPageSize
	}
	if o.ViewTTL <= 0 {
		o.ViewTTL = DefaultViewTTL
	}
	if o.MaxViews <= 0 {
		o.MaxViews = DefaultMaxViews
	}
	return o
}

// viewEntry guards one view. Entries are locked individually so a slow
// action on one view does not block the others.
type viewEntry struct {
	mu   sync.Mutex
	view View
}

// Service owns the grid registry and the per-user view state.
type Service struct {
	registry *Registry
	opts     Options
	now      func() time.Time

	mu      sync.RWMutex
	views   map[string]*viewEntry
	actions map[string]BulkAction
}

// NewService creates a Service over the given registry.
func NewService(registry *Registry, opts Options) *Service {
	s := &Service{
		registry: registry,
		opts:     opts.withDefaults(),
		now:      time.Now,
		views:    make(map[string]*viewEntry),
		actions:  make(map[string]BulkAction),
	}
	for _, a := range builtinActions() {
		s.actions[a.Name()] = a
	}
	return s
}

// Registry returns the grid registry.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Options returns the effective service options.
func (s *Service) Options() Options {
	return s.opts
}

// Grid returns a grid definition by key.
func (s *Service) Grid(key string) (GridDefinition, error) {
	def, ok := s.registry.Get(key)
	if !ok {
		return GridDefinition{}, fmt.Errorf("%w: %s", ErrGridNotFound, key)
	}
	return def, nil
}

// ListGridsByGroup returns grid infos organized by group.
func (s *Service) ListGridsByGroup() map[string][]GridInfo {
	result := make(map[string][]GridInfo)
	for _, def := range s.registry.All() {
		result[def.Info.Group] = append(result[def.Info.Group], def.Info)
	}
	return result
}

// RegisterAction adds a bulk action. A later action with the same name
// replaces the earlier one.
func (s *Service) RegisterAction(a BulkAction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions[a.Name()] = a
}

// Actions returns the registered bulk action names, sorted.
func (s *Service) Actions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.actions))
	for name := range s.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewView opens a view on a grid with an empty pinned set.
func (s *Service) NewView(gridKey string) (View, error) {
	if _, err := s.Grid(gridKey); err != nil {
		return View{}, err
	}

	now := s.now()
	entry := &viewEntry{view: View{
		ID:         uuid.New().String(),
		GridKey:    gridKey,
		Pinned:     make(PinnedSet),
		Hidden:     make(map[string]bool),
		PageSize:   s.opts.DefaultPageSize,
		FontSize:   FontMedium,
		Theme:      ThemeLight,
		Comparison: ComparisonNone,
		CreatedAt:  now,
		LastUsed:   now,
	}}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.views) >= s.opts.MaxViews {
		return View{}, ErrTooManyViews
	}
	s.views[entry.view.ID] = entry

	slog.Debug("view opened", "view_id", entry.view.ID, "grid", gridKey)
	return entry.view.snapshot(), nil
}

// entry looks up a view entry without locking it.
func (s *Service) entry(id string) (*viewEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.views[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrViewNotFound, id)
	}
	return e, nil
}

// withView runs fn with the view locked and marks it as used.
func (s *Service) withView(id string, fn func(v *View) error) error {
	e, err := s.entry(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.view.LastUsed = s.now()
	return fn(&e.view)
}

// View returns a copy of a view's state.
func (s *Service) View(id string) (View, error) {
	var out View
	err := s.withView(id, func(v *View) error {
		out = v.snapshot()
		return nil
	})
	return out, err
}

// CloseView discards a view.
func (s *Service) CloseView(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.views[id]; !ok {
		return fmt.Errorf("%w: %s", ErrViewNotFound, id)
	}
	delete(s.views, id)
	return nil
}

// ViewCount returns the number of open views.
func (s *Service) ViewCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.views)
}

// UpdateSettings applies a partial settings update to a view.
func (s *Service) UpdateSettings(id string, settings Settings) (View, error) {
	var out View
	err := s.withView(id, func(v *View) error {
		def, err := s.Grid(v.GridKey)
		if err != nil {
			return err
		}
		if err := settings.validate(def, s.opts.MaxPageSize); err != nil {
			return err
		}
		settings.apply(v, def)
		out = v.snapshot()
		return nil
	})
	return out, err
}

// TogglePin flips the pinned state of one row and returns the new state.
func (s *Service) TogglePin(id, rowID string) (bool, error) {
	if rowID == "" {
		return false, fmt.Errorf("toggle pin: missing row id")
	}
	var pinned bool
	err := s.withView(id, func(v *View) error {
		pinned = v.Pinned.Toggle(rowID)
		return nil
	})
	return pinned, err
}

// RunBulkAction applies a named action to the rows with the given ids.
// Ids that do not match a row in the grid are ignored.
func (s *Service) RunBulkAction(ctx context.Context, viewID, action string, rowIDs []string) (*BulkResult, error) {
	s.mu.RLock()
	a, ok := s.actions[action]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}

	view, err := s.View(viewID)
	if err != nil {
		return nil, err
	}
	def, err := s.Grid(view.GridKey)
	if err != nil {
		return nil, err
	}

	rows, err := def.Source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rows: %w", err)
	}
	selected := selectRows(rows, def.idField(), rowIDs)

	result := &BulkResult{Action: action, Selected: len(selected)}
	err = s.withView(viewID, func(v *View) error {
		if err := a.Apply(ctx, v, def, selected); err != nil {
			return fmt.Errorf("bulk %s: %w", action, err)
		}
		result.Pinned = v.Pinned.Count()
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("bulk action applied",
		"view_id", viewID,
		"grid", def.Info.Key,
		"action", action,
		"selected", result.Selected,
	)
	return result, nil
}

// selectRows returns the rows whose identity is in ids, in row order.
func selectRows(rows []Row, idField string, ids []string) []Row {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []Row
	for _, row := range rows {
		if want[row.ID(idField)] {
			out = append(out, row)
		}
	}
	return out
}

// SweepViews discards views unused for longer than the configured TTL and
// returns how many were removed.
func (s *Service) SweepViews() int {
	cutoff := s.now().Add(-s.opts.ViewTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.views {
		e.mu.Lock()
		stale := e.view.LastUsed.Before(cutoff)
		e.mu.Unlock()
		if stale {
			delete(s.views, id)
			removed++
		}
	}
	return removed
}
