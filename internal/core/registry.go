package core

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds grid definitions by key.
type Registry struct {
	mu    sync.RWMutex
	grids map[string]GridDefinition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{grids: make(map[string]GridDefinition)}
}

// Register adds a grid definition.
// Returns an error if the key is taken or the definition is incomplete.
func (r *Registry) Register(def GridDefinition) error {
	if def.Info.Key == "" {
		return fmt.Errorf("register grid: missing key")
	}
	if def.Source == nil {
		return fmt.Errorf("register grid %s: missing source", def.Info.Key)
	}
	if len(def.Columns) == 0 {
		return fmt.Errorf("register grid %s: no columns", def.Info.Key)
	}

	seen := make(map[string]bool, len(def.Columns))
	for i, col := range def.Columns {
		if col.ID == "" {
			return fmt.Errorf("register grid %s: column %d has no id", def.Info.Key, i)
		}
		if seen[col.ID] {
			return fmt.Errorf("register grid %s: duplicate column %s", def.Info.Key, col.ID)
		}
		seen[col.ID] = true
	}

	if def.Info.Label == "" {
		def.Info.Label = def.Info.Key
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.grids[def.Info.Key]; exists {
		return fmt.Errorf("grid already registered: %s", def.Info.Key)
	}
	r.grids[def.Info.Key] = def
	return nil
}

// Get returns a grid definition by key.
func (r *Registry) Get(key string) (GridDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.grids[key]
	return def, ok
}

// All returns all registered grids sorted by group then key.
func (r *Registry) All() []GridDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]GridDefinition, 0, len(r.grids))
	for _, def := range r.grids {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Info.Group != result[j].Info.Group {
			return result[i].Info.Group < result[j].Info.Group
		}
		return result[i].Info.Key < result[j].Info.Key
	})

	return result
}

// ByGroup returns the grids of one group sorted by key.
func (r *Registry) ByGroup(group string) []GridDefinition {
	var result []GridDefinition
	for _, def := range r.All() {
		if def.Info.Group == group {
			result = append(result, def)
		}
	}
	return result
}

// Groups returns the unique group names, sorted.
func (r *Registry) Groups() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	for _, def := range r.grids {
		seen[def.Info.Group] = true
	}

	groups := make([]string, 0, len(seen))
	for g := range seen {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}

// Count returns the number of registered grids.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.grids)
}
