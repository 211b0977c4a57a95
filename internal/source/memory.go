package source

import (
	"context"
	"sync"

	"github.com/JonMunkholm/gridkit/internal/core"
)

// Memory serves rows held in memory. It is used for inline catalog data and
// in tests.
type Memory struct {
	idField string

	mu   sync.RWMutex
	rows []core.Row
}

var (
	_ core.Source  = (*Memory)(nil)
	_ core.Deleter = (*Memory)(nil)
)

// NewMemory creates a source over rows. idField names the identity column.
func NewMemory(idField string, rows []core.Row) *Memory {
	if idField == "" {
		idField = core.DefaultIDField
	}
	return &Memory{idField: idField, rows: rows}
}

// Load returns a copy of the row slice. The rows themselves are shared.
func (m *Memory) Load(context.Context) ([]core.Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]core.Row, len(m.rows))
	copy(out, m.rows)
	return out, nil
}

// Delete removes the rows whose identity is in ids.
func (m *Memory) Delete(_ context.Context, ids []string) (int64, error) {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.rows[:0:0]
	var removed int64
	for _, row := range m.rows {
		if drop[row.ID(m.idField)] {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	m.rows = kept
	return removed, nil
}
