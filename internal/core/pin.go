package core

import "slices"

// PinnedSet maps row identity to pinned state.
// It starts empty for every view and changes only through Toggle and Set.
type PinnedSet map[string]bool

// IsPinned reports whether the row with the given identity is pinned.
func (p PinnedSet) IsPinned(id string) bool {
	return p[id]
}

// Toggle flips the pinned state of one row and returns the new state.
func (p PinnedSet) Toggle(id string) bool {
	p[id] = !p[id]
	return p[id]
}

// Set writes the same pinned state for every id. Each write is independent,
// so the result does not depend on iteration order and repeating the call
// changes nothing.
func (p PinnedSet) Set(ids []string, pinned bool) {
	for _, id := range ids {
		p[id] = pinned
	}
}

// Count returns the number of pinned rows.
func (p PinnedSet) Count() int {
	n := 0
	for _, pinned := range p {
		if pinned {
			n++
		}
	}
	return n
}

// Clone returns an independent copy of the set.
func (p PinnedSet) Clone() PinnedSet {
	out := make(PinnedSet, len(p))
	for id, pinned := range p {
		out[id] = pinned
	}
	return out
}

// pinCompare orders pinned rows before unpinned ones and leaves every other
// pair to the stable sort.
func pinCompare(aPinned, bPinned bool) int {
	switch {
	case aPinned && !bPinned:
		return -1
	case bPinned && !aPinned:
		return 1
	default:
		return 0
	}
}

// ComposePinned returns a copy of rows with pinned rows first.
// Relative order inside the pinned and unpinned groups is preserved, since it
// already carries the user's sort and filter choices.
func ComposePinned[T any](rows []T, isPinned func(T) bool) []T {
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b T) int {
		return pinCompare(isPinned(a), isPinned(b))
	})
	return out
}

// Compose decorates rows with their pin state and moves pinned rows first.
// The input rows are not modified.
func (p PinnedSet) Compose(rows []Row, idField string) []DisplayRow {
	display := make([]DisplayRow, len(rows))
	for i, row := range rows {
		id := row.ID(idField)
		display[i] = DisplayRow{
			ID:     id,
			Pinned: p.IsPinned(id),
			Values: row,
		}
	}
	return ComposePinned(display, func(r DisplayRow) bool { return r.Pinned })
}
