package core

import (
	"fmt"
	"time"
)

// FontSize is the table text size chosen by the user.
type FontSize string

const (
	FontSmall  FontSize = "sm"
	FontMedium FontSize = "md"
	FontLarge  FontSize = "lg"
)

// Theme is the colour scheme chosen by the user.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// PageSizes are the page sizes offered to the user.
var PageSizes = []int{10, 20, 50, 100}

// View is the state of one user's grid. It is owned by the Service and
// changed only through Service methods.
type View struct {
	ID         string          `json:"id"`
	GridKey    string          `json:"grid"`
	Pinned     PinnedSet       `json:"pinned"`
	Hidden     map[string]bool `json:"hidden"`
	PageSize   int             `json:"pageSize"`
	FontSize   FontSize        `json:"fontSize"`
	Theme      Theme           `json:"theme"`
	Comparison ComparisonMode  `json:"comparison"`
	CreatedAt  time.Time       `json:"createdAt"`
	LastUsed   time.Time       `json:"lastUsed"`
}

// snapshot returns a copy that callers can read without holding the lock.
func (v *View) snapshot() View {
	out := *v
	out.Pinned = v.Pinned.Clone()
	out.Hidden = make(map[string]bool, len(v.Hidden))
	for k, hidden := range v.Hidden {
		out.Hidden[k] = hidden
	}
	return out
}

// VisibleColumns returns the columns of def that are not hidden in this view.
func (v View) VisibleColumns(def GridDefinition) []Column {
	cols := make([]Column, 0, len(def.Columns))
	for _, c := range def.Columns {
		if v.Hidden[c.ID] {
			continue
		}
		cols = append(cols, c)
	}
	return cols
}

// Settings is a partial update of a view's display settings.
// Nil fields are left unchanged.
type Settings struct {
	PageSize   *int            `json:"pageSize,omitempty"`
	FontSize   *FontSize       `json:"fontSize,omitempty"`
	Theme      *Theme          `json:"theme,omitempty"`
	Comparison *ComparisonMode `json:"comparison,omitempty"`
	Hidden     map[string]bool `json:"hidden,omitempty"`
}

// validate checks a settings update against the grid it applies to.
func (s Settings) validate(def GridDefinition, maxPageSize int) error {
	if s.PageSize != nil && (*s.PageSize < 1 || *s.PageSize > maxPageSize) {
		return fmt.Errorf("invalid page size %d: must be 1-%d", *s.PageSize, maxPageSize)
	}
	if s.FontSize != nil {
		switch *s.FontSize {
		case FontSmall, FontMedium, FontLarge:
		default:
			return fmt.Errorf("invalid font size %q", *s.FontSize)
		}
	}
	if s.Theme != nil {
		switch *s.Theme {
		case ThemeLight, ThemeDark:
		default:
			return fmt.Errorf("invalid theme %q", *s.Theme)
		}
	}
	if s.Comparison != nil && !s.Comparison.Valid() {
		return fmt.Errorf("invalid comparison mode %q", *s.Comparison)
	}
	for id, hidden := range s.Hidden {
		col, ok := def.Column(id)
		if !ok {
			return fmt.Errorf("column not found: %s", id)
		}
		if hidden && !col.Hideable {
			return fmt.Errorf("column %s cannot be hidden", id)
		}
	}
	return nil
}

// apply writes the non-nil settings into v.
func (s Settings) apply(v *View, def GridDefinition) {
	if s.PageSize != nil {
		v.PageSize = *s.PageSize
	}
	if s.FontSize != nil {
		v.FontSize = *s.FontSize
	}
	if s.Theme != nil {
		v.Theme = *s.Theme
	}
	if s.Comparison != nil {
		v.Comparison = *s.Comparison
	}
	for id, hidden := range s.Hidden {
		col, _ := def.Column(id)
		if hidden {
			v.Hidden[col.ID] = true
		} else {
			delete(v.Hidden, col.ID)
		}
	}
}
