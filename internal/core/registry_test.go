package core

import (
	"context"
	"strings"
	"testing"
)

// sliceSource serves a fixed set of rows.
type sliceSource struct {
	rows []Row
}

func (s *sliceSource) Load(context.Context) ([]Row, error) {
	return s.rows, nil
}

// deletingSource is a sliceSource that records deletes.
type deletingSource struct {
	sliceSource
	deleted []string
}

func (s *deletingSource) Delete(_ context.Context, ids []string) (int64, error) {
	s.deleted = append(s.deleted, ids...)
	return int64(len(ids)), nil
}

func testGrid(key, group string) GridDefinition {
	return GridDefinition{
		Info:    GridInfo{Key: key, Group: group},
		Columns: []Column{{ID: "id"}, {ID: "name"}},
		Source:  &sliceSource{},
	}
}

func TestRegistry_Register(t *testing.T) {
	tests := []struct {
		name    string
		def     GridDefinition
		wantErr string
	}{
		{"valid", testGrid("a", "g"), ""},
		{"missing key", testGrid("", "g"), "missing key"},
		{"missing source", GridDefinition{Info: GridInfo{Key: "b"}, Columns: []Column{{ID: "id"}}}, "missing source"},
		{"no columns", GridDefinition{Info: GridInfo{Key: "c"}, Source: &sliceSource{}}, "no columns"},
		{
			name: "duplicate column",
			def: GridDefinition{
				Info:    GridInfo{Key: "d"},
				Columns: []Column{{ID: "id"}, {ID: "id"}},
				Source:  &sliceSource{},
			},
			wantErr: "duplicate column",
		},
		{
			name: "blank column id",
			def: GridDefinition{
				Info:    GridInfo{Key: "e"},
				Columns: []Column{{ID: ""}},
				Source:  &sliceSource{},
			},
			wantErr: "has no id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRegistry().Register(tt.def)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Register() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Register() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestRegistry_DuplicateKey(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(testGrid("a", "g")); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(testGrid("a", "g")); err == nil {
		t.Error("expected error for duplicate key")
	}
	if r.Count() != 1 {
		t.Errorf("Count = %d, want 1", r.Count())
	}
}

func TestRegistry_Lookup(t *testing.T) {
	r := NewRegistry()
	for _, def := range []GridDefinition{
		testGrid("zeta", "sales"),
		testGrid("alpha", "sales"),
		testGrid("beta", "finance"),
	} {
		if err := r.Register(def); err != nil {
			t.Fatal(err)
		}
	}

	def, ok := r.Get("alpha")
	if !ok {
		t.Fatal("Get(alpha) not found")
	}
	if def.Info.Label != "alpha" {
		t.Errorf("Label = %q, want key as default", def.Info.Label)
	}
	if _, ok := r.Get("missing"); ok {
		t.Error("Get(missing) should not be found")
	}

	var keys []string
	for _, d := range r.All() {
		keys = append(keys, d.Info.Key)
	}
	if strings.Join(keys, ",") != "beta,alpha,zeta" {
		t.Errorf("All() order = %v", keys)
	}

	if got := r.ByGroup("sales"); len(got) != 2 || got[0].Info.Key != "alpha" {
		t.Errorf("ByGroup(sales) = %v", got)
	}
	if got := strings.Join(r.Groups(), ","); got != "finance,sales" {
		t.Errorf("Groups() = %q", got)
	}
}
