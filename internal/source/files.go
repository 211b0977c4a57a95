package source

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/JonMunkholm/gridkit/internal/core"
)

// fileCache re-reads a file only when its size or modification time changes.
type fileCache struct {
	path  string
	parse func(io.Reader) ([]core.Row, error)

	mu      sync.Mutex
	modTime time.Time
	size    int64
	rows    []core.Row
}

func (c *fileCache) load() ([]core.Row, error) {
	info, err := os.Stat(c.path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", c.path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rows == nil || !info.ModTime().Equal(c.modTime) || info.Size() != c.size {
		f, err := os.Open(c.path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", c.path, err)
		}
		defer func() { _ = f.Close() }()

		r, err := cleanReader(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", c.path, err)
		}
		rows, err := c.parse(r)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", c.path, err)
		}
		if rows == nil {
			rows = []core.Row{}
		}
		c.rows = rows
		c.modTime = info.ModTime()
		c.size = info.Size()
		slog.Debug("file rows loaded", "path", c.path, "rows", len(rows))
	}

	out := make([]core.Row, len(c.rows))
	copy(out, c.rows)
	return out, nil
}

// JSONFile reads rows from a file holding a JSON array of objects.
// Numbers are kept as json.Number so large ids survive unchanged.
type JSONFile struct {
	cache *fileCache
}

var _ core.Source = (*JSONFile)(nil)

// NewJSONFile creates a read-only source over path.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{cache: &fileCache{path: path, parse: parseJSONRows}}
}

// Load returns the rows in the file.
func (j *JSONFile) Load(context.Context) ([]core.Row, error) {
	return j.cache.load()
}

func parseJSONRows(r io.Reader) ([]core.Row, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	rows := make([]core.Row, len(raw))
	for i, m := range raw {
		rows[i] = core.Row(m)
	}
	return rows, nil
}

// CSVFile reads rows from a CSV file with a header row. Headers are matched
// to grid columns by id, header text or database column name, ignoring case.
// Unmatched headers are skipped and blank cells are read as missing.
type CSVFile struct {
	cache *fileCache
}

var _ core.Source = (*CSVFile)(nil)

// NewCSVFile creates a read-only source over path.
func NewCSVFile(path string, columns []core.Column) *CSVFile {
	parse := func(r io.Reader) ([]core.Row, error) {
		return parseCSVRows(r, columns)
	}
	return &CSVFile{cache: &fileCache{path: path, parse: parse}}
}

// Load returns the rows in the file.
func (c *CSVFile) Load(context.Context) ([]core.Row, error) {
	return c.cache.load()
}

func parseCSVRows(r io.Reader, columns []core.Column) ([]core.Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	ids := make([]string, len(header))
	for i, h := range header {
		ids[i] = matchHeader(strings.TrimSpace(h), columns)
	}

	var rows []core.Row
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		row := make(core.Row, len(columns))
		for i, value := range record {
			if i >= len(ids) || ids[i] == "" {
				continue
			}
			if value = strings.TrimSpace(value); value != "" {
				row[ids[i]] = value
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// matchHeader returns the id of the column a CSV header names, or "".
func matchHeader(h string, columns []core.Column) string {
	if h == "" {
		return ""
	}
	for _, c := range columns {
		if c.ID == core.ActionsColumn {
			continue
		}
		if strings.EqualFold(h, c.ID) || strings.EqualFold(h, c.Header) || (c.DBColumn != "" && strings.EqualFold(h, c.DBColumn)) {
			return c.ID
		}
	}
	return ""
}
