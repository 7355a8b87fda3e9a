package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/citysense/weather-etl/internal/normalize"
)

const (
	fallbackTimestampLayout = "2006-01-02_15-04-05"
	cellTimestampLayout     = "2006-01-02 15:04:05"
)

// fallbackNames fixes the on-disk directory and file prefix per dataset.
var fallbackNames = map[string]struct{ dir, prefix string }{
	"weather":   {dir: "Weather", prefix: "Weather"},
	"pollution": {dir: "Pollution", prefix: "pollution"},
}

// Fallback writes a dataset that failed to insert as a CSV file for manual
// recovery: a header row followed by one line per row.
type Fallback struct {
	baseDir string
}

// NewFallback creates a Fallback rooted at baseDir.
func NewFallback(baseDir string) *Fallback {
	return &Fallback{baseDir: baseDir}
}

// Write serializes ds to <base>/<Dir>/<prefix>_<timestamp>.csv and returns
// the file path.
func (f *Fallback) Write(ds normalize.Dataset, now time.Time) (string, error) {
	names, ok := fallbackNames[ds.Name]
	if !ok {
		names.dir, names.prefix = ds.Name, ds.Name
	}

	dir := filepath.Join(f.baseDir, names.dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create fallback dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", names.prefix, now.Format(fallbackTimestampLayout)))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create fallback file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(ds.Columns); err != nil {
		return "", fmt.Errorf("write fallback header: %w", err)
	}

	record := make([]string, len(ds.Columns))
	for _, row := range ds.Rows {
		for i, col := range ds.Columns {
			record[i] = formatCell(row[col])
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("write fallback row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush fallback file: %w", err)
	}
	return path, nil
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(cellTimestampLayout)
	default:
		return fmt.Sprint(val)
	}
}
