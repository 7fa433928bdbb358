package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FilePair is a generated up/down migration pair.
type FilePair struct {
	Version  string
	UpPath   string
	DownPath string
}

const fileHeader = "-- %s: %s\n-- created %s\n\n"

// CreateFiles writes an empty up/down migration pair named after name.
// Versions are second-resolution timestamps so files sort by creation order.
func CreateFiles(dir, name string) (*FilePair, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}

	now := time.Now()
	pair := &FilePair{Version: now.Format("20060102150405")}
	base := pair.Version + "_" + slugify(name)
	pair.UpPath = filepath.Join(dir, base+".up.sql")
	pair.DownPath = filepath.Join(dir, base+".down.sql")

	created := now.Format(time.RFC3339)
	if err := os.WriteFile(pair.UpPath, fmt.Appendf(nil, fileHeader, "migration", name, created), 0o644); err != nil {
		return nil, fmt.Errorf("write up migration: %w", err)
	}
	if err := os.WriteFile(pair.DownPath, fmt.Appendf(nil, fileHeader, "rollback", name, created), 0o644); err != nil {
		_ = os.Remove(pair.UpPath)
		return nil, fmt.Errorf("write down migration: %w", err)
	}
	return pair, nil
}

// ListFiles returns the base names of all up migrations in dir, sorted.
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if base, ok := strings.CutSuffix(entry.Name(), ".up.sql"); ok {
			names = append(names, base)
		}
	}
	sort.Strings(names)
	return names, nil
}

// slugify lowercases name and collapses separators to single underscores,
// dropping anything that is not safe in a file name.
func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			s := b.String()
			if len(s) > 0 && !strings.HasSuffix(s, "_") {
				b.WriteByte('_')
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
