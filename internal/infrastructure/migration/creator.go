package migration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"
	"unicode"
)

const upTemplate = `-- Migration: {{.Name}}
-- Description: {{.Description}}

`

const downTemplate = `-- Migration: {{.Name}} (Rollback)

`

// ErrEmptyName is returned when a migration name sanitizes to nothing
var ErrEmptyName = errors.New("migration name must contain letters or digits")

// File describes a generated migration pair
type File struct {
	Version     string
	Name        string
	Description string
	UpPath      string
	DownPath    string
}

// Entry is one migration found on disk
type Entry struct {
	Version string
	Name    string
	HasDown bool
}

// Create writes an empty up/down pair named with a UTC timestamp version
func Create(dir, name, description string, now time.Time) (*File, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, ErrEmptyName
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := List(dir)
	if err != nil {
		return nil, err
	}
	for _, e := range existing {
		if e.Name == slug {
			return nil, fmt.Errorf("migration %q already exists as version %s", slug, e.Version)
		}
	}

	version := now.UTC().Format("20060102150405")
	base := version + "_" + slug
	f := &File{
		Version:     version,
		Name:        slug,
		Description: description,
		UpPath:      filepath.Join(dir, base+".up.sql"),
		DownPath:    filepath.Join(dir, base+".down.sql"),
	}
	if err := writeTemplate(f.UpPath, upTemplate, f); err != nil {
		return nil, err
	}
	if err := writeTemplate(f.DownPath, downTemplate, f); err != nil {
		_ = os.Remove(f.UpPath)
		return nil, err
	}
	return f, nil
}

func writeTemplate(path, text string, data *File) error {
	tmpl := template.Must(template.New(filepath.Base(path)).Parse(text))
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := tmpl.Execute(out, data); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	return out.Close()
}

// sanitizeName lowercases name and folds separators into single underscores
func sanitizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
		case r == ' ' || r == '-' || r == '_':
			pendingSep = true
		}
	}
	return b.String()
}

// List returns the migrations in dir ordered by version. A missing
// directory yields an empty list.
func List(dir string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	byBase := map[string]*Entry{}
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		fileName := de.Name()
		var base string
		var down bool
		switch {
		case strings.HasSuffix(fileName, ".up.sql"):
			base = strings.TrimSuffix(fileName, ".up.sql")
		case strings.HasSuffix(fileName, ".down.sql"):
			base, down = strings.TrimSuffix(fileName, ".down.sql"), true
		default:
			continue
		}
		version, name, ok := strings.Cut(base, "_")
		if !ok {
			continue
		}
		e, seen := byBase[base]
		if !seen {
			e = &Entry{Version: version, Name: name}
			byBase[base] = e
		}
		if down {
			e.HasDown = true
		}
	}

	out := make([]Entry, 0, len(byBase))
	for _, e := range byBase {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}
