package mapfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vovakirdan/tilejump/internal/level"
)

// ErrNotFound is returned when no file in the directory has the map id.
var ErrNotFound = errors.New("mapfile: map not found")

// Entry is one map file found by a Loader.
type Entry struct {
	ID     string // slash separated path below the root, without extension
	Path   string // path on disk
	Format string

	name string // path within the loader's fs
}

// Loader reads every supported map file below a directory.
type Loader struct {
	root string
	fsys fs.FS
}

// NewLoader creates a loader for the directory root.
func NewLoader(root string) *Loader {
	return &Loader{root: root, fsys: os.DirFS(root)}
}

// Root returns the directory the loader reads.
func (l *Loader) Root() string { return l.root }

// List walks the directory and returns the supported files sorted by id.
func (l *Loader) List() ([]Entry, error) {
	var entries []Entry
	err := fs.WalkDir(l.fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if name != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		f, err := Lookup(name)
		if err != nil {
			return nil
		}
		entries = append(entries, Entry{
			ID:     strings.TrimSuffix(name, path.Ext(name)),
			Path:   filepath.Join(l.root, filepath.FromSlash(name)),
			Format: f.Name,
			name:   name,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("mapfile: walk %s: %w", l.root, err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}

// LoadMap loads the file with map id. It satisfies game.MapLoader.
func (l *Loader) LoadMap(ctx context.Context, id string) (level.Data, error) {
	entries, err := l.List()
	if err != nil {
		return level.Data{}, err
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return level.Data{}, err
		}
		if e.ID != id {
			continue
		}
		return l.load(e)
	}
	return level.Data{}, fmt.Errorf("%w: %q in %s", ErrNotFound, id, l.root)
}

// LoadAll loads every map below the directory, sorted by id.
func (l *Loader) LoadAll() ([]level.Data, error) {
	entries, err := l.List()
	if err != nil {
		return nil, err
	}
	out := make([]level.Data, 0, len(entries))
	for _, e := range entries {
		d, err := l.load(e)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (l *Loader) load(e Entry) (level.Data, error) {
	d, err := parse(l.fsys, e.name)
	if err != nil {
		return level.Data{}, err
	}
	if d.Meta.ID == "" {
		d.Meta.ID = e.ID
	}
	return d, nil
}

// Load reads a single map file. A map without an id takes the file name.
func Load(file string) (level.Data, error) {
	name := filepath.Base(file)
	d, err := parse(os.DirFS(filepath.Dir(file)), name)
	if err != nil {
		return level.Data{}, err
	}
	if d.Meta.ID == "" {
		d.Meta.ID = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return d, nil
}

// Save writes d to file in the format of its extension.
func Save(file string, d level.Data) error {
	f, err := Lookup(file)
	if err != nil {
		return err
	}
	if f.Encode == nil {
		return fmt.Errorf("%w: %s is read-only", ErrUnsupported, f.Name)
	}
	raw, err := f.Encode(d)
	if err != nil {
		return fmt.Errorf("mapfile: encode %s: %w", file, err)
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return err
	}
	return os.WriteFile(file, raw, 0o644)
}

// Validate reports whether d imports cleanly and every level has a spawn
// and a finish.
func Validate(d level.Data) error {
	m := level.New(level.DefaultConfig())
	if err := m.LoadData(d); err != nil {
		return err
	}
	return m.Validate()
}

func parse(fsys fs.FS, name string) (level.Data, error) {
	f, err := Lookup(name)
	if err != nil {
		return level.Data{}, err
	}
	d, err := f.Parse(fsys, name)
	if err != nil {
		return level.Data{}, err
	}
	if d.Meta.Name == "" {
		d.Meta.Name = strings.TrimSuffix(path.Base(name), path.Ext(name))
	}
	return d, nil
}
