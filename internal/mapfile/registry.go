// Package mapfile reads maps from disk. Formats register themselves by file
// extension in init() functions.
package mapfile

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/vovakirdan/tilejump/internal/level"
)

// ErrUnsupported is returned for files whose extension has no format.
var ErrUnsupported = errors.New("mapfile: unsupported format")

// Parser reads the map stored as name in fsys.
type Parser func(fsys fs.FS, name string) (level.Data, error)

// Encoder renders a map in a format. Read-only formats have none.
type Encoder func(d level.Data) ([]byte, error)

// Format describes one registered map file format.
type Format struct {
	Name       string
	Extensions []string
	Parse      Parser
	Encode     Encoder
}

var (
	formats = make(map[string]Format)
	mu      sync.RWMutex
)

// Register adds a format for each of its extensions.
// Panics if an extension is already registered.
func Register(f Format) {
	mu.Lock()
	defer mu.Unlock()

	for _, ext := range f.Extensions {
		ext = normalizeExt(ext)
		if _, exists := formats[ext]; exists {
			panic(fmt.Sprintf("mapfile: extension %q already registered", ext))
		}
		formats[ext] = f
	}
}

// Extensions returns every registered extension, sorted.
func Extensions() []string {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]string, 0, len(formats))
	for ext := range formats {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the format for path by its extension.
func Lookup(path string) (Format, error) {
	mu.RLock()
	defer mu.RUnlock()

	ext := normalizeExt(filepath.Ext(path))
	f, ok := formats[ext]
	if !ok {
		return Format{}, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	return f, nil
}

// Supported reports whether path has a registered extension.
func Supported(path string) bool {
	_, err := Lookup(path)
	return err == nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && ext[0] != '.' {
		ext = "." + ext
	}
	return ext
}
