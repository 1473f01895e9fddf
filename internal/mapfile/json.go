package mapfile

import (
	"encoding/json"
	"fmt"
	"io/fs"

	"github.com/vovakirdan/tilejump/internal/level"
)

func init() {
	Register(Format{Name: "json", Extensions: []string{".json"}, Parse: parseJSON, Encode: encodeJSON})
}

// parseJSON reads the server wire format {meta, levels}.
func parseJSON(fsys fs.FS, name string) (level.Data, error) {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return level.Data{}, err
	}
	var d level.Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return level.Data{}, fmt.Errorf("mapfile: parse %s: %w", name, err)
	}
	return d, nil
}

func encodeJSON(d level.Data) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}
