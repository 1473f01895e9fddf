package mapfile

import (
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tilejump/internal/level"
	"github.com/vovakirdan/tilejump/internal/tile"
)

func init() {
	Register(Format{Name: "yaml", Extensions: []string{".yaml", ".yml"}, Parse: parseYAML, Encode: encodeYAML})
}

// Row symbols of the YAML format. Any other token must be an integer code.
var symbols = map[string]tile.Type{
	".": tile.Empty,
	"#": tile.InvisibleWall,
	"S": tile.Spawn,
	"F": tile.Finish,
	"B": tile.Bounce,
}

type yamlMap struct {
	Meta   level.Meta  `yaml:"meta"`
	Levels []yamlLevel `yaml:"levels"`
}

type yamlLevel struct {
	Rows []string `yaml:"rows"`
}

// parseYAML reads metadata plus one block of whitespace separated rows
// per level, for example:
//
//	meta:
//	  name: Hello
//	levels:
//	  - rows:
//	      - "# # # #"
//	      - "# S F #"
//	      - "# 1 1 #"
func parseYAML(fsys fs.FS, name string) (level.Data, error) {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return level.Data{}, err
	}
	var ym yamlMap
	if err := yaml.Unmarshal(raw, &ym); err != nil {
		return level.Data{}, fmt.Errorf("mapfile: parse %s: %w", name, err)
	}

	d := level.Data{Meta: ym.Meta, Levels: make([][][]int, len(ym.Levels))}
	for i, lvl := range ym.Levels {
		rows := make([][]int, len(lvl.Rows))
		for y, row := range lvl.Rows {
			codes, err := parseRow(row)
			if err != nil {
				return level.Data{}, fmt.Errorf("mapfile: %s level %d row %d: %w", name, i, y, err)
			}
			rows[y] = codes
		}
		d.Levels[i] = rows
	}
	return d, nil
}

func parseRow(row string) ([]int, error) {
	fields := strings.Fields(row)
	codes := make([]int, len(fields))
	for x, tok := range fields {
		if t, ok := symbols[tok]; ok {
			codes[x] = int(t)
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("column %d: unknown tile %q", x, tok)
		}
		codes[x] = n
	}
	return codes, nil
}

func encodeYAML(d level.Data) ([]byte, error) {
	names := make(map[int]string, len(symbols))
	for sym, t := range symbols {
		names[int(t)] = sym
	}

	ym := yamlMap{Meta: d.Meta, Levels: make([]yamlLevel, len(d.Levels))}
	for i, lvl := range d.Levels {
		rows := make([]string, len(lvl))
		for y, row := range lvl {
			toks := make([]string, len(row))
			for x, code := range row {
				if sym, ok := names[code]; ok {
					toks[x] = sym
				} else {
					toks[x] = strconv.Itoa(code)
				}
			}
			rows[y] = strings.Join(toks, " ")
		}
		ym.Levels[i] = yamlLevel{Rows: rows}
	}
	return yaml.Marshal(ym)
}
