package mapfile

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/lafriks/go-tiled"

	"github.com/vovakirdan/tilejump/internal/level"
)

// Tiled conventions of the TMX format.
const (
	spawnGroup   = "Spawn" // object group whose objects place level spawns
	levelProp    = "level" // spawn object property: level index
	tileTypeProp = "type"  // tileset tile property overriding the tile code
)

func init() {
	Register(Format{Name: "tmx", Extensions: []string{".tmx"}, Parse: parseTMX})
}

// parseTMX reads a Tiled map. Every tile layer is a level; the code of a
// cell is its tile id within the tileset unless the tileset tile sets a
// type property.
func parseTMX(fsys fs.FS, name string) (level.Data, error) {
	tm, err := tiled.LoadFile(name, tiled.WithFileSystem(fsys))
	if err != nil {
		return level.Data{}, fmt.Errorf("mapfile: load TMX %s: %w", name, err)
	}

	d := level.Data{
		Meta: level.Meta{
			Name:       strings.TrimSuffix(path.Base(name), path.Ext(name)),
			Difficulty: 1,
		},
	}

	for _, layer := range tm.Layers {
		rows := make([][]int, tm.Height)
		for y := 0; y < tm.Height; y++ {
			row := make([]int, tm.Width)
			for x := 0; x < tm.Width; x++ {
				code, err := tileCode(layer.Tiles[y*tm.Width+x])
				if err != nil {
					return level.Data{}, fmt.Errorf("mapfile: %s layer %q (%d,%d): %w", name, layer.Name, x, y, err)
				}
				row[x] = code
			}
			rows[y] = row
		}
		d.Levels = append(d.Levels, rows)
	}

	spawns, err := tmxSpawns(tm, len(d.Levels))
	if err != nil {
		return level.Data{}, fmt.Errorf("mapfile: %s: %w", name, err)
	}
	d.Meta.Spawns = spawns
	return d, nil
}

func tileCode(t *tiled.LayerTile) (int, error) {
	if t == nil || t.IsNil() {
		return 0, nil
	}
	if tt, err := t.Tileset.GetTilesetTile(t.ID); err == nil {
		if s := tt.Properties.GetString(tileTypeProp); s != "" {
			code, err := strconv.Atoi(s)
			if err != nil {
				return 0, fmt.Errorf("bad %s property %q", tileTypeProp, s)
			}
			return code, nil
		}
	}
	return int(t.ID), nil
}

// tmxSpawns returns one spawn per level from the spawn object group, or nil
// when the group is missing or incomplete so spawns derive from tiles.
func tmxSpawns(tm *tiled.Map, levels int) ([]level.Point, error) {
	byLevel := make(map[int]level.Point)
	for _, og := range tm.ObjectGroups {
		if og.Name != spawnGroup {
			continue
		}
		for _, o := range og.Objects {
			i := o.Properties.GetInt(levelProp)
			if i < 0 || i >= levels {
				return nil, fmt.Errorf("spawn object %d names level %d of %d", o.ID, i, levels)
			}
			byLevel[i] = level.Point{X: o.X, Y: o.Y}
		}
	}
	if len(byLevel) != levels {
		return nil, nil
	}

	idx := make([]int, 0, len(byLevel))
	for i := range byLevel {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	out := make([]level.Point, len(idx))
	for n, i := range idx {
		out[n] = byLevel[i]
	}
	return out, nil
}
