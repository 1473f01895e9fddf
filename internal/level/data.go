package level

// Data is a complete map as loaders deliver it: metadata plus the tile codes
// indexed as level x row x column.
type Data struct {
	Meta   Meta      `json:"meta" yaml:"meta"`
	Levels [][][]int `json:"levels" yaml:"-"`
}

// Data returns the map in its transport form.
func (m *Map) Data() Data {
	return Data{Meta: m.Meta(), Levels: m.SaveFormat()}
}

// LoadData imports d. Spawns missing from the metadata are derived from
// the spawn tiles. A failed import leaves the map as it was.
func (m *Map) LoadData(d Data) error {
	prev := *m
	if err := m.Load(d.Meta, d.Levels); err != nil {
		return err
	}
	if len(m.Spawns) < len(m.levels) {
		if err := m.UpdateSpawns(); err != nil {
			*m = prev
			return err
		}
	}
	return nil
}
