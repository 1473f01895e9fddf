package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/tilejump/internal/level"
)

func openTestStore(t *testing.T) Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testMap(name string) level.Data {
	return level.Data{
		Meta: level.Meta{Name: name, Author: "ann", Difficulty: 2},
		Levels: [][][]int{
			{{999, 999, 999}, {999, 420, 999}, {999, 421, 999}, {999, 999, 999}},
		},
	}
}

func TestStoreOpenClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")

	store, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestOpenDriverUnknown(t *testing.T) {
	if _, err := OpenDriver("mysql", ""); !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("OpenDriver(mysql) error = %v, expected ErrUnknownDriver", err)
	}
}

func TestSaveAndLoadMap(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.SaveMap(ctx, testMap("Long Way Down"))
	if err != nil {
		t.Fatalf("SaveMap() failed: %v", err)
	}
	if id != "long-way-down" {
		t.Errorf("id = %q, expected long-way-down", id)
	}

	d, err := store.Map(ctx, id)
	if err != nil {
		t.Fatalf("Map() failed: %v", err)
	}
	if d.Meta.ID != id || d.Meta.Author != "ann" || d.Meta.Difficulty != 2 {
		t.Errorf("meta = %+v, expected stored metadata", d.Meta)
	}
	if len(d.Levels) != 1 || d.Levels[0][1][1] != 420 {
		t.Errorf("levels = %v, expected stored tiles", d.Levels)
	}

	updated := testMap("Long Way Down")
	updated.Meta.ID = id
	updated.Meta.Difficulty = 5
	if _, err := store.SaveMap(ctx, updated); err != nil {
		t.Fatalf("SaveMap() update failed: %v", err)
	}
	maps, err := store.ListMaps(ctx)
	if err != nil {
		t.Fatalf("ListMaps() failed: %v", err)
	}
	if len(maps) != 1 || maps[0].Difficulty != 5 || maps[0].Levels != 1 {
		t.Errorf("ListMaps() = %+v, expected one updated map", maps)
	}
}

func TestSaveMapValidation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		data level.Data
		want error
	}{
		{"empty name", testMap("  "), ErrMapName},
		{"symbols only", testMap("!!!"), ErrMapName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.SaveMap(ctx, tt.data); !errors.Is(err, tt.want) {
				t.Errorf("SaveMap() error = %v, expected %v", err, tt.want)
			}
		})
	}

	if _, err := store.SaveMap(ctx, testMap("Twin")); err != nil {
		t.Fatal(err)
	}
	dup := testMap("Twin")
	dup.Meta.ID = "other"
	if _, err := store.SaveMap(ctx, dup); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("duplicate name error = %v, expected ErrDuplicateName", err)
	}
}

func TestMapNotFound(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.Map(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Map() error = %v, expected ErrNotFound", err)
	}
	if err := store.IncrementPlays(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("IncrementPlays() error = %v, expected ErrNotFound", err)
	}
}

func TestIncrementPlays(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	id, _ := store.SaveMap(ctx, testMap("Counted"))

	for i := 0; i < 3; i++ {
		if err := store.IncrementPlays(ctx, id); err != nil {
			t.Fatalf("IncrementPlays() failed: %v", err)
		}
	}
	maps, _ := store.ListMaps(ctx)
	if len(maps) != 1 || maps[0].Plays != 3 {
		t.Errorf("plays = %+v, expected 3", maps)
	}
}

func TestSubmitTimeKeepsBest(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	steps := []struct {
		ms       int64
		improved bool
		best     int64
	}{
		{5000, true, 5000},
		{6000, false, 5000},
		{5000, false, 5000},
		{4200, true, 4200},
	}
	for _, st := range steps {
		improved, err := store.SubmitTime(ctx, "m", "ann", st.ms)
		if err != nil {
			t.Fatalf("SubmitTime(%d) failed: %v", st.ms, err)
		}
		if improved != st.improved {
			t.Errorf("SubmitTime(%d) improved = %v, expected %v", st.ms, improved, st.improved)
		}
		best, ok, err := store.BestTime(ctx, "m", "ann")
		if err != nil || !ok || best != st.best {
			t.Errorf("BestTime() = (%d,%v,%v), expected %d", best, ok, err, st.best)
		}
	}

	if _, ok, _ := store.BestTime(ctx, "m", "bob"); ok {
		t.Error("BestTime() found a time for a user without runs")
	}
}

func TestRankingsOrder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	times := map[string]int64{"ann": 7000, "bob": 3000, "cy": 5000}
	for user, ms := range times {
		if _, err := store.SubmitTime(ctx, "m", user, ms); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := store.SubmitTime(ctx, "other", "dee", 1000); err != nil {
		t.Fatal(err)
	}

	got, err := store.Rankings(ctx, "m", 10)
	if err != nil {
		t.Fatalf("Rankings() failed: %v", err)
	}
	want := []string{"bob", "cy", "ann"}
	if len(got) != len(want) {
		t.Fatalf("Rankings() len = %d, expected %d", len(got), len(want))
	}
	for i, r := range got {
		if r.User != want[i] {
			t.Errorf("Rankings()[%d] = %s, expected %s", i, r.User, want[i])
		}
	}

	top, _ := store.Rankings(ctx, "m", 2)
	if len(top) != 2 {
		t.Errorf("Rankings(limit 2) len = %d, expected 2", len(top))
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Long Way Down", "long-way-down"},
		{"  spaced  out ", "spaced-out"},
		{"Level #2!", "level-2"},
		{"---", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slug(tt.name); got != tt.want {
				t.Errorf("Slug(%q) = %q, expected %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestRebind(t *testing.T) {
	got := rebind("SELECT a FROM t WHERE b = ? AND c = ? LIMIT ?")
	want := "SELECT a FROM t WHERE b = $1 AND c = $2 LIMIT $3"
	if got != want {
		t.Errorf("rebind() = %q, expected %q", got, want)
	}
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TILEJUMP_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TILEJUMP_POSTGRES_DSN not set")
	}
	store, err := OpenDriver(DriverPostgres, dsn)
	if err != nil {
		t.Fatalf("OpenDriver(postgres) failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	id, err := store.SaveMap(ctx, testMap("Postgres Smoke"))
	if err != nil {
		t.Fatalf("SaveMap() failed: %v", err)
	}
	if _, err := store.SubmitTime(ctx, id, "pg-user", 1234); err != nil {
		t.Fatalf("SubmitTime() failed: %v", err)
	}
	if best, ok, err := store.BestTime(ctx, id, "pg-user"); err != nil || !ok || best > 1234 {
		t.Errorf("BestTime() = (%d,%v,%v), expected at most 1234", best, ok, err)
	}
}
