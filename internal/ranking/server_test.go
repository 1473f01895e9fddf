package ranking

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/tilejump/internal/game"
	"github.com/vovakirdan/tilejump/internal/level"
	"github.com/vovakirdan/tilejump/internal/score"
	"github.com/vovakirdan/tilejump/internal/storage"
)

var (
	_ game.MapLoader = (*Client)(nil)
	_ game.Submitter = (*Client)(nil)
	_ game.MapLoader = (*Player)(nil)
	_ game.Submitter = (*Player)(nil)
	_ Publisher      = (*Feed)(nil)
)

type testEnv struct {
	store  storage.Store
	svc    *Service
	feed   *Feed
	server *httptest.Server
	mapID  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "rank.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	id, err := store.SaveMap(context.Background(), level.Data{
		Meta:   level.Meta{Name: "First Steps", Author: "ann", Difficulty: 1},
		Levels: [][][]int{{{999, 999, 999}, {999, 420, 999}, {999, 421, 999}, {999, 999, 999}}},
	})
	if err != nil {
		t.Fatalf("SaveMap() failed: %v", err)
	}

	feed := NewFeed(nil)
	svc := NewService(store, Options{Publisher: feed})
	srv := httptest.NewServer(NewServer(svc, feed, nil))
	t.Cleanup(srv.Close)
	return &testEnv{store: store, svc: svc, feed: feed, server: srv, mapID: id}
}

func mustEncode(t *testing.T, ms int64) score.Tuple {
	t.Helper()
	tuple, err := score.EncodeWith(ms, 1, 0)
	if err != nil {
		t.Fatalf("EncodeWith(%d) failed: %v", ms, err)
	}
	return tuple
}

func TestSubmitTimeAccepted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	bob := NewClient(env.server.URL, "bob")
	if _, err := bob.SubmitTime(ctx, env.mapID, mustEncode(t, 9000)); err != nil {
		t.Fatalf("bob SubmitTime() failed: %v", err)
	}

	ann := NewClient(env.server.URL, "ann")
	res, err := ann.SubmitTime(ctx, env.mapID, mustEncode(t, 5000))
	if err != nil {
		t.Fatalf("SubmitTime() failed: %v", err)
	}
	if res.Time != 5000 {
		t.Errorf("Time = %d, expected 5000", res.Time)
	}
	if len(res.Rankings) != 2 {
		t.Fatalf("Rankings len = %d, expected 2", len(res.Rankings))
	}
	first := res.Rankings[0]
	if first.Name != "ann" || first.Time != 5000 || !first.Player {
		t.Errorf("Rankings[0] = %+v, expected flagged ann at 5000", first)
	}
	if res.Rankings[1].Player {
		t.Error("another player's row is flagged")
	}

	// A slower run keeps the stored best.
	res, err = ann.SubmitTime(ctx, env.mapID, mustEncode(t, 7000))
	if err != nil {
		t.Fatalf("SubmitTime() failed: %v", err)
	}
	if res.Time != 7000 || res.Rankings[0].Time != 5000 {
		t.Errorf("result = %+v, expected time 7000 with best 5000 kept", res)
	}
}

func TestSubmitTimeRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := NewClient(env.server.URL, "ann")

	good := mustEncode(t, 4000)
	tests := []struct {
		name  string
		tuple score.Tuple
	}{
		{"missing field", score.Tuple{A: good.A, B: good.B, C: good.C}},
		{"bad check", score.Tuple{A: good.A, B: good.B, C: good.C, D: score.Int(good.D.V + 8)}},
		{"tampered time", score.Tuple{A: good.A, B: good.B, C: score.Int(good.C.V + 1), D: good.D}},
		{"shift out of range", score.Tuple{A: score.Int(7), B: good.B, C: good.C, D: good.D}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.SubmitTime(ctx, env.mapID, tt.tuple)
			if !errors.Is(err, ErrRejected) {
				t.Errorf("SubmitTime() error = %v, expected ErrRejected", err)
			}
		})
	}

	if _, ok, _ := env.store.BestTime(ctx, env.mapID, "ann"); ok {
		t.Error("rejected submission was stored")
	}
}

func TestSubmitTimeRequiresUser(t *testing.T) {
	env := newTestEnv(t)
	form := mustEncode(t, 4000).Values()

	resp, err := http.Post(env.server.URL+"/map/submit-time?id="+env.mapID,
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, expected %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func TestSubmitTimeUnknownMap(t *testing.T) {
	env := newTestEnv(t)
	client := NewClient(env.server.URL, "ann")

	_, err := client.SubmitTime(context.Background(), "missing", mustEncode(t, 4000))
	if !IsNotFound(err) {
		t.Errorf("SubmitTime() error = %v, expected 404", err)
	}
}

func TestLoadMapCountsPlays(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := NewClient(env.server.URL, "")

	d, err := client.LoadMap(ctx, env.mapID)
	if err != nil {
		t.Fatalf("LoadMap() failed: %v", err)
	}
	if d.Meta.Name != "First Steps" || len(d.Levels) != 1 {
		t.Errorf("LoadMap() = %+v, expected the stored map", d.Meta)
	}
	if _, err := client.LoadMap(ctx, env.mapID); err != nil {
		t.Fatal(err)
	}

	maps, err := client.Maps(ctx)
	if err != nil {
		t.Fatalf("Maps() failed: %v", err)
	}
	if len(maps) != 1 || maps[0].Plays != 2 {
		t.Errorf("Maps() = %+v, expected 2 plays", maps)
	}

	if _, err := client.LoadMap(ctx, "missing"); !IsNotFound(err) {
		t.Errorf("LoadMap(missing) error = %v, expected 404", err)
	}
}

func TestRankingsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for user, ms := range map[string]int64{"ann": 3000, "bob": 2000} {
		if _, err := env.store.SubmitTime(ctx, env.mapID, user, ms); err != nil {
			t.Fatal(err)
		}
	}

	rows, err := NewClient(env.server.URL, "ann").Rankings(ctx, env.mapID)
	if err != nil {
		t.Fatalf("Rankings() failed: %v", err)
	}
	if len(rows) != 2 || rows[0].Name != "bob" || !rows[1].Player {
		t.Errorf("Rankings() = %+v, expected bob then flagged ann", rows)
	}
}

func TestLiveRankings(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	updates := make(chan Update, 4)
	watcher := NewClient(env.server.URL, "viewer")
	done := make(chan error, 1)
	go func() {
		done <- watcher.Watch(ctx, env.mapID, func(u Update) { updates <- u })
	}()

	deadline := time.Now().Add(2 * time.Second)
	for env.feed.Subscribers(env.mapID) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("watcher never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if _, err := NewClient(env.server.URL, "ann").SubmitTime(ctx, env.mapID, mustEncode(t, 4200)); err != nil {
		t.Fatal(err)
	}

	select {
	case u := <-updates:
		if u.Map != env.mapID || len(u.Rankings) != 1 || u.Rankings[0].Time != 4200 {
			t.Errorf("update = %+v, expected ann at 4200", u)
		}
		if u.Rankings[0].Player {
			t.Error("live update carries a player flag")
		}
	case <-ctx.Done():
		t.Fatal("no live update received")
	}

	cancel()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		t.Errorf("Watch() = %v, expected cancellation", err)
	}
}

func TestLiveRequiresMapID(t *testing.T) {
	env := newTestEnv(t)
	resp, err := http.Get(env.server.URL + "/map/rankings/live?" + url.Values{}.Encode())
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, expected %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestServicePlayer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.svc.Player("cy")

	d, err := p.LoadMap(ctx, env.mapID)
	if err != nil {
		t.Fatalf("LoadMap() failed: %v", err)
	}
	if d.Meta.Name != "First Steps" {
		t.Errorf("map name = %q, expected First Steps", d.Meta.Name)
	}

	res, err := p.SubmitTime(ctx, env.mapID, mustEncode(t, 7000))
	if err != nil {
		t.Fatalf("SubmitTime() failed: %v", err)
	}
	if len(res.Rankings) != 1 || !res.Rankings[0].Player || res.Rankings[0].Name != "cy" {
		t.Errorf("rankings = %+v, expected cy flagged", res.Rankings)
	}

	maps, err := NewClient(env.server.URL, "").Maps(ctx)
	if err != nil {
		t.Fatalf("Maps() failed: %v", err)
	}
	if len(maps) != 1 || maps[0].Plays != 1 {
		t.Errorf("maps = %+v, expected one map with one play", maps)
	}
}
