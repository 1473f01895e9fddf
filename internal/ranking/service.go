// Package ranking validates submitted run times and serves map rankings.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tilejump/internal/level"
	"github.com/vovakirdan/tilejump/internal/score"
	"github.com/vovakirdan/tilejump/internal/storage"
)

// DefaultLimit is the ranking length when none is configured.
const DefaultLimit = 10

// ErrRejected matches every *RejectedError.
var ErrRejected = errors.New("ranking: submission rejected")

// RejectedError is returned for a tuple that does not decode.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return "ranking: submission rejected: " + e.Reason
}

// Is lets errors.Is match ErrRejected.
func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

// Publisher receives the rankings of a map after an accepted submission.
type Publisher interface {
	Publish(mapID string, rankings []score.Ranking)
}

// Service is the ranking logic on top of a store.
type Service struct {
	store storage.Store
	limit int
	pub   Publisher
	log   *log.Logger
}

// Options configures a Service.
type Options struct {
	Limit     int
	Publisher Publisher
	Logger    *log.Logger
}

// NewService creates a service over store.
func NewService(store storage.Store, opts Options) *Service {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Service{store: store, limit: opts.Limit, pub: opts.Publisher, log: opts.Logger}
}

// Submit decodes t and records it as user's time on mapID when it beats
// the stored best. The result carries the decoded time and the rankings
// with user flagged.
func (s *Service) Submit(ctx context.Context, user, mapID string, t score.Tuple) (score.Result, error) {
	ms, reason := score.Check(t)
	if reason != "" {
		s.log.Warn("rejected submission", "map", mapID, "user", user, "reason", reason)
		return score.Result{}, &RejectedError{Reason: reason}
	}

	if _, err := s.store.Map(ctx, mapID); err != nil {
		return score.Result{}, err
	}

	improved, err := s.store.SubmitTime(ctx, mapID, user, ms)
	if err != nil {
		return score.Result{}, err
	}
	s.log.Info("accepted submission", "map", mapID, "user", user, "time", ms, "improved", improved)

	rankings, err := s.Rankings(ctx, mapID, user)
	if err != nil {
		return score.Result{}, err
	}
	if improved && s.pub != nil {
		// Subscribers get the board without a player flag.
		s.pub.Publish(mapID, unflag(rankings))
	}
	return score.Result{Rankings: rankings, Time: ms}, nil
}

// Rankings returns the leaderboard of mapID. Rows of user are flagged.
func (s *Service) Rankings(ctx context.Context, mapID, user string) ([]score.Ranking, error) {
	rows, err := s.store.Rankings(ctx, mapID, s.limit)
	if err != nil {
		return nil, err
	}
	out := make([]score.Ranking, len(rows))
	for i, r := range rows {
		out[i] = score.Ranking{Name: r.User, Time: r.Time, Player: user != "" && r.User == user}
	}
	return out, nil
}

// Map returns mapID and counts a play.
func (s *Service) Map(ctx context.Context, mapID string) (level.Data, error) {
	d, err := s.store.Map(ctx, mapID)
	if err != nil {
		return level.Data{}, err
	}
	if err := s.store.IncrementPlays(ctx, mapID); err != nil {
		return level.Data{}, fmt.Errorf("ranking: count play: %w", err)
	}
	return d, nil
}

// Maps lists the stored maps.
func (s *Service) Maps(ctx context.Context) ([]storage.MapInfo, error) {
	return s.store.ListMaps(ctx)
}

// Summaries lists the stored maps in their wire form.
func (s *Service) Summaries(ctx context.Context) ([]MapSummary, error) {
	maps, err := s.store.ListMaps(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]MapSummary, len(maps))
	for i, m := range maps {
		out[i] = MapSummary{ID: m.ID, Name: m.Name, Author: m.Author, Difficulty: m.Difficulty, Levels: m.Levels, Plays: m.Plays}
	}
	return out, nil
}

// Player binds the service to one user so an in-process game session can
// load maps and submit times without going through HTTP.
type Player struct {
	svc  *Service
	user string
}

// Player returns the service bound to user.
func (s *Service) Player(user string) *Player {
	return &Player{svc: s, user: user}
}

// LoadMap implements game.MapLoader.
func (p *Player) LoadMap(ctx context.Context, id string) (level.Data, error) {
	return p.svc.Map(ctx, id)
}

// SubmitTime implements game.Submitter.
func (p *Player) SubmitTime(ctx context.Context, mapID string, t score.Tuple) (score.Result, error) {
	return p.svc.Submit(ctx, p.user, mapID, t)
}

func unflag(rows []score.Ranking) []score.Ranking {
	out := make([]score.Ranking, len(rows))
	for i, r := range rows {
		r.Player = false
		out[i] = r
	}
	return out
}
