package ranking

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tilejump/internal/score"
	"github.com/vovakirdan/tilejump/internal/storage"
)

// UserHeader carries the name of the submitting player.
const UserHeader = "X-Tilejump-User"

const maxRequestBody = 1 << 16 // 64 KB

// MapSummary is one entry of GET /map/list.
type MapSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Author     string `json:"author"`
	Difficulty int    `json:"difficulty"`
	Levels     int    `json:"levels"`
	Plays      int    `json:"plays"`
}

// Server exposes a Service over HTTP.
type Server struct {
	svc  *Service
	feed *Feed
	log  *log.Logger
	mux  *http.ServeMux
}

// NewServer routes the ranking API. feed may be nil to disable the live
// endpoint.
func NewServer(svc *Service, feed *Feed, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{svc: svc, feed: feed, log: logger, mux: http.NewServeMux()}
	s.mux.HandleFunc("POST /map/submit-time", s.submitTime)
	s.mux.HandleFunc("GET /map/get", s.getMap)
	s.mux.HandleFunc("GET /map/list", s.listMaps)
	s.mux.HandleFunc("GET /map/rankings", s.rankings)
	if feed != nil {
		s.mux.HandleFunc("GET /map/rankings/live", s.live)
	}
	s.mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Starting ranking server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log.Info("Stopping ranking server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) submitTime(w http.ResponseWriter, r *http.Request) {
	mapID := r.URL.Query().Get("id")
	if mapID == "" {
		writeError(w, http.StatusBadRequest, "id required")
		return
	}
	user := r.Header.Get(UserHeader)
	if user == "" {
		writeError(w, http.StatusUnauthorized, "user required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	res, err := s.svc.Submit(r.Context(), user, mapID, score.ParseValues(r.PostForm))
	switch {
	case errors.Is(err, ErrRejected):
		writeError(w, http.StatusUnprocessableEntity, "rejected")
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "map not found")
	case err != nil:
		s.log.Error("submission failed", "map", mapID, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) getMap(w http.ResponseWriter, r *http.Request) {
	mapID := r.URL.Query().Get("id")
	d, err := s.svc.Map(r.Context(), mapID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "map not found")
	case err != nil:
		s.log.Error("map lookup failed", "map", mapID, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		writeJSON(w, http.StatusOK, d)
	}
}

func (s *Server) listMaps(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.Summaries(r.Context())
	if err != nil {
		s.log.Error("map listing failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) rankings(w http.ResponseWriter, r *http.Request) {
	mapID := r.URL.Query().Get("id")
	rows, err := s.svc.Rankings(r.Context(), mapID, r.Header.Get(UserHeader))
	if err != nil {
		s.log.Error("rankings lookup failed", "map", mapID, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, score.Result{Rankings: rows})
}

func (s *Server) live(w http.ResponseWriter, r *http.Request) {
	mapID := r.URL.Query().Get("id")
	if mapID == "" {
		writeError(w, http.StatusBadRequest, "id required")
		return
	}
	s.feed.Serve(w, r, mapID)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
