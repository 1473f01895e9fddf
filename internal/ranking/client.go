package ranking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vovakirdan/tilejump/internal/level"
	"github.com/vovakirdan/tilejump/internal/score"
)

// StatusError is a non-success reply from the ranking server.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ranking: server replied %d: %s", e.Code, e.Message)
}

// Is maps a 422 reply to ErrRejected.
func (e *StatusError) Is(target error) bool {
	return target == ErrRejected && e.Code == http.StatusUnprocessableEntity
}

// Client talks to a ranking server. It loads maps and submits times for a
// game session.
type Client struct {
	base string
	user string
	http *http.Client
}

// NewClient creates a client for the server at baseURL submitting as user.
func NewClient(baseURL, user string) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		user: user,
		http: &http.Client{Timeout: 5 * time.Second},
	}
}

// LoadMap fetches map id.
func (c *Client) LoadMap(ctx context.Context, id string) (level.Data, error) {
	var d level.Data
	err := c.do(ctx, http.MethodGet, "/map/get", url.Values{"id": {id}}, nil, &d)
	return d, err
}

// SubmitTime posts an encoded run time for mapID.
func (c *Client) SubmitTime(ctx context.Context, mapID string, t score.Tuple) (score.Result, error) {
	var res score.Result
	err := c.do(ctx, http.MethodPost, "/map/submit-time", url.Values{"id": {mapID}}, t.Values(), &res)
	return res, err
}

// Rankings fetches the leaderboard of mapID.
func (c *Client) Rankings(ctx context.Context, mapID string) ([]score.Ranking, error) {
	var res score.Result
	if err := c.do(ctx, http.MethodGet, "/map/rankings", url.Values{"id": {mapID}}, nil, &res); err != nil {
		return nil, err
	}
	return res.Rankings, nil
}

// Maps lists the maps stored on the server.
func (c *Client) Maps(ctx context.Context) ([]MapSummary, error) {
	var out []MapSummary
	err := c.do(ctx, http.MethodGet, "/map/list", nil, nil, &out)
	return out, err
}

// Watch streams live ranking updates of mapID until ctx ends or the
// connection drops.
func (c *Client) Watch(ctx context.Context, mapID string, fn func(Update)) error {
	u, err := url.Parse(c.base + "/map/rankings/live")
	if err != nil {
		return fmt.Errorf("ranking: bad server url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.RawQuery = url.Values{"id": {mapID}}.Encode()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("ranking: dial live feed: %w", err)
	}
	defer ws.Close()

	go func() {
		<-ctx.Done()
		ws.Close()
	}()

	for {
		var upd Update
		if err := ws.ReadJSON(&upd); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("ranking: live feed: %w", err)
		}
		fn(upd)
	}
}

func (c *Client) do(ctx context.Context, method, path string, query, form url.Values, out any) error {
	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("ranking: build request: %w", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if c.user != "" {
		req.Header.Set(UserHeader, c.user)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ranking: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &StatusError{Code: resp.StatusCode, Message: e.Error}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ranking: decode %s reply: %w", path, err)
	}
	return nil
}

// IsNotFound reports whether err is a 404 reply.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}
