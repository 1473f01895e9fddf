package ranking

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/tilejump/internal/score"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 16
)

// Update is the message pushed to live ranking subscribers.
type Update struct {
	Map      string          `json:"map"`
	Rankings []score.Ranking `json:"rankings"`
}

// Feed pushes ranking updates to websocket subscribers of a map.
type Feed struct {
	upgrader websocket.Upgrader
	log      *log.Logger

	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
}

type subscriber struct {
	ws   *websocket.Conn
	send chan []byte
	once sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.send) })
}

// NewFeed creates a feed with no subscribers.
func NewFeed(logger *log.Logger) *Feed {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Feed{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log:  logger,
		subs: make(map[string]map[*subscriber]struct{}),
	}
}

// Subscribers returns the number of live connections for mapID.
func (f *Feed) Subscribers(mapID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[mapID])
}

// Publish sends rankings to every subscriber of mapID. Subscribers whose
// buffer is full are dropped.
func (f *Feed) Publish(mapID string, rankings []score.Ranking) {
	msg, err := json.Marshal(Update{Map: mapID, Rankings: rankings})
	if err != nil {
		f.log.Error("cannot encode ranking update", "map", mapID, "err", err)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for sub := range f.subs[mapID] {
		select {
		case sub.send <- msg:
		default:
			f.log.Warn("dropping slow ranking subscriber", "map", mapID)
			delete(f.subs[mapID], sub)
			sub.close()
		}
	}
}

// Serve upgrades the request and streams updates for mapID until the
// client goes away.
func (f *Feed) Serve(w http.ResponseWriter, r *http.Request, mapID string) {
	ws, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.log.Warn("websocket upgrade failed", "err", err)
		return
	}
	sub := &subscriber{ws: ws, send: make(chan []byte, sendBuffer)}
	f.add(mapID, sub)

	go f.writePump(sub)
	f.readPump(mapID, sub)
}

func (f *Feed) add(mapID string, sub *subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subs[mapID] == nil {
		f.subs[mapID] = make(map[*subscriber]struct{})
	}
	f.subs[mapID][sub] = struct{}{}
}

func (f *Feed) remove(mapID string, sub *subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if set, ok := f.subs[mapID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(f.subs, mapID)
		}
	}
	sub.close()
}

// readPump discards client messages and unregisters on close.
func (f *Feed) readPump(mapID string, sub *subscriber) {
	defer f.remove(mapID, sub)
	for {
		if _, _, err := sub.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				f.log.Debug("ranking subscriber read error", "map", mapID, "err", err)
			}
			return
		}
	}
}

func (f *Feed) writePump(sub *subscriber) {
	defer sub.ws.Close()
	for msg := range sub.send {
		_ = sub.ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := sub.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = sub.ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = sub.ws.WriteMessage(websocket.CloseMessage, []byte{})
}
