package services

import (
	"encoding/json"
	"sync"

	"github.com/bingo-live/backend/utils/logger"
)

// Event types published to room channels.
const (
	EventUserJoined        = "user-joined"
	EventUserLeft          = "user-left"
	EventGameStarted       = "game-started"
	EventNewNumber         = "new-number"
	EventBingoVerification = "bingo-verification"
	EventBingoConfirmed    = "bingo-confirmed"
	EventRoundComplete     = "round-complete"
	EventGameComplete      = "game-complete"
	EventNotification      = "notification"
)

// Event is a state-change announcement fanned out to every subscriber of a
// room channel.
type Event struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data,omitempty"`
}

type publishReq struct {
	roomCode string
	payload  []byte
}

// Hub is the per-room publish/subscribe fan-out. One goroutine (Run) owns
// the subscriber registry, which gives per-channel FIFO from a single
// publisher. Delivery is at-most-once: a slow subscriber's message is
// dropped, never blocking game-state mutation. Lifecycle is explicit and
// independent of any room's lifetime.
type Hub struct {
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	publish    chan publishReq
	done       chan struct{}
	stopOnce   sync.Once
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		publish:    make(chan publishReq, 256),
		done:       make(chan struct{}),
	}
}

// Run owns the registry until Stop is called. Start it in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			subs, ok := h.rooms[c.roomCode]
			if !ok {
				subs = make(map[*Client]bool)
				h.rooms[c.roomCode] = subs
			}
			subs[c] = true

		case c := <-h.unregister:
			if subs, ok := h.rooms[c.roomCode]; ok {
				if subs[c] {
					delete(subs, c)
					c.Close()
				}
				if len(subs) == 0 {
					delete(h.rooms, c.roomCode)
				}
			}

		case req := <-h.publish:
			for c := range h.rooms[req.roomCode] {
				select {
				case c.send <- req.payload:
				default:
					logger.Warnf("[Hub %s] dropping message to user %s", req.roomCode, c.userID)
				}
			}

		case <-h.done:
			for _, subs := range h.rooms {
				for c := range subs {
					c.Close()
				}
			}
			h.rooms = make(map[string]map[*Client]bool)
			return
		}
	}
}

// Stop shuts the hub down and closes every subscriber.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Subscribe attaches a client to its room channel.
func (h *Hub) Subscribe(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unsubscribe detaches a client; safe to call more than once.
func (h *Hub) Unsubscribe(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish enqueues an event for every subscriber of the room channel. It
// never blocks the caller: the commit already happened, announcement is
// best-effort.
func (h *Hub) Publish(roomCode string, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		logger.Errorf("[Hub %s] encode event %s: %v", roomCode, ev.Type, err)
		return
	}

	select {
	case h.publish <- publishReq{roomCode: roomCode, payload: payload}:
	default:
		logger.Warnf("[Hub %s] publish queue full, dropping %s", roomCode, ev.Type)
	}
}
