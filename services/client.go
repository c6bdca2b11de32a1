package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bingo-live/backend/game"
	"github.com/bingo-live/backend/utils/logger"
)

// actionTimeout bounds the handling of one inbound client action.
const actionTimeout = 10 * time.Second

// Client is one connected subscriber of a room channel.
type Client struct {
	userID   string
	roomID   string
	roomCode string
	conn     *websocket.Conn
	send     chan []byte
	handler  *WSHandler

	mu     sync.Mutex
	closed bool
	once   sync.Once
}

func (c *Client) Close() {
	c.once.Do(func() {
		// The closed flag and the channel close flip under the same lock
		// notify sends under, so a late notify cannot hit a closed channel.
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

// inboundMessage is the client->server action envelope.
type inboundMessage struct {
	Action  string `json:"action"`
	CardID  string `json:"card_id,omitempty"`
	RoundID string `json:"round_id,omitempty"`
	Pattern string `json:"pattern,omitempty"`
}

func (c *Client) readPump() {
	defer func() {
		c.handler.hub.Unsubscribe(c)
		c.handler.hub.Publish(c.roomCode, Event{
			Type: EventUserLeft,
			Data: map[string]interface{}{"user_id": c.userID},
		})
		if c.conn != nil {
			c.conn.Close()
		}
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debugf("[Client %s] disconnected", c.userID)
			} else {
				logger.Warnf("[Client %s] read error: %v", c.userID, err)
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			logger.Warnf("[Client %s] invalid message: %v", c.userID, err)
			c.notify("invalid message")
			continue
		}
		c.dispatch(&msg)
	}
}

func (c *Client) writePump() {
	defer func() {
		if c.conn != nil {
			c.conn.Close()
		}
	}()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			logger.Warnf("[Client %s] write error: %v", c.userID, err)
			return
		}
	}
}

func (c *Client) dispatch(msg *inboundMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()

	switch msg.Action {
	case "start-game":
		if _, err := c.handler.coord.StartGame(ctx, c.roomID, c.userID); err != nil {
			logger.Warnf("[Client %s] start-game: %v", c.userID, err)
			c.notify(err.Error())
		}

	case "bingo-called":
		pattern, err := game.ParsePattern(msg.Pattern)
		if err != nil {
			c.notify(err.Error())
			return
		}

		// Announce the claim before settling so the host sees it come in.
		c.handler.hub.Publish(c.roomCode, Event{
			Type: EventBingoVerification,
			Data: map[string]interface{}{
				"user_id": c.userID,
				"card_id": msg.CardID,
				"pattern": string(pattern),
			},
		})

		if _, err := c.handler.ledger.Settle(ctx, c.userID, msg.RoundID, msg.CardID, pattern); err != nil {
			logger.Warnf("[Client %s] bingo claim: %v", c.userID, err)
			c.notify(err.Error())
		}

	default:
		logger.Warnf("[Client %s] unknown action %q", c.userID, msg.Action)
	}
}

// notify sends a private message to this client only, dropped if the send
// buffer is full or the client is already closed.
func (c *Client) notify(text string) {
	payload, err := json.Marshal(Event{
		Type: EventNotification,
		Data: map[string]interface{}{"message": text},
	})
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- payload:
	default:
		logger.Warnf("[Client %s] dropping notification", c.userID)
	}
}
