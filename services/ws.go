package services

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/bingo-live/backend/utils/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades connections onto room channels and dispatches inbound
// game actions.
type WSHandler struct {
	hub    *Hub
	rooms  RoomStore
	users  UserStore
	coord  *RoundCoordinator
	ledger *PrizeLedger
}

func NewWSHandler(hub *Hub, rooms RoomStore, users UserStore, coord *RoundCoordinator, ledger *PrizeLedger) *WSHandler {
	return &WSHandler{hub: hub, rooms: rooms, users: users, coord: coord, ledger: ledger}
}

// Handle joins the caller to the room channel named by the :code route
// param. The caller identifies itself with the user_id query param; account
// authentication happens upstream.
func (h *WSHandler) Handle(c *gin.Context) {
	code := c.Param("code")
	room, err := h.rooms.GetRoomByCode(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user_id"})
		return
	}
	if _, err := h.users.GetUser(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warnf("[WS] upgrade failed: %v", err)
		return
	}

	client := &Client{
		userID:   userID,
		roomID:   room.ID,
		roomCode: room.Code,
		conn:     conn,
		send:     make(chan []byte, 32),
		handler:  h,
	}

	h.hub.Subscribe(client)
	h.hub.Publish(room.Code, Event{
		Type: EventUserJoined,
		Data: map[string]interface{}{"user_id": userID},
	})
	logger.Infof("[WS] user %s connected to room %s", userID, room.Code)

	go client.writePump()
	go client.readPump()
}
