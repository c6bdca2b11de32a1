package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bingo-live/backend/services"
)

type RoomController struct {
	registry *services.RoomRegistry
}

func NewRoomController(registry *services.RoomRegistry) *RoomController {
	return &RoomController{registry: registry}
}

type createRoomRequest struct {
	Name       string  `json:"name" binding:"required"`
	EntryFee   float64 `json:"entry_fee"`
	RoundCount int     `json:"round_count" binding:"required"`
}

// CreateRoom creates a room hosted by the caller.
func (ctl *RoomController) CreateRoom(c *gin.Context) {
	hostID, ok := callerID(c)
	if !ok {
		return
	}

	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := ctl.registry.CreateRoom(c.Request.Context(), hostID, req.Name, req.EntryFee, req.RoundCount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

type joinRoomRequest struct {
	Code string `json:"code" binding:"required"`
}

// JoinRoom seats the caller in a waiting room by join code.
func (ctl *RoomController) JoinRoom(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req joinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, participant, err := ctl.registry.JoinRoom(c.Request.Context(), userID, req.Code)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room, "participant": participant})
}

// GetRoom returns the authoritative snapshot clients reconcile against.
func (ctl *RoomController) GetRoom(c *gin.Context) {
	snap, err := ctl.registry.Snapshot(c.Request.Context(), c.Param("id"), c.GetHeader("X-User-ID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}
