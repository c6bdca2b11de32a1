package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bingo-live/backend/apperr"
	"github.com/bingo-live/backend/game"
	"github.com/bingo-live/backend/services"
)

type GameController struct {
	coord  *services.RoundCoordinator
	ledger *services.PrizeLedger
}

func NewGameController(coord *services.RoundCoordinator, ledger *services.PrizeLedger) *GameController {
	return &GameController{coord: coord, ledger: ledger}
}

// StartGame opens round 1 of the caller's room. Host only.
func (ctl *GameController) StartGame(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	round, err := ctl.coord.StartGame(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"round": round})
}

// DrawNumber draws the next number of a round on behalf of the host. The
// server-owned loop normally drives draws; this endpoint lets the host pace
// them manually. Exhaustion is reported, not treated as a failure.
func (ctl *GameController) DrawNumber(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	number, seq, err := ctl.coord.DrawNumber(c.Request.Context(), c.Param("id"), userID)
	if errors.Is(err, apperr.ErrDrawExhausted) {
		c.JSON(http.StatusOK, gin.H{"exhausted": true})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"number": number, "drawn_numbers": seq})
}

type bingoClaimRequest struct {
	CardID  string `json:"card_id" binding:"required"`
	Pattern string `json:"pattern" binding:"required"`
}

// ClaimBingo settles a bingo claim against the authoritative drawn
// sequence.
func (ctl *GameController) ClaimBingo(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req bingoClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pattern, err := game.ParsePattern(req.Pattern)
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := ctl.ledger.Settle(c.Request.Context(), userID, c.Param("id"), req.CardID, pattern)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
