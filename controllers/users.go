package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bingo-live/backend/models"
	"github.com/bingo-live/backend/services"
)

// UserController exposes the narrow balance operations the engine consumes
// from the account subsystem. Account creation and passwords live upstream.
type UserController struct {
	users services.UserStore
}

func NewUserController(users services.UserStore) *UserController {
	return &UserController{users: users}
}

func (ctl *UserController) GetUser(c *gin.Context) {
	user, err := ctl.users.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type balanceRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

func (ctl *UserController) Credit(c *gin.Context) {
	var req balanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ctl.users.CreditBalance(c.Request.Context(), c.Param("id"), req.Amount, models.TransactionCredit, nil)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (ctl *UserController) Debit(c *gin.Context) {
	var req balanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ctl.users.DebitBalance(c.Request.Context(), c.Param("id"), req.Amount, models.TransactionDebit, nil)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
