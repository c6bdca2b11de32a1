package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/bingo-live/backend/controllers"
)

func SetupRoutes(r *gin.Engine, rooms *controllers.RoomController, games *controllers.GameController, users *controllers.UserController) {
	api := r.Group("/api")

	// ----------------------
	// User balance routes
	// ----------------------
	api.GET("/users/:id", users.GetUser)
	api.POST("/users/:id/credit", users.Credit)
	api.POST("/users/:id/debit", users.Debit)

	// ----------------------
	// Room routes
	// ----------------------
	api.POST("/rooms", rooms.CreateRoom)
	api.POST("/rooms/join", rooms.JoinRoom)
	api.GET("/rooms/:id", rooms.GetRoom)

	// ----------------------
	// Game routes
	// ----------------------
	api.POST("/rooms/:id/start", games.StartGame)
	api.POST("/rounds/:id/draw", games.DrawNumber)
	api.POST("/rounds/:id/bingo", games.ClaimBingo)
}
