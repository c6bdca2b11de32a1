package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/bingo-live/backend/config"
	"github.com/bingo-live/backend/controllers"
	"github.com/bingo-live/backend/repository"
	"github.com/bingo-live/backend/routes"
	"github.com/bingo-live/backend/services"
	"github.com/bingo-live/backend/utils/logger"
)

func main() {
	cfg := config.Load()
	db := config.SetupDatabase(cfg.DatabaseURL)

	userRepo := repository.NewUserRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	roundRepo := repository.NewRoundRepository(db)
	cardRepo := repository.NewCardRepository(db)

	hub := services.NewHub()
	go hub.Run()
	defer hub.Stop()

	coordinator := services.NewRoundCoordinator(roomRepo, roundRepo, cardRepo, hub, cfg.DrawInterval)
	defer coordinator.Shutdown()
	ledger := services.NewPrizeLedger(roomRepo, roundRepo, cardRepo, coordinator, hub)
	registry := services.NewRoomRegistry(userRepo, roomRepo, roundRepo, cardRepo)
	wsHandler := services.NewWSHandler(hub, roomRepo, userRepo, coordinator, ledger)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r,
		controllers.NewRoomController(registry),
		controllers.NewGameController(coordinator, ledger),
		controllers.NewUserController(userRepo),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now()})
	})

	// WebSocket room channel endpoint
	r.GET("/ws/:code", wsHandler.Handle)

	logger.Infof("Bingo backend listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Errorf("server stopped: %v", err)
	}
}
