package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/4-in-a-row/server/internal/transport/http/middleware"
)

type RouterConfig struct {
	Games            GameStore // optional
	Live             LiveView
	WebSocket        http.HandlerFunc
	AllowedOrigins   []string
	LeaderboardLimit int
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/ws", gin.WrapF(cfg.WebSocket))

	gamesHandler := NewGamesHandler(cfg.Games, cfg.LeaderboardLimit)
	watchHandler := NewWatchHandler(cfg.Live)

	api := router.Group("/api")
	{
		api.GET("/leaderboard", gamesHandler.Leaderboard)
		api.GET("/games/:id", gamesHandler.GetGame)
		api.GET("/live", watchHandler.GetLiveGames)
		api.GET("/stats", watchHandler.GetStats)
	}

	return router
}
