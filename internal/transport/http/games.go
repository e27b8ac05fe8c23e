package http

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/4-in-a-row/server/internal/domain"
)

const maxLeaderboardLimit = 100

// GameStore is the read side of game persistence.
type GameStore interface {
	Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	GetGame(ctx context.Context, roomID string) (*domain.GameRecord, error)
}

type GamesHandler struct {
	Store        GameStore // nil when persistence is off
	DefaultLimit int
}

func NewGamesHandler(store GameStore, defaultLimit int) *GamesHandler {
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	return &GamesHandler{Store: store, DefaultLimit: defaultLimit}
}

// Leaderboard returns wins per username. ?limit= overrides the default.
func (h *GamesHandler) Leaderboard(c *gin.Context) {
	if h.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence disabled"})
		return
	}

	limit := h.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxLeaderboardLimit)
	}

	entries, err := h.Store.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		log.Printf("[HTTP] Leaderboard query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leaderboard"})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// GetGame returns a finished game by room id.
func (h *GamesHandler) GetGame(c *gin.Context) {
	if h.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence disabled"})
		return
	}

	record, err := h.Store.GetGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		log.Printf("[HTTP] Game lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch game"})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrSessionNotFound.Error()})
		return
	}

	c.JSON(http.StatusOK, record)
}
