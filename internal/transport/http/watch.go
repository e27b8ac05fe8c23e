package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/4-in-a-row/server/internal/service/game"
)

// LiveView is the read side of the game registry.
type LiveView interface {
	LiveGames() []game.Snapshot
	Stats() game.Stats
}

type WatchHandler struct {
	Live LiveView
}

func NewWatchHandler(live LiveView) *WatchHandler {
	return &WatchHandler{Live: live}
}

type liveGameResponse struct {
	RoomID    string   `json:"roomId"`
	Players   []string `json:"players"`
	Turn      string   `json:"turn"`
	MoveCount int      `json:"moveCount"`
	StartedAt string   `json:"startedAt"`
}

// GetLiveGames lists games in progress.
func (h *WatchHandler) GetLiveGames(c *gin.Context) {
	games := h.Live.LiveGames()

	response := make([]liveGameResponse, 0, len(games))
	for _, g := range games {
		response = append(response, liveGameResponse{
			RoomID:    g.ID,
			Players:   []string{g.Players[0].Username, g.Players[1].Username},
			Turn:      g.Players[g.Turn].Username,
			MoveCount: len(g.Moves),
			StartedAt: g.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, response)
}

// GetStats reports queue and session counts.
func (h *WatchHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.Live.Stats())
}
