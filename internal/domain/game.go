package domain

import (
	"encoding/json"
	"time"
)

type PlayerRecord struct {
	Username string `json:"username"`
	Token    Token  `json:"token"`
}

// GameRecord is what gets handed to persistence once a game is over.
// Winner is nil for a draw.
type GameRecord struct {
	RoomID     string         `json:"roomId"`
	Players    []PlayerRecord `json:"players"`
	Board      Board          `json:"board"`
	Winner     *string        `json:"winner"`
	Reason     string         `json:"reason"`
	Moves      []Move         `json:"moves"`
	CreatedAt  time.Time      `json:"createdAt"`
	EndedAt    time.Time      `json:"endedAt"`
	DurationMs int64          `json:"durationMs"`
}

type EventType string

const (
	EventGameStart EventType = "GAME_START"
	EventMove      EventType = "MOVE"
	EventGameEnd   EventType = "GAME_END"
)

// AnalyticsEvent covers all three event kinds; unused fields stay empty.
type AnalyticsEvent struct {
	Type      EventType `json:"type"`
	RoomID    string    `json:"roomId"`
	Players   []string  `json:"players,omitempty"`
	By        string    `json:"by,omitempty"`
	Column    *int      `json:"column,omitempty"`
	Winner    *string   `json:"winner,omitempty"`
	MoveCount int       `json:"moveCount,omitempty"`
	Timestamp int64     `json:"ts"`
}

// MarshalJSON always writes winner and moveCount for GAME_END.
func (e AnalyticsEvent) MarshalJSON() ([]byte, error) {
	type plain AnalyticsEvent
	if e.Type != EventGameEnd {
		return json.Marshal(plain(e))
	}
	return json.Marshal(struct {
		plain
		Winner    *string `json:"winner"`
		MoveCount int     `json:"moveCount"`
	}{plain(e), e.Winner, e.MoveCount})
}

type LeaderboardEntry struct {
	Username string `json:"username"`
	Wins     int    `json:"wins"`
}
