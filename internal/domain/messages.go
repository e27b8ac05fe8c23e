package domain

import "encoding/json"

// inbound message types
const (
	MsgJoin   = "join"
	MsgMove   = "move"
	MsgRejoin = "rejoin"
)

// outbound message types
const (
	MsgWaiting     = "waiting"
	MsgStart       = "start"
	MsgUpdate      = "update"
	MsgEnd         = "end"
	MsgInvalidMove = "invalid-move"
	MsgError       = "error"
	MsgRejoinOK    = "rejoin-ok"
	MsgInfo        = "info"
)

type ClientMessage struct {
	Type     string `json:"type"`
	Username string `json:"username,omitempty"`
	RoomID   string `json:"roomId,omitempty"`
	Column   *int   `json:"column,omitempty"`
	Player   string `json:"player,omitempty"`
}

type ServerMessage struct {
	Type    string   `json:"type"`
	Message string   `json:"message,omitempty"`
	RoomID  string   `json:"roomId,omitempty"`
	Board   *Board   `json:"board,omitempty"`
	Players []string `json:"players,omitempty"`
	Token   Token    `json:"token,omitempty"`
	Winner  *string  `json:"winner,omitempty"`
	Draw    bool     `json:"draw,omitempty"`
	Reason  string   `json:"reason,omitempty"`
}

// MarshalJSON keeps winner and draw on end messages even when the game was
// drawn or forfeited, so clients can read winner:null.
func (m ServerMessage) MarshalJSON() ([]byte, error) {
	type plain ServerMessage
	if m.Type != MsgEnd {
		return json.Marshal(plain(m))
	}
	return json.Marshal(struct {
		plain
		Winner *string `json:"winner"`
		Draw   bool    `json:"draw"`
	}{plain(m), m.Winner, m.Draw})
}
