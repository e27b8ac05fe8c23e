package websocket

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iamasit07/4-in-a-row/server/internal/domain"
	"github.com/iamasit07/4-in-a-row/server/pkg/uid"
)

// GameService is the part of the game registry the socket layer drives.
type GameService interface {
	Join(connID, username string) error
	Rejoin(connID, username, roomID string) error
	SubmitMove(connID, roomID string, column int, playerRef string) error
	Disconnect(connID string)
}

type Handler struct {
	conns    *ConnectionManager
	games    GameService
	upgrader websocket.Upgrader
}

// NewHandler accepts sockets from allowedOrigins. An empty list allows any origin.
func NewHandler(cm *ConnectionManager, games GameService, allowedOrigins []string) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &Handler{
		conns: cm,
		games: games,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(allowed) == 0 || allowed[origin] {
					return true
				}
				log.Printf("[WS] Rejected origin %q", origin)
				return false
			},
		},
	}
}

// HandleWebSocket upgrades the request and serves the socket until it closes.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	connID := uid.NewConnectionID()
	h.conns.Register(connID, conn)
	log.Printf("[WS] Connection %s opened from %s", connID, r.RemoteAddr)

	defer func() {
		h.games.Disconnect(connID)
		h.conns.Remove(connID)
		log.Printf("[WS] Connection %s closed", connID)
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Connection %s dropped: %v", connID, err)
			}
			return
		}

		var msg domain.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[WS] Invalid message format from %s: %v", connID, err)
			h.reply(connID, domain.MsgError, "invalid message")
			continue
		}

		h.route(connID, msg)
	}
}

func (h *Handler) route(connID string, msg domain.ClientMessage) {
	var err error

	switch msg.Type {
	case domain.MsgJoin:
		err = h.games.Join(connID, msg.Username)
	case domain.MsgMove:
		if msg.Column == nil {
			h.reply(connID, domain.MsgInvalidMove, "column is required")
			return
		}
		err = h.games.SubmitMove(connID, msg.RoomID, *msg.Column, msg.Player)
	case domain.MsgRejoin:
		err = h.games.Rejoin(connID, msg.Username, msg.RoomID)
	default:
		h.reply(connID, domain.MsgError, "unknown message type: "+msg.Type)
		return
	}

	if err == nil {
		return
	}

	if errors.Is(err, domain.ErrInvalidMove) {
		h.reply(connID, domain.MsgInvalidMove, err.Error())
		return
	}
	h.reply(connID, domain.MsgError, err.Error())
}

func (h *Handler) reply(connID, msgType, text string) {
	_ = h.conns.SendMessage(connID, domain.ServerMessage{Type: msgType, Message: text})
}
