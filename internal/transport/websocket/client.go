package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iamasit07/4-in-a-row/server/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096

	DefaultSendBuffer = 64
)

const ErrSendQueueFull = domain.Error("send queue full")

// Client is one live socket. Only its write pump writes to conn.
type Client struct {
	ID   string
	conn *websocket.Conn
	send chan domain.ServerMessage

	done      chan struct{}
	closeOnce sync.Once
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// writePump drains the send queue in order and keeps the socket alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				log.Printf("[WS] Write to %s failed: %v", c.ID, err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// ConnectionManager maps connection ids to clients. SendMessage never blocks:
// it is called while game locks are held.
type ConnectionManager struct {
	mu         sync.RWMutex
	clients    map[string]*Client
	bufferSize int
}

func NewConnectionManager(bufferSize int) *ConnectionManager {
	if bufferSize <= 0 {
		bufferSize = DefaultSendBuffer
	}
	return &ConnectionManager{
		clients:    make(map[string]*Client),
		bufferSize: bufferSize,
	}
}

// Register tracks conn under id and starts its write pump.
func (cm *ConnectionManager) Register(id string, conn *websocket.Conn) *Client {
	c := &Client{
		ID:   id,
		conn: conn,
		send: make(chan domain.ServerMessage, cm.bufferSize),
		done: make(chan struct{}),
	}

	cm.mu.Lock()
	if old, exists := cm.clients[id]; exists {
		old.close()
	}
	cm.clients[id] = c
	cm.mu.Unlock()

	go c.writePump()
	return c
}

func (cm *ConnectionManager) Remove(id string) {
	cm.mu.Lock()
	c, exists := cm.clients[id]
	delete(cm.clients, id)
	cm.mu.Unlock()

	if exists {
		c.close()
	}
}

// SendMessage queues message for id. Unknown ids are ignored. A client whose
// queue is full is closed; its read loop then reports the disconnect.
func (cm *ConnectionManager) SendMessage(id string, message domain.ServerMessage) error {
	cm.mu.RLock()
	c, exists := cm.clients[id]
	cm.mu.RUnlock()

	if !exists {
		return nil
	}

	select {
	case <-c.done:
		return nil
	default:
	}

	select {
	case c.send <- message:
		return nil
	default:
		log.Printf("[WS] Send queue full for %s, closing connection", id)
		c.close()
		return ErrSendQueueFull
	}
}

func (cm *ConnectionManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.clients)
}

// Close shuts every socket.
func (cm *ConnectionManager) Close() {
	cm.mu.Lock()
	clients := cm.clients
	cm.clients = make(map[string]*Client)
	cm.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}
