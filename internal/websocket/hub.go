// Package websocket streams interaction state to connected status UIs and
// accepts start/stop commands from them.
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/chaitudev/lyra/domain/entities"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Commands are tiny.
	maxMessageSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The status UI is served from the same process.
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Controller receives start/stop commands from connected UIs. The
// assistant service implements it.
type Controller interface {
	StartListening(ctx context.Context)
	StopListening()
}

// Hub maintains the set of active clients and broadcasts state updates
// to them.
type Hub struct {
	// Registered clients.
	clients map[string]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex

	controller Controller
	snapshot   func() entities.InteractionState

	logger *zap.Logger
}

// NewHub creates a status hub. snapshot supplies the state sent to a
// client right after it connects.
func NewHub(controller Controller, snapshot func() entities.InteractionState, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		controller: controller,
		snapshot:   snapshot,
		logger:     logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()
			h.logger.Info("status client registered", zap.String("clientID", client.id))

			if h.snapshot != nil {
				client.sendState(h.snapshot())
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Info("status client unregistered", zap.String("clientID", client.id))
		}
	}
}

// Broadcast sends a state update to every connected client. Clients that
// cannot keep up are skipped rather than blocked on.
func (h *Hub) Broadcast(state entities.InteractionState) {
	payload, err := json.Marshal(CreateStateUpdate(state))
	if err != nil {
		h.logger.Error("failed to encode state update", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.send <- payload:
		default:
			h.logger.Warn("dropping state update for slow client",
				zap.String("clientID", client.id))
		}
	}
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan []byte

	id     string
	logger *zap.Logger
}

func (c *Client) sendState(state entities.InteractionState) {
	payload, err := json.Marshal(CreateStateUpdate(state))
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

// HandleWebSocket handles websocket requests from the peer.
func HandleWebSocket(hub *Hub, c echo.Context, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	client := &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		id:     uuid.New().String(),
		logger: logger,
	}

	client.hub.register <- client

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	return nil
}

// readPump pumps command messages from the websocket connection to the
// assistant controller.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}
		c.processCommand(message)
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// processCommand handles an inbound UI command.
func (c *Client) processCommand(message []byte) {
	cmd, err := ParseCommand(message)
	if err != nil {
		c.logger.Warn("rejected command", zap.Error(err))
		if payload, err := json.Marshal(CreateErrorMessage("invalid_command", err.Error())); err == nil {
			select {
			case c.send <- payload:
			default:
			}
		}
		return
	}

	c.logger.Info("command received",
		zap.String("clientID", c.id),
		zap.String("action", cmd.Action))

	switch cmd.Action {
	case CommandStart:
		c.hub.controller.StartListening(context.Background())
	case CommandStop:
		c.hub.controller.StopListening()
	}
}
