package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/chatgames/bot"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Buffered replies per client before it is dropped.
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Dispatcher processes one inbound chat message.
type Dispatcher interface {
	OnText(ctx context.Context, userID, displayName, text string) bot.Result
}

// InboundMessage is a chat message sent by a client. Plain-text frames are
// accepted too and used as Text.
type InboundMessage struct {
	Text        string `json:"text"`
	DisplayName string `json:"display_name,omitempty"`
}

// Message is a frame pushed to clients.
type Message struct {
	Event  string `json:"event"`
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

// Client represents a WebSocket client
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	userID      string
	displayName string
	ctx         context.Context
}

// Hub maintains the set of active clients per user and delivers replies
type Hub struct {
	// Registered clients by user ID
	users map[string]map[*Client]bool

	// Outbound replies
	deliver chan bot.Reply

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	dispatcher Dispatcher
	logger     *zap.Logger
}

// NewHub creates a new WebSocket hub. Inbound messages are handed to
// dispatcher and its replies delivered back through the hub.
func NewHub(dispatcher Dispatcher, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		users:      make(map[string]map[*Client]bool),
		deliver:    make(chan bot.Reply),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Run starts the hub's event loop and blocks until ctx is done. All clients
// are disconnected on return.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case reply := <-h.deliver:
			h.deliverReply(reply)

		case <-ctx.Done():
			for _, clients := range h.users {
				for client := range clients {
					h.unregisterClient(client)
				}
			}
			return nil
		}
	}
}

// Deliver pushes replies to every connection of their target users. Replies
// for users without a connection, or to clients that cannot keep up, are
// dropped.
func (h *Hub) Deliver(replies ...bot.Reply) {
	for _, reply := range replies {
		select {
		case h.deliver <- reply:
		case <-h.done:
			return
		}
	}
}

// ServeWS upgrades the request and attaches the connection to userID.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID, displayName string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:         h,
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		userID:      userID,
		displayName: displayName,
		ctx:         context.WithoutCancel(r.Context()),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	// Start client goroutines
	go client.writePump()
	go client.readPump()
}

// registerClient adds a client to its user
func (h *Hub) registerClient(client *Client) {
	if h.users[client.userID] == nil {
		h.users[client.userID] = make(map[*Client]bool)
	}
	h.users[client.userID][client] = true

	h.logger.Debug("client registered",
		zap.String("user_id", client.userID),
		zap.Int("clients", len(h.users[client.userID])))
}

// unregisterClient removes a client from its user
func (h *Hub) unregisterClient(client *Client) {
	if clients, ok := h.users[client.userID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)

			// Clean up users without connections
			if len(clients) == 0 {
				delete(h.users, client.userID)
			}

			h.logger.Debug("client unregistered",
				zap.String("user_id", client.userID),
				zap.Int("remaining", len(clients)))
		}
	}
}

// deliverReply sends a reply to all clients of its user
func (h *Hub) deliverReply(reply bot.Reply) {
	clients, ok := h.users[reply.UserID]
	if !ok {
		return
	}

	data, err := json.Marshal(Message{Event: "reply", UserID: reply.UserID, Text: reply.Text})
	if err != nil {
		h.logger.Error("failed to marshal reply", zap.Error(err))
		return
	}

	for client := range clients {
		select {
		case client.send <- data:
		default:
			// Client's send channel is full, drop it
			h.logger.Warn("dropping slow client", zap.String("user_id", reply.UserID))
			h.unregisterClient(client)
		}
	}
}

// parseInbound decodes a frame into a chat message.
func parseInbound(data []byte) InboundMessage {
	var msg InboundMessage
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") && json.Unmarshal([]byte(trimmed), &msg) == nil {
		msg.Text = strings.TrimSpace(msg.Text)
		return msg
	}
	return InboundMessage{Text: trimmed}
}

// readPump dispatches messages from the WebSocket connection one at a time
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read error", zap.String("user_id", c.userID), zap.Error(err))
			}
			break
		}

		msg := parseInbound(data)
		if msg.Text == "" {
			continue
		}
		name := msg.DisplayName
		if name == "" {
			name = c.displayName
		}

		result := c.hub.dispatcher.OnText(c.ctx, c.userID, name, msg.Text)
		c.hub.Deliver(result.Replies...)
	}
}

// writePump pumps messages from the hub to the WebSocket connection
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
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
