package realtime

import (
	"context"
	"stock-app/models"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

const (
	sendBuffer   = 64
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
)

// Message is one frame pushed to audit feed subscribers.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

const MessageTypeAudit = "audit.created"

// Client is a single subscriber. Send is closed by the hub when the client
// is dropped.
type Client struct {
	UserID uint
	Send   chan Message
}

func NewClient(userID uint) *Client {
	return &Client{UserID: userID, Send: make(chan Message, sendBuffer)}
}

// Hub fans committed audit rows out to every connected admin. The client
// set is owned by the Run goroutine; everything else talks to it through
// channels.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan Message
	count      chan chan int
	done       chan struct{}
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Message, 256),
		count:      make(chan chan int),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run serves the hub until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	clients := make(map[*Client]struct{})
	defer func() {
		close(h.done)
		for c := range clients {
			close(c.Send)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			clients[c] = struct{}{}
			h.log.Debug("audit feed subscriber joined", zap.Uint("user_id", c.UserID), zap.Int("clients", len(clients)))

		case c := <-h.unregister:
			if _, ok := clients[c]; ok {
				delete(clients, c)
				close(c.Send)
			}

		case msg := <-h.broadcast:
			for c := range clients {
				select {
				case c.Send <- msg:
				default:
					// slow consumer
					delete(clients, c)
					close(c.Send)
					h.log.Warn("dropping slow audit feed subscriber", zap.Uint("user_id", c.UserID))
				}
			}

		case reply := <-h.count:
			reply <- len(clients)
		}
	}
}

// Register adds a subscriber. After the hub stopped the client is closed
// straight away.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.Send)
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Clients reports the number of connected subscribers.
func (h *Hub) Clients() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

// Publish queues an audit row for broadcast. It never blocks the caller;
// when the queue is full the row is dropped from the live feed only.
func (h *Hub) Publish(entry models.AuditLog) {
	select {
	case h.broadcast <- Message{Type: MessageTypeAudit, Payload: entry}:
	default:
		h.log.Warn("audit feed queue full, event not broadcast", zap.String("id", entry.ID.String()))
	}
}

// Handler upgrades the request to a websocket subscribed to the audit
// feed. Authentication runs before the upgrade and leaves the user id in
// the "userID" local.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("userID").(uint)
		client := NewClient(userID)
		h.Register(client)

		go h.writePump(conn, client)
		h.readPump(conn, client)
	})
}

// readPump only watches for the connection going away.
func (h *Hub) readPump(conn *websocket.Conn, c *Client) {
	defer func() {
		h.Unregister(c)
		conn.Close()
	}()

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warn("audit feed connection closed", zap.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(conn *websocket.Conn, c *Client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
