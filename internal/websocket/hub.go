package chatws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"

	"github.com/danielagrograos-wq/senior/internal/models"
	"github.com/danielagrograos-wq/senior/internal/services"
	websocket "github.com/gofiber/contrib/websocket"
)

// Hub keeps every open socket grouped by user so chat messages and realtime
// notifications can be pushed to all of a user's devices at once.
type Hub struct {
	clients    map[int64]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	outbound   chan envelope
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID int64
	send   chan []byte
}

type envelope struct {
	userID  int64
	payload []byte
}

type sender interface {
	SendMessage(ctx context.Context, actorID int64, input services.SendMessageInput) (*models.ChatMessage, error)
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan envelope, 64),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID int64) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, 32),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.userID] = set
			}
			set[client] = struct{}{}
		case client := <-h.unregister:
			set, ok := h.clients[client.userID]
			if !ok {
				continue
			}
			if _, exists := set[client]; exists {
				delete(set, client)
				close(client.send)
			}
			if len(set) == 0 {
				delete(h.clients, client.userID)
			}
		case message := <-h.outbound:
			h.deliver(message.userID, message.payload)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// SendToUser satisfies the services.RealtimeSender interface. Delivery is
// best-effort: with no open socket the payload is simply dropped, the
// persisted notification is the durable copy.
func (h *Hub) SendToUser(userID int64, payload any) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ws hub encode payload for user %d: %v", userID, err)
		return
	}
	select {
	case h.outbound <- envelope{userID: userID, payload: encoded}:
	default:
		log.Printf("ws hub outbound queue full, dropping payload for user %d", userID)
	}
}

func (h *Hub) deliver(userID int64, payload []byte) {
	set, ok := h.clients[userID]
	if !ok {
		return
	}

	for client := range set {
		select {
		case client.send <- payload:
		default:
			delete(set, client)
			close(client.send)
		}
	}
	if len(set) == 0 {
		delete(h.clients, userID)
	}
}

// ReadPump consumes chat messages from the socket until it closes. Each
// inbound frame goes through the chat service so contact-info blocking and
// persistence apply to websocket traffic exactly like REST traffic.
func (c *Client) ReadPump(service sender) {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var incoming struct {
			Type        string `json:"type"`
			RoomID      string `json:"room_id"`
			Message     string `json:"message"`
			MessageType string `json:"message_type"`
		}
		if err := json.Unmarshal(payload, &incoming); err != nil {
			c.writeError("invalid message payload")
			continue
		}
		if incoming.Type != "message" {
			c.writeError("unsupported message type")
			continue
		}

		roomID, err := strconv.ParseInt(incoming.RoomID, 10, 64)
		if err != nil || roomID <= 0 {
			c.writeError("invalid room id")
			continue
		}

		message, err := service.SendMessage(context.Background(), c.userID, services.SendMessageInput{
			RoomID:      roomID,
			Message:     incoming.Message,
			MessageType: incoming.MessageType,
		})
		if err != nil {
			if errors.Is(err, services.ErrContactInfoBlocked) {
				c.writeError("message blocked: remove contact information")
			} else {
				c.writeError("failed to send message")
			}
			continue
		}

		// Echo back to the sender's own devices; the recipient already got
		// the message through the service's realtime push.
		c.hub.SendToUser(c.userID, message)
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

func (c *Client) writeError(message string) {
	payload, err := json.Marshal(map[string]string{"type": "error", "error": message})
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
		c.hub.Unregister(c)
	}
}
