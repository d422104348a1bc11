package collab

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/coder/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 16 * 1024
	sendBuffer = 64
)

// Client is one websocket connection. Control messages queue on send; frames
// coalesce in a one-slot mailbox so a slow viewer skips to the newest frame
// instead of falling behind.
type Client struct {
	hub          *Hub
	conn         *websocket.Conn
	send         chan []byte
	frame        chan []byte
	done         chan struct{} // closed by the hub when the client is dropped
	frameVersion uint64        // last engine version queued; hub goroutine only
	ClientID     string
	ControllerID string // empty for viewers
	DisplayName  string
	Role         Role
}

func NewClient(hub *Hub, conn *websocket.Conn, clientID, controllerID, displayName string) *Client {
	role := RoleViewer
	if controllerID != "" {
		role = RoleController
	}
	return &Client{
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, sendBuffer),
		frame:        make(chan []byte, 1),
		done:         make(chan struct{}),
		ClientID:     clientID,
		ControllerID: controllerID,
		DisplayName:  displayName,
		Role:         role,
	}
}

func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				slog.Debug("read error", "error", err, "client", c.ClientID)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("invalid message", "error", err, "client", c.ClientID)
			c.sendError("message is not valid JSON")
			continue
		}

		msg.ClientID = c.ClientID

		if !c.hub.deliver(ctx, c, &msg) {
			return
		}
	}
}

func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message := <-c.send:
			if c.write(ctx, message) != nil {
				return
			}

		case message := <-c.frame:
			// Anything queued before this frame goes out first.
			if !c.flush(ctx) || c.write(ctx, message) != nil {
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-c.done:
			c.flush(ctx)
			return

		case <-ctx.Done():
			return
		}
	}
}

// flush writes every queued control message. It returns false when the
// connection is done.
func (c *Client) flush(ctx context.Context) bool {
	for {
		select {
		case message := <-c.send:
			if c.write(ctx, message) != nil {
				return false
			}
		default:
			return true
		}
	}
}

func (c *Client) write(ctx context.Context, message []byte) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	if err := c.conn.Write(writeCtx, websocket.MessageText, message); err != nil {
		slog.Debug("write error", "error", err, "client", c.ClientID)
		return err
	}
	return nil
}

func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err)
		return
	}

	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- data:
	default:
		slog.Warn("client send buffer full, dropping message", "client", c.ClientID, "type", msg.Type)
	}
}

// SendFrame replaces any frame the client has not written yet. Only the hub
// goroutine calls it.
func (c *Client) SendFrame(data []byte) {
	select {
	case c.frame <- data:
		return
	default:
	}
	select {
	case <-c.frame:
	default:
	}
	select {
	case c.frame <- data:
	default:
	}
}

// sendError reports a rejected message back to its sender.
func (c *Client) sendError(text string) {
	msg, err := newMessage(TypeError, ErrorPayload{Message: text})
	if err != nil {
		return
	}
	c.Send(msg)
}
