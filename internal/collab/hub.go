package collab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/inamate/spider/internal/engine"
)

// ErrHubStopped is returned once the hub loop has exited.
var ErrHubStopped = errors.New("hub stopped")

type inbound struct {
	client *Client
	msg    *Message
}

// Hub owns the engine. Every mutation of the rig happens on the Run
// goroutine: websocket intents, HTTP requests through Do, and frame
// compilation on the ticker.
type Hub struct {
	engine   *engine.Engine
	clients  map[string]*Client // clientID -> client
	roster   *Roster
	interval time.Duration

	register   chan *Client
	unregister chan *Client
	inbox      chan inbound
	do         chan func(*engine.Engine)
	stopped    chan struct{}

	seq int64
}

func NewHub(e *engine.Engine, fps int) *Hub {
	if fps <= 0 {
		fps = 30
	}
	return &Hub{
		engine:     e,
		clients:    make(map[string]*Client),
		roster:     NewRoster(),
		interval:   time.Second / time.Duration(fps),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbox:      make(chan inbound, 64),
		do:         make(chan func(*engine.Engine)),
		stopped:    make(chan struct{}),
	}
}

// Run serves the hub until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer func() {
		ticker.Stop()
		close(h.stopped)
		for id, c := range h.clients {
			close(c.done)
			delete(h.clients, id)
		}
	}()

	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case in := <-h.inbox:
			h.handleMessage(in.client, in.msg)
		case fn := <-h.do:
			fn(h.engine)
		case <-ticker.C:
			h.broadcastFrame()
		case <-ctx.Done():
			slog.Info("hub stopped", "clients", len(h.clients))
			return
		}
	}
}

// Do runs fn on the hub goroutine and waits for it to finish.
func (h *Hub) Do(ctx context.Context, fn func(e *engine.Engine)) error {
	done := make(chan struct{})
	wrapped := func(e *engine.Engine) {
		defer close(done)
		fn(e)
	}
	select {
	case h.do <- wrapped:
	case <-ctx.Done():
		return ctx.Err()
	case <-h.stopped:
		return ErrHubStopped
	}
	<-done
	return nil
}

// Apply runs one intent on the hub goroutine.
func (h *Hub) Apply(ctx context.Context, in engine.Intent) (engine.State, error) {
	var (
		st       engine.State
		applyErr error
	)
	err := h.Do(ctx, func(e *engine.Engine) {
		applyErr = e.Apply(in)
		st = e.State()
	})
	if err != nil {
		return engine.State{}, err
	}
	return st, applyErr
}

func (h *Hub) Register(client *Client) error {
	select {
	case h.register <- client:
		return nil
	case <-h.stopped:
		return ErrHubStopped
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stopped:
	}
}

// deliver hands a client message to the hub loop. It returns false once the
// hub or the connection is gone.
func (h *Hub) deliver(ctx context.Context, c *Client, msg *Message) bool {
	select {
	case h.inbox <- inbound{client: c, msg: msg}:
		return true
	case <-ctx.Done():
		return false
	case <-h.stopped:
		return false
	}
}

func (h *Hub) addClient(client *Client) {
	h.clients[client.ClientID] = client
	h.roster.Join(client)

	if welcome, err := newMessage(TypeWelcome, WelcomePayload{
		ClientID: client.ClientID,
		Role:     client.Role,
		State:    h.engine.State(),
	}); err == nil {
		client.Send(welcome)
	}

	// Send current presence state and frame to new client
	if stateMsg, err := h.roster.StateMessage(); err == nil {
		client.Send(stateMsg)
	}
	if frame, err := h.frameData(); err == nil {
		client.SendFrame(frame)
		client.frameVersion = h.engine.Version()
	}

	// Broadcast join to other clients
	if joinMsg, err := newMessage(TypePresenceJoin, PresenceJoinPayload{
		ClientID:    client.ClientID,
		DisplayName: client.DisplayName,
		Role:        client.Role,
	}); err == nil {
		joinMsg.ClientID = client.ClientID
		h.broadcast(joinMsg, client.ClientID)
	}

	slog.Info("client joined", "client", client.ClientID, "role", client.Role, "clients", len(h.clients))
}

func (h *Hub) removeClient(client *Client) {
	if _, ok := h.clients[client.ClientID]; !ok {
		return
	}
	delete(h.clients, client.ClientID)
	close(client.done)
	h.roster.Leave(client.ClientID)

	// Broadcast leave to remaining clients
	if leaveMsg, err := newMessage(TypePresenceLeave, PresenceLeavePayload{
		ClientID: client.ClientID,
	}); err == nil {
		leaveMsg.ClientID = client.ClientID
		h.broadcast(leaveMsg, "")
	}

	slog.Info("client left", "client", client.ClientID, "clients", len(h.clients))
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	if _, ok := h.clients[sender.ClientID]; !ok {
		return
	}
	switch msg.Type {
	case TypeIntent:
		h.handleIntent(sender, msg)
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "client", sender.ClientID)
		sender.sendError(fmt.Sprintf("unknown message type %q", msg.Type))
	}
}

func (h *Hub) handleIntent(sender *Client, msg *Message) {
	if sender.Role != RoleController {
		sender.sendError("viewers cannot control the rig")
		return
	}

	var payload IntentPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		sender.sendError("invalid intent payload")
		return
	}
	if err := h.engine.Apply(payload.Intent); err != nil {
		slog.Debug("intent rejected", "client", sender.ClientID, "kind", payload.Intent.Kind, "error", err)
		sender.sendError(err.Error())
		return
	}
	slog.Debug("intent applied", "client", sender.ClientID, "kind", payload.Intent.Kind)
}

// handlePresenceUpdate takes only the pointer from the client; name and
// role come from the connection.
func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var update PresencePayload
	if err := json.Unmarshal(msg.Payload, &update); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	presence, ok := h.roster.Move(sender.ClientID, update.Pointer)
	if !ok {
		return
	}

	// Broadcast to other clients
	outMsg, err := newMessage(TypePresenceUpdate, presence)
	if err != nil {
		return
	}
	outMsg.ClientID = sender.ClientID
	h.broadcast(outMsg, sender.ClientID)
}

// frameData compiles the current frame into a sequenced, encoded message.
func (h *Hub) frameData() ([]byte, error) {
	msg, err := newMessage(TypeFrame, FramePayload{
		Version:  h.engine.Version(),
		State:    h.engine.State(),
		Commands: h.engine.Compile(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal frame: %w", err)
	}
	h.seq++
	msg.Seq = h.seq
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal frame: %w", err)
	}
	return data, nil
}

// broadcastFrame sends a frame to every client that has not seen the
// current version. The frame is compiled at most once per tick.
func (h *Hub) broadcastFrame() {
	v := h.engine.Version()
	var data []byte
	for _, c := range h.clients {
		if c.frameVersion == v {
			continue
		}
		if data == nil {
			var err error
			if data, err = h.frameData(); err != nil {
				slog.Error("compile frame", "error", err)
				return
			}
		}
		c.frameVersion = v
		c.SendFrame(data)
	}
}

func (h *Hub) broadcast(msg *Message, excludeClientID string) {
	for id, c := range h.clients {
		if id != excludeClientID {
			c.Send(msg)
		}
	}
}
