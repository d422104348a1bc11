package collab

import (
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/inamate/spider/internal/auth"
	"github.com/inamate/spider/internal/typeid"
)

type TokenValidator interface {
	ValidateToken(token string) (*auth.Controller, error)
}

// ServeWS upgrades viewers and controllers. A valid token makes the
// connection a controller; without one it is an anonymous viewer.
func ServeWS(hub *Hub, tokens TokenValidator, originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var controllerID string
		displayName := "viewer-" + uuid.New().String()[:8]

		if token, ok := auth.RequestToken(r); ok {
			c, err := tokens.ValidateToken(token)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			controllerID = c.ID
			displayName = c.Name
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			slog.Error("websocket accept", "error", err)
			return
		}

		client := NewClient(hub, conn, typeid.Client.New(), controllerID, displayName)
		if err := hub.Register(client); err != nil {
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		}

		ctx := r.Context()
		go client.WritePump(ctx)
		client.ReadPump(ctx)
	}
}
