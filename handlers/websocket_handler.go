package handlers

import (
	"log/slog"
	"net/http"

	"github.com/arenaops/arena-server/middleware"
	"github.com/arenaops/arena-server/realtime"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub    *realtime.Hub
	auth   *middleware.Auth
	logger *slog.Logger
}

func NewWebSocketHandler(hub *realtime.Hub, auth *middleware.Auth, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hub,
		auth:   auth,
		logger: logger,
	}
}

// Serve upgrades the connection and registers the client with the hub.
// A token query parameter is optional: anonymous clients still receive
// global events but are not subscribed to a user room.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	var userID string
	if token := r.URL.Query().Get("token"); token != "" {
		claims, err := h.auth.ParseToken(token)
		if err != nil {
			unauthorizedResponse(w, r, "invalid token")
			return
		}
		if id, ok := claims["user_id"].(string); ok {
			userID = id
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := realtime.NewClient(h.hub, conn, userID)
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
