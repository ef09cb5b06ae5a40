package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Room names. Every client joins GlobalRoom on connect; authenticated clients
// also join their user room so targeted events reach them without polling.
const GlobalRoom = "global"

func TournamentRoom(tournamentID string) string {
	return "tournament:" + tournamentID
}

func UserRoom(userID string) string {
	return "user:" + userID
}

// Envelope is the wire format in both directions.
type Envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Outbound event types.
const (
	EventTournamentStatus  = "tournament_status"
	EventParticipantJoined = "participant_joined"
	EventPaymentReviewed   = "payment_reviewed"
	EventNotification      = "notification"
	EventMatchResult       = "match_result"
)

// Inbound message types handled by the hub; everything else is logged and dropped.
const (
	msgJoinRoom  = "join_room"
	msgLeaveRoom = "leave_room"
)

// Hub maintains the subscription registry: room id -> set of clients.
// Events are routed only to the members of the addressed room.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	mu     sync.RWMutex
	rooms  map[string]map[*Client]bool
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			for room := range client.rooms {
				h.addToRoom(room, client)
			}
			h.mu.Unlock()
			h.logger.Debug("client registered", slog.String("user_id", client.UserID))

		case client := <-h.Unregister:
			h.mu.Lock()
			for room := range client.rooms {
				h.removeFromRoom(room, client)
			}
			client.closeSend()
			h.mu.Unlock()
			h.logger.Debug("client unregistered", slog.String("user_id", client.UserID))
		}
	}
}

// addToRoom and removeFromRoom require h.mu to be held.
func (h *Hub) addToRoom(room string, client *Client) {
	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][client] = true
}

func (h *Hub) removeFromRoom(room string, client *Client) {
	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Subscribe adds the client to a room; used by the inbound join_room dispatch.
func (h *Hub) Subscribe(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	client.rooms[room] = true
	h.addToRoom(room, client)
}

func (h *Hub) Unsubscribe(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(client.rooms, room)
	h.removeFromRoom(room, client)
}

// BroadcastToRoom delivers the envelope to every open connection in the room.
// Delivery is best effort: disconnected clients are skipped, nothing is queued.
func (h *Hub) BroadcastToRoom(room string, envelope Envelope) {
	message, err := json.Marshal(envelope)
	if err != nil {
		h.logger.Error("failed to marshal broadcast envelope",
			slog.String("room", room), slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[room] {
		client.trySend(message)
	}
}

// BroadcastAll sends the envelope to the global room.
func (h *Hub) BroadcastAll(envelope Envelope) {
	h.BroadcastToRoom(GlobalRoom, envelope)
}

// RoomSize reports the current member count of a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// dispatch handles one inbound client message.
func (h *Hub) dispatch(client *Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.logger.Warn("dropping malformed client message", slog.Any("error", err))
		return
	}

	switch env.Type {
	case msgJoinRoom, msgLeaveRoom:
		data, _ := env.Data.(map[string]interface{})
		room, _ := data["room"].(string)
		if room == "" {
			h.logger.Warn("room message without a room id", slog.String("type", env.Type))
			return
		}
		if env.Type == msgJoinRoom {
			h.Subscribe(client, room)
		} else {
			h.Unsubscribe(client, room)
		}
	default:
		h.logger.Debug("ignoring client message", slog.String("type", env.Type))
	}
}
