package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/aikata-dev/aikata/pkg/agent"
	"github.com/aikata-dev/aikata/pkg/logger"
	"github.com/aikata-dev/aikata/pkg/room"
	"github.com/aikata-dev/aikata/pkg/tools"
	"github.com/aikata-dev/aikata/pkg/utils"
)

// InboundEvent is the JSON shape clients send over the websocket.
type InboundEvent struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	PackageID string `json:"package_id,omitempty"`
	StickerID string `json:"sticker_id,omitempty"`
}

// AgentFactory builds the loop for a freshly connected room. The send func
// writes to that room's websocket.
type AgentFactory func(rm *room.Room, send tools.SendFunc) *agent.Loop

// Server accepts websocket connections, binds each to a room, and relays
// transport events into the room's logs.
type Server struct {
	registry   *room.Registry
	factory    AgentFactory
	goals      []string
	commonRule string
	upgrader   websocket.Upgrader
}

func NewServer(registry *room.Registry, factory AgentFactory, goals []string, commonRule string) *Server {
	return &Server{
		registry:   registry,
		factory:    factory,
		goals:      goals,
		commonRule: commonRule,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.handleWS)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = r.Header.Get("X-User-ID")
	}
	if userID == "" {
		http.Error(w, "user_id required", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WarnCF("gateway", "websocket upgrade failed", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return
	}

	sessionID := uuid.NewString()
	rm := s.registry.GetOrCreate(userID)
	s.registry.BindSession(sessionID, rm.ID)

	logger.InfoCF("gateway", "client connected", map[string]interface{}{
		"user_id":    userID,
		"room_id":    rm.ID,
		"session_id": sessionID,
	})

	// gorilla allows one concurrent writer per connection
	var writeMu sync.Mutex
	send := func(payload string) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteMessage(websocket.TextMessage, []byte(payload))
	}

	defer func() {
		s.registry.UnbindSession(sessionID)
		if a := rm.Agent(); a != nil {
			a.Finish()
		}
		s.registry.Remove(rm.ID)
		conn.Close()
		logger.InfoCF("gateway", "client disconnected", map[string]interface{}{
			"user_id": userID,
			"room_id": rm.ID,
		})
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var ev InboundEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			// bare text counts as a plain chat message
			ev = InboundEvent{Type: "message", Text: string(data)}
		}

		rm.UpdateActivity()
		s.dispatch(rm, send, ev)
	}
}

func (s *Server) dispatch(rm *room.Room, send tools.SendFunc, ev InboundEvent) {
	switch ev.Type {
	case "message":
		rm.Messages.Add(ev.Text, room.SenderUser)
		rm.Events.Append(room.ActionNewMessage, "", ev.Text)
		logger.DebugCF("gateway", "message received", map[string]interface{}{
			"room_id": rm.ID,
			"text":    utils.Truncate(ev.Text, 120),
		})

	case "stamp":
		content := fmt.Sprintf("STAMP:%s:%s", ev.PackageID, ev.StickerID)
		rm.Messages.Add(content, room.SenderUser)
		rm.Events.Append(room.ActionNewMessage, "", content)

	case "start":
		s.startLoop(rm, send)

	case "finish":
		rm.Events.Append(room.ActionFinishSession, "", "")
		if a := rm.Agent(); a != nil {
			a.Finish()
		}

	default:
		logger.WarnCF("gateway", "unknown inbound event type", map[string]interface{}{
			"room_id": rm.ID,
			"type":    ev.Type,
		})
	}
}

// startLoop spawns the room's agent loop goroutine. A room only ever runs
// one; a second start on the same room is a no-op.
func (s *Server) startLoop(rm *room.Room, send tools.SendFunc) {
	loop := s.factory(rm, send)
	if err := rm.BindAgent(loop); err != nil {
		logger.WarnCF("gateway", "start ignored", map[string]interface{}{
			"room_id": rm.ID,
			"error":   err.Error(),
		})
		return
	}

	go func() {
		defer rm.UnbindAgent()
		result := loop.Run(context.Background(), s.goals, s.commonRule)
		logger.InfoCF("gateway", "agent loop finished", map[string]interface{}{
			"room_id": rm.ID,
			"state":   string(loop.State()),
			"result":  utils.Truncate(result, 200),
		})
	}()
}
