package room

import (
	"sync"
	"time"

	"github.com/aikata-dev/aikata/pkg/logger"
)

// Registry owns all live rooms and the transport-session bindings. All
// operations are atomic with respect to concurrent connects and disconnects.
type Registry struct {
	mu       sync.Mutex
	rooms    map[string]*Room
	sessions map[string]string
	timeout  time.Duration
}

func NewRegistry(timeout time.Duration) *Registry {
	return &Registry{
		rooms:    make(map[string]*Room),
		sessions: make(map[string]string),
		timeout:  timeout,
	}
}

// GetOrCreate returns the user's active room, refreshing its activity, or
// creates and registers a new one. The check-then-create is a single
// critical section so racing connects cannot produce duplicate rooms.
func (reg *Registry) GetOrCreate(userID string) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	now := time.Now()
	for _, r := range reg.rooms {
		if r.UserID == userID && now.Sub(r.LastActive()) <= reg.timeout {
			r.UpdateActivity()
			return r
		}
	}

	r := NewRoom(userID)
	reg.rooms[r.ID] = r
	logger.InfoCF("room", "room created", map[string]interface{}{
		"room_id": r.ID,
		"user_id": userID,
	})
	return r
}

func (reg *Registry) Get(roomID string) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r, ok := reg.rooms[roomID]
	if ok {
		r.UpdateActivity()
	}
	return r, ok
}

// BindSession maps a transport session id to a room.
func (reg *Registry) BindSession(sessionID, roomID string) {
	reg.mu.Lock()
	reg.sessions[sessionID] = roomID
	reg.mu.Unlock()
}

func (reg *Registry) UnbindSession(sessionID string) {
	reg.mu.Lock()
	delete(reg.sessions, sessionID)
	reg.mu.Unlock()
}

func (reg *Registry) GetBySession(sessionID string) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	roomID, ok := reg.sessions[sessionID]
	if !ok {
		return nil, false
	}
	r, ok := reg.rooms[roomID]
	return r, ok
}

// Remove evicts a room, stopping its loop if one is bound.
func (reg *Registry) Remove(roomID string) {
	reg.mu.Lock()
	r, ok := reg.rooms[roomID]
	if ok {
		delete(reg.rooms, roomID)
		for sid, rid := range reg.sessions {
			if rid == roomID {
				delete(reg.sessions, sid)
			}
		}
	}
	reg.mu.Unlock()

	if ok {
		if a := r.Agent(); a != nil {
			a.Finish()
		}
		logger.InfoCF("room", "room removed", map[string]interface{}{"room_id": roomID})
	}
}

// ExpireInactive evicts every room idle longer than the timeout and returns
// how many were removed.
func (reg *Registry) ExpireInactive(now time.Time) int {
	reg.mu.Lock()
	var expired []*Room
	for id, r := range reg.rooms {
		if now.Sub(r.LastActive()) > reg.timeout {
			expired = append(expired, r)
			delete(reg.rooms, id)
		}
	}
	for sid, rid := range reg.sessions {
		if _, alive := reg.rooms[rid]; !alive {
			delete(reg.sessions, sid)
		}
	}
	reg.mu.Unlock()

	for _, r := range expired {
		if a := r.Agent(); a != nil {
			a.Finish()
		}
		logger.InfoCF("room", "room expired", map[string]interface{}{
			"room_id": r.ID,
			"user_id": r.UserID,
		})
	}
	return len(expired)
}

func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms)
}
