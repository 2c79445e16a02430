package room

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// WaitingInfo tracks idle time across wait tool calls. Durations are minutes.
type WaitingInfo struct {
	ConsecutiveWaitingDuration float64 `json:"consecutive_waiting_duration"`
	PrevWaitingDuration        float64 `json:"prev_waiting_duration"`
}

// Runner is the loop bound to a room. Finish requests cooperative shutdown;
// it takes effect at the loop's next turn boundary.
type Runner interface {
	Finish()
}

// Room aggregates one user's chat, event, plan and result history plus at
// most one bound agent loop.
type Room struct {
	ID     string
	UserID string

	Messages *MessageLog
	Events   *EventLog
	Plans    *PlanStore
	Results  *ResultStore

	mu         sync.Mutex
	lastActive time.Time
	agent      Runner
}

func NewRoom(userID string) *Room {
	return &Room{
		ID:         fmt.Sprintf("room_%s_%s", userID, uuid.NewString()[:8]),
		UserID:     userID,
		Messages:   NewMessageLog(),
		Events:     NewEventLog(),
		Plans:      NewPlanStore(),
		Results:    NewResultStore(),
		lastActive: time.Now(),
	}
}

func (r *Room) UpdateActivity() {
	r.mu.Lock()
	r.lastActive = time.Now()
	r.mu.Unlock()
}

func (r *Room) LastActive() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActive
}

// BindAgent attaches a loop to the room. A room holds at most one.
func (r *Room) BindAgent(a Runner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.agent != nil {
		return fmt.Errorf("room %s already has a bound agent", r.ID)
	}
	r.agent = a
	return nil
}

func (r *Room) UnbindAgent() {
	r.mu.Lock()
	r.agent = nil
	r.mu.Unlock()
}

func (r *Room) Agent() Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.agent
}
