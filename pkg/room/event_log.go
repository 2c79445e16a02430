package room

import (
	"sync"
	"time"
)

// Event action tags. The goal-completed marker is deliberately loud so the
// model cannot miss it in the event history.
const (
	ActionWait          = "wait"
	ActionNewMessage    = "new_message_come"
	ActionFinishSession = "finish_session"
	ActionGoalCompleted = "***PREVIOUS_GOAL_COMPLETED***"
)

// Event records one action with its purpose and result, as model context.
type Event struct {
	Time    string `json:"time"`
	Action  string `json:"action"`
	Purpose string `json:"purpose"`
	Result  string `json:"result"`
}

// EventLog is the append-only event record of one room. Appends wake any
// waiter blocked on Appended, which is how the wait tool notices incoming
// messages without polling.
type EventLog struct {
	mu       sync.RWMutex
	events   []Event
	appended chan struct{}
}

func NewEventLog() *EventLog {
	return &EventLog{
		appended: make(chan struct{}),
	}
}

func (l *EventLog) Append(action, purpose, result string) {
	l.mu.Lock()
	l.events = append(l.events, Event{
		Time:    time.Now().Format("15:04:05"),
		Action:  action,
		Purpose: purpose,
		Result:  result,
	})
	close(l.appended)
	l.appended = make(chan struct{})
	l.mu.Unlock()
}

// Appended returns a channel closed by the next Append.
func (l *EventLog) Appended() <-chan struct{} {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.appended
}

func (l *EventLog) Events() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// EventsSince returns events appended at or after index start.
func (l *EventLog) EventsSince(start int) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if start < 0 {
		start = 0
	}
	if start >= len(l.events) {
		return nil
	}
	out := make([]Event, len(l.events)-start)
	copy(out, l.events[start:])
	return out
}

func (l *EventLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}
