package room

import (
	"sync"
	"time"
)

// Plan is one generated action plan for a goal.
type Plan struct {
	Goal      string            `json:"goal"`
	Plan      string            `json:"plan"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type PlanStore struct {
	mu    sync.RWMutex
	plans []Plan
}

func NewPlanStore() *PlanStore {
	return &PlanStore{}
}

func (s *PlanStore) Add(goal, plan string, metadata map[string]string) Plan {
	p := Plan{
		Goal:      goal,
		Plan:      plan,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
	s.mu.Lock()
	s.plans = append(s.plans, p)
	s.mu.Unlock()
	return p
}

func (s *PlanStore) Latest() (Plan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.plans) == 0 {
		return Plan{}, false
	}
	return s.plans[len(s.plans)-1], true
}

func (s *PlanStore) All() []Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Plan, len(s.plans))
	copy(out, s.plans)
	return out
}
