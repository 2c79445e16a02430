package room

import (
	"sync"
	"time"
)

// Result is one saved goal summary.
type Result struct {
	Goal      string            `json:"goal"`
	Summary   string            `json:"summary"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// GoalResult is the goal/result pair fed back into plan generation and the
// prompt's summaries section.
type GoalResult struct {
	Goal   string `json:"goal"`
	Result string `json:"result"`
}

type ResultStore struct {
	mu      sync.RWMutex
	results []Result
}

func NewResultStore() *ResultStore {
	return &ResultStore{}
}

func (s *ResultStore) Add(goal, summary string, metadata map[string]string) Result {
	r := Result{
		Goal:      goal,
		Summary:   summary,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
	s.mu.Lock()
	s.results = append(s.results, r)
	s.mu.Unlock()
	return r
}

func (s *ResultStore) Latest() (Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.results) == 0 {
		return Result{}, false
	}
	return s.results[len(s.results)-1], true
}

func (s *ResultStore) GoalResultPairs() []GoalResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]GoalResult, 0, len(s.results))
	for _, r := range s.results {
		out = append(out, GoalResult{Goal: r.Goal, Result: r.Summary})
	}
	return out
}
