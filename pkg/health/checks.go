package health

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// CheckFunc probes one dependency. It returns ok plus a short detail string.
type CheckFunc func() (bool, string)

// LLMEndpointCheck reports whether the model endpoint answers HTTP at all.
func LLMEndpointCheck(baseURL string, timeout time.Duration) CheckFunc {
	client := &http.Client{Timeout: timeout}
	return func() (bool, string) {
		resp, err := client.Get(baseURL)
		if err != nil {
			return false, fmt.Sprintf("unreachable: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 500 {
			return false, fmt.Sprintf("status %d", resp.StatusCode)
		}
		return true, "ok"
	}
}

// Checker aggregates named checks behind an HTTP handler.
type Checker struct {
	mu     sync.Mutex
	checks map[string]CheckFunc
	order  []string
}

func NewChecker() *Checker {
	return &Checker{checks: make(map[string]CheckFunc)}
}

func (c *Checker) Register(name string, fn CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.checks[name]; !exists {
		c.order = append(c.order, name)
	}
	c.checks[name] = fn
}

type checkResult struct {
	OK     bool   `json:"ok"`
	Detail string `json:"detail"`
}

func (c *Checker) RunAll() (bool, map[string]checkResult) {
	c.mu.Lock()
	names := make([]string, len(c.order))
	copy(names, c.order)
	checks := make(map[string]CheckFunc, len(c.checks))
	for k, v := range c.checks {
		checks[k] = v
	}
	c.mu.Unlock()

	allOK := true
	results := make(map[string]checkResult, len(names))
	for _, name := range names {
		ok, detail := checks[name]()
		if !ok {
			allOK = false
		}
		results[name] = checkResult{OK: ok, Detail: detail}
	}
	return allOK, results
}

// Handler serves GET /health style responses: 200 when every check passes,
// 503 otherwise, with per-check details in the body.
func (c *Checker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, results := c.RunAll()
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":     ok,
			"checks": results,
		})
	}
}
