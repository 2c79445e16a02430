package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aikata-dev/aikata/pkg/logger"
)

// Registry is the name to tool map built once per agent loop.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name()]; !exists {
		r.order = append(r.order, t.Name())
	}
	r.tools[t.Name()] = t
}

func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns tools in registration order.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	sort.Strings(out)
	return out
}

// Describe renders the numbered tool listing embedded in the prompt.
func (r *Registry) Describe() string {
	var b strings.Builder
	for i, t := range r.List() {
		params := t.Parameters()
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		argParts := make([]string, 0, len(keys))
		for _, k := range keys {
			argParts = append(argParts, fmt.Sprintf("%s: %v", k, params[k]))
		}
		fmt.Fprintf(&b, "*%d. %s: %s, Args: %s\n", i+1, t.Name(), t.Description(), strings.Join(argParts, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Execute dispatches by name. An unknown name is an error-string result the
// model can self-correct from, never a failure of the loop.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]interface{}) *ToolResult {
	t, ok := r.Get(name)
	if !ok {
		return ErrorResult(fmt.Sprintf("Error: %s is not a valid tool.", name))
	}

	result := t.Execute(ctx, args)
	if result == nil {
		result = ErrorResult(fmt.Sprintf("Error: %s returned no result.", name))
	}
	if result.IsError {
		logger.WarnCF("tools", "tool returned error", map[string]interface{}{
			"tool":   name,
			"result": result.ForLLM,
		})
	}
	return result
}
