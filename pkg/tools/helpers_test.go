package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/aikata-dev/aikata/pkg/chains"
	"github.com/aikata-dev/aikata/pkg/providers"
	"github.com/aikata-dev/aikata/pkg/room"
)

// stubProvider returns a fixed reply (or error) for every chat call and
// records the last request for assertions.
type stubProvider struct {
	mu       sync.Mutex
	reply    string
	err      error
	lastMsgs []providers.Message
}

func (p *stubProvider) Chat(ctx context.Context, messages []providers.Message, tools []providers.ToolDefinition, model string, options map[string]interface{}) (*providers.LLMResponse, error) {
	p.mu.Lock()
	p.lastMsgs = messages
	p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	return &providers.LLMResponse{Content: p.reply}, nil
}

func (p *stubProvider) Name() string { return "stub" }

func newTestGenerator(reply string) *chains.Generator {
	return chains.NewGenerator(&stubProvider{reply: reply}, "plan-model", "summary-model", 512)
}

// envelopeSink collects outbound payloads and decodes them for assertions.
type envelopeSink struct {
	mu       sync.Mutex
	payloads []string
}

func (s *envelopeSink) send(payload string) error {
	s.mu.Lock()
	s.payloads = append(s.payloads, payload)
	s.mu.Unlock()
	return nil
}

func (s *envelopeSink) failingSend(payload string) error {
	return fmt.Errorf("transport down")
}

func (s *envelopeSink) last(t *testing.T) Envelope {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.payloads) == 0 {
		t.Fatal("no payloads sent")
	}
	var env Envelope
	if err := json.Unmarshal([]byte(s.payloads[len(s.payloads)-1]), &env); err != nil {
		t.Fatalf("payload does not decode as envelope: %v", err)
	}
	return env
}

func (s *envelopeSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payloads)
}

func newTestRoom() *room.Room {
	return room.NewRoom("test-user")
}
