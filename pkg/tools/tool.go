package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// ToolResult carries a tool's outcome back to the agent loop. ForLLM is what
// the model sees as the tool result on its next turn.
type ToolResult struct {
	ForLLM  string
	ForUser string
	IsError bool
}

func NewToolResult(forLLM string) *ToolResult {
	return &ToolResult{ForLLM: forLLM}
}

func ErrorResult(msg string) *ToolResult {
	return &ToolResult{ForLLM: msg, IsError: true}
}

// Tool is one model-invokable action.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]interface{}
	Execute(ctx context.Context, args map[string]interface{}) *ToolResult
}

// SendFunc delivers one outbound payload over the transport. Fire and forget
// from the tool's point of view; failures become error-string results.
type SendFunc func(payload string) error

// Envelope is the JSON shape of every structured outbound send.
type Envelope struct {
	Type      string                 `json:"type"`
	RoomID    string                 `json:"room_id"`
	UserID    string                 `json:"user_id"`
	Timestamp string                 `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

func sendEnvelope(send SendFunc, envType, roomID, userID string, data map[string]interface{}) error {
	if send == nil {
		return fmt.Errorf("transport not available")
	}
	payload, err := json.Marshal(Envelope{
		Type:      envType,
		RoomID:    roomID,
		UserID:    userID,
		Timestamp: time.Now().Format(time.RFC3339),
		Data:      data,
	})
	if err != nil {
		return err
	}
	return send(string(payload))
}

func stringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func floatArg(args map[string]interface{}, key string) (float64, bool) {
	switch v := args[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		var f float64
		if _, err := fmt.Sscanf(v, "%g", &f); err == nil {
			return f, true
		}
		return 0, false
	default:
		return 0, false
	}
}
