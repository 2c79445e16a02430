package providers

import "context"

type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

type ToolCall struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	Function string                 `json:"function,omitempty"`
	Args     map[string]interface{} `json:"arguments"`
}

type ToolDefinition struct {
	Type     string                 `json:"type"`
	Function map[string]interface{} `json:"function"`
}

type LLMResponse struct {
	Content      string
	ToolCalls    []ToolCall
	FinishReason string
	TokensUsed   int
}

// LLMProvider is the single abstraction the agent and chains talk to.
type LLMProvider interface {
	Chat(ctx context.Context, messages []Message, tools []ToolDefinition, model string, options map[string]interface{}) (*LLMResponse, error)
	Name() string
}
