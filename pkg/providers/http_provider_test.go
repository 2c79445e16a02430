package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTTPProviderChat(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{
					"message":       map[string]interface{}{"content": "hello back"},
					"finish_reason": "stop",
				},
			},
			"usage": map[string]interface{}{"total_tokens": 42},
		})
	}))
	defer server.Close()

	p := NewHTTPProvider("test-key", server.URL, "")
	resp, err := p.Chat(context.Background(), []Message{{Role: "user", Content: "hello"}}, nil, "test-model", map[string]interface{}{
		"max_tokens":      256,
		"temperature":     0.5,
		"response_format": "json_object",
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if resp.Content != "hello back" {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.FinishReason != "stop" {
		t.Errorf("finish reason = %q", resp.FinishReason)
	}
	if resp.TokensUsed != 42 {
		t.Errorf("tokens = %d", resp.TokensUsed)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotBody["model"] != "test-model" {
		t.Errorf("model = %v", gotBody["model"])
	}
	if gotBody["max_tokens"] != float64(256) {
		t.Errorf("max_tokens = %v", gotBody["max_tokens"])
	}
	rf, _ := gotBody["response_format"].(map[string]interface{})
	if rf["type"] != "json_object" {
		t.Errorf("response_format = %v", gotBody["response_format"])
	}
}

func TestHTTPProviderChatToolCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{
					"message": map[string]interface{}{
						"content": "",
						"tool_calls": []map[string]interface{}{
							{
								"id": "call_1",
								"function": map[string]interface{}{
									"name":      "wait",
									"arguments": `{"minutes": 5}`,
								},
							},
						},
					},
					"finish_reason": "tool_calls",
				},
			},
		})
	}))
	defer server.Close()

	p := NewHTTPProvider("", server.URL, "")
	resp, err := p.Chat(context.Background(), []Message{{Role: "user", Content: "wait"}}, nil, "m", nil)
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if len(resp.ToolCalls) != 1 {
		t.Fatalf("Expected 1 tool call, got %d", len(resp.ToolCalls))
	}
	tc := resp.ToolCalls[0]
	if tc.Name != "wait" || tc.ID != "call_1" {
		t.Errorf("tool call = %+v", tc)
	}
	if tc.Args["minutes"] != float64(5) {
		t.Errorf("args = %v", tc.Args)
	}
}

func TestHTTPProviderAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": "rate limited"}`))
	}))
	defer server.Close()

	p := NewHTTPProvider("", server.URL, "")
	_, err := p.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil, "m", nil)
	if err == nil {
		t.Fatal("Expected error for 429 response")
	}
	if !strings.Contains(err.Error(), "status=429") {
		t.Errorf("error = %v", err)
	}
}

func TestHTTPProviderRequiresBase(t *testing.T) {
	p := NewHTTPProvider("", "", "")
	if _, err := p.Chat(context.Background(), nil, nil, "m", nil); err == nil {
		t.Error("Expected error when API base is not configured")
	}
}

func TestClaudeProviderChat(t *testing.T) {
	var gotKey, gotVersion string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %q, want /v1/messages", r.URL.Path)
		}
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		json.NewDecoder(r.Body).Decode(&gotBody)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"content":     []map[string]interface{}{{"type": "text", "text": "claude says hi"}},
			"stop_reason": "end_turn",
			"usage":       map[string]interface{}{"input_tokens": 10, "output_tokens": 5},
		})
	}))
	defer server.Close()

	p := NewClaudeProvider("claude-key", server.URL)
	resp, err := p.Chat(context.Background(), []Message{
		{Role: "system", Content: "be nice"},
		{Role: "user", Content: "hello"},
	}, nil, "claude-model", map[string]interface{}{"max_tokens": 100})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if resp.Content != "claude says hi" {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.TokensUsed != 15 {
		t.Errorf("tokens = %d", resp.TokensUsed)
	}
	if gotKey != "claude-key" || gotVersion != "2023-06-01" {
		t.Errorf("headers = %q / %q", gotKey, gotVersion)
	}

	// system role is hoisted out of the message list
	if gotBody["system"] != "be nice" {
		t.Errorf("system = %v", gotBody["system"])
	}
	msgs, _ := gotBody["messages"].([]interface{})
	if len(msgs) != 1 {
		t.Errorf("messages = %v, system must not appear as a turn", msgs)
	}
}
