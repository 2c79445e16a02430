package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aikata-dev/aikata/pkg/utils"
)

const claudeDefaultBaseURL = "https://api.anthropic.com"
const anthropicVersion = "2023-06-01"

// ClaudeProvider speaks the Anthropic /v1/messages protocol.
type ClaudeProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClaudeProvider(apiKey, baseURL string) *ClaudeProvider {
	if baseURL == "" {
		baseURL = claudeDefaultBaseURL
	}
	return &ClaudeProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// SetBaseURL overrides the endpoint (for tests).
func (p *ClaudeProvider) SetBaseURL(u string) {
	p.baseURL = strings.TrimRight(u, "/")
}

func (p *ClaudeProvider) Name() string {
	return "claude"
}

func (p *ClaudeProvider) Chat(ctx context.Context, messages []Message, tools []ToolDefinition, model string, options map[string]interface{}) (*LLMResponse, error) {
	// The messages API takes the system prompt top-level, not as a role.
	var system string
	claudeMessages := make([]map[string]interface{}, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == "system" {
			system = msg.Content
			continue
		}
		claudeMessages = append(claudeMessages, map[string]interface{}{
			"role": msg.Role,
			"content": []map[string]interface{}{
				{"type": "text", "text": msg.Content},
			},
		})
	}

	requestBody := map[string]interface{}{
		"model":      model,
		"messages":   claudeMessages,
		"max_tokens": 4096,
	}
	if system != "" {
		requestBody["system"] = system
	}
	if maxTokens, ok := options["max_tokens"].(int); ok && maxTokens > 0 {
		requestBody["max_tokens"] = maxTokens
	}
	if temperature, ok := options["temperature"].(float64); ok && temperature > 0 {
		requestBody["temperature"] = temperature
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/v1/messages", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("claude API error: status=%d, body=%s", resp.StatusCode, utils.Truncate(string(body), 500))
	}

	var parsed struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		StopReason string `json:"stop_reason"`
		Usage      struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var content string
	if len(parsed.Content) > 0 && parsed.Content[0].Type == "text" {
		content = parsed.Content[0].Text
	}

	return &LLMResponse{
		Content:      content,
		FinishReason: parsed.StopReason,
		TokensUsed:   parsed.Usage.InputTokens + parsed.Usage.OutputTokens,
	}, nil
}
