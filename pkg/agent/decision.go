package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aikata-dev/aikata/pkg/utils"
)

// Thoughts is the soft half of a model decision. Any field that fails to
// parse degrades to its zero value instead of failing the turn.
type Thoughts struct {
	Text     string
	IsFinish bool
	IsGoNext bool
}

// Command is the hard half. It must parse with a non-empty name or the turn
// fails and the goal aborts. Purpose is optional commentary recorded in the
// event log.
type Command struct {
	Name    string
	Args    map[string]interface{}
	Purpose string
}

type Decision struct {
	Thoughts Thoughts
	Command  Command
}

// ParseDecision decodes the model's raw output into a Decision. The
// thoughts/command asymmetry is deliberate: thoughts soft-fail, command
// hard-fails.
func ParseDecision(raw string) (Decision, error) {
	jsonText, err := extractJSON(raw)
	if err != nil {
		return Decision{}, err
	}

	var envelope struct {
		Thoughts json.RawMessage `json:"thoughts"`
		Command  json.RawMessage `json:"command"`
	}
	if err := json.Unmarshal([]byte(jsonText), &envelope); err != nil {
		return Decision{}, fmt.Errorf("response is not valid JSON: %w", err)
	}

	if len(envelope.Command) == 0 {
		return Decision{}, fmt.Errorf("response has no command object")
	}

	var cmd struct {
		Name    string                 `json:"name"`
		Args    map[string]interface{} `json:"args"`
		Purpose string                 `json:"purpose"`
	}
	if err := json.Unmarshal(envelope.Command, &cmd); err != nil {
		return Decision{}, fmt.Errorf("command does not parse: %w", err)
	}
	if cmd.Name == "" {
		return Decision{}, fmt.Errorf("command has no name")
	}
	if cmd.Args == nil {
		cmd.Args = map[string]interface{}{}
	}

	return Decision{
		Thoughts: parseThoughts(envelope.Thoughts),
		Command:  Command{Name: cmd.Name, Args: cmd.Args, Purpose: cmd.Purpose},
	}, nil
}

func parseThoughts(raw json.RawMessage) Thoughts {
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Thoughts{}
	}

	t := Thoughts{}
	if text, ok := fields["text"].(string); ok {
		t.Text = text
	}
	t.IsFinish = looseBool(fields["is_finish"])
	t.IsGoNext = looseBool(fields["is_go_next"])
	return t
}

// looseBool accepts the bool-ish shapes models actually emit.
func looseBool(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return utils.StringToBool(val)
	default:
		return false
	}
}

// extractJSON pulls the outermost JSON object out of free-form model text,
// tolerating markdown code fences and surrounding prose.
func extractJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("empty response")
	}

	if idx := strings.Index(s, "```"); idx != -1 {
		rest := s[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end != -1 {
			s = rest[:end]
		} else {
			s = rest
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no JSON object in response")
	}
	return s[start : end+1], nil
}
