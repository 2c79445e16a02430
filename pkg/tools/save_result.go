package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/aikata-dev/aikata/pkg/chains"
	"github.com/aikata-dev/aikata/pkg/room"
)

// SaveResultTool summarizes the chat history into a goal result and stores
// it. Saved results feed later plan generation and the prompt's summaries.
type SaveResultTool struct {
	room *room.Room
	gen  *chains.Generator
	send SendFunc
}

func NewSaveResultTool(rm *room.Room, gen *chains.Generator, send SendFunc) *SaveResultTool {
	return &SaveResultTool{room: rm, gen: gen, send: send}
}

func (t *SaveResultTool) Name() string {
	return "save_result"
}

func (t *SaveResultTool) Description() string {
	return "現在のゴールの実行結果をチャット履歴から要約して保存します。" +
		"保存された結果は後続のプラン生成時に参照されます。"
}

func (t *SaveResultTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"goal": "string (このゴールに対する結果を保存する)",
	}
}

func (t *SaveResultTool) Execute(ctx context.Context, args map[string]interface{}) *ToolResult {
	goal := stringArg(args, "goal")
	if goal == "" {
		return ErrorResult("Error: Goal is required.")
	}

	metadata := map[string]string{}
	if md, ok := args["metadata"].(map[string]interface{}); ok {
		for k, v := range md {
			metadata[k] = fmt.Sprintf("%v", v)
		}
	}

	history := t.room.Messages.ChatHistory()
	summary, err := t.gen.GenerateSummary(ctx, goal, formatChatHistory(history), chatAsMessages(history))
	if err != nil {
		return ErrorResult("Error: " + err.Error())
	}

	t.room.Results.Add(goal, summary, metadata)

	if err := sendEnvelope(t.send, "result_saved", t.room.ID, t.room.UserID, map[string]interface{}{
		"goal":     goal,
		"summary":  summary,
		"metadata": metadata,
	}); err != nil {
		return ErrorResult("Error: " + err.Error())
	}

	return NewToolResult(summary)
}

func formatChatHistory(entries []room.ChatEntry) string {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.Role)
		b.WriteString(": ")
		b.WriteString(e.Content)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
