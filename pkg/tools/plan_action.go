package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/aikata-dev/aikata/pkg/chains"
	"github.com/aikata-dev/aikata/pkg/providers"
	"github.com/aikata-dev/aikata/pkg/room"
)

// PlanActionTool generates an action plan for the current goal, informed by
// past goal results, and stores it in the room's plan store.
type PlanActionTool struct {
	room *room.Room
	gen  *chains.Generator
	send SendFunc
}

func NewPlanActionTool(rm *room.Room, gen *chains.Generator, send SendFunc) *PlanActionTool {
	return &PlanActionTool{room: rm, gen: gen, send: send}
}

func (t *PlanActionTool) Name() string {
	return "plan_action"
}

func (t *PlanActionTool) Description() string {
	return "現在のゴールに対する実行プランを生成します。" +
		"過去のゴールと結果の履歴を参照して、より効果的なプランを立案します。" +
		"プランは自動的に保存され、後で参照できます。"
}

func (t *PlanActionTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"goal":    "string (現在のゴール、必須)",
		"context": "string (追加のコンテキスト情報、任意)",
	}
}

func (t *PlanActionTool) Execute(ctx context.Context, args map[string]interface{}) *ToolResult {
	goal := stringArg(args, "goal")
	if goal == "" {
		return ErrorResult("Error: Goal is required.")
	}
	planContext := stringArg(args, "context")
	if planContext == "" {
		planContext = "特になし"
	}

	plan, err := t.gen.GeneratePlan(ctx, goal, planContext, formatPastResults(t.room.Results.GoalResultPairs()), chatAsMessages(t.room.Messages.ChatHistory()))
	if err != nil {
		return ErrorResult("Error: " + err.Error())
	}

	t.room.Plans.Add(goal, plan, nil)

	if err := sendEnvelope(t.send, "plan_created", t.room.ID, t.room.UserID, map[string]interface{}{
		"goal": goal,
		"plan": plan,
	}); err != nil {
		return ErrorResult("Error: " + err.Error())
	}

	return NewToolResult(plan)
}

func formatPastResults(pairs []room.GoalResult) string {
	if len(pairs) == 0 {
		return "(なし)"
	}
	var b strings.Builder
	for _, p := range pairs {
		line, err := json.Marshal(p)
		if err != nil {
			continue
		}
		b.Write(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func chatAsMessages(entries []room.ChatEntry) []providers.Message {
	out := make([]providers.Message, 0, len(entries))
	for _, e := range entries {
		out = append(out, providers.Message{Role: e.Role, Content: e.Content})
	}
	return out
}
