package chains

import (
	"context"
	"fmt"
	"strings"

	"github.com/aikata-dev/aikata/pkg/logger"
	"github.com/aikata-dev/aikata/pkg/providers"
)

const planSystemPrompt = `あなたは高度なプランニングAIアシスタントです。
与えられたゴールに対して、以下の情報を考慮しながら最適な実行プランを生成してください：

1. 過去の実行結果の履歴
2. 現在のコンテキスト
3. ゴールの要件と制約

プランは以下の形式で出力してください：

1. 現状と目標の分析
2. 実行ステップ（具体的なアクションのリスト）
3. 成功基準
4. リスクと対策

過去の結果から学んだ教訓を活かし、より効果的なプランを立案してください。`

const summarySystemPrompt = `あなたは高度な要約AIアシスタントです。
与えられたチャット履歴から、ゴールの達成状況と重要なポイントを抽出し、簡潔に要約してください。

要約は以下の形式で出力してください：

1. 目標の達成状況
2. 主要な成果
3. 重要な学び
4. 次のステップへの提案

チャット履歴の文脈を理解し、もっとも重要な情報を抽出することに注力してください。`

// Generator runs the secondary plan/summary model calls.
type Generator struct {
	provider     providers.LLMProvider
	planModel    string
	summaryModel string
	maxTokens    int
}

func NewGenerator(provider providers.LLMProvider, planModel, summaryModel string, maxTokens int) *Generator {
	return &Generator{
		provider:     provider,
		planModel:    planModel,
		summaryModel: summaryModel,
		maxTokens:    maxTokens,
	}
}

// GeneratePlan produces an action plan for a goal. goal and context are both
// required; missing either is a recoverable error, not a panic.
func (g *Generator) GeneratePlan(ctx context.Context, goal, planContext, pastResults string, history []providers.Message) (string, error) {
	if goal == "" || planContext == "" {
		return "", fmt.Errorf("goal and context are required")
	}

	user := fmt.Sprintf("目標: %s\nコンテキスト: %s\n過去の実行結果:\n%s\n\nこのゴールに対する実行プランを生成してください。",
		goal, planContext, pastResults)

	messages := []providers.Message{{Role: "system", Content: planSystemPrompt}}
	messages = append(messages, history...)
	messages = append(messages, providers.Message{Role: "user", Content: user})

	resp, err := g.provider.Chat(ctx, messages, nil, g.planModel, map[string]interface{}{
		"max_tokens":  g.maxTokens,
		"temperature": 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("plan generation failed: %w", err)
	}

	logger.DebugCF("chains", "plan generated", map[string]interface{}{
		"goal":   goal,
		"tokens": resp.TokensUsed,
	})
	return strings.TrimSpace(resp.Content), nil
}

// GenerateSummary condenses the chat history into a goal result. goal and
// chatHistory are both required.
func (g *Generator) GenerateSummary(ctx context.Context, goal, chatHistory string, history []providers.Message) (string, error) {
	if goal == "" || chatHistory == "" {
		return "", fmt.Errorf("goal and chat history are required")
	}

	user := fmt.Sprintf("目標: %s\nチャット履歴:\n%s\n\nこのゴールの実行結果を要約してください。",
		goal, chatHistory)

	messages := []providers.Message{{Role: "system", Content: summarySystemPrompt}}
	messages = append(messages, history...)
	messages = append(messages, providers.Message{Role: "user", Content: user})

	resp, err := g.provider.Chat(ctx, messages, nil, g.summaryModel, map[string]interface{}{
		"max_tokens":  g.maxTokens,
		"temperature": 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("summary generation failed: %w", err)
	}

	logger.DebugCF("chains", "summary generated", map[string]interface{}{
		"goal":   goal,
		"tokens": resp.TokensUsed,
	})
	return strings.TrimSpace(resp.Content), nil
}
