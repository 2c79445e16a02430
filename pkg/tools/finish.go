package tools

import "context"

// FinishTool and GoNextTool are terminal markers. The agent loop intercepts
// them by name before dispatch; Execute only matters if they are ever called
// directly and just echoes the declared response.

type FinishTool struct{}

func NewFinishTool() *FinishTool { return &FinishTool{} }

func (t *FinishTool) Name() string {
	return "finish"
}

func (t *FinishTool) Description() string {
	return "use this to signal that you have finished all your objectives. " +
		"Provide a final response message as the input."
}

func (t *FinishTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"response": "string (final response message)",
	}
}

func (t *FinishTool) Execute(ctx context.Context, args map[string]interface{}) *ToolResult {
	return NewToolResult(stringArg(args, "response"))
}

type GoNextTool struct{}

func NewGoNextTool() *GoNextTool { return &GoNextTool{} }

func (t *GoNextTool) Name() string {
	return "go_next"
}

func (t *GoNextTool) Description() string {
	return "use this to signal that you have finished current goal and move to next goal. " +
		"before calling this, you should save some data if necessary."
}

func (t *GoNextTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"response": "string (closing note for the current goal)",
	}
}

func (t *GoNextTool) Execute(ctx context.Context, args map[string]interface{}) *ToolResult {
	return NewToolResult(stringArg(args, "response"))
}
