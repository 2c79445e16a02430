package agent

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/aikata-dev/aikata/pkg/logger"
	"github.com/aikata-dev/aikata/pkg/providers"
	"github.com/aikata-dev/aikata/pkg/room"
	"github.com/aikata-dev/aikata/pkg/tools"
	"github.com/aikata-dev/aikata/pkg/utils"
)

type State string

const (
	StateRunning      State = "RUNNING"
	StateGoalComplete State = "GOAL_COMPLETE"
	StateAllComplete  State = "ALL_COMPLETE"
	StateAborted      State = "ABORTED"
)

const (
	finishName = "finish"
	goNextName = "go_next"

	autoSavePurpose = "Before go to next, summarize this subgoal and save_result"

	allCompleteResult = "=== All goals completed successfully! ==="
)

var errSessionFinished = fmt.Errorf("session finished")

// Options carries the model parameters for the primary decision calls.
type Options struct {
	Provider    providers.LLMProvider
	Model       string
	MaxTokens   int
	Temperature float64
}

// Loop is the per-room decision state machine. Each turn it builds a prompt
// from the room's accumulated state, asks the model for a command, dispatches
// it, and updates the bias flags. One Loop runs per room, on one goroutine.
type Loop struct {
	room     *room.Room
	registry *tools.Registry
	wait     *tools.WaitTool
	flags    *Flags
	builder  *PromptBuilder
	opts     Options

	// turn counter and the save_result gate; touched only by the loop
	// goroutine
	count          int
	saveResultDone bool

	state      atomic.Value
	disconnect atomic.Bool
}

func NewLoop(rm *room.Room, registry *tools.Registry, wait *tools.WaitTool, flags *Flags, builder *PromptBuilder, opts Options) *Loop {
	l := &Loop{
		room:     rm,
		registry: registry,
		wait:     wait,
		flags:    flags,
		builder:  builder,
		opts:     opts,
	}
	l.state.Store(StateRunning)
	return l
}

// Finish requests cooperative shutdown. It is observed at the top of the
// turn loop, never mid-call.
func (l *Loop) Finish() {
	l.disconnect.Store(true)
}

func (l *Loop) State() State {
	return l.state.Load().(State)
}

func (l *Loop) setState(s State) {
	l.state.Store(s)
}

// Run pursues the goals in order and returns the overall result text.
// A goal that cannot complete aborts the run with a failure message.
func (l *Loop) Run(ctx context.Context, goals []string, commonRule string) string {
	l.disconnect.Store(false)
	l.setState(StateRunning)

	for i, goal := range goals {
		logger.InfoCF("agent", "processing goal", map[string]interface{}{
			"room_id": l.room.ID,
			"goal":    fmt.Sprintf("%d/%d", i+1, len(goals)),
		})

		result, err := l.runGoal(ctx, goals, goal, commonRule, i+1)
		if err != nil {
			l.setState(StateAborted)
			failure := fmt.Sprintf("Failed to complete goal %d: %s", i+1, goal)
			logger.ErrorCF("agent", "goal aborted", map[string]interface{}{
				"room_id": l.room.ID,
				"goal":    goal,
				"error":   err.Error(),
			})
			return failure
		}

		l.setState(StateGoalComplete)
		l.room.Events.Append(
			room.ActionGoalCompleted,
			"so GOAL were updated already !",
			utils.Truncate(goal, 30)+" was completed !",
		)
		logger.InfoCF("agent", "goal completed", map[string]interface{}{
			"room_id": l.room.ID,
			"goal":    goal,
			"result":  utils.Truncate(result, 120),
		})
		l.count = 0
	}

	l.setState(StateAllComplete)
	return allCompleteResult
}

// runGoal drives the turn loop for one goal until a terminal decision.
func (l *Loop) runGoal(ctx context.Context, goals []string, goal, commonRule string, goalIndex int) (string, error) {
	l.flags.Set("plan_action")
	l.saveResultDone = false
	l.count = 0

	for {
		if l.disconnect.Load() {
			return "", errSessionFinished
		}

		snapshot := l.flags.Latest()
		prompt := l.builder.Build(
			goals,
			fmt.Sprintf("goal index: %d, %s", goalIndex, goal),
			commonRule,
			snapshot,
			l.registry.Describe(),
		)

		resp, err := l.opts.Provider.Chat(ctx, []providers.Message{{Role: "user", Content: prompt}}, nil, l.opts.Model, map[string]interface{}{
			"max_tokens":      l.opts.MaxTokens,
			"temperature":     l.opts.Temperature,
			"response_format": "json_object",
		})
		if err != nil {
			// treated like any tool failure: surfaced into the event log,
			// loop continues
			l.room.Events.Append("model_invocation", "", "Error: "+err.Error())
			l.flags.Set("na")
			l.count++
			continue
		}

		decision, err := ParseDecision(resp.Content)
		if err != nil {
			return "", fmt.Errorf("failed to parse model decision: %w", err)
		}

		name := decision.Command.Name

		if name == finishName || name == goNextName {
			if !l.saveResultDone {
				result := l.executeTool(ctx, "save_result", map[string]interface{}{"goal": goal}, autoSavePurpose)
				logger.InfoCF("agent", "goal done, auto save_result", map[string]interface{}{
					"room_id": l.room.ID,
					"command": name,
				})
				return result, nil
			}
			if response := stringFromArgs(decision.Command.Args, "response"); response != "" {
				return response, nil
			}
			return "Task completed, finished current task and go to next", nil
		}

		switch {
		case decision.Thoughts.IsFinish:
			l.executeTool(ctx, "save_result", map[string]interface{}{"goal": goal}, autoSavePurpose)
			l.flags.Set(finishName)

		case decision.Thoughts.IsGoNext:
			l.executeTool(ctx, "save_result", map[string]interface{}{"goal": goal}, autoSavePurpose)
			l.flags.Set(goNextName)

		default:
			purpose := decision.Command.Purpose
			if purpose == "" {
				purpose = decision.Thoughts.Text
			}
			l.executeTool(ctx, name, decision.Command.Args, purpose)
			if name == "plan_action" && l.count == 0 {
				// after the opening plan, push toward actually addressing
				// the user instead of planning again
				l.flags.Set("reply_message")
			} else {
				l.flags.Set("na")
			}
		}

		l.count++
	}
}

// executeTool dispatches one tool call and records it as an event. Every
// failure, an unknown name included, comes back as an error-string result the
// model sees next turn.
func (l *Loop) executeTool(ctx context.Context, name string, args map[string]interface{}, purpose string) string {
	if _, ok := l.registry.Get(name); ok {
		// only back-to-back waits accumulate idle time
		if name != "wait" && l.wait != nil {
			l.wait.ResetWaitingInfo()
		}
		if name == "save_result" {
			l.saveResultDone = true
		}
	}

	result := l.registry.Execute(ctx, name, args)

	l.room.Events.Append("tool_execution : "+name, purpose, result.ForLLM)

	logger.DebugCF("agent", "tool executed", map[string]interface{}{
		"room_id": l.room.ID,
		"tool":    name,
		"result":  utils.Truncate(result.ForLLM, 120),
	})
	return result.ForLLM
}

func stringFromArgs(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// Count returns the per-goal turn counter (for observability and tests).
func (l *Loop) Count() int {
	return l.count
}
