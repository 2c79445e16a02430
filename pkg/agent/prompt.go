package agent

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aikata-dev/aikata/pkg/logger"
	"github.com/aikata-dev/aikata/pkg/room"
)

// The response contract embedded verbatim in every prompt. The model must
// answer with this JSON shape; ParseDecision is its counterpart.
const responseFormat = `
Respond with the following JSON format:
 {
            "thoughts": {
                "analysis_of_flags" : "Advice from the master system is reflected in the FLAGS. If any of them is true, please check its contents and follow it as closely as possible.",
                "current_goal": "To stay focused on the CURRENT GOAL, repeat the content of the CURRENT GOAL word-for-word without any omission! The biggest mistake is getting carried away and choosing the next move based on GOALS instead of the CURRENT GOAL. In such cases, you should select ` + "`go_next`" + ` and move forward immediately.",
                "event_analysis": "analysis of the event of past, especially if there is goal completed, you should know it not to skip anymore.",
                "message_analysis": "Please repeat the two most recent messages from the message list, including both the sender and the content without any omissions. I believe this will help reduce the likelihood of repeating the same mistakes.",
                "text": "thought",
                "criticism": "constructive self-criticism. From a common-sense standpoint, aren't you trying to say something irrelevant, or repeatedly asking the same thing? NEVER REPEAT SAME THINGS TO USER!",
                "reasoning": "reasoning in Japanese",
                "plan": "- short bulleted\n- list that conveys\n- long-term plan",
                "goal_analysis" : "analysis of the goal you have to achieve. When the current specified goal is achieved and it's time to move to the next one, selecting 'finish' is appropriate.",
                "discussion_for_finish_or_go_next": "should you finish the conversation? why? Did you achieve the goal? If there are multiple goals, 'finish' and 'go_next' are both necessary and sufficient to proceed to the next.",
                "is_finish": "true or false, if true, you will choose finish command.",
                "is_go_next": "true or false, if true, you should choose go_next command."
            },

            "command": {"name": "command name", "args": {"arg name": "value", ...}}
        }
`

const systemPrompt = `
# Feature 1
Any output is produced by executing <tool>. A common mistake is to attempt to reply directly with a string (str) to the USER's input event without executing <tool>. Since all actions are prescribed to be performed through calls to <tool>, this is incorrect.

# Feature 2
The runtime process is executed in an event-driven format. The image is that, including tools and so forth, you are configured as a single large intelligent system.

# Feature 3
Make decisions by referring to the following information. In particular, the goal represents a medium-term objective that you must achieve. Also, the event_history represents your short-term memory.
From this series of data and the current time, you can understand what actions you took, why you took them, and what the results were in chronological order. In other words, this constitutes your identity. Value it highly.
In other words, you are required to make decisions while keeping your past action history in mind.
Under such conditions, it is not permitted to call wait multiple times in a row with the same value or to take actions that are chronologically inconsistent.

# Feature 4
If wait continues for a very long time or you have achieved the specified goal, then move on to Finish. In particular, when the objective is achieved, proceed as quickly as possible.
The key is to pay very close attention to the termination conditions.
This includes cases where it is deemed undesirable to continue the conversation or when the content has been sufficiently understood.
A common mistake is to continue calling wait endlessly when it should be ended promptly.
In such cases, it is preferable to ask the user clearly, "Shall we move on?" or "Shall we finish?" and make a prompt decision.

# Feature 5
GOALS exist solely to provide a broad perspective and must not be excessively referenced. Focus on the CURRENT GOAL, and once it is achieved, immediately move on to the next.

# Feature 6
YOU CANNOT SEND ALMOST SAME THINGS TO USER FOR MANY TIMES!!! A smart agent understands by just one time.

# Feature 7
You must respond in Japanese.
`

// PromptBuilder assembles the full model input for one turn from the room's
// accumulated state. All state is read through the accessor funcs so the
// builder itself stays pure; a missing or panicking accessor degrades to an
// empty default and is logged, never crashes the turn.
type PromptBuilder struct {
	GetChatHistory             func() []room.ChatEntry
	GetEventHistory            func() []room.Event
	GetIsNewUserInput          func() bool
	GetConsecutiveMessageCount func() int
	GetSummaries               func() []room.GoalResult
	GetLatestPlan              func() (room.Plan, bool)
	GetWaitingInfo             func() room.WaitingInfo
}

// NewPromptBuilderForRoom wires a builder to a room's logs and the wait
// tool's counters.
func NewPromptBuilderForRoom(rm *room.Room, waitingInfo func() room.WaitingInfo) *PromptBuilder {
	return &PromptBuilder{
		GetChatHistory:             rm.Messages.ChatHistory,
		GetEventHistory:            rm.Events.Events,
		GetIsNewUserInput:          rm.Messages.HasNewMessages,
		GetConsecutiveMessageCount: rm.Messages.ConsecutiveMessageCount,
		GetSummaries:               rm.Results.GoalResultPairs,
		GetLatestPlan:              rm.Plans.Latest,
		GetWaitingInfo:             waitingInfo,
	}
}

func (b *PromptBuilder) Build(goals []string, currentGoal, commonRule string, flagsSnapshot map[string]bool, toolDescriptions string) string {
	chatHistory := formatNumberedJSON(safeCall(b.GetChatHistory), "b")
	eventHistory := formatNumberedJSON(safeCall(b.GetEventHistory), "a")
	summaries := formatNumberedJSON(safeCall(b.GetSummaries), "")

	isNewUserInput := safeCallBool(b.GetIsNewUserInput)
	consecutive := safeCallInt(b.GetConsecutiveMessageCount)

	var latestPlan string
	if b.GetLatestPlan != nil {
		if plan, ok := callLatestPlan(b.GetLatestPlan); ok {
			latestPlan = plan.Plan
		}
	}
	if latestPlan == "" {
		latestPlan = "(no plan yet)"
	}

	var waiting room.WaitingInfo
	if b.GetWaitingInfo != nil {
		waiting = callWaitingInfo(b.GetWaitingInfo)
	}

	return fmt.Sprintf(`
### SYSTEM PROMPT
%s

### GOALS (FOR OVERVIEW)
%s

### CURRENT GOAL
(YOU FOCUS ON THIS !!!)
%s


### COMMON RULE (YOU MUST FOLLOW THIS RULE)
%s

### (IMPORTANT!) EVENT HISTORY (YOU CAN REFERENCE THIS TO UNDERSTAND THE CONTEXT OF THE WHOLE PROCESS, the larger number means the latest event)
%s

### CHAT HISTORY (YOU CAN REFERENCE THIS TO UNDERSTAND THE CONTEXT OF THE DIALOG BETWEEN YOU AND END_USER)
%s

### ACTION PLAN (LATEST)
%s

### SUMMARIES (PAST GOAL/RESULT PAIRS)
%s

### CONSECUTIVE RESPONSES WITHOUT USER INPUT
This indicates whether you have received a new response from the user: %t
You should be mindful of sending too many consecutive messages without user input, as this can be frustrating.
A large negative number means you are not responding enough, and a large positive number means you are responding too much.
CAUTION: you had better not choose wait repeatedly under a negative number, because that means YOU ARE IGNORING YOUR USER!!
consecutive message number: %d

### WAITING INFO
consecutive_waiting_duration: %.1f minutes
prev_waiting_duration: %.1f minutes

### TOOLS
%s

### OUTPUT FORMAT & RULE
Your decisions must always be made independently without seeking user assistance.
Play to your strengths as an LLM and pursue simple strategies with no legal complications.
%s

### FLAGS
Since the flags only remain active for one step, I strongly recommend taking action the moment one is observed.
%s

### OTHER CONTEXT
- The current time and date is %s

### MASTER INPUT
Determine which next command to use,
and respond using the format specified above:
`,
		systemPrompt,
		formatGoals(goals),
		currentGoal,
		commonRule,
		eventHistory,
		chatHistory,
		latestPlan,
		summaries,
		isNewUserInput,
		consecutive,
		waiting.ConsecutiveWaitingDuration,
		waiting.PrevWaitingDuration,
		toolDescriptions,
		responseFormat,
		formatFlags(flagsSnapshot),
		time.Now().Format("Mon Jan 2 15:04:05 2006"),
	)
}

func formatGoals(goals []string) string {
	var b strings.Builder
	for i, goal := range goals {
		fmt.Fprintf(&b, "%d. %s\n", i+1, goal)
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatNumberedJSON renders items as "<prefix><n>. <json>", oldest first,
// so larger numbers are more recent.
func formatNumberedJSON[T any](items []T, prefix string) string {
	if len(items) == 0 {
		return "(empty)"
	}
	var b strings.Builder
	for i, item := range items {
		line, err := json.Marshal(item)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "%s%d. %s\n", prefix, i+1, line)
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatFlags turns the snapshot into per-flag directives so the loop can
// bias the model toward a specific next command without hard-coding it.
func formatFlags(snapshot map[string]bool) string {
	if len(snapshot) == 0 {
		return "(no flags set)"
	}
	names := make([]string, 0, len(snapshot))
	for name := range snapshot {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "- if true, you should choose `%s` command. current value: %t\n", name, snapshot[name])
	}
	return strings.TrimRight(b.String(), "\n")
}

// The safe* helpers keep a faulty accessor from ever crashing prompt
// construction; the fault is logged and the section falls back to a default.

func safeCall[T any](fn func() []T) (out []T) {
	if fn == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			logger.WarnCF("agent.prompt", "history accessor failed", map[string]interface{}{"panic": fmt.Sprintf("%v", r)})
			out = nil
		}
	}()
	return fn()
}

func safeCallBool(fn func() bool) (out bool) {
	if fn == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			logger.WarnCF("agent.prompt", "accessor failed", map[string]interface{}{"panic": fmt.Sprintf("%v", r)})
			out = false
		}
	}()
	return fn()
}

func safeCallInt(fn func() int) (out int) {
	if fn == nil {
		return 0
	}
	defer func() {
		if r := recover(); r != nil {
			logger.WarnCF("agent.prompt", "accessor failed", map[string]interface{}{"panic": fmt.Sprintf("%v", r)})
			out = 0
		}
	}()
	return fn()
}

func callLatestPlan(fn func() (room.Plan, bool)) (plan room.Plan, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.WarnCF("agent.prompt", "plan accessor failed", map[string]interface{}{"panic": fmt.Sprintf("%v", r)})
			ok = false
		}
	}()
	return fn()
}

func callWaitingInfo(fn func() room.WaitingInfo) (info room.WaitingInfo) {
	defer func() {
		if r := recover(); r != nil {
			logger.WarnCF("agent.prompt", "waiting info accessor failed", map[string]interface{}{"panic": fmt.Sprintf("%v", r)})
			info = room.WaitingInfo{}
		}
	}()
	return fn()
}
