package agent

import (
	"strings"
	"testing"

	"github.com/aikata-dev/aikata/pkg/room"
)

func TestPromptBuildSections(t *testing.T) {
	rm := room.NewRoom("alice")
	rm.Messages.Add("こんにちは", room.SenderUser)
	rm.Events.Append("tool_execution : reply_message", "greet", "done")
	rm.Plans.Add("g", "1. listen\n2. respond", nil)
	rm.Results.Add("old goal", "it went well", nil)

	builder := NewPromptBuilderForRoom(rm, func() room.WaitingInfo {
		return room.WaitingInfo{ConsecutiveWaitingDuration: 3, PrevWaitingDuration: 1}
	})

	flags := map[string]bool{"finish": false, "go_next": true}
	prompt := builder.Build(
		[]string{"goal one", "goal two"},
		"goal index: 1, goal one",
		"be polite",
		flags,
		"*1. reply_message: send text, Args: message: string",
	)

	sections := []string{
		"### SYSTEM PROMPT",
		"### GOALS (FOR OVERVIEW)",
		"### CURRENT GOAL",
		"### COMMON RULE",
		"### CHAT HISTORY",
		"### ACTION PLAN (LATEST)",
		"### SUMMARIES",
		"### CONSECUTIVE RESPONSES WITHOUT USER INPUT",
		"### WAITING INFO",
		"### TOOLS",
		"### OUTPUT FORMAT & RULE",
		"### FLAGS",
		"### OTHER CONTEXT",
		"### MASTER INPUT",
	}
	for _, s := range sections {
		if !strings.Contains(prompt, s) {
			t.Errorf("prompt missing section %q", s)
		}
	}

	for _, want := range []string{
		"1. goal one",
		"2. goal two",
		"goal index: 1, goal one",
		"be polite",
		"1. listen\n2. respond",
		"You must respond in Japanese.",
		"b1. ", // chat history entries carry the b prefix
		"a1. ", // event history entries carry the a prefix
		"- if true, you should choose `go_next` command. current value: true",
		"- if true, you should choose `finish` command. current value: false",
		"consecutive_waiting_duration: 3.0 minutes",
		"prev_waiting_duration: 1.0 minutes",
		"*1. reply_message",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	if !strings.Contains(prompt, "This indicates whether you have received a new response from the user: true") {
		t.Error("prompt should flag pending user input")
	}
	if !strings.Contains(prompt, "consecutive message number: -1") {
		t.Error("prompt should carry the consecutive message count")
	}
}

func TestPromptBuildEmptyRoom(t *testing.T) {
	rm := room.NewRoom("alice")
	builder := NewPromptBuilderForRoom(rm, func() room.WaitingInfo { return room.WaitingInfo{} })

	prompt := builder.Build(nil, "goal index: 1, g", "", nil, "")
	if !strings.Contains(prompt, "(empty)") {
		t.Error("empty histories should render the placeholder")
	}
	if !strings.Contains(prompt, "(no plan yet)") {
		t.Error("missing plan should render the placeholder")
	}
	if !strings.Contains(prompt, "(no flags set)") {
		t.Error("nil flags should render the placeholder")
	}
}

func TestPromptBuildSurvivesPanickingAccessor(t *testing.T) {
	rm := room.NewRoom("alice")
	builder := NewPromptBuilderForRoom(rm, func() room.WaitingInfo { return room.WaitingInfo{} })
	builder.GetChatHistory = func() []room.ChatEntry { panic("boom") }
	builder.GetConsecutiveMessageCount = func() int { panic("boom") }
	builder.GetLatestPlan = func() (room.Plan, bool) { panic("boom") }

	prompt := builder.Build([]string{"g"}, "goal index: 1, g", "", nil, "")
	if prompt == "" {
		t.Fatal("prompt should still build")
	}
	if !strings.Contains(prompt, "consecutive message number: 0") {
		t.Error("panicking count accessor should fall back to 0")
	}
	if !strings.Contains(prompt, "(no plan yet)") {
		t.Error("panicking plan accessor should fall back to placeholder")
	}
}

func TestPromptBuildNilAccessors(t *testing.T) {
	builder := &PromptBuilder{}
	prompt := builder.Build([]string{"g"}, "goal index: 1, g", "", nil, "")
	if prompt == "" {
		t.Fatal("prompt should build with nil accessors")
	}
}
