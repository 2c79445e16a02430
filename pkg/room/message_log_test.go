package room

import (
	"strings"
	"testing"
)

func TestMessageLogOrder(t *testing.T) {
	log := NewMessageLog()
	log.Add("hello", SenderUser)
	log.Add("hi there", SenderAssistant)
	log.Add("how are you", SenderUser)

	msgs := log.Messages()
	if len(msgs) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(msgs))
	}

	want := []struct {
		content string
		sender  string
	}{
		{"hello", SenderUser},
		{"hi there", SenderAssistant},
		{"how are you", SenderUser},
	}
	for i, w := range want {
		if msgs[i].Content != w.content || msgs[i].Sender != w.sender {
			t.Errorf("message %d = (%q, %q), want (%q, %q)", i, msgs[i].Content, msgs[i].Sender, w.content, w.sender)
		}
	}

	for i, msg := range msgs {
		if !strings.HasPrefix(msg.ID, "msg_") {
			t.Errorf("message %d id %q missing msg_ prefix", i, msg.ID)
		}
		if msg.Timestamp.IsZero() {
			t.Errorf("message %d has zero timestamp", i)
		}
	}
}

func TestChatHistory(t *testing.T) {
	log := NewMessageLog()
	log.Add("question", SenderUser)
	log.Add("answer", SenderAssistant)

	history := log.ChatHistory()
	if len(history) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(history))
	}
	if history[0].Role != SenderUser || history[0].Content != "question" {
		t.Errorf("entry 0 = %+v, want user/question", history[0])
	}
	if history[1].Role != SenderAssistant || history[1].Content != "answer" {
		t.Errorf("entry 1 = %+v, want assistant/answer", history[1])
	}
}

func TestHasNewMessages(t *testing.T) {
	log := NewMessageLog()
	if log.HasNewMessages() {
		t.Error("empty log should report no new messages")
	}

	log.Add("hello", SenderUser)
	if !log.HasNewMessages() {
		t.Error("log ending with a user message should report new messages")
	}

	log.Add("hi", SenderAssistant)
	if log.HasNewMessages() {
		t.Error("log ending with an assistant message should not report new messages")
	}
}

func TestConsecutiveMessageCount(t *testing.T) {
	tests := []struct {
		name     string
		senders  []string
		expected int
	}{
		{"empty log", nil, 0},
		{"single user message", []string{SenderUser}, -1},
		{"single assistant message", []string{SenderAssistant}, 1},
		{"user then two assistant", []string{SenderUser, SenderAssistant, SenderAssistant}, 2},
		{"assistant then two user", []string{SenderAssistant, SenderUser, SenderUser}, -2},
		{"three user in a row", []string{SenderUser, SenderUser, SenderUser}, -3},
		{"alternating ends on assistant", []string{SenderUser, SenderAssistant}, 1},
		{"run broken by sender switch", []string{SenderAssistant, SenderAssistant, SenderUser, SenderAssistant}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := NewMessageLog()
			for _, sender := range tt.senders {
				log.Add("m", sender)
			}
			if got := log.ConsecutiveMessageCount(); got != tt.expected {
				t.Errorf("ConsecutiveMessageCount() = %d, want %d", got, tt.expected)
			}
		})
	}
}
