package room

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// Message is one chat turn. Immutable once appended.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatEntry is the role/content pair handed to prompt construction.
type ChatEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MessageLog is the append-only chat record of one room.
type MessageLog struct {
	mu       sync.RWMutex
	messages []Message
}

func NewMessageLog() *MessageLog {
	return &MessageLog{}
}

func (l *MessageLog) Add(content, sender string) Message {
	msg := Message{
		ID:        "msg_" + uuid.NewString(),
		Content:   content,
		Sender:    sender,
		Timestamp: time.Now(),
	}
	l.mu.Lock()
	l.messages = append(l.messages, msg)
	l.mu.Unlock()
	return msg
}

func (l *MessageLog) Messages() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

func (l *MessageLog) ChatHistory() []ChatEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]ChatEntry, 0, len(l.messages))
	for _, msg := range l.messages {
		out = append(out, ChatEntry{Role: msg.Sender, Content: msg.Content})
	}
	return out
}

func (l *MessageLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// HasNewMessages reports whether the latest turn came from the user.
func (l *MessageLog) HasNewMessages() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.messages) == 0 {
		return false
	}
	return l.messages[len(l.messages)-1].Sender == SenderUser
}

// ConsecutiveMessageCount counts the trailing run of same-sender messages,
// stopping at the sender switch nearest the end. Assistant runs count
// positive, user runs negative. An empty log yields 0.
func (l *MessageLog) ConsecutiveMessageCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	count := 0
	for i := len(l.messages) - 1; i >= 0; i-- {
		switch l.messages[i].Sender {
		case SenderAssistant:
			if count < 0 {
				return count
			}
			count++
		case SenderUser:
			if count > 0 {
				return count
			}
			count--
		default:
			return count
		}
	}
	return count
}
