// Package history keeps per-chat conversation transcripts, keyed by chat
// id. Chats never interact, so there is no cross-chat coordination; within
// one chat the transport delivers messages sequentially and concurrent
// mutation of the same chat is an accepted limitation.
package history

import (
	"context"
	"sync"
	"time"
)

// Message is one turn of a conversation.
type Message struct {
	Role string    `json:"role"` // "user" or "assistant"
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	// DefaultMaxMessages caps the stored transcript per chat.
	DefaultMaxMessages = 50
)

// Store is the conversation history contract.
type Store interface {
	Append(ctx context.Context, chatID int64, m Message) error
	Recent(ctx context.Context, chatID int64, limit int) ([]Message, error)
	Clear(ctx context.Context, chatID int64) error
}

// MemoryStore is the in-process implementation, also the fallback when
// Redis is not configured.
type MemoryStore struct {
	mu    sync.RWMutex
	chats map[int64][]Message
	max   int
}

func NewMemoryStore(maxMessages int) *MemoryStore {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}
	return &MemoryStore{chats: make(map[int64][]Message), max: maxMessages}
}

func (s *MemoryStore) Append(ctx context.Context, chatID int64, m Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := append(s.chats[chatID], m)
	if len(msgs) > s.max {
		msgs = msgs[len(msgs)-s.max:]
	}
	s.chats[chatID] = msgs
	return nil
}

func (s *MemoryStore) Recent(ctx context.Context, chatID int64, limit int) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.chats[chatID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *MemoryStore) Clear(ctx context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chats, chatID)
	return nil
}
