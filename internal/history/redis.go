package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps transcripts in Redis lists so history survives restarts.
type RedisStore struct {
	client *redis.Client
	max    int64
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, maxMessages int, ttl time.Duration) *RedisStore {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}
	return &RedisStore{client: client, max: int64(maxMessages), ttl: ttl}
}

func chatKey(chatID int64) string {
	return fmt.Sprintf("chat:history:%d", chatID)
}

func (s *RedisStore) Append(ctx context.Context, chatID int64, m Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	key := chatKey(chatID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, -s.max, -1)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (s *RedisStore) Recent(ctx context.Context, chatID int64, limit int) ([]Message, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}
	raw, err := s.client.LRange(ctx, chatKey(chatID), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	msgs := make([]Message, 0, len(raw))
	for _, item := range raw {
		var m Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			continue // skip corrupted entries
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (s *RedisStore) Clear(ctx context.Context, chatID int64) error {
	if err := s.client.Del(ctx, chatKey(chatID)).Err(); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
