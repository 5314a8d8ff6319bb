package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// HistoryStore tracks which questions a user has already been served, keyed
// by user and certification. Implementations must be safe for concurrent use.
type HistoryStore interface {
	SeenQuestions(ctx context.Context, userID, certification string) (map[string]bool, error)
	RecordQuestions(ctx context.Context, userID, certification string, questionIDs []string) error
}

// RedisHistoryStore keeps per-user exposure sets in Redis with a rolling TTL
// so history ages out instead of growing forever.
type RedisHistoryStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisHistoryStore(client *redis.Client, ttl time.Duration) *RedisHistoryStore {
	if ttl <= 0 {
		ttl = 90 * 24 * time.Hour
	}
	return &RedisHistoryStore{client: client, ttl: ttl}
}

func historyKey(userID, certification string) string {
	return fmt.Sprintf("history:%s:%s", userID, certification)
}

// SeenQuestions returns the set of question ids previously recorded for the
// user and certification.
func (s *RedisHistoryStore) SeenQuestions(ctx context.Context, userID, certification string) (map[string]bool, error) {
	members, err := s.client.SMembers(ctx, historyKey(userID, certification)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load question history: %w", err)
	}

	seen := make(map[string]bool, len(members))
	for _, m := range members {
		seen[m] = true
	}
	return seen, nil
}

// RecordQuestions adds served question ids to the user's history and renews
// the expiry window.
func (s *RedisHistoryStore) RecordQuestions(ctx context.Context, userID, certification string, questionIDs []string) error {
	if len(questionIDs) == 0 {
		return nil
	}

	key := historyKey(userID, certification)
	members := make([]interface{}, len(questionIDs))
	for i, id := range questionIDs {
		members[i] = id
	}

	pipe := s.client.Pipeline()
	pipe.SAdd(ctx, key, members...)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record question history: %w", err)
	}
	return nil
}
