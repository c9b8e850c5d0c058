package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const orphanSetKey = "podcastify:media:orphans"

// OrphanQueue holds public ids of uploaded objects that no record references.
type OrphanQueue interface {
	Push(ctx context.Context, publicID string) error
	Pop(ctx context.Context, n int) ([]string, error)
}

// RedisOrphanQueue keeps orphans in a Redis set so repeated pushes collapse.
type RedisOrphanQueue struct {
	rdb *redis.Client
	key string
}

func NewRedisOrphanQueue(rdb *redis.Client) *RedisOrphanQueue {
	return &RedisOrphanQueue{rdb: rdb, key: orphanSetKey}
}

func (q *RedisOrphanQueue) Push(ctx context.Context, publicID string) error {
	return q.rdb.SAdd(ctx, q.key, publicID).Err()
}

func (q *RedisOrphanQueue) Pop(ctx context.Context, n int) ([]string, error) {
	ids, err := q.rdb.SPopN(ctx, q.key, int64(n)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return ids, err
}

// Len reports how many orphans are waiting.
func (q *RedisOrphanQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.SCard(ctx, q.key).Result()
}

// SweepOrphans deletes up to batch queued orphans. Objects the backend refused
// to delete go back on the queue for the next run.
func (s *Store) SweepOrphans(ctx context.Context, batch int) (int, error) {
	if s.orphans == nil {
		return 0, nil
	}
	ids, err := s.orphans.Pop(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("pop orphans: %w", err)
	}

	removed := 0
	for _, id := range ids {
		if err := s.backend.Remove(ctx, id); err != nil {
			s.metrics.MediaOp("sweep", false)
			s.logger.Warn("sweep delete failed", zap.String("public_id", id), zap.Error(err))
			if pushErr := s.orphans.Push(ctx, id); pushErr != nil {
				s.logger.Error("requeue orphan failed", zap.String("public_id", id), zap.Error(pushErr))
			}
			continue
		}
		s.metrics.MediaOp("sweep", true)
		removed++
	}
	if removed > 0 {
		s.logger.Info("swept orphaned media", zap.Int("removed", removed), zap.Int("popped", len(ids)))
	}
	return removed, nil
}
