package activity

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"pigate/internal/forensic/models"
	"pigate/pkg/requestcontext"
)

// DefaultKeyPrefix namespaces the per-actor sorted sets.
const DefaultKeyPrefix = "pigate:activity:"

// RedisHistory stores each actor's operations in a sorted set scored by
// timestamp in microseconds, so every instance sees the same window.
type RedisHistory struct {
	client     *redis.Client
	prefix     string
	window     time.Duration
	maxEntries int64
}

type RedisOption func(*RedisHistory)

func WithKeyPrefix(prefix string) RedisOption {
	return func(h *RedisHistory) {
		if prefix != "" {
			h.prefix = prefix
		}
	}
}

func WithWindow(window time.Duration) RedisOption {
	return func(h *RedisHistory) {
		if window > 0 {
			h.window = window
		}
	}
}

func WithMaxEntries(n int) RedisOption {
	return func(h *RedisHistory) {
		if n > 0 {
			h.maxEntries = int64(n)
		}
	}
}

func NewRedisHistory(client *redis.Client, opts ...RedisOption) *RedisHistory {
	h := &RedisHistory{
		client:     client,
		prefix:     DefaultKeyPrefix,
		window:     DefaultWindow,
		maxEntries: DefaultMaxEntries,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *RedisHistory) key(userID string) string {
	return h.prefix + userID
}

func (h *RedisHistory) Recent(ctx context.Context, userID string) ([]models.RecentOperation, error) {
	from := strconv.FormatInt(requestcontext.Now(ctx).Add(-h.window).UnixMicro(), 10)
	members, err := h.client.ZRangeByScoreWithScores(ctx, h.key(userID), &redis.ZRangeBy{
		Min: from,
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("read activity history: %w", err)
	}

	ops := make([]models.RecentOperation, 0, len(members))
	for _, z := range members {
		ops = append(ops, models.RecentOperation{
			Timestamp:     time.UnixMicro(int64(z.Score)).UTC(),
			OperationType: operationFromMember(z.Member),
		})
	}
	return ops, nil
}

// Record adds op and trims the set to the window and size cap in one round trip.
func (h *RedisHistory) Record(ctx context.Context, userID string, op models.RecentOperation) error {
	key := h.key(userID)
	cutoff := requestcontext.Now(ctx).Add(-h.window).UnixMicro()

	pipe := h.client.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(op.Timestamp.UnixMicro()),
		Member: string(op.OperationType) + "|" + uuid.NewString(),
	})
	pipe.ZRemRangeByScore(ctx, key, "-inf", "("+strconv.FormatInt(cutoff, 10))
	pipe.ZRemRangeByRank(ctx, key, 0, -h.maxEntries-1)
	pipe.Expire(ctx, key, h.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

func operationFromMember(member any) models.OperationType {
	s, _ := member.(string)
	op, _, _ := strings.Cut(s, "|")
	return models.OperationType(op)
}
