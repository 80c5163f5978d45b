//go:build integration

package activity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pigate/internal/forensic/models"
	"pigate/pkg/requestcontext"
	"pigate/pkg/testutil/containers"
)

func TestRedisHistory(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	now := time.Now().UTC().Truncate(time.Microsecond)
	ctx := requestcontext.WithTime(context.Background(), now)
	require.NoError(t, rc.FlushAll(ctx))

	h := NewRedisHistory(rc.Client, WithKeyPrefix("test:activity:"), WithWindow(time.Minute), WithMaxEntries(3))

	require.NoError(t, h.Record(ctx, "u1", models.RecentOperation{Timestamp: now.Add(-2 * time.Minute), OperationType: models.OperationPaymentCreate}))
	for i := range 4 {
		require.NoError(t, h.Record(ctx, "u1", models.RecentOperation{
			Timestamp:     now.Add(time.Duration(i-4) * time.Second),
			OperationType: models.OperationWithdrawal,
		}))
	}

	ops, err := h.Recent(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, ops, 3)
	assert.Equal(t, now.Add(-3*time.Second), ops[0].Timestamp)
	assert.Equal(t, models.OperationWithdrawal, ops[2].OperationType)

	ttl, err := rc.Client.TTL(ctx, "test:activity:u1").Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)

	empty, err := h.Recent(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
