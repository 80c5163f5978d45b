package activity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pigate/internal/forensic/models"
	"pigate/pkg/requestcontext"
)

func TestMemoryHistory(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	t.Run("unknown actor has no history", func(t *testing.T) {
		h := NewMemoryHistory(time.Minute, 10)
		ops, err := h.Recent(ctx, "nobody")
		require.NoError(t, err)
		assert.NotNil(t, ops)
		assert.Empty(t, ops)
	})

	t.Run("returns operations inside the window oldest first", func(t *testing.T) {
		h := NewMemoryHistory(time.Minute, 10)
		require.NoError(t, h.Record(ctx, "u1", models.RecentOperation{Timestamp: now.Add(-10 * time.Second), OperationType: models.OperationWithdrawal}))
		require.NoError(t, h.Record(ctx, "u1", models.RecentOperation{Timestamp: now.Add(-30 * time.Second), OperationType: models.OperationNFTMint}))
		require.NoError(t, h.Record(ctx, "u1", models.RecentOperation{Timestamp: now.Add(-2 * time.Minute), OperationType: models.OperationPaymentCreate}))
		require.NoError(t, h.Record(ctx, "u2", models.RecentOperation{Timestamp: now}))

		ops, err := h.Recent(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, ops, 2)
		assert.Equal(t, models.OperationNFTMint, ops[0].OperationType)
		assert.Equal(t, models.OperationWithdrawal, ops[1].OperationType)
	})

	t.Run("window slides with request time", func(t *testing.T) {
		h := NewMemoryHistory(time.Minute, 10)
		require.NoError(t, h.Record(ctx, "u1", models.RecentOperation{Timestamp: now}))

		later := requestcontext.WithTime(context.Background(), now.Add(61*time.Second))
		ops, err := h.Recent(later, "u1")
		require.NoError(t, err)
		assert.Empty(t, ops)
	})

	t.Run("keeps only the newest entries past the cap", func(t *testing.T) {
		h := NewMemoryHistory(time.Minute, 3)
		for i := range 5 {
			require.NoError(t, h.Record(ctx, "u1", models.RecentOperation{Timestamp: now.Add(time.Duration(i-5) * time.Second)}))
		}
		ops, err := h.Recent(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, ops, 3)
		assert.Equal(t, now.Add(-3*time.Second), ops[0].Timestamp)
	})
}
