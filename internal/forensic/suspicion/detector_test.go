package suspicion

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"pigate/internal/forensic/models"
	"pigate/pkg/requestcontext"
	"pigate/pkg/testutil"
)

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func verifiedActor() *models.Actor {
	return &models.Actor{ID: "u1", Email: "a@example.com", Verified: true}
}

func data(v int64) models.OperationData {
	d := decimal.NewFromInt(v)
	return models.OperationData{Amount: &d}
}

func recent(n int, age time.Duration) []models.RecentOperation {
	ops := make([]models.RecentOperation, n)
	for i := range ops {
		ops[i] = models.RecentOperation{Timestamp: now.Add(-age), OperationType: models.OperationTransfer}
	}
	return ops
}

func TestDetect(t *testing.T) {
	ctx := requestcontext.WithTime(context.Background(), now)
	d := New(DefaultConfig())

	testutil.Given(t, "a verified actor with an ordinary amount", func(t *testing.T) {
		result := d.Detect(ctx, verifiedActor(), models.OperationPaymentCreate, data(100), nil)
		assert.False(t, result.Suspicious)
		assert.Empty(t, result.Indicators)
		assert.Equal(t, models.RiskLow, result.ThreatLevel)
		assert.False(t, result.ShouldBlock)
	})

	testutil.Given(t, "the large transaction boundary", func(t *testing.T) {
		testutil.Then(t, "50000 does not block", func(t *testing.T) {
			result := d.Detect(ctx, verifiedActor(), models.OperationTransfer, data(50_000), nil)
			assert.False(t, result.ShouldBlock)
			assert.NotContains(t, result.Indicators, IndicatorLargeAmount)
		})
		testutil.Then(t, "50001 blocks with critical threat", func(t *testing.T) {
			result := d.Detect(ctx, verifiedActor(), models.OperationTransfer, data(50_001), nil)
			assert.True(t, result.ShouldBlock)
			assert.True(t, result.Suspicious)
			assert.Equal(t, models.RiskCritical, result.ThreatLevel)
			assert.Contains(t, result.Indicators, IndicatorLargeAmount)
		})
	})

	testutil.Given(t, "recent operation history", func(t *testing.T) {
		testutil.Then(t, "five operations inside the window are tolerated", func(t *testing.T) {
			result := d.Detect(ctx, verifiedActor(), models.OperationTransfer, data(10), &models.OperationContext{RecentOperations: recent(5, 10*time.Second)})
			assert.False(t, result.Suspicious)
		})
		testutil.Then(t, "six operations inside the window flag high", func(t *testing.T) {
			result := d.Detect(ctx, verifiedActor(), models.OperationTransfer, data(10), &models.OperationContext{RecentOperations: recent(6, 10*time.Second)})
			assert.Equal(t, []string{IndicatorRapidOperations}, result.Indicators)
			assert.Equal(t, models.RiskHigh, result.ThreatLevel)
			assert.False(t, result.ShouldBlock)
		})
		testutil.Then(t, "old operations are ignored", func(t *testing.T) {
			result := d.Detect(ctx, verifiedActor(), models.OperationTransfer, data(10), &models.OperationContext{RecentOperations: recent(10, 2*time.Minute)})
			assert.False(t, result.Suspicious)
		})
		testutil.Then(t, "future-dated operations are ignored", func(t *testing.T) {
			result := d.Detect(ctx, verifiedActor(), models.OperationTransfer, data(10), &models.OperationContext{RecentOperations: recent(10, -30*time.Second)})
			assert.False(t, result.Suspicious)
		})
	})

	testutil.Given(t, "a new account", func(t *testing.T) {
		created := now.Add(-2 * time.Hour)
		opCtx := &models.OperationContext{UserCreatedAt: &created}

		testutil.Then(t, "amount above the new-account threshold flags", func(t *testing.T) {
			result := d.Detect(ctx, verifiedActor(), models.OperationPaymentCreate, data(1_001), opCtx)
			assert.Equal(t, []string{IndicatorNewAccountLargeAmount}, result.Indicators)
			assert.Equal(t, models.RiskHigh, result.ThreatLevel)
		})
		testutil.Then(t, "small amount does not flag", func(t *testing.T) {
			result := d.Detect(ctx, verifiedActor(), models.OperationPaymentCreate, data(1_000), opCtx)
			assert.False(t, result.Suspicious)
		})
		testutil.Then(t, "actor creation time is used when context has none", func(t *testing.T) {
			actor := verifiedActor()
			actor.CreatedAt = &created
			result := d.Detect(ctx, actor, models.OperationPaymentCreate, data(5_000), nil)
			assert.Contains(t, result.Indicators, IndicatorNewAccountLargeAmount)
		})
	})

	testutil.Given(t, "an unverified or anonymous actor", func(t *testing.T) {
		for name, actor := range map[string]*models.Actor{
			"nil":        nil,
			"unverified": {ID: "u1", Email: "a@example.com"},
			"no email":   {ID: "u1", Verified: true, ExternalID: "pi-1"},
		} {
			testutil.Then(t, name+" flags high without blocking", func(t *testing.T) {
				result := d.Detect(ctx, actor, models.OperationNFTMint, models.OperationData{}, nil)
				assert.Equal(t, []string{IndicatorUnverifiedUser}, result.Indicators)
				assert.Equal(t, models.RiskHigh, result.ThreatLevel)
				assert.False(t, result.ShouldBlock)
			})
		}
	})

	testutil.Given(t, "several triggered rules", func(t *testing.T) {
		created := now.Add(-time.Hour)
		result := d.Detect(ctx, nil, models.OperationTransfer, data(60_000), &models.OperationContext{
			RecentOperations: recent(7, time.Second),
			UserCreatedAt:    &created,
		})
		assert.Equal(t, []string{
			IndicatorRapidOperations,
			IndicatorLargeAmount,
			IndicatorNewAccountLargeAmount,
			IndicatorUnverifiedUser,
		}, result.Indicators)
		assert.Equal(t, models.RiskCritical, result.ThreatLevel)
		assert.True(t, result.ShouldBlock)
	})
}

func TestNewFillsDefaults(t *testing.T) {
	d := New(Config{RapidOperationCount: 2})
	assert.Equal(t, 2, d.cfg.RapidOperationCount)
	assert.Equal(t, time.Minute, d.cfg.RapidWindow)
	assert.True(t, d.cfg.LargeTransactionThreshold.Equal(decimal.NewFromInt(50_000)))
}
