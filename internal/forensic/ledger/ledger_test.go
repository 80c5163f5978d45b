package ledger

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pigate/internal/forensic/models"
)

var fixedTime = time.Date(2026, 5, 1, 12, 0, 0, 123456789, time.UTC)

func testDraft() Draft {
	amount := decimal.NewFromInt(100)
	return Draft{
		Timestamp:     fixedTime,
		OperationType: models.OperationPaymentCreate,
		OperationData: models.OperationData{Amount: &amount, Domain: "commerce"},
		Actor:         &models.Actor{ID: "u1", Email: "a@b.com", Verified: true},
		IdentityCheck: models.IdentityCheck{Verified: true, RiskLevel: models.RiskLow},
		ValidationResult: models.ValidationResult{
			Valid:     true,
			RiskLevel: models.RiskLow,
		},
		SuspicionResult: models.SuspicionResult{ThreatLevel: models.RiskLow},
		Approved:        true,
		RiskLevel:       models.RiskLow,
		RequestMetadata: models.RequestMeta{IP: "203.0.113.7"},
	}
}

func sealedChain(t *testing.T, n int) []*models.AuditLogEntry {
	t.Helper()
	entries := make([]*models.AuditLogEntry, 0, n)
	prev := GenesisHash
	for i := 0; i < n; i++ {
		draft := testDraft()
		draft.Timestamp = fixedTime.Add(time.Duration(i) * time.Second)
		entry := Build(draft)
		Seal(entry, prev)
		prev = entry.Hash
		entries = append(entries, entry)
	}
	return entries
}

func TestBuild(t *testing.T) {
	t.Run("copies actor identity and truncates timestamp", func(t *testing.T) {
		entry := Build(testDraft())

		assert.NotEmpty(t, entry.ID)
		assert.Equal(t, "u1", entry.ActorUserID)
		assert.Equal(t, "a@b.com", entry.ActorEmail)
		assert.Equal(t, fixedTime.Truncate(time.Microsecond), entry.Timestamp)
		assert.Empty(t, entry.Hash, "build must not seal")
	})

	t.Run("nil actor leaves actor fields empty", func(t *testing.T) {
		draft := testDraft()
		draft.Actor = nil
		entry := Build(draft)
		assert.Empty(t, entry.ActorUserID)
	})

	t.Run("fresh ids per build", func(t *testing.T) {
		assert.NotEqual(t, Build(testDraft()).ID, Build(testDraft()).ID)
	})
}

func TestComputeHash(t *testing.T) {
	t.Run("identical content hashes identically", func(t *testing.T) {
		a := Build(testDraft())
		b := *a
		Seal(a, GenesisHash)
		Seal(&b, GenesisHash)
		assert.Equal(t, a.Hash, b.Hash)
		assert.Regexp(t, `^sha256:[0-9a-f]{64}$`, a.Hash)
	})

	t.Run("hash field is not an input", func(t *testing.T) {
		entry := Build(testDraft())
		Seal(entry, GenesisHash)
		before := ComputeHash(entry)
		entry.Hash = "sha256:tampered"
		assert.Equal(t, before, ComputeHash(entry))
	})

	t.Run("nil and empty slices hash the same", func(t *testing.T) {
		entry := Build(testDraft())
		entry.IdentityCheck.Reasons = nil
		withNil := ComputeHash(entry)
		entry.IdentityCheck.Reasons = []string{}
		assert.Equal(t, withNil, ComputeHash(entry))
	})

	mutations := map[string]func(e *models.AuditLogEntry){
		"id":             func(e *models.AuditLogEntry) { e.ID = "other" },
		"timestamp":      func(e *models.AuditLogEntry) { e.Timestamp = e.Timestamp.Add(time.Microsecond) },
		"operation type": func(e *models.AuditLogEntry) { e.OperationType = models.OperationWithdrawal },
		"amount": func(e *models.AuditLogEntry) {
			a := decimal.NewFromInt(101)
			e.OperationData.Amount = &a
		},
		"domain":        func(e *models.AuditLogEntry) { e.OperationData.Domain = "finance" },
		"actor id":      func(e *models.AuditLogEntry) { e.ActorUserID = "u2" },
		"actor email":   func(e *models.AuditLogEntry) { e.ActorEmail = "x@b.com" },
		"external id":   func(e *models.AuditLogEntry) { e.ActorExternalID = "pi-1" },
		"identity":      func(e *models.AuditLogEntry) { e.IdentityCheck.Verified = false },
		"validation":    func(e *models.AuditLogEntry) { e.ValidationResult.Errors = []string{"x"} },
		"suspicion":     func(e *models.AuditLogEntry) { e.SuspicionResult.ShouldBlock = true },
		"approved":      func(e *models.AuditLogEntry) { e.Approved = false },
		"risk":          func(e *models.AuditLogEntry) { e.RiskLevel = models.RiskHigh },
		"request ip":    func(e *models.AuditLogEntry) { e.RequestMetadata.IP = "198.51.100.1" },
		"previous hash": func(e *models.AuditLogEntry) { e.PreviousHash = "sha256:other" },
		"extra payload": func(e *models.AuditLogEntry) { e.OperationData.Extra = map[string]any{"memo": "x"} },
	}
	for name, mutate := range mutations {
		t.Run("changing "+name+" changes the hash", func(t *testing.T) {
			entry := Build(testDraft())
			Seal(entry, GenesisHash)
			original := entry.Hash

			mutate(entry)
			assert.NotEqual(t, original, ComputeHash(entry))
		})
	}
}

func TestVerifyIntegrity(t *testing.T) {
	t.Run("empty log is valid", func(t *testing.T) {
		result := VerifyIntegrity(nil)
		assert.True(t, result.Valid)
		assert.Equal(t, -1, result.FailedIndex)
	})

	t.Run("intact chain is valid", func(t *testing.T) {
		result := VerifyIntegrity(sealedChain(t, 5))
		assert.True(t, result.Valid)
		assert.Equal(t, 5, result.Checked)
	})

	t.Run("field mutation reported at its index", func(t *testing.T) {
		for k := 0; k < 5; k++ {
			chain := sealedChain(t, 5)
			chain[k].OperationData.Domain = "tampered"

			result := VerifyIntegrity(chain)
			require.False(t, result.Valid)
			assert.Equal(t, k, result.FailedIndex)
			assert.Contains(t, result.Reason, "content hash mismatch")
		}
	})

	t.Run("direct hash mutation detected", func(t *testing.T) {
		chain := sealedChain(t, 4)
		chain[2].Hash = "sha256:deadbeef"

		result := VerifyIntegrity(chain)
		require.False(t, result.Valid)
		assert.Equal(t, 2, result.FailedIndex)
	})

	t.Run("recomputed hash on mutated entry breaks the next link", func(t *testing.T) {
		chain := sealedChain(t, 4)
		chain[1].Approved = false
		chain[1].Hash = ComputeHash(chain[1])

		result := VerifyIntegrity(chain)
		require.False(t, result.Valid)
		assert.Equal(t, 2, result.FailedIndex)
		assert.Contains(t, result.Reason, "previous hash mismatch")
	})

	t.Run("dropped entry detected", func(t *testing.T) {
		chain := sealedChain(t, 4)
		chain = append(chain[:1], chain[2:]...)

		result := VerifyIntegrity(chain)
		require.False(t, result.Valid)
		assert.Equal(t, 1, result.FailedIndex)
	})

	t.Run("first entry must reference genesis", func(t *testing.T) {
		chain := sealedChain(t, 2)
		Seal(chain[0], "sha256:not-genesis")

		result := VerifyIntegrity(chain)
		require.False(t, result.Valid)
		assert.Equal(t, 0, result.FailedIndex)
	})
}

func TestInvalidUTF8SurvivesStorageRoundTrip(t *testing.T) {
	prev := GenesisHash
	var stored []*models.AuditLogEntry
	for i, ua := range []string{"bot\xff", "curl/8.5.0"} {
		draft := testDraft()
		draft.Timestamp = fixedTime.Add(time.Duration(i) * time.Second)
		draft.RequestMetadata = models.RequestMeta{IP: "203.0.113.7\xfe", UserAgent: ua, Origin: "https://commerce.pi\xc3"}
		draft.OperationData.Extra = map[string]any{"memo\xff": []any{"gift\xfe", 3.0}}
		draft.IdentityCheck.Reasons = []string{"denied \xff"}
		entry := Build(draft)
		Seal(entry, prev)
		prev = entry.Hash

		// JSONB keeps U+FFFD where the encoder escaped a bad byte.
		raw, err := json.Marshal(entry)
		require.NoError(t, err)
		var decoded models.AuditLogEntry
		require.NoError(t, json.Unmarshal(raw, &decoded))
		stored = append(stored, &decoded)
	}

	assert.Equal(t, "bot\uFFFD", stored[0].RequestMetadata.UserAgent)
	assert.Contains(t, stored[0].OperationData.Extra, "memo\uFFFD")
	result := VerifyIntegrity(stored)
	assert.True(t, result.Valid, result.Reason)
	assert.Equal(t, 2, result.Checked)
}

func TestBuildDoesNotMutateDraftExtra(t *testing.T) {
	draft := testDraft()
	draft.OperationData.Extra = map[string]any{"note": "ok\xff"}

	entry := Build(draft)

	assert.Equal(t, "ok\xff", draft.OperationData.Extra["note"])
	assert.Equal(t, "ok\uFFFD", entry.OperationData.Extra["note"])
}
