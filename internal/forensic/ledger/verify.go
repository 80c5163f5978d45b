package ledger

import (
	"fmt"

	"pigate/internal/forensic/models"
)

// VerifyResult holds the outcome of a chain verification.
type VerifyResult struct {
	Valid   bool `json:"valid"`
	Checked int  `json:"checked"`
	// FailedIndex is the position of the first broken entry, -1 when valid.
	FailedIndex int    `json:"failed_index"`
	Reason      string `json:"reason,omitempty"`
}

// VerifyIntegrity walks entries in creation order and reports the first entry
// whose previous hash does not match its predecessor or whose stored hash
// does not match its recomputed content digest. An empty log is valid.
func VerifyIntegrity(entries []*models.AuditLogEntry) VerifyResult {
	expectedPrevious := GenesisHash

	for i, entry := range entries {
		if entry == nil {
			return VerifyResult{Checked: i, FailedIndex: i, Reason: "missing entry"}
		}
		if entry.PreviousHash != expectedPrevious {
			return VerifyResult{
				Checked:     i,
				FailedIndex: i,
				Reason:      fmt.Sprintf("previous hash mismatch: expected %s, got %s", expectedPrevious, entry.PreviousHash),
			}
		}
		if recomputed := ComputeHash(entry); recomputed != entry.Hash {
			return VerifyResult{
				Checked:     i,
				FailedIndex: i,
				Reason:      fmt.Sprintf("content hash mismatch: stored %s, recomputed %s", entry.Hash, recomputed),
			}
		}
		expectedPrevious = entry.Hash
	}

	return VerifyResult{Valid: true, Checked: len(entries), FailedIndex: -1}
}
