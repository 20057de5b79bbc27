package reconciliation

import (
	"log"

	"github.com/google/uuid"

	"bank-reconciliation-backend/internal/models"
	"bank-reconciliation-backend/internal/reconerr"
)

// MatchInstruction links one transaction to one payment.
type MatchInstruction struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	PaymentID     uuid.UUID `json:"payment_id"`
}

// IgnoreInstruction marks one transaction as having no counterpart.
type IgnoreInstruction struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	Note          string    `json:"note"`
}

// BatchFailure records one failed item without aborting the batch.
type BatchFailure struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	Kind          string    `json:"kind"`
	Message       string    `json:"message"`
}

type BatchResult struct {
	MatchedCount int            `json:"matched_count"`
	IgnoredCount int            `json:"ignored_count"`
	FailedCount  int            `json:"failed_count"`
	Failures     []BatchFailure `json:"failures"`
}

// ApplyBatch applies operator-confirmed decisions one by one, matches
// first, then ignores, in input order. Each item is atomic on its own;
// a failure is recorded against its item and never rolls back or stops
// the others, since one conflicting pair should not invalidate dozens
// of unrelated decisions.
func (s *Service) ApplyBatch(
	tenantID uuid.UUID,
	matches []MatchInstruction,
	ignores []IgnoreInstruction,
) BatchResult {

	var result BatchResult
	touched := make(map[uuid.UUID]bool)

	for _, m := range matches {
		tx, err := s.Reconcile(tenantID, m.TransactionID, m.PaymentID, models.MethodManual)
		if err != nil {
			result.FailedCount++
			result.Failures = append(result.Failures, BatchFailure{
				TransactionID: m.TransactionID,
				Kind:          reconerr.KindOf(err),
				Message:       err.Error(),
			})
			continue
		}
		result.MatchedCount++
		touched[tx.StatementID] = true
	}

	for _, ig := range ignores {
		tx, err := s.Ignore(tenantID, ig.TransactionID, ig.Note)
		if err != nil {
			result.FailedCount++
			result.Failures = append(result.Failures, BatchFailure{
				TransactionID: ig.TransactionID,
				Kind:          reconerr.KindOf(err),
				Message:       err.Error(),
			})
			continue
		}
		result.IgnoredCount++
		touched[tx.StatementID] = true
	}

	for statementID := range touched {
		if err := s.RecomputeStatus(tenantID, statementID); err != nil {
			log.Println("recompute statement status:", err)
		}
	}
	return result
}
