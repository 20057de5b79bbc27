// Package reconerr defines the error taxonomy of the reconciliation
// core. Every error carries a stable kind string so batch results and
// HTTP handlers can classify failures without matching on messages.
package reconerr

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"bank-reconciliation-backend/internal/models"
)

const (
	KindDuplicateImport      = "DUPLICATE_IMPORT"
	KindNoTransactions       = "NO_TRANSACTIONS"
	KindInvalidTransition    = "INVALID_TRANSITION"
	KindPaymentAlreadyLinked = "PAYMENT_ALREADY_LINKED"
	KindNotFound             = "NOT_FOUND"
	KindInternal             = "INTERNAL"
)

// Kinder is implemented by every error in this package.
type Kinder interface {
	Kind() string
}

// KindOf classifies any error, unwrapping as needed.
func KindOf(err error) string {
	var k Kinder
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindInternal
}

// DuplicateImportError rejects a statement file whose bytes were
// already imported for the same tenant.
type DuplicateImportError struct {
	TenantID uuid.UUID
	FileHash string
}

func (e *DuplicateImportError) Error() string {
	return fmt.Sprintf("statement with hash %s already imported for tenant %s", e.FileHash, e.TenantID)
}

func (e *DuplicateImportError) Kind() string { return KindDuplicateImport }

// NoTransactionsError rejects an import whose parsed row list is empty.
type NoTransactionsError struct{}

func (e *NoTransactionsError) Error() string {
	return "statement file contains no transactions"
}

func (e *NoTransactionsError) Kind() string { return KindNoTransactions }

// InvalidTransitionError signals an operation attempted from a status
// that does not allow it.
type InvalidTransitionError struct {
	Op   string
	From models.ReconciliationStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s transaction in status %s", e.Op, e.From)
}

func (e *InvalidTransitionError) Kind() string { return KindInvalidTransition }

// PaymentAlreadyLinkedError signals that the target payment is already
// claimed by a reconciled transaction of the same tenant.
type PaymentAlreadyLinkedError struct {
	PaymentID uuid.UUID
}

func (e *PaymentAlreadyLinkedError) Error() string {
	return fmt.Sprintf("payment %s is already linked to another reconciled transaction", e.PaymentID)
}

func (e *PaymentAlreadyLinkedError) Kind() string { return KindPaymentAlreadyLinked }

// NotFoundError covers both genuinely missing rows and rows belonging
// to another tenant; callers cannot tell the two apart.
type NotFoundError struct {
	Resource string
	ID       uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Kind() string { return KindNotFound }
