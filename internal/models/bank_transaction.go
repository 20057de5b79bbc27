package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BankTransaction is one line of an imported statement. Only the
// reconciliation fields (Status, LinkedPaymentID, Method, ReconciledAt,
// Note) ever change after ingestion.
type BankTransaction struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	StatementID     uuid.UUID `gorm:"index;uniqueIndex:uidx_statement_bank_ref,priority:1"`
	TenantID        uuid.UUID `gorm:"index;uniqueIndex:uidx_payment_link,priority:1"`
	TransactionDate time.Time `gorm:"column:transaction_date"`
	PostingDate     time.Time
	Amount          decimal.Decimal      `gorm:"type:decimal(14,2);index"`
	Direction       TransactionDirection `gorm:"index"`
	Description     string
	BankReference   string `gorm:"uniqueIndex:uidx_statement_bank_ref,priority:2,where:bank_reference <> ''"`
	CategoryHint    string
	Status          ReconciliationStatus `gorm:"index"`
	LinkedPaymentID *uuid.UUID           `gorm:"uniqueIndex:uidx_payment_link,priority:2,where:status = 'CONCILIADA'"`
	Method          *ReconciliationMethod
	ReconciledAt    *time.Time
	Note            *string
	CreatedAt       time.Time
}
