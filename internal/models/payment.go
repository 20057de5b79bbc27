package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is a record of money received, owned by the payment ledger.
// Reconciliation never mutates it; transactions hold a back-reference.
type Payment struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID     uuid.UUID       `gorm:"index"`
	PaymentDate  time.Time       `gorm:"index"`
	Amount       decimal.Decimal `gorm:"type:decimal(14,2);index"`
	Method       string
	OrderRef     string
	CustomerName string `gorm:"index"`
	CreatedAt    time.Time
}
