package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BankStatement struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID       uuid.UUID `gorm:"index;uniqueIndex:uidx_tenant_file_hash,priority:1"`
	AccountRef     string
	FileHash       string `gorm:"uniqueIndex:uidx_tenant_file_hash,priority:2"`
	PeriodStart    *time.Time
	PeriodEnd      *time.Time
	OpeningBalance *decimal.Decimal `gorm:"type:decimal(14,2)"`
	ClosingBalance *decimal.Decimal `gorm:"type:decimal(14,2)"`
	Status         StatementStatus  `gorm:"index"`
	ImportedAt     time.Time
	CreatedAt      time.Time
}
