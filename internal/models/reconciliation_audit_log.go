package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	AuditActionReconcile = "RECONCILE"
	AuditActionIgnore    = "IGNORE"
	AuditActionUnlink    = "UNLINK"
)

// ReconciliationAuditLog records every applied status transition.
type ReconciliationAuditLog struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID        uuid.UUID `gorm:"index"`
	TransactionID   uuid.UUID `gorm:"index"`
	Action          string
	PreviousPayment *uuid.UUID
	NewPayment      *uuid.UUID
	Details         datatypes.JSON
	CreatedAt       time.Time
}
