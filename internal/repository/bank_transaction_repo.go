package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bank-reconciliation-backend/internal/models"
	"bank-reconciliation-backend/internal/reconerr"
)

type BankTransactionRepository struct {
	db *gorm.DB
}

func NewBankTransactionRepository(db *gorm.DB) *BankTransactionRepository {
	return &BankTransactionRepository{db: db}
}

func (r *BankTransactionRepository) DB() *gorm.DB {
	return r.db
}

// GetByID fetches one transaction scoped to the tenant.
func (r *BankTransactionRepository) GetByID(tenantID, id uuid.UUID) (*models.BankTransaction, error) {
	var tx models.BankTransaction
	err := r.db.First(&tx, "id = ? AND tenant_id = ?", id, tenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &reconerr.NotFoundError{Resource: "transaction", ID: id}
		}
		return nil, err
	}
	return &tx, nil
}

// UnmatchedCredits returns the statement's CREDIT transactions still in
// NAO_CONCILIADA, in insertion order.
func (r *BankTransactionRepository) UnmatchedCredits(tenantID, statementID uuid.UUID) ([]models.BankTransaction, error) {
	var txs []models.BankTransaction
	err := r.db.
		Where("tenant_id = ? AND statement_id = ?", tenantID, statementID).
		Where("direction = ? AND status = ?", models.DirectionCredit, models.StatusNaoConciliada).
		Order("created_at ASC, id ASC").
		Find(&txs).Error
	return txs, err
}

// ListByStatement pages through a statement's transactions with an
// optional status filter and an id cursor.
func (r *BankTransactionRepository) ListByStatement(
	tenantID, statementID uuid.UUID,
	status string,
	cursor string,
	limit int,
) ([]models.BankTransaction, string, bool, error) {

	var txs []models.BankTransaction
	query := r.db.
		Where("tenant_id = ? AND statement_id = ?", tenantID, statementID).
		Order("id ASC").
		Limit(limit + 1)

	if status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}
	if cursor != "" {
		query = query.Where("id > ?", cursor)
	}

	if err := query.Find(&txs).Error; err != nil {
		return nil, "", false, err
	}

	hasMore := false
	var nextCursor string
	if len(txs) > limit {
		hasMore = true
		nextCursor = txs[limit-1].ID.String()
		txs = txs[:limit]
	}
	return txs, nextCursor, hasMore, nil
}
