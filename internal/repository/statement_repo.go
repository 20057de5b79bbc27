package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bank-reconciliation-backend/internal/models"
	"bank-reconciliation-backend/internal/reconerr"
)

type StatementRepository struct {
	db *gorm.DB
}

func NewStatementRepository(db *gorm.DB) *StatementRepository {
	return &StatementRepository{db: db}
}

func (r *StatementRepository) DB() *gorm.DB {
	return r.db
}

// GetByID fetches one statement scoped to the tenant.
func (r *StatementRepository) GetByID(tenantID, id uuid.UUID) (*models.BankStatement, error) {
	var stmt models.BankStatement
	err := r.db.First(&stmt, "id = ? AND tenant_id = ?", id, tenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &reconerr.NotFoundError{Resource: "statement", ID: id}
		}
		return nil, err
	}
	return &stmt, nil
}

// ExistsByHash reports whether the tenant already imported a file with
// this content hash.
func (r *StatementRepository) ExistsByHash(tenantID uuid.UUID, fileHash string) (bool, error) {
	var count int64
	err := r.db.Model(&models.BankStatement{}).
		Where("tenant_id = ? AND file_hash = ?", tenantID, fileHash).
		Count(&count).Error
	return count > 0, err
}
