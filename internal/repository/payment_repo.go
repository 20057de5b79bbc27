package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bank-reconciliation-backend/internal/models"
	"bank-reconciliation-backend/internal/reconerr"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Expose DB if needed
func (r *PaymentRepository) DB() *gorm.DB {
	return r.db
}

// GetByID fetches a single payment scoped to the tenant.
func (r *PaymentRepository) GetByID(tenantID, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.First(&payment, "id = ? AND tenant_id = ?", id, tenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &reconerr.NotFoundError{Resource: "payment", ID: id}
		}
		return nil, err
	}
	return &payment, nil
}

// FindCandidates returns the tenant's payments inside the amount and
// date windows, excluding payments already claimed by a reconciled
// transaction. Ordered by id for reproducible results.
func (r *PaymentRepository) FindCandidates(
	tenantID uuid.UUID,
	amountMin, amountMax decimal.Decimal,
	dateFrom, dateTo time.Time,
) ([]models.Payment, error) {

	linked := r.db.Model(&models.BankTransaction{}).
		Select("linked_payment_id").
		Where("tenant_id = ? AND status = ? AND linked_payment_id IS NOT NULL",
			tenantID, models.StatusConciliada)

	var payments []models.Payment
	err := r.db.
		Where("tenant_id = ?", tenantID).
		Where("amount BETWEEN ? AND ?", amountMin, amountMax).
		Where("payment_date BETWEEN ? AND ?", dateFrom, dateTo).
		Where("id NOT IN (?)", linked).
		Order("id ASC").
		Find(&payments).Error
	return payments, err
}

// SearchPayments used for operator manual search with optional filters
func (r *PaymentRepository) SearchPayments(tenantID uuid.UUID, query string, amount decimal.Decimal) ([]models.Payment, error) {
	var payments []models.Payment

	dbQuery := r.db.Model(&models.Payment{}).Where("tenant_id = ?", tenantID)

	if query != "" {
		likeQuery := "%" + strings.ToLower(query) + "%"
		dbQuery = dbQuery.Where(
			"LOWER(customer_name) LIKE ? OR LOWER(order_ref) LIKE ?",
			likeQuery, likeQuery,
		)
	}
	if amount.IsPositive() {
		dbQuery = dbQuery.Where("amount = ?", amount)
	}

	err := dbQuery.Order("payment_date DESC").Find(&payments).Error
	return payments, err
}

// Create inserts a payment, ignoring duplicates by primary key.
func (r *PaymentRepository) Create(payment *models.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now()
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(payment).Error
}
