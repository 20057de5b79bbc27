// Package reconciliation drives the per-transaction status machine,
// the batch orchestrator and statement-level aggregates.
package reconciliation

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bank-reconciliation-backend/internal/models"
	"bank-reconciliation-backend/internal/reconerr"
	"bank-reconciliation-backend/internal/repository"
)

type Service struct {
	transactionRepo *repository.BankTransactionRepository
	paymentRepo     *repository.PaymentRepository
	statementRepo   *repository.StatementRepository
	db              *gorm.DB
}

func NewService(
	transactionRepo *repository.BankTransactionRepository,
	paymentRepo *repository.PaymentRepository,
	statementRepo *repository.StatementRepository,
) *Service {
	return &Service{
		transactionRepo: transactionRepo,
		paymentRepo:     paymentRepo,
		statementRepo:   statementRepo,
		db:              transactionRepo.DB(),
	}
}

// Reconcile links an unmatched transaction to a payment. The status
// update is conditional on the prior status, so two concurrent calls on
// the same row cannot both win; the partial unique index on
// (tenant_id, linked_payment_id) backstops double-linking across rows.
func (s *Service) Reconcile(
	tenantID, txID, paymentID uuid.UUID,
	method models.ReconciliationMethod,
) (*models.BankTransaction, error) {

	if !method.Valid() {
		return nil, fmt.Errorf("unknown reconciliation method %q", method)
	}

	var updated models.BankTransaction
	err := s.db.Transaction(func(dbtx *gorm.DB) error {
		tx, err := s.loadTransaction(dbtx, tenantID, txID)
		if err != nil {
			return err
		}
		if !tx.Status.AllowsReconcile() {
			return &reconerr.InvalidTransitionError{Op: "reconcile", From: tx.Status}
		}

		var payment models.Payment
		if err := dbtx.First(&payment, "id = ? AND tenant_id = ?", paymentID, tenantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &reconerr.NotFoundError{Resource: "payment", ID: paymentID}
			}
			return err
		}

		var linked int64
		err = dbtx.Model(&models.BankTransaction{}).
			Where("tenant_id = ? AND linked_payment_id = ? AND status = ?",
				tenantID, paymentID, models.StatusConciliada).
			Count(&linked).Error
		if err != nil {
			return err
		}
		if linked > 0 {
			return &reconerr.PaymentAlreadyLinkedError{PaymentID: paymentID}
		}

		now := time.Now()
		res := dbtx.Model(&models.BankTransaction{}).
			Where("id = ? AND tenant_id = ? AND status = ?", txID, tenantID, models.StatusNaoConciliada).
			Updates(map[string]interface{}{
				"status":            models.StatusConciliada,
				"linked_payment_id": paymentID,
				"method":            method,
				"reconciled_at":     now,
			})
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return &reconerr.PaymentAlreadyLinkedError{PaymentID: paymentID}
			}
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &reconerr.InvalidTransitionError{Op: "reconcile", From: tx.Status}
		}

		if err := s.appendAudit(dbtx, tenantID, txID, models.AuditActionReconcile, nil, &paymentID, map[string]interface{}{
			"method": method,
		}); err != nil {
			return err
		}
		return dbtx.First(&updated, "id = ?", txID).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Ignore marks an unmatched transaction as having no counterpart. The
// note may be empty.
func (s *Service) Ignore(tenantID, txID uuid.UUID, note string) (*models.BankTransaction, error) {
	var updated models.BankTransaction
	err := s.db.Transaction(func(dbtx *gorm.DB) error {
		tx, err := s.loadTransaction(dbtx, tenantID, txID)
		if err != nil {
			return err
		}
		if !tx.Status.AllowsIgnore() {
			return &reconerr.InvalidTransitionError{Op: "ignore", From: tx.Status}
		}

		res := dbtx.Model(&models.BankTransaction{}).
			Where("id = ? AND tenant_id = ? AND status = ?", txID, tenantID, models.StatusNaoConciliada).
			Updates(map[string]interface{}{
				"status": models.StatusIgnorada,
				"note":   note,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &reconerr.InvalidTransitionError{Op: "ignore", From: tx.Status}
		}

		if err := s.appendAudit(dbtx, tenantID, txID, models.AuditActionIgnore, nil, nil, map[string]interface{}{
			"note": note,
		}); err != nil {
			return err
		}
		return dbtx.First(&updated, "id = ?", txID).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Unlink undoes a CONCILIADA or IGNORADA transition, clearing every
// reconciliation field.
func (s *Service) Unlink(tenantID, txID uuid.UUID) (*models.BankTransaction, error) {
	var updated models.BankTransaction
	err := s.db.Transaction(func(dbtx *gorm.DB) error {
		tx, err := s.loadTransaction(dbtx, tenantID, txID)
		if err != nil {
			return err
		}
		if !tx.Status.AllowsUnlink() {
			return &reconerr.InvalidTransitionError{Op: "unlink", From: tx.Status}
		}

		previousPayment := tx.LinkedPaymentID
		res := dbtx.Model(&models.BankTransaction{}).
			Where("id = ? AND tenant_id = ? AND status IN ?", txID, tenantID,
				[]models.ReconciliationStatus{models.StatusConciliada, models.StatusIgnorada}).
			Updates(map[string]interface{}{
				"status":            models.StatusNaoConciliada,
				"linked_payment_id": nil,
				"method":            nil,
				"reconciled_at":     nil,
				"note":              nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &reconerr.InvalidTransitionError{Op: "unlink", From: tx.Status}
		}

		if err := s.appendAudit(dbtx, tenantID, txID, models.AuditActionUnlink, previousPayment, nil, map[string]interface{}{
			"previous_status": tx.Status,
		}); err != nil {
			return err
		}
		return dbtx.First(&updated, "id = ?", txID).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Service) loadTransaction(dbtx *gorm.DB, tenantID, txID uuid.UUID) (*models.BankTransaction, error) {
	var tx models.BankTransaction
	err := dbtx.First(&tx, "id = ? AND tenant_id = ?", txID, tenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &reconerr.NotFoundError{Resource: "transaction", ID: txID}
		}
		return nil, err
	}
	return &tx, nil
}

func (s *Service) appendAudit(
	dbtx *gorm.DB,
	tenantID, txID uuid.UUID,
	action string,
	previousPayment, newPayment *uuid.UUID,
	details map[string]interface{},
) error {
	detailsJSON, _ := json.Marshal(details)
	return dbtx.Create(&models.ReconciliationAuditLog{
		ID:              uuid.New(),
		TenantID:        tenantID,
		TransactionID:   txID,
		Action:          action,
		PreviousPayment: previousPayment,
		NewPayment:      newPayment,
		Details:         detailsJSON,
		CreatedAt:       time.Now(),
	}).Error
}
