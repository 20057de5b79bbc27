package reconciliation

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"bank-reconciliation-backend/internal/models"
)

type Summary struct {
	Total             int64   `json:"total"`
	Reconciled        int64   `json:"reconciled"`
	Pending           int64   `json:"pending"`
	Ignored           int64   `json:"ignored"`
	PercentReconciled float64 `json:"percent_reconciled"`
}

type statusRow struct {
	Status models.ReconciliationStatus
	Count  int64
}

// Summarize aggregates the statement's transactions by current status.
func (s *Service) Summarize(tenantID, statementID uuid.UUID) (Summary, error) {
	var summary Summary

	if _, err := s.statementRepo.GetByID(tenantID, statementID); err != nil {
		return summary, err
	}

	rows, err := s.countByStatus(s.db, tenantID, statementID)
	if err != nil {
		return summary, err
	}

	for _, r := range rows {
		summary.Total += r.Count
		switch r.Status {
		case models.StatusConciliada:
			summary.Reconciled = r.Count
		case models.StatusNaoConciliada:
			summary.Pending = r.Count
		case models.StatusIgnorada:
			summary.Ignored = r.Count
		}
	}

	if summary.Total > 0 {
		summary.PercentReconciled = float64(summary.Reconciled) / float64(summary.Total) * 100
	}
	return summary, nil
}

// RecomputeStatus re-derives the statement status from its
// transactions: PROCESSED once none remain NAO_CONCILIADA, PENDING
// otherwise. Statement status is only ever changed through this
// aggregate recompute or an explicit close.
func (s *Service) RecomputeStatus(tenantID, statementID uuid.UUID) error {
	if _, err := s.statementRepo.GetByID(tenantID, statementID); err != nil {
		return err
	}

	var pending int64
	err := s.db.Model(&models.BankTransaction{}).
		Where("tenant_id = ? AND statement_id = ? AND status = ?",
			tenantID, statementID, models.StatusNaoConciliada).
		Count(&pending).Error
	if err != nil {
		return err
	}

	status := models.StatementProcessed
	if pending > 0 {
		status = models.StatementPending
	}
	return s.db.Model(&models.BankStatement{}).
		Where("id = ? AND tenant_id = ?", statementID, tenantID).
		Update("status", status).Error
}

// CloseStatement forces a statement to PROCESSED regardless of how many
// transactions remain unmatched.
func (s *Service) CloseStatement(tenantID, statementID uuid.UUID) (*models.BankStatement, error) {
	if _, err := s.statementRepo.GetByID(tenantID, statementID); err != nil {
		return nil, err
	}
	err := s.db.Model(&models.BankStatement{}).
		Where("id = ? AND tenant_id = ?", statementID, tenantID).
		Update("status", models.StatementProcessed).Error
	if err != nil {
		return nil, err
	}
	return s.statementRepo.GetByID(tenantID, statementID)
}

func (s *Service) countByStatus(db *gorm.DB, tenantID, statementID uuid.UUID) ([]statusRow, error) {
	var rows []statusRow
	err := db.Model(&models.BankTransaction{}).
		Where("tenant_id = ? AND statement_id = ?", tenantID, statementID).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	return rows, err
}
