// Package ingestion turns parsed statement files into persisted
// statements and transactions, rejecting whole-file re-imports.
package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bank-reconciliation-backend/internal/models"
	"bank-reconciliation-backend/internal/reconerr"
	"bank-reconciliation-backend/internal/repository"
)

// ParsedTransaction is one normalized row from the statement parser.
type ParsedTransaction struct {
	TransactionDate time.Time
	PostingDate     *time.Time
	Amount          decimal.Decimal
	Direction       models.TransactionDirection
	Description     string
	BankReference   string
	CategoryHint    string
}

// StatementMeta carries the optional header metadata of a statement file.
type StatementMeta struct {
	PeriodStart    *time.Time
	PeriodEnd      *time.Time
	OpeningBalance *decimal.Decimal
	ClosingBalance *decimal.Decimal
}

// Result reports what one import actually wrote.
type Result struct {
	Statement         *models.BankStatement
	Imported          int
	SkippedDuplicates int
}

type Service struct {
	statementRepo *repository.StatementRepository
	db            *gorm.DB
}

func NewService(statementRepo *repository.StatementRepository) *Service {
	return &Service{
		statementRepo: statementRepo,
		db:            statementRepo.DB(),
	}
}

// Ingest creates a statement and its transactions in one write
// transaction. Identical file bytes for the same tenant are rejected;
// rows repeating a bank reference within the file are skipped, the rest
// of the import proceeds. Matching is never invoked here.
func (s *Service) Ingest(
	tenantID uuid.UUID,
	accountRef string,
	fileBytes []byte,
	meta StatementMeta,
	rows []ParsedTransaction,
) (*Result, error) {

	sum := sha256.Sum256(fileBytes)
	fileHash := hex.EncodeToString(sum[:])

	exists, err := s.statementRepo.ExistsByHash(tenantID, fileHash)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &reconerr.DuplicateImportError{TenantID: tenantID, FileHash: fileHash}
	}

	if len(rows) == 0 {
		return nil, &reconerr.NoTransactionsError{}
	}

	now := time.Now()
	statement := &models.BankStatement{
		ID:             uuid.New(),
		TenantID:       tenantID,
		AccountRef:     accountRef,
		FileHash:       fileHash,
		PeriodStart:    meta.PeriodStart,
		PeriodEnd:      meta.PeriodEnd,
		OpeningBalance: meta.OpeningBalance,
		ClosingBalance: meta.ClosingBalance,
		Status:         models.StatementPending,
		ImportedAt:     now,
		CreatedAt:      now,
	}

	result := &Result{Statement: statement}

	err = s.db.Transaction(func(dbtx *gorm.DB) error {
		if err := dbtx.Create(statement).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &reconerr.DuplicateImportError{TenantID: tenantID, FileHash: fileHash}
			}
			return err
		}

		seen := make(map[string]bool, len(rows))
		var txs []models.BankTransaction
		for _, row := range rows {
			if row.BankReference != "" {
				if seen[row.BankReference] {
					result.SkippedDuplicates++
					continue
				}
				seen[row.BankReference] = true
			}

			postingDate := row.TransactionDate
			if row.PostingDate != nil {
				postingDate = *row.PostingDate
			}

			txs = append(txs, models.BankTransaction{
				ID:              uuid.New(),
				StatementID:     statement.ID,
				TenantID:        tenantID,
				TransactionDate: row.TransactionDate,
				PostingDate:     postingDate,
				Amount:          row.Amount,
				Direction:       row.Direction,
				Description:     row.Description,
				BankReference:   row.BankReference,
				CategoryHint:    row.CategoryHint,
				Status:          models.StatusNaoConciliada,
				CreatedAt:       now,
			})
		}

		if err := dbtx.Create(&txs).Error; err != nil {
			return err
		}
		result.Imported = len(txs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
