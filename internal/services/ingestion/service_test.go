package ingestion

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bank-reconciliation-backend/internal/models"
	"bank-reconciliation-backend/internal/reconerr"
	"bank-reconciliation-backend/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "recon.db")), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Payment{},
		&models.BankStatement{},
		&models.BankTransaction{},
		&models.ReconciliationAuditLog{},
	))
	return db
}

func newService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewService(repository.NewStatementRepository(db)), db
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleRows() []ParsedTransaction {
	return []ParsedTransaction{
		{
			TransactionDate: date(2025, 3, 10),
			Amount:          dec("150.00"),
			Direction:       models.DirectionCredit,
			Description:     "PIX RECEBIDO JOAO",
			BankReference:   "REF-001",
		},
		{
			TransactionDate: date(2025, 3, 11),
			Amount:          dec("-40.00"),
			Direction:       models.DirectionDebit,
			Description:     "TARIFA BANCARIA",
			BankReference:   "REF-002",
		},
	}
}

func TestIngest_CreatesStatementAndTransactions(t *testing.T) {
	svc, db := newService(t)
	tenant := uuid.New()

	result, err := svc.Ingest(tenant, "acc-001", []byte("file-a"), StatementMeta{}, sampleRows())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 0, result.SkippedDuplicates)
	assert.Equal(t, models.StatementPending, result.Statement.Status)
	assert.Equal(t, tenant, result.Statement.TenantID)

	var txs []models.BankTransaction
	require.NoError(t, db.Where("statement_id = ?", result.Statement.ID).Order("bank_reference ASC").Find(&txs).Error)
	require.Len(t, txs, 2)
	for _, tx := range txs {
		assert.Equal(t, models.StatusNaoConciliada, tx.Status)
		assert.Nil(t, tx.LinkedPaymentID)
		assert.Nil(t, tx.Method)
		assert.Nil(t, tx.ReconciledAt)
	}
}

func TestIngest_PostingDateDefaultsToTransactionDate(t *testing.T) {
	svc, db := newService(t)
	tenant := uuid.New()

	posting := date(2025, 3, 12)
	rows := []ParsedTransaction{
		{TransactionDate: date(2025, 3, 10), Amount: dec("10.00"), Direction: models.DirectionCredit, Description: "first"},
		{TransactionDate: date(2025, 3, 11), PostingDate: &posting, Amount: dec("20.00"), Direction: models.DirectionCredit, Description: "second"},
	}

	result, err := svc.Ingest(tenant, "acc-001", []byte("file-b"), StatementMeta{}, rows)
	require.NoError(t, err)

	var txs []models.BankTransaction
	require.NoError(t, db.Where("statement_id = ?", result.Statement.ID).Order("amount ASC").Find(&txs).Error)
	require.Len(t, txs, 2)
	assert.True(t, txs[0].PostingDate.Equal(txs[0].TransactionDate))
	assert.True(t, txs[1].PostingDate.Equal(posting))
}

func TestIngest_DuplicateImportRejected(t *testing.T) {
	svc, db := newService(t)
	tenant := uuid.New()
	fileBytes := []byte("same-bytes")

	_, err := svc.Ingest(tenant, "acc-001", fileBytes, StatementMeta{}, sampleRows())
	require.NoError(t, err)

	_, err = svc.Ingest(tenant, "acc-001", fileBytes, StatementMeta{}, sampleRows())
	require.Error(t, err)
	var dupErr *reconerr.DuplicateImportError
	assert.ErrorAs(t, err, &dupErr)
	assert.Equal(t, reconerr.KindDuplicateImport, reconerr.KindOf(err))

	var statements int64
	require.NoError(t, db.Model(&models.BankStatement{}).Where("tenant_id = ?", tenant).Count(&statements).Error)
	assert.Equal(t, int64(1), statements)

	var txs int64
	require.NoError(t, db.Model(&models.BankTransaction{}).Where("tenant_id = ?", tenant).Count(&txs).Error)
	assert.Equal(t, int64(2), txs)
}

func TestIngest_SameBytesDifferentTenantAllowed(t *testing.T) {
	svc, _ := newService(t)
	fileBytes := []byte("shared-bytes")

	_, err := svc.Ingest(uuid.New(), "acc-001", fileBytes, StatementMeta{}, sampleRows())
	require.NoError(t, err)
	_, err = svc.Ingest(uuid.New(), "acc-001", fileBytes, StatementMeta{}, sampleRows())
	require.NoError(t, err)
}

func TestIngest_EmptyRowsRejected(t *testing.T) {
	svc, db := newService(t)
	tenant := uuid.New()

	_, err := svc.Ingest(tenant, "acc-001", []byte("empty-file"), StatementMeta{}, nil)
	require.Error(t, err)
	var emptyErr *reconerr.NoTransactionsError
	assert.ErrorAs(t, err, &emptyErr)

	var statements int64
	require.NoError(t, db.Model(&models.BankStatement{}).Where("tenant_id = ?", tenant).Count(&statements).Error)
	assert.Equal(t, int64(0), statements, "rejected import must leave no rows behind")
}

func TestIngest_SkipsRepeatedBankReference(t *testing.T) {
	svc, db := newService(t)
	tenant := uuid.New()

	rows := []ParsedTransaction{
		{TransactionDate: date(2025, 3, 10), Amount: dec("10.00"), Direction: models.DirectionCredit, BankReference: "DUP-1"},
		{TransactionDate: date(2025, 3, 10), Amount: dec("10.00"), Direction: models.DirectionCredit, BankReference: "DUP-1"},
		{TransactionDate: date(2025, 3, 11), Amount: dec("20.00"), Direction: models.DirectionCredit, BankReference: "REF-9"},
	}

	result, err := svc.Ingest(tenant, "acc-001", []byte("file-dup"), StatementMeta{}, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.SkippedDuplicates)

	var count int64
	require.NoError(t, db.Model(&models.BankTransaction{}).
		Where("statement_id = ? AND bank_reference = ?", result.Statement.ID, "DUP-1").
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestIngest_EmptyReferencesNeverCollide(t *testing.T) {
	svc, _ := newService(t)

	rows := []ParsedTransaction{
		{TransactionDate: date(2025, 3, 10), Amount: dec("10.00"), Direction: models.DirectionCredit},
		{TransactionDate: date(2025, 3, 10), Amount: dec("10.00"), Direction: models.DirectionCredit},
	}

	result, err := svc.Ingest(uuid.New(), "acc-001", []byte("file-noref"), StatementMeta{}, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 0, result.SkippedDuplicates)
}
