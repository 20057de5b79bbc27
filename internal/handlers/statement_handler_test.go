package handler

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bank-reconciliation-backend/internal/models"
)

func TestParseStatementCSV(t *testing.T) {
	csvData := []byte(`date,description,amount,reference,category
2025-03-10,PIX RECEBIDO JOAO,150.00,REF-001,receitas
11-03-2025,TARIFA BANCARIA,-40.00,REF-002
2025-03-12,DEPOSITO,75.50
not-a-date,BROKEN ROW,10.00
2025-03-13,ZERO ROW,0
2025-03-14,BAD AMOUNT,abc
`)

	rows := parseStatementCSV(csvData)
	require.Len(t, rows, 3, "malformed, zero and bad-amount rows are skipped")

	assert.Equal(t, "PIX RECEBIDO JOAO", rows[0].Description)
	assert.Equal(t, models.DirectionCredit, rows[0].Direction)
	assert.Equal(t, "REF-001", rows[0].BankReference)
	assert.Equal(t, "receitas", rows[0].CategoryHint)
	assert.True(t, rows[0].Amount.Equal(decimal.RequireFromString("150.00")))

	// Day-first dates are accepted too.
	assert.Equal(t, 11, rows[1].TransactionDate.Day())
	assert.Equal(t, models.DirectionDebit, rows[1].Direction)

	assert.Equal(t, "", rows[2].BankReference)
	assert.Equal(t, models.DirectionCredit, rows[2].Direction)
}

func TestParseStatementCSV_EmptyFile(t *testing.T) {
	assert.Empty(t, parseStatementCSV(nil))
	assert.Empty(t, parseStatementCSV([]byte("date,description,amount\n")))
}
