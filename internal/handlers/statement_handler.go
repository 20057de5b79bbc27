package handler

import (
	"bytes"
	"encoding/csv"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bank-reconciliation-backend/internal/models"
	"bank-reconciliation-backend/internal/services/ingestion"
)

// UploadStatement accepts a CSV statement file, normalizes its rows and
// hands them to ingestion. Expected columns: date, description, amount,
// reference (optional), category (optional). Malformed rows are skipped.
func (h *ReconciliationHandler) UploadStatement(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}

	rows := parseStatementCSV(fileBytes)
	accountRef := c.PostForm("account_ref")

	result, err := h.ingestSvc.Ingest(tenantID(c), accountRef, fileBytes, ingestion.StatementMeta{}, rows)
	if err != nil {
		abortWithError(c, err)
		return
	}

	log.Printf("imported statement %s: %d transactions, %d duplicates skipped (file %s)",
		result.Statement.ID, result.Imported, result.SkippedDuplicates, header.Filename)

	c.JSON(http.StatusCreated, gin.H{
		"statement_id":       result.Statement.ID.String(),
		"imported":           result.Imported,
		"skipped_duplicates": result.SkippedDuplicates,
	})
}

func parseStatementCSV(fileBytes []byte) []ingestion.ParsedTransaction {
	reader := csv.NewReader(bytes.NewReader(fileBytes))
	reader.FieldsPerRecord = -1

	// Skip header
	_, _ = reader.Read()

	var rows []ingestion.ParsedTransaction
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}
		if len(record) < 3 || strings.Join(record, "") == "" {
			continue
		}

		date, err := parseDate(strings.TrimSpace(record[0]))
		if err != nil {
			continue
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(record[2]))
		if err != nil || amount.IsZero() {
			continue
		}

		direction := models.DirectionCredit
		if amount.IsNegative() {
			direction = models.DirectionDebit
		}

		row := ingestion.ParsedTransaction{
			TransactionDate: date,
			Amount:          amount,
			Direction:       direction,
			Description:     strings.TrimSpace(record[1]),
		}
		if len(record) > 3 {
			row.BankReference = strings.TrimSpace(record[3])
		}
		if len(record) > 4 {
			row.CategoryHint = strings.TrimSpace(record[4])
		}
		rows = append(rows, row)
	}
	return rows
}

func parseDate(s string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", s)
	if err != nil {
		date, err = time.Parse("02-01-2006", s)
	}
	return date, err
}

// GetStatement returns a statement together with its live summary.
func (h *ReconciliationHandler) GetStatement(c *gin.Context) {
	statementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid statement ID"})
		return
	}

	stmt, err := h.statementRepo.GetByID(tenantID(c), statementID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	summary, err := h.reconSvc.Summarize(tenantID(c), statementID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"statement": stmt, "summary": summary})
}

func (h *ReconciliationHandler) CloseStatement(c *gin.Context) {
	statementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid statement ID"})
		return
	}

	stmt, err := h.reconSvc.CloseStatement(tenantID(c), statementID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "statement closed", "statement": stmt})
}

func (h *ReconciliationHandler) ListTransactions(c *gin.Context) {
	statementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid statement ID"})
		return
	}

	if _, err := h.statementRepo.GetByID(tenantID(c), statementID); err != nil {
		abortWithError(c, err)
		return
	}

	status := c.Query("status")
	cursor := c.Query("cursor")
	limit := 50

	items, nextCursor, hasMore, err := h.transactionRepo.ListByStatement(
		tenantID(c), statementID, status, cursor, limit)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       items,
		"next_cursor": nextCursor,
		"has_more":    hasMore,
	})
}

// SearchPayments backs the operator's manual payment lookup when no
// suggestion fits.
func (h *ReconciliationHandler) SearchPayments(c *gin.Context) {
	amount := decimal.Zero
	if raw := c.Query("amount"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
			return
		}
		amount = parsed
	}

	payments, err := h.paymentRepo.SearchPayments(tenantID(c), c.Query("query"), amount)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

// CreatePayment seeds one ledger payment.
func (h *ReconciliationHandler) CreatePayment(c *gin.Context) {
	var payload struct {
		PaymentDate  string `json:"payment_date"` // "yyyy-mm-dd"
		Amount       string `json:"amount"`
		Method       string `json:"method"`
		OrderRef     string `json:"order_ref"`
		CustomerName string `json:"customer_name"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	amount, err := decimal.NewFromString(payload.Amount)
	if err != nil || !amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}
	date, err := parseDate(payload.PaymentDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment date"})
		return
	}

	payment := &models.Payment{
		TenantID:     tenantID(c),
		PaymentDate:  date,
		Amount:       amount,
		Method:       payload.Method,
		OrderRef:     payload.OrderRef,
		CustomerName: payload.CustomerName,
	}
	if err := h.paymentRepo.Create(payment); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "payment created", "payment": payment})
}

// UploadPayments bulk-seeds ledger payments from a CSV file with
// columns: date, amount, method, order_ref, customer_name.
func (h *ReconciliationHandler) UploadPayments(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	// Skip header
	_, _ = reader.Read()

	inserted := 0
	rowNum := 0
	for {
		record, err := reader.Read()
		rowNum++
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("skipping payment row %d: %v", rowNum, err)
			continue
		}
		if len(record) < 2 {
			continue
		}

		date, err := parseDate(strings.TrimSpace(record[0]))
		if err != nil {
			log.Printf("skipping payment row %d: invalid date %q", rowNum, record[0])
			continue
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(record[1]))
		if err != nil || !amount.IsPositive() {
			log.Printf("skipping payment row %d: invalid amount %q", rowNum, record[1])
			continue
		}

		payment := &models.Payment{
			TenantID:    tenantID(c),
			PaymentDate: date,
			Amount:      amount,
		}
		if len(record) > 2 {
			payment.Method = strings.TrimSpace(record[2])
		}
		if len(record) > 3 {
			payment.OrderRef = strings.TrimSpace(record[3])
		}
		if len(record) > 4 {
			payment.CustomerName = strings.TrimSpace(record[4])
		}
		if err := h.paymentRepo.Create(payment); err != nil {
			log.Printf("skipping payment row %d: %v", rowNum, err)
			continue
		}
		inserted++
	}

	c.JSON(http.StatusOK, gin.H{
		"file":          header.Filename,
		"paymentsAdded": inserted,
	})
}
