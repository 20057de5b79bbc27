package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bank-reconciliation-backend/internal/models"
	"bank-reconciliation-backend/internal/reconerr"
	"bank-reconciliation-backend/internal/repository"
	"bank-reconciliation-backend/internal/services/ingestion"
	"bank-reconciliation-backend/internal/services/matching"
	"bank-reconciliation-backend/internal/services/reconciliation"
)

type ReconciliationHandler struct {
	ingestSvc       *ingestion.Service
	engine          *matching.Engine
	reconSvc        *reconciliation.Service
	statementRepo   *repository.StatementRepository
	transactionRepo *repository.BankTransactionRepository
	paymentRepo     *repository.PaymentRepository
}

func NewReconciliationHandler(
	ingestSvc *ingestion.Service,
	engine *matching.Engine,
	reconSvc *reconciliation.Service,
	statementRepo *repository.StatementRepository,
	transactionRepo *repository.BankTransactionRepository,
	paymentRepo *repository.PaymentRepository,
) *ReconciliationHandler {
	return &ReconciliationHandler{
		ingestSvc:       ingestSvc,
		engine:          engine,
		reconSvc:        reconSvc,
		statementRepo:   statementRepo,
		transactionRepo: transactionRepo,
		paymentRepo:     paymentRepo,
	}
}

// tenantID is set by the tenant middleware on every /api route.
func tenantID(c *gin.Context) uuid.UUID {
	return c.MustGet("tenant_id").(uuid.UUID)
}

func statusForError(err error) int {
	switch reconerr.KindOf(err) {
	case reconerr.KindNotFound:
		return http.StatusNotFound
	case reconerr.KindDuplicateImport, reconerr.KindInvalidTransition, reconerr.KindPaymentAlreadyLinked:
		return http.StatusConflict
	case reconerr.KindNoTransactions:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusForError(err), gin.H{
		"error": err.Error(),
		"kind":  reconerr.KindOf(err),
	})
}

// SuggestForTransaction returns scored candidate payments for one
// transaction.
func (h *ReconciliationHandler) SuggestForTransaction(c *gin.Context) {
	txID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction ID"})
		return
	}

	tx, err := h.transactionRepo.GetByID(tenantID(c), txID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	suggestions, err := h.engine.Suggest(tenantID(c), tx, 0)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// SuggestForStatement scans the whole statement for suggestions.
func (h *ReconciliationHandler) SuggestForStatement(c *gin.Context) {
	statementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid statement ID"})
		return
	}

	if _, err := h.statementRepo.GetByID(tenantID(c), statementID); err != nil {
		abortWithError(c, err)
		return
	}

	suggestions, err := h.engine.SuggestForStatement(tenantID(c), statementID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

func (h *ReconciliationHandler) ReconcileTransaction(c *gin.Context) {
	txID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction ID"})
		return
	}

	var payload struct {
		PaymentID string `json:"payment_id"`
		Method    string `json:"method"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	paymentID, err := uuid.Parse(payload.PaymentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment ID"})
		return
	}

	method := models.ReconciliationMethod(payload.Method)
	if payload.Method == "" {
		method = models.MethodManual
	}
	if !method.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "method must be AUTO or MANUAL"})
		return
	}

	tx, err := h.reconSvc.Reconcile(tenantID(c), txID, paymentID, method)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "transaction reconciled", "transaction": tx})
}

func (h *ReconciliationHandler) IgnoreTransaction(c *gin.Context) {
	txID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction ID"})
		return
	}

	var payload struct {
		Note string `json:"note"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	tx, err := h.reconSvc.Ignore(tenantID(c), txID, payload.Note)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "transaction ignored", "transaction": tx})
}

func (h *ReconciliationHandler) UnlinkTransaction(c *gin.Context) {
	txID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction ID"})
		return
	}

	tx, err := h.reconSvc.Unlink(tenantID(c), txID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "reconciliation undone", "transaction": tx})
}

// ApplyBatch applies a bundle of operator decisions with per-item
// failure reporting; the response is always 200 with the item report.
func (h *ReconciliationHandler) ApplyBatch(c *gin.Context) {
	var payload struct {
		Matches []reconciliation.MatchInstruction  `json:"matches"`
		Ignores []reconciliation.IgnoreInstruction `json:"ignores"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	result := h.reconSvc.ApplyBatch(tenantID(c), payload.Matches, payload.Ignores)
	c.JSON(http.StatusOK, result)
}
