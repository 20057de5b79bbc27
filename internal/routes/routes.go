package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	handler "bank-reconciliation-backend/internal/handlers"
	"bank-reconciliation-backend/internal/repository"
	"bank-reconciliation-backend/internal/services/ingestion"
	"bank-reconciliation-backend/internal/services/matching"
	"bank-reconciliation-backend/internal/services/reconciliation"
)

// TenantRequired pulls the tenant id from the X-Tenant-ID header; every
// reconciliation operation is scoped by it.
func TenantRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.GetHeader("X-Tenant-ID"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "missing or invalid X-Tenant-ID header",
			})
			return
		}
		c.Set("tenant_id", id)
		c.Next()
	}
}

func RegisterRoutes(r *gin.Engine, db *gorm.DB, matchCfg matching.Config) {
	statementRepo := repository.NewStatementRepository(db)
	transactionRepo := repository.NewBankTransactionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	ingestSvc := ingestion.NewService(statementRepo)
	engine := matching.NewEngine(paymentRepo, transactionRepo, matchCfg)
	reconSvc := reconciliation.NewService(transactionRepo, paymentRepo, statementRepo)

	reconHandler := handler.NewReconciliationHandler(
		ingestSvc, engine, reconSvc, statementRepo, transactionRepo, paymentRepo)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	scoped := api.Group("", TenantRequired())

	statements := scoped.Group("/statements")
	statements.POST("/upload", reconHandler.UploadStatement)
	statements.GET("/:id", reconHandler.GetStatement)
	statements.POST("/:id/close", reconHandler.CloseStatement)
	statements.GET("/:id/transactions", reconHandler.ListTransactions)
	statements.GET("/:id/suggestions", reconHandler.SuggestForStatement)

	tx := scoped.Group("/transactions")
	tx.GET("/:id/suggestions", reconHandler.SuggestForTransaction)
	tx.POST("/:id/reconcile", reconHandler.ReconcileTransaction)
	tx.POST("/:id/ignore", reconHandler.IgnoreTransaction)
	tx.POST("/:id/unlink", reconHandler.UnlinkTransaction)

	scoped.POST("/reconciliation/batch", reconHandler.ApplyBatch)

	payments := scoped.Group("/payments")
	{
		payments.GET("", reconHandler.SearchPayments)
		payments.POST("", reconHandler.CreatePayment)
		payments.POST("/upload", reconHandler.UploadPayments)
	}
}
