package reconciliation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bank-reconciliation-backend/internal/models"
	"bank-reconciliation-backend/internal/reconerr"
)

func TestSummarize_CountsAddUp(t *testing.T) {
	svc, db := newService(t)
	tenant := uuid.New()
	stmt := seedStatement(t, db, tenant)

	tx1 := seedTransaction(t, db, tenant, stmt.ID, "100.00")
	tx2 := seedTransaction(t, db, tenant, stmt.ID, "-20.00")
	seedTransaction(t, db, tenant, stmt.ID, "50.00")
	seedTransaction(t, db, tenant, stmt.ID, "75.00")

	payment := seedPayment(t, db, tenant, "100.00")
	_, err := svc.Reconcile(tenant, tx1.ID, payment.ID, models.MethodManual)
	require.NoError(t, err)
	_, err = svc.Ignore(tenant, tx2.ID, "fee")
	require.NoError(t, err)

	summary, err := svc.Summarize(tenant, stmt.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), summary.Total)
	assert.Equal(t, int64(1), summary.Reconciled)
	assert.Equal(t, int64(1), summary.Ignored)
	assert.Equal(t, int64(2), summary.Pending)
	assert.Equal(t, summary.Total, summary.Reconciled+summary.Pending+summary.Ignored)
	assert.InDelta(t, 25.0, summary.PercentReconciled, 0.001)
}

func TestSummarize_EmptyStatement(t *testing.T) {
	svc, db := newService(t)
	tenant := uuid.New()
	stmt := seedStatement(t, db, tenant)

	summary, err := svc.Summarize(tenant, stmt.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.Total)
	assert.Equal(t, 0.0, summary.PercentReconciled)
}

func TestSummarize_UnknownStatement(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Summarize(uuid.New(), uuid.New())
	var notFound *reconerr.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestRecomputeStatus(t *testing.T) {
	svc, db := newService(t)
	tenant := uuid.New()
	stmt := seedStatement(t, db, tenant)
	tx := seedTransaction(t, db, tenant, stmt.ID, "-10.00")

	require.NoError(t, svc.RecomputeStatus(tenant, stmt.ID))
	reloaded, err := svc.statementRepo.GetByID(tenant, stmt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatementPending, reloaded.Status)

	_, err = svc.Ignore(tenant, tx.ID, "fee")
	require.NoError(t, err)
	require.NoError(t, svc.RecomputeStatus(tenant, stmt.ID))
	reloaded, err = svc.statementRepo.GetByID(tenant, stmt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatementProcessed, reloaded.Status)

	// Undoing the decision reopens the statement on the next recompute.
	_, err = svc.Unlink(tenant, tx.ID)
	require.NoError(t, err)
	require.NoError(t, svc.RecomputeStatus(tenant, stmt.ID))
	reloaded, err = svc.statementRepo.GetByID(tenant, stmt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatementPending, reloaded.Status)
}

func TestCloseStatement(t *testing.T) {
	svc, db := newService(t)
	tenant := uuid.New()
	stmt := seedStatement(t, db, tenant)
	seedTransaction(t, db, tenant, stmt.ID, "100.00")

	closed, err := svc.CloseStatement(tenant, stmt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatementProcessed, closed.Status)

	_, err = svc.CloseStatement(uuid.New(), stmt.ID)
	var notFound *reconerr.NotFoundError
	require.ErrorAs(t, err, &notFound)
}
