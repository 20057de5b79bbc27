package models

// ReconciliationStatus is the closed set of states a bank transaction
// moves through during reconciliation.
type ReconciliationStatus string

const (
	StatusNaoConciliada ReconciliationStatus = "NAO_CONCILIADA"
	StatusConciliada    ReconciliationStatus = "CONCILIADA"
	StatusIgnorada      ReconciliationStatus = "IGNORADA"
)

// AllowsReconcile reports whether a transaction in this state may be
// linked to a payment.
func (s ReconciliationStatus) AllowsReconcile() bool {
	return s == StatusNaoConciliada
}

// AllowsIgnore reports whether a transaction in this state may be
// marked as having no counterpart.
func (s ReconciliationStatus) AllowsIgnore() bool {
	return s == StatusNaoConciliada
}

// AllowsUnlink reports whether the state can be undone back to
// NAO_CONCILIADA.
func (s ReconciliationStatus) AllowsUnlink() bool {
	return s == StatusConciliada || s == StatusIgnorada
}

type TransactionDirection string

const (
	DirectionCredit TransactionDirection = "CREDIT"
	DirectionDebit  TransactionDirection = "DEBIT"
)

type ReconciliationMethod string

const (
	MethodAuto   ReconciliationMethod = "AUTO"
	MethodManual ReconciliationMethod = "MANUAL"
)

func (m ReconciliationMethod) Valid() bool {
	return m == MethodAuto || m == MethodManual
}

type StatementStatus string

const (
	StatementPending   StatementStatus = "PENDING"
	StatementProcessed StatementStatus = "PROCESSED"
)
