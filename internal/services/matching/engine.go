// Package matching scores candidate payments against unmatched bank
// transactions. It performs no writes and is safe to call concurrently.
package matching

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bank-reconciliation-backend/internal/models"
	"bank-reconciliation-backend/internal/repository"
)

// Config holds the tunable tolerance windows and score weights.
type Config struct {
	AmountTolerance   decimal.Decimal
	DateToleranceDays int
	AmountWeight      float64
	DateWeight        float64
	MaxResults        int
}

// DefaultConfig returns the stock tolerances: amount within 5.00, date
// within 3 days, amount weighted 70/30 over date, top 5 suggestions.
func DefaultConfig() Config {
	return Config{
		AmountTolerance:   decimal.NewFromInt(5),
		DateToleranceDays: 3,
		AmountWeight:      0.7,
		DateWeight:        0.3,
		MaxResults:        5,
	}
}

// Suggestion is an ephemeral scored candidate; never persisted.
type Suggestion struct {
	PaymentID    uuid.UUID       `json:"payment_id"`
	PaymentDate  time.Time       `json:"payment_date"`
	Amount       decimal.Decimal `json:"amount"`
	Method       string          `json:"method"`
	OrderRef     string          `json:"order_ref"`
	CustomerName string          `json:"customer_name"`
	Score        int             `json:"score"`
	Reason       string          `json:"reason"`
}

type Engine struct {
	paymentRepo     *repository.PaymentRepository
	transactionRepo *repository.BankTransactionRepository
	cfg             Config
}

func NewEngine(
	paymentRepo *repository.PaymentRepository,
	transactionRepo *repository.BankTransactionRepository,
	cfg Config,
) *Engine {
	defaults := DefaultConfig()
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaults.MaxResults
	}
	if !cfg.AmountTolerance.IsPositive() {
		cfg.AmountTolerance = defaults.AmountTolerance
	}
	if cfg.DateToleranceDays <= 0 {
		cfg.DateToleranceDays = defaults.DateToleranceDays
	}
	if cfg.AmountWeight <= 0 || cfg.DateWeight <= 0 {
		cfg.AmountWeight = defaults.AmountWeight
		cfg.DateWeight = defaults.DateWeight
	}
	return &Engine{
		paymentRepo:     paymentRepo,
		transactionRepo: transactionRepo,
		cfg:             cfg,
	}
}

// Suggest ranks candidate payments for one transaction. Transactions
// that already left NAO_CONCILIADA, and debits, yield an empty list:
// payments are inflows, so only unmatched credits have counterparts.
func (e *Engine) Suggest(tenantID uuid.UUID, tx *models.BankTransaction, maxResults int) ([]Suggestion, error) {
	if tx.Status != models.StatusNaoConciliada || tx.Direction != models.DirectionCredit {
		return nil, nil
	}
	if maxResults <= 0 {
		maxResults = e.cfg.MaxResults
	}

	amountMin := tx.Amount.Sub(e.cfg.AmountTolerance)
	amountMax := tx.Amount.Add(e.cfg.AmountTolerance)
	dateFrom := dayOf(tx.TransactionDate).AddDate(0, 0, -e.cfg.DateToleranceDays)
	dateTo := dayOf(tx.TransactionDate).AddDate(0, 0, e.cfg.DateToleranceDays+1).Add(-time.Nanosecond)

	candidates, err := e.paymentRepo.FindCandidates(tenantID, amountMin, amountMax, dateFrom, dateTo)
	if err != nil {
		return nil, err
	}

	type scored struct {
		suggestion Suggestion
		daysOff    int
	}
	ranked := make([]scored, 0, len(candidates))
	for i := range candidates {
		p := &candidates[i]
		score, daysOff, reason := e.score(tx, p)
		ranked = append(ranked, scored{
			suggestion: Suggestion{
				PaymentID:    p.ID,
				PaymentDate:  p.PaymentDate,
				Amount:       p.Amount,
				Method:       p.Method,
				OrderRef:     p.OrderRef,
				CustomerName: p.CustomerName,
				Score:        score,
				Reason:       reason,
			},
			daysOff: daysOff,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].suggestion.Score != ranked[j].suggestion.Score {
			return ranked[i].suggestion.Score > ranked[j].suggestion.Score
		}
		if ranked[i].daysOff != ranked[j].daysOff {
			return ranked[i].daysOff < ranked[j].daysOff
		}
		return ranked[i].suggestion.PaymentID.String() < ranked[j].suggestion.PaymentID.String()
	})

	if len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}
	suggestions := make([]Suggestion, len(ranked))
	for i, s := range ranked {
		suggestions[i] = s.suggestion
	}
	return suggestions, nil
}

// SuggestForStatement scans a whole statement, producing suggestions
// for every unmatched credit transaction.
func (e *Engine) SuggestForStatement(tenantID, statementID uuid.UUID) (map[uuid.UUID][]Suggestion, error) {
	txs, err := e.transactionRepo.UnmatchedCredits(tenantID, statementID)
	if err != nil {
		return nil, err
	}

	result := make(map[uuid.UUID][]Suggestion, len(txs))
	for i := range txs {
		suggestions, err := e.Suggest(tenantID, &txs[i], e.cfg.MaxResults)
		if err != nil {
			return nil, err
		}
		if len(suggestions) > 0 {
			result[txs[i].ID] = suggestions
		}
	}
	return result, nil
}

// score combines amount and date closeness into [0,100]. Each component
// falls linearly from 100 to 0 across its tolerance window, so an exact
// amount and date match scores exactly 100.
func (e *Engine) score(tx *models.BankTransaction, p *models.Payment) (int, int, string) {
	amountDiff := p.Amount.Sub(tx.Amount).Abs()
	amountRatio := amountDiff.Div(e.cfg.AmountTolerance).InexactFloat64()
	amountScore := math.Max(0, 100*(1-amountRatio))

	daysOff := daysBetween(tx.TransactionDate, p.PaymentDate)
	dateRatio := float64(daysOff) / float64(e.cfg.DateToleranceDays)
	dateScore := math.Max(0, 100*(1-dateRatio))

	score := int(math.Round(e.cfg.AmountWeight*amountScore + e.cfg.DateWeight*dateScore))
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	var reason string
	switch {
	case amountDiff.IsZero() && daysOff == 0:
		reason = "exact amount and date match"
	case amountDiff.IsZero():
		reason = fmt.Sprintf("exact amount, date off by %d day(s)", daysOff)
	case daysOff == 0:
		reason = fmt.Sprintf("same date, amount off by %s", amountDiff.StringFixed(2))
	default:
		reason = fmt.Sprintf("amount off by %s, date off by %d day(s)", amountDiff.StringFixed(2), daysOff)
	}
	return score, daysOff, reason
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func daysBetween(a, b time.Time) int {
	diff := dayOf(a).Sub(dayOf(b.In(a.Location()))).Hours() / 24
	return int(math.Abs(math.Round(diff)))
}
