package settlement

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/fkhayef/receiptsplit/internal/apperr"
	"github.com/fkhayef/receiptsplit/internal/group"
	"github.com/fkhayef/receiptsplit/internal/parser"
	"github.com/fkhayef/receiptsplit/internal/receipt"
)

// Common errors
var (
	ErrUnbalanced = errors.New("balances do not sum to zero")
)

// Service runs the allocate, scale, aggregate and settle pipeline
type Service struct {
	receipts *receipt.Service
	logger   *slog.Logger
}

// NewService creates a new settlement service
func NewService(receipts *receipt.Service, logger *slog.Logger) *Service {
	return &Service{
		receipts: receipts,
		logger:   logger,
	}
}

// Run builds every receipt of doc, then computes balances and transactions.
// The first error aborts the run; no partial result is returned.
func (s *Service) Run(doc *parser.Document) (*Result, error) {
	receipts := make([]*receipt.Receipt, 0, len(doc.Receipts))
	for _, desc := range doc.Receipts {
		rcpt, err := s.receipts.Build(doc.Roster, desc)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("receipt allocated",
			"receipt", rcpt.Name,
			"payer", rcpt.Payer.Name,
			"subtotal", rcpt.Subtotal,
			"total", rcpt.Total,
			"multiplier", rcpt.Multiplier(),
		)
		receipts = append(receipts, rcpt)
	}

	balances, err := Aggregate(doc.Roster, receipts)
	if err != nil {
		return nil, err
	}

	transactions := Settle(balances)
	s.logger.Info("settlement computed",
		"participants", doc.Roster.Len(),
		"receipts", len(receipts),
		"transactions", len(transactions),
	)

	return &Result{
		Roster:       doc.Roster,
		Description:  doc.Description,
		Receipts:     receipts,
		Balances:     balances,
		Transactions: transactions,
	}, nil
}

// Aggregate folds receipts into one net delta per participant.
// The payer of each receipt is credited its total; every participant is
// debited what they consumed.
func Aggregate(roster group.Roster, receipts []*receipt.Receipt) ([]Balance, error) {
	balances := make([]Balance, roster.Len())
	for i, p := range roster.Participants() {
		balances[i].Participant = p
	}

	for _, rcpt := range receipts {
		if err := roster.CheckIndex(rcpt.Payer.Index); err != nil {
			return nil, fmt.Errorf("receipt %q payer: %w", rcpt.Name, err)
		}
		if len(rcpt.Scaled) != roster.Len() {
			return nil, apperr.Invariant("settlement.aggregate", fmt.Sprintf("receipt %q", rcpt.Name),
				fmt.Errorf("receipt has %d allocations for %d participants", len(rcpt.Scaled), roster.Len()))
		}

		balances[rcpt.Payer.Index].Amount -= rcpt.Total
		for i := range balances {
			balances[i].Amount += rcpt.Owed(i)
		}
	}

	var sum float64
	for _, b := range balances {
		sum += b.Amount
	}
	if math.Abs(sum) > receipt.Tolerance {
		return nil, apperr.Invariant("settlement.aggregate", "", fmt.Errorf("%w: off by %g", ErrUnbalanced, sum))
	}

	return balances, nil
}

// Settle matches the largest debtor with the largest creditor until every
// balance is cleared. It emits at most len(balances)-1 transactions; amounts
// within receipt.Tolerance of zero are dropped.
func Settle(balances []Balance) []Transaction {
	sorted := make([]Balance, len(balances))
	copy(sorted, balances)
	// Stable so that ties keep roster order
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].Amount > sorted[b].Amount
	})

	var transactions []Transaction
	i, j := 0, len(sorted)-1
	for i < j {
		payer, receiver := sorted[i].Participant, sorted[j].Participant
		debt := sorted[i].Amount
		credit := -sorted[j].Amount

		amount := debt
		if debt > credit {
			// i owes more than j is due: j is settled
			amount = credit
			sorted[i].Amount = debt - credit
			sorted[j].Amount = 0
			j--
		} else {
			// i pays everything it owes to j
			sorted[j].Amount += debt
			sorted[i].Amount = 0
			i++
		}
		transactions = appendTransaction(transactions, payer, receiver, amount)
	}

	return transactions
}

func appendTransaction(txs []Transaction, payer, receiver group.Participant, amount float64) []Transaction {
	if amount <= receipt.Tolerance {
		return txs
	}
	return append(txs, Transaction{Payer: payer, Receiver: receiver, Amount: amount})
}

// Apply replays transactions over balances and returns the residual amounts
func Apply(balances []Balance, transactions []Transaction) []Balance {
	out := make([]Balance, len(balances))
	copy(out, balances)

	pos := make(map[int]int, len(out))
	for k, b := range out {
		pos[b.Participant.Index] = k
	}
	for _, tx := range transactions {
		out[pos[tx.Payer.Index]].Amount -= tx.Amount
		out[pos[tx.Receiver.Index]].Amount += tx.Amount
	}
	return out
}
