package settlement

import (
	"github.com/fkhayef/receiptsplit/internal/group"
	"github.com/fkhayef/receiptsplit/internal/receipt"
)

// Balance is a participant's net position across all receipts
type Balance struct {
	Participant group.Participant `json:"participant"`
	Amount      float64           `json:"amount"` // Positive = owes the pool, Negative = is owed
}

// Transaction is a directed payment that settles part of two balances
type Transaction struct {
	Payer    group.Participant `json:"payer"`    // Who sends the money
	Receiver group.Participant `json:"receiver"` // Who receives the money
	Amount   float64           `json:"amount"`   // Always > 0
}

// Result is the outcome of one run over a receipt file
type Result struct {
	Roster       group.Roster
	Description  string
	Receipts     []*receipt.Receipt
	Balances     []Balance
	Transactions []Transaction
}
