package settlement

import (
	"fmt"

	"github.com/fkhayef/receiptsplit/internal/group"
	"github.com/fkhayef/receiptsplit/internal/receipt"
)

// ResultResponse represents the response for a full run
type ResultResponse struct {
	Description  string                     `json:"description"`
	Roster       *group.RosterResponse      `json:"roster"`
	Receipts     []*receipt.ReceiptResponse `json:"receipts"`
	Balances     []*BalanceResponse         `json:"balances"`
	Transactions []*TransactionResponse     `json:"transactions"`
}

// BalanceResponse represents a participant's net balance
type BalanceResponse struct {
	Participant string  `json:"participant"`
	Amount      float64 `json:"amount"`
	Message     string  `json:"message"` // e.g., "Bob should pay 36.67" or "Alice should receive 73.33"
}

// TransactionResponse represents one settling payment
type TransactionResponse struct {
	Payer    string  `json:"payer"`
	Receiver string  `json:"receiver"`
	Amount   float64 `json:"amount"`
}

// ToResponse converts a Balance model to a BalanceResponse DTO
func (b Balance) ToResponse() *BalanceResponse {
	return &BalanceResponse{
		Participant: b.Participant.Name,
		Amount:      b.Amount,
		Message:     b.Message(),
	}
}

// Message describes the balance from the participant's side
func (b Balance) Message() string {
	if b.Amount < 0 {
		return fmt.Sprintf("%s should receive %.2f", b.Participant.Name, -b.Amount)
	}
	return fmt.Sprintf("%s should pay %.2f", b.Participant.Name, b.Amount)
}

// ToResponse converts a Transaction model to a TransactionResponse DTO
func (t Transaction) ToResponse() *TransactionResponse {
	return &TransactionResponse{
		Payer:    t.Payer.Name,
		Receiver: t.Receiver.Name,
		Amount:   t.Amount,
	}
}

// ToResponse converts a Result to a ResultResponse DTO
func (r *Result) ToResponse() *ResultResponse {
	resp := &ResultResponse{
		Description:  r.Description,
		Roster:       r.Roster.ToResponse(),
		Receipts:     make([]*receipt.ReceiptResponse, len(r.Receipts)),
		Balances:     make([]*BalanceResponse, len(r.Balances)),
		Transactions: make([]*TransactionResponse, len(r.Transactions)),
	}
	for i, rcpt := range r.Receipts {
		resp.Receipts[i] = rcpt.ToResponse(r.Roster)
	}
	for i, b := range r.Balances {
		resp.Balances[i] = b.ToResponse()
	}
	for i, t := range r.Transactions {
		resp.Transactions[i] = t.ToResponse()
	}
	return resp
}
