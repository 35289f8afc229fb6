package receipt

import (
	"fmt"

	"github.com/fkhayef/receiptsplit/internal/group"
)

// CreateReceiptRequest represents the request to split a single receipt
type CreateReceiptRequest struct {
	Names   []string       `json:"names" validate:"required,min=1"`
	Receipt ReceiptRequest `json:"receipt" validate:"required"`
}

// ReceiptRequest is the structured form of a receipt block.
// Payer is a roster name; participant indices are 1-based.
type ReceiptRequest struct {
	Name     string        `json:"name" yaml:"name"`
	Payer    string        `json:"payer" yaml:"payer" validate:"required"`
	Subtotal float64       `json:"subtotal" yaml:"subtotal" validate:"required,gt=0"`
	Total    float64       `json:"total" yaml:"total" validate:"gte=0"`
	Items    []ItemRequest `json:"items" yaml:"items"`
}

// ItemRequest is one item line; empty Participants means everyone
type ItemRequest struct {
	Name         string    `json:"name" yaml:"name"`
	Price        float64   `json:"price" yaml:"price"`
	Participants []int     `json:"participants,omitempty" yaml:"participants,omitempty"`
	Ratios       []float64 `json:"ratios,omitempty" yaml:"ratios,omitempty"`
}

// ToDescriptor resolves names and 1-based indices against the roster.
// field prefixes error records, e.g. "receipts[2]".
func (r *ReceiptRequest) ToDescriptor(roster group.Roster, field string) (Descriptor, error) {
	payer, err := roster.Lookup(r.Payer)
	if err != nil {
		return Descriptor{}, fmt.Errorf("%s.payer: %w", field, err)
	}

	desc := Descriptor{
		Name:     r.Name,
		Payer:    payer.Index,
		Subtotal: r.Subtotal,
		Total:    r.Total,
		Items:    make([]ItemDescriptor, 0, len(r.Items)),
	}

	for i, item := range r.Items {
		itemField := fmt.Sprintf("%s.items[%d]", field, i)
		d := ItemDescriptor{
			Name:   item.Name,
			Price:  item.Price,
			Record: itemField,
		}
		for _, n := range item.Participants {
			idx, err := roster.FromOneBased(n)
			if err != nil {
				return Descriptor{}, fmt.Errorf("%s: %w", itemField, err)
			}
			d.Participants = append(d.Participants, idx)
		}
		if len(item.Ratios) > 0 {
			d.Ratios = append([]float64(nil), item.Ratios...)
		}
		desc.Items = append(desc.Items, d)
	}

	return desc, nil
}

// ReceiptResponse represents the response for an allocated receipt
type ReceiptResponse struct {
	Name       string           `json:"name"`
	Payer      string           `json:"payer"`
	Subtotal   float64          `json:"subtotal"`
	Total      float64          `json:"total"`
	Multiplier float64          `json:"multiplier"`
	CheckTotal float64          `json:"check_total"`
	Shares     []*ShareResponse `json:"shares"`
}

// ShareResponse is one participant's part of a receipt
type ShareResponse struct {
	Participant string     `json:"participant"`
	Owed        float64    `json:"owed"`
	Items       []LineItem `json:"items"`     // tax and tip included
	RawItems    []LineItem `json:"raw_items"` // before tax and tip
}

// ToResponse converts a Receipt model to a ReceiptResponse DTO
func (r *Receipt) ToResponse(roster group.Roster) *ReceiptResponse {
	shares := make([]*ShareResponse, len(r.Scaled))
	for i, a := range r.Scaled {
		shares[i] = &ShareResponse{
			Participant: roster.Name(i),
			Owed:        a.Sum(),
			Items:       nonNil(a.Items),
			RawItems:    nonNil(r.Allocations[i].Items),
		}
	}

	return &ReceiptResponse{
		Name:       r.Name,
		Payer:      r.Payer.Name,
		Subtotal:   r.Subtotal,
		Total:      r.Total,
		Multiplier: r.Multiplier(),
		CheckTotal: r.CheckTotal(),
		Shares:     shares,
	}
}

func nonNil(items []LineItem) []LineItem {
	if items == nil {
		return []LineItem{}
	}
	return items
}
