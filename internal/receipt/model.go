package receipt

import "github.com/fkhayef/receiptsplit/internal/group"

// LineItem is one item's share allocated to a participant
type LineItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Allocation is the ordered list of items charged to one participant
type Allocation struct {
	Items []LineItem `json:"items"`
}

// Sum returns the total price of the allocation
func (a Allocation) Sum() float64 {
	var total float64
	for _, item := range a.Items {
		total += item.Price
	}
	return total
}

// Names returns the item names in allocation order
func (a Allocation) Names() []string {
	names := make([]string, len(a.Items))
	for i, item := range a.Items {
		names[i] = item.Name
	}
	return names
}

// Prices returns the item prices in allocation order
func (a Allocation) Prices() []float64 {
	prices := make([]float64, len(a.Items))
	for i, item := range a.Items {
		prices[i] = item.Price
	}
	return prices
}

// Receipt is one paid bill split among the roster.
// It is built once by Service.Build and not mutated afterwards.
type Receipt struct {
	Name     string
	Payer    group.Participant
	Subtotal float64 // before tax and tip
	Total    float64 // amount actually paid

	// Allocations and Scaled are indexed by roster position
	Allocations []Allocation
	Scaled      []Allocation
}

// Multiplier is the tax and tip factor applied to every item
func (r *Receipt) Multiplier() float64 {
	return r.Total / r.Subtotal
}

// Owed returns what the participant at idx consumed, tax and tip included
func (r *Receipt) Owed(idx int) float64 {
	if idx < 0 || idx >= len(r.Scaled) {
		return 0
	}
	return r.Scaled[idx].Sum()
}

// CheckTotal sums every scaled allocation on the receipt
func (r *Receipt) CheckTotal() float64 {
	var total float64
	for _, a := range r.Scaled {
		total += a.Sum()
	}
	return total
}

// Descriptor is the parsed form of a receipt, before allocation
type Descriptor struct {
	Name     string
	Payer    int // 0-based roster position
	Subtotal float64
	Total    float64
	Items    []ItemDescriptor
}

// ItemDescriptor is one item line.
// An empty Participants list means everyone; nil Ratios means an even split.
type ItemDescriptor struct {
	Name         string
	Price        float64
	Participants []int // 0-based roster positions
	Ratios       []float64
	Record       string // source line, for error messages
}
