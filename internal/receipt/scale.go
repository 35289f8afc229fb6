package receipt

import (
	"errors"
	"fmt"

	"github.com/fkhayef/receiptsplit/internal/apperr"
)

// ErrNonPositiveSubtotal is returned when a subtotal cannot be used as a divisor
var ErrNonPositiveSubtotal = errors.New("subtotal must be greater than zero")

// Scale returns a deep copy of allocations with every price multiplied by
// total/subtotal. The input is left untouched.
func Scale(allocations []Allocation, subtotal, total float64) ([]Allocation, error) {
	if subtotal <= 0 {
		return nil, apperr.Division("receipt.scale", fmt.Sprintf("subtotal %g", subtotal), ErrNonPositiveSubtotal)
	}

	multiplier := total / subtotal

	scaled := make([]Allocation, len(allocations))
	for i, a := range allocations {
		items := make([]LineItem, len(a.Items))
		for j, item := range a.Items {
			items[j] = LineItem{
				Name:  item.Name,
				Price: item.Price * multiplier,
			}
		}
		scaled[i] = Allocation{Items: items}
	}

	return scaled, nil
}
