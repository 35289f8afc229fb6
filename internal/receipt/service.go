package receipt

import (
	"errors"
	"fmt"
	"math"

	"github.com/fkhayef/receiptsplit/internal/apperr"
	"github.com/fkhayef/receiptsplit/internal/group"
	"github.com/fkhayef/receiptsplit/internal/receipt/split"
)

// Tolerance is the absolute slack allowed when comparing money sums
const Tolerance = 1e-6

// Common errors
var (
	ErrNegativeTotal          = errors.New("total cannot be negative")
	ErrNotFinite              = errors.New("amount must be a finite number")
	ErrRatioCountMismatch     = errors.New("participant and ratio lists differ in length")
	ErrRatiosNeedParticipants = errors.New("ratios require an explicit participant list")
	ErrCheckTotalMismatch     = errors.New("scaled items do not add up to the total")
)

// Service turns receipt descriptors into allocated, scaled receipts
type Service struct {
	splitFactory *split.Factory // Factory pattern for creating split strategies
}

// NewService creates a new receipt service with dependencies injected
func NewService(splitFactory *split.Factory) *Service {
	return &Service{
		splitFactory: splitFactory,
	}
}

// Build allocates every item of desc among the roster, then applies the
// tax and tip multiplier
func (s *Service) Build(roster group.Roster, desc Descriptor) (*Receipt, error) {
	record := fmt.Sprintf("receipt %q", desc.Name)

	payer, err := roster.At(desc.Payer)
	if err != nil {
		return nil, fmt.Errorf("%s payer: %w", record, err)
	}

	if !finite(desc.Subtotal) || !finite(desc.Total) {
		return nil, apperr.Format("receipt.build", record, ErrNotFinite)
	}
	if desc.Subtotal <= 0 {
		return nil, apperr.Division("receipt.build", record, ErrNonPositiveSubtotal)
	}
	if desc.Total < 0 {
		return nil, apperr.Format("receipt.build", record, ErrNegativeTotal)
	}

	allocations := make([]Allocation, roster.Len())
	for _, item := range desc.Items {
		outputs, err := s.allocate(roster, item)
		if err != nil {
			return nil, err
		}
		// Append-only, in input order
		for _, out := range outputs {
			allocations[out.Index].Items = append(allocations[out.Index].Items, LineItem{
				Name:  item.Name,
				Price: out.Amount,
			})
		}
	}

	scaled, err := Scale(allocations, desc.Subtotal, desc.Total)
	if err != nil {
		return nil, err
	}

	rcpt := &Receipt{
		Name:        desc.Name,
		Payer:       payer,
		Subtotal:    desc.Subtotal,
		Total:       desc.Total,
		Allocations: allocations,
		Scaled:      scaled,
	}

	if check := rcpt.CheckTotal(); math.Abs(check-rcpt.Total) > Tolerance {
		return nil, apperr.Invariant("receipt.build", record,
			fmt.Errorf("%w: check total %g, total %g (items sum to %g, subtotal %g)",
				ErrCheckTotalMismatch, check, rcpt.Total, check/rcpt.Multiplier(), rcpt.Subtotal))
	}

	return rcpt, nil
}

// allocate resolves the participants of one item and runs its split strategy
func (s *Service) allocate(roster group.Roster, item ItemDescriptor) ([]split.SplitOutput, error) {
	record := item.Record
	if record == "" {
		record = fmt.Sprintf("item %q", item.Name)
	}

	if !finite(item.Price) {
		return nil, apperr.Format("receipt.allocate", record, ErrNotFinite)
	}

	if item.Ratios != nil {
		for _, r := range item.Ratios {
			if !finite(r) {
				return nil, apperr.Format("receipt.allocate", record, ErrNotFinite)
			}
		}
		if len(item.Participants) == 0 {
			return nil, apperr.Format("receipt.allocate", record, ErrRatiosNeedParticipants)
		}
		if len(item.Participants) != len(item.Ratios) {
			return nil, apperr.Format("receipt.allocate", record,
				fmt.Errorf("%w: %d participants, %d ratios", ErrRatioCountMismatch, len(item.Participants), len(item.Ratios)))
		}
	}

	var inputs []split.SplitInput
	if len(item.Participants) == 0 {
		inputs = make([]split.SplitInput, roster.Len())
		for i := range inputs {
			inputs[i] = split.SplitInput{Index: i}
		}
	} else {
		inputs = make([]split.SplitInput, len(item.Participants))
		for i, idx := range item.Participants {
			if err := roster.CheckIndex(idx); err != nil {
				return nil, fmt.Errorf("%s: %w", record, err)
			}
			inputs[i] = split.SplitInput{Index: idx}
			if item.Ratios != nil {
				r := item.Ratios[i]
				inputs[i].Ratio = &r
			}
		}
	}

	// Use STRATEGY PATTERN - split the price with the strategy for this item shape
	strategy, err := s.splitFactory.ForItem(item.Ratios != nil)
	if err != nil {
		return nil, err
	}
	outputs, err := strategy.Calculate(item.Price, inputs)
	if err != nil {
		return nil, apperr.Format("receipt.allocate", record, err)
	}

	return outputs, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
