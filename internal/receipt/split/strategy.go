package split

import (
	"errors"
	"fmt"
)

// SplitType defines the type of split strategy
type SplitType string

const (
	SplitTypeEven  SplitType = "EVEN"
	SplitTypeRatio SplitType = "RATIO"
)

// SplitInput represents a participant in a split with an optional weight
type SplitInput struct {
	Index int      `json:"index"`           // 0-based roster position
	Ratio *float64 `json:"ratio,omitempty"` // For RATIO split
}

// SplitOutput represents the calculated share for a single participant
type SplitOutput struct {
	Index  int     `json:"index"`
	Amount float64 `json:"amount"`
}

// Strategy is the interface that all split strategies must implement
type Strategy interface {
	// Calculate computes the share of price for every participant, in input order
	Calculate(price float64, participants []SplitInput) ([]SplitOutput, error)

	// Type returns the type identifier for this strategy
	Type() SplitType

	// Validate checks if the inputs are valid for this strategy
	Validate(price float64, participants []SplitInput) error
}

// Factory creates split strategies based on the requested type
type Factory struct{}

// NewSplitStrategyFactory creates a new factory instance
func NewSplitStrategyFactory() *Factory {
	return &Factory{}
}

// Create returns the appropriate strategy implementation based on the type
func (f *Factory) Create(splitType SplitType) (Strategy, error) {
	switch splitType {
	case SplitTypeEven:
		return &EvenStrategy{}, nil
	case SplitTypeRatio:
		return &RatioStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSplitType, splitType)
	}
}

// ForItem creates RATIO when the item carries ratios and EVEN otherwise
func (f *Factory) ForItem(hasRatios bool) (Strategy, error) {
	if hasRatios {
		return f.Create(SplitTypeRatio)
	}
	return f.Create(SplitTypeEven)
}

var (
	ErrUnknownSplitType  = errors.New("unknown split type")
	ErrNoParticipants    = errors.New("at least one participant is required")
	ErrMissingRatio      = errors.New("ratio value required for all participants")
	ErrNegativeRatio     = errors.New("ratios cannot be negative")
	ErrNonPositiveRatios = errors.New("ratios must sum to a positive value")
	ErrUnexpectedRatio   = errors.New("even split does not take ratios")
)
