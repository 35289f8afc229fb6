package split

// =============================================================================
// RATIO SPLIT STRATEGY
// Divides the price by weight; weights are normalised by their sum
// =============================================================================

// RatioStrategy implements the Strategy interface for weighted splits
type RatioStrategy struct{}

// Type returns the split type identifier
func (s *RatioStrategy) Type() SplitType {
	return SplitTypeRatio
}

// Validate checks if the inputs are valid for a ratio split
func (s *RatioStrategy) Validate(price float64, participants []SplitInput) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}

	var total float64
	for _, p := range participants {
		if p.Ratio == nil {
			return ErrMissingRatio
		}
		if *p.Ratio < 0 {
			return ErrNegativeRatio
		}
		total += *p.Ratio
	}

	// Ratios need not sum to 1, but the sum is used as a divisor
	if total <= 0 {
		return ErrNonPositiveRatios
	}

	return nil
}

// Calculate gives participant i price * ratio_i / sum(ratios)
func (s *RatioStrategy) Calculate(price float64, participants []SplitInput) ([]SplitOutput, error) {
	if err := s.Validate(price, participants); err != nil {
		return nil, err
	}

	var total float64
	for _, p := range participants {
		total += *p.Ratio
	}

	outputs := make([]SplitOutput, len(participants))
	for i, p := range participants {
		outputs[i] = SplitOutput{
			Index:  p.Index,
			Amount: price * (*p.Ratio / total),
		}
	}

	return outputs, nil
}
