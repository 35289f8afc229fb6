package split

// =============================================================================
// EVEN SPLIT STRATEGY
// Divides the price equally among the listed participants
// =============================================================================

// EvenStrategy implements the Strategy interface for even splits
type EvenStrategy struct{}

// Type returns the split type identifier
func (s *EvenStrategy) Type() SplitType {
	return SplitTypeEven
}

// Validate checks if the inputs are valid for an even split
func (s *EvenStrategy) Validate(price float64, participants []SplitInput) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	for _, p := range participants {
		if p.Ratio != nil {
			return ErrUnexpectedRatio
		}
	}
	return nil
}

// Calculate gives every listed participant price/N.
// A participant listed twice receives two shares.
func (s *EvenStrategy) Calculate(price float64, participants []SplitInput) ([]SplitOutput, error) {
	if err := s.Validate(price, participants); err != nil {
		return nil, err
	}

	share := price / float64(len(participants))

	outputs := make([]SplitOutput, len(participants))
	for i, p := range participants {
		outputs[i] = SplitOutput{
			Index:  p.Index,
			Amount: share,
		}
	}

	return outputs, nil
}
