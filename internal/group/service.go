package group

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fkhayef/receiptsplit/internal/apperr"
)

// Common errors
var (
	ErrEmptyRoster     = errors.New("at least one participant is required")
	ErrBlankName       = errors.New("participant name cannot be blank")
	ErrDuplicateName   = errors.New("participant names must be unique")
	ErrMemberNotFound  = errors.New("participant not found in roster")
	ErrIndexOutOfRange = errors.New("participant index out of range")
)

// NewRoster builds a roster from names, trimming surrounding whitespace
func NewRoster(names []string) (Roster, error) {
	if len(names) == 0 {
		return Roster{}, apperr.Format("group.roster", "", ErrEmptyRoster)
	}

	r := Roster{
		names:  make([]string, 0, len(names)),
		byName: make(map[string]int, len(names)),
	}
	for i, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			return Roster{}, apperr.Format("group.roster", fmt.Sprintf("name %d", i+1), ErrBlankName)
		}
		if _, exists := r.byName[name]; exists {
			return Roster{}, apperr.Format("group.roster", name, ErrDuplicateName)
		}
		r.byName[name] = i
		r.names = append(r.names, name)
		if len(name) > r.longest {
			r.longest = len(name)
		}
	}

	return r, nil
}

// Index returns the 0-based position of name
func (r Roster) Index(name string) (int, error) {
	idx, ok := r.byName[strings.TrimSpace(name)]
	if !ok {
		return 0, apperr.Reference("group.index", name,
			fmt.Errorf("%w: %q is not one of %s", ErrMemberNotFound, name, strings.Join(r.names, ", ")))
	}
	return idx, nil
}

// Lookup returns the participant called name
func (r Roster) Lookup(name string) (Participant, error) {
	idx, err := r.Index(name)
	if err != nil {
		return Participant{}, err
	}
	return Participant{Index: idx, Name: r.names[idx]}, nil
}

// At returns the participant at a 0-based index
func (r Roster) At(idx int) (Participant, error) {
	if err := r.CheckIndex(idx); err != nil {
		return Participant{}, err
	}
	return Participant{Index: idx, Name: r.names[idx]}, nil
}

// CheckIndex fails with a reference error when idx is outside the roster
func (r Roster) CheckIndex(idx int) error {
	if idx < 0 || idx >= len(r.names) {
		return apperr.Reference("group.index", fmt.Sprintf("index %d", idx),
			fmt.Errorf("%w: roster has %d participants", ErrIndexOutOfRange, len(r.names)))
	}
	return nil
}

// FromOneBased converts a 1-based index from user input to a 0-based one
func (r Roster) FromOneBased(n int) (int, error) {
	if n < 1 || n > len(r.names) {
		return 0, apperr.Reference("group.index", fmt.Sprintf("participant %d", n),
			fmt.Errorf("%w: expected 1..%d", ErrIndexOutOfRange, len(r.names)))
	}
	return n - 1, nil
}

// Name returns the name at a 0-based index, or "" when out of range
func (r Roster) Name(idx int) string {
	if idx < 0 || idx >= len(r.names) {
		return ""
	}
	return r.names[idx]
}
