package group

// Participant is a roster member identified by its 0-based position
type Participant struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// Roster is the ordered, fixed list of participants for one run.
// Build it with NewRoster; the zero value has no members.
type Roster struct {
	names   []string
	byName  map[string]int
	longest int
}

// Len returns the number of participants
func (r Roster) Len() int {
	return len(r.names)
}

// Names returns a copy of the participant names in roster order
func (r Roster) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Participants returns every participant in roster order
func (r Roster) Participants() []Participant {
	out := make([]Participant, len(r.names))
	for i, name := range r.names {
		out[i] = Participant{Index: i, Name: name}
	}
	return out
}

// LongestName is the length of the longest name, used to align reports
func (r Roster) LongestName() int {
	return r.longest
}
