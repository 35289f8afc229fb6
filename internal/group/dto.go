package group

// RosterResponse lists the participants of a run
type RosterResponse struct {
	Participants []Participant `json:"participants"`
}

// ToResponse converts a Roster to a RosterResponse DTO
func (r Roster) ToResponse() *RosterResponse {
	return &RosterResponse{Participants: r.Participants()}
}
