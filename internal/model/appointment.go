package model

// AppointmentEvent is one existing or proposed calendar entry. Start and End
// are local wall-clock ISO-8601 timestamps without a zone designator.
type AppointmentEvent struct {
	Title string `json:"title"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// ReservationArgs are the create_reservation tool arguments.
type ReservationArgs struct {
	Title       string `json:"title"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Description string `json:"description,omitempty"`
}

// Candidate converts reservation arguments into the event they would create.
func (a ReservationArgs) Candidate() AppointmentEvent {
	return AppointmentEvent{
		Title: a.Title,
		Start: a.StartTime,
		End:   a.EndTime,
	}
}
