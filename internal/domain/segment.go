package domain

import "fmt"

// TravelKind distinguishes the different travel-shaped segments a day can
// contain. Breaks are modeled as a TravelKind rather than a third sum-type
// arm because they share every field Travel has (start, end, from/to
// labels) and get ordered and collision-checked the same way as any other
// travel leg.
type TravelKind string

const (
	TravelDeparture           TravelKind = "departure"
	TravelDepartureFromHotel  TravelKind = "departure_from_hotel"
	TravelLeg                TravelKind = "travel"
	TravelReturn              TravelKind = "return"
	TravelBreak               TravelKind = "break"
)

// SegmentKind discriminates the Segment tagged union.
type SegmentKind int

const (
	SegmentAppointment SegmentKind = iota
	SegmentTravel
)

// Segment is a tagged sum type in place of a heterogeneous field-probed
// list: every segment carries a common {start, end} header and a Kind that
// determines which of the remaining fields is populated. Callers
// pattern-match on Kind rather than probing for the presence of optional
// fields.
type Segment struct {
	Kind SegmentKind

	StartTime string // "HH:MM", half-hour aligned
	EndTime   string

	// Populated when Kind == SegmentAppointment.
	AppointmentID string
	Customer      string

	// Populated when Kind == SegmentTravel.
	TravelType TravelKind
	FromLabel  string
	ToLabel    string
}

// String renders a segment the way the host-facing report does: an
// "HH:MM"-prefixed one-line description.
func (s Segment) String() string {
	switch s.Kind {
	case SegmentAppointment:
		return fmt.Sprintf("%s-%s Termin: %s", s.StartTime, s.EndTime, s.Customer)
	case SegmentTravel:
		return fmt.Sprintf("%s-%s %s: %s -> %s", s.StartTime, s.EndTime, s.TravelType, s.FromLabel, s.ToLabel)
	default:
		return fmt.Sprintf("%s-%s ?", s.StartTime, s.EndTime)
	}
}
