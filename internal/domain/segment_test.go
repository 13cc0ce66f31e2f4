package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegmentStringAppointment(t *testing.T) {
	seg := Segment{
		Kind:      SegmentAppointment,
		StartTime: "09:00",
		EndTime:   "12:00",
		Customer:  "Müller GmbH",
	}
	assert.Equal(t, "09:00-12:00 Termin: Müller GmbH", seg.String())
}

func TestSegmentStringTravel(t *testing.T) {
	seg := Segment{
		Kind:       SegmentTravel,
		StartTime:  "08:00",
		EndTime:    "09:00",
		TravelType: TravelDeparture,
		FromLabel:  "Hannover",
		ToLabel:    "Berlin",
	}
	assert.Equal(t, "08:00-09:00 departure: Hannover -> Berlin", seg.String())
}

func TestSegmentStringUnknownKind(t *testing.T) {
	var seg Segment
	seg.Kind = SegmentKind(99)
	seg.StartTime = "10:00"
	seg.EndTime = "11:00"
	assert.Equal(t, "10:00-11:00 ?", seg.String())
}
