package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimanh55/tourenplaner-backend-sub001/internal/domain"
)

func TestAppointmentInputToDomainMapsAllFields(t *testing.T) {
	lat, lng := 52.37, 9.73
	in := appointmentInput{
		ID: "a1", Customer: "Kunde A", Address: "Marktplatz 1, 30159 Hannover",
		Lat: &lat, Lng: &lng,
		Status: "bestätigt", Priority: "high", PipelineDays: 5,
		IsFixed: true, FixedDate: "2026-08-05", FixedTime: "10:00", Notes: "Erstbesuch",
	}

	a, err := in.toDomain()
	require.NoError(t, err)
	assert.Equal(t, "a1", a.ID)
	assert.Equal(t, domain.StatusConfirmed, a.Status)
	assert.Equal(t, domain.PriorityHigh, a.Priority)
	assert.True(t, a.IsFixed)
	assert.Equal(t, time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC), a.FixedDate)
	assert.Equal(t, "10:00", a.FixedTime)
	require.NotNil(t, a.Lat)
	assert.Equal(t, 52.37, *a.Lat)
}

func TestAppointmentInputToDomainWithoutFixedDateLeavesZeroValue(t *testing.T) {
	in := appointmentInput{ID: "a2", Customer: "Kunde B", Address: "Hannover", Status: "vorschlag"}

	a, err := in.toDomain()
	require.NoError(t, err)
	assert.True(t, a.FixedDate.IsZero())
}

func TestAppointmentInputToDomainRejectsInvalidFixedDate(t *testing.T) {
	in := appointmentInput{ID: "a3", FixedDate: "not-a-date"}

	_, err := in.toDomain()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "a3")
}

func TestResolveWeekStartParsesExplicitValue(t *testing.T) {
	monday, err := resolveWeekStart("2026-08-03")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC), monday)
}

func TestResolveWeekStartRejectsMalformedValue(t *testing.T) {
	_, err := resolveWeekStart("03.08.2026")
	assert.Error(t, err)
}

func TestResolveWeekStartDefaultsToUpcomingMonday(t *testing.T) {
	monday, err := resolveWeekStart("")
	require.NoError(t, err)
	assert.Equal(t, time.Monday, monday.Weekday())
	assert.Equal(t, 0, monday.Hour())
}
