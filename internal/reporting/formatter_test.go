package reporting

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimanh55/tourenplaner-backend-sub001/internal/domain"
)

func sampleWeek() domain.Week {
	week := domain.Week{
		ID:        "week-1",
		WeekStart: time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC),
	}
	week.Days[0] = domain.Day{
		DayName: domain.Monday,
		Date:    time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC),
		Segments: []domain.Segment{
			{Kind: domain.SegmentTravel, StartTime: "08:30", EndTime: "09:00", TravelType: domain.TravelDeparture, FromLabel: "Hannover", ToLabel: "Kunde A"},
			{Kind: domain.SegmentAppointment, StartTime: "09:00", EndTime: "12:00", AppointmentID: "a1", Customer: "Kunde A"},
			{Kind: domain.SegmentTravel, StartTime: "12:00", EndTime: "12:30", TravelType: domain.TravelReturn, FromLabel: "Kunde A", ToLabel: "Hannover"},
		},
	}
	week.Days[0].Recompute()
	week.Days[1] = domain.Day{
		DayName: domain.Tuesday,
		Date:    time.Date(2026, 8, 4, 0, 0, 0, 0, time.UTC),
		Overnight: &domain.Overnight{
			City:    "München",
			Reason:  "480km von Hannover entfernt",
			CheckIn: "18:30",
		},
	}
	week.Days[1].Recompute()
	week.Stats = domain.Stats{
		TotalAppointments:         2,
		ConfirmedAppointments:     1,
		ProposalAppointments:      1,
		TotalTravelTime:           0.5,
		WorkDays:                  1,
		OvernightStays:            1,
		LowConfidenceAppointments: 1,
	}
	week.Optimizations = []string{"Adresse von Kunde B konnte nur auf Länderebene aufgelöst werden"}
	week.GeneratedAt = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	week.Recompute()
	return week
}

func TestFormatterRenderMapsWeekFields(t *testing.T) {
	f := NewFormatter()
	week := sampleWeek()

	report := f.Render(week)

	assert.Equal(t, "2026-08-03", report.WeekStart)
	assert.Equal(t, "2026-08-01T10:00:00Z", report.GeneratedAt)
	assert.Equal(t, week.Optimizations, report.Optimizations)
	assert.Equal(t, StatsReport{
		TotalAppointments:         2,
		ConfirmedAppointments:     1,
		ProposalAppointments:      1,
		TotalTravelTime:           0.5,
		WorkDays:                  1,
		OvernightStays:            1,
		LowConfidenceAppointments: 1,
	}, report.Stats)
}

func TestFormatterRenderDaySegmentsAndOvernight(t *testing.T) {
	f := NewFormatter()
	week := sampleWeek()

	report := f.Render(week)
	require.Len(t, report.Days, 5)

	monday := report.Days[0]
	assert.Equal(t, "Montag", monday.DayName)
	assert.Equal(t, "2026-08-03", monday.Date)
	require.Len(t, monday.Segments, 3)
	assert.Equal(t, "09:00-12:00 Termin: Kunde A", monday.Segments[1])
	assert.Equal(t, 3.0, monday.WorkHours)
	assert.Empty(t, monday.Overnight)

	tuesday := report.Days[1]
	assert.Empty(t, tuesday.Segments)
	assert.Equal(t, "München (480km von Hannover entfernt)", tuesday.Overnight)
}

func TestFormatterRenderEmptyDayProducesNilSegments(t *testing.T) {
	f := NewFormatter()
	var week domain.Week
	week.WeekStart = time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

	report := f.Render(week)

	for _, day := range report.Days {
		assert.Empty(t, day.Segments)
		assert.Empty(t, day.Overnight)
	}
}

func TestRound1RoundsToOneDecimal(t *testing.T) {
	assert.Equal(t, 3.1, round1(3.14))
	assert.Equal(t, 3.2, round1(3.15))
	assert.Equal(t, 0.0, round1(0))
	assert.Equal(t, 10.0, round1(9.96))
}

func TestSegmentColumnsMapsKindToGermanLabel(t *testing.T) {
	kind, desc := segmentColumns(domain.Segment{Kind: domain.SegmentAppointment, Customer: "Kunde A"})
	assert.Equal(t, "Termin", kind)
	assert.Equal(t, "Kunde A", desc)

	kind, desc = segmentColumns(domain.Segment{Kind: domain.SegmentTravel, TravelType: domain.TravelReturn, FromLabel: "Kunde A", ToLabel: "Hannover"})
	assert.Equal(t, "return", kind)
	assert.Equal(t, "Kunde A -> Hannover", desc)
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	// fatih/color writes to color.Output, bound to the original stdout at init.
	oldColor := color.Output
	color.Output = w

	fn()

	require.NoError(t, w.Close())
	os.Stdout = old
	color.Output = oldColor

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func TestRenderTablePrintsDayHeadersAndSegments(t *testing.T) {
	f := NewFormatter()
	week := sampleWeek()

	out := captureStdout(t, func() {
		f.RenderTable(week)
	})

	assert.Contains(t, out, "Montag")
	assert.Contains(t, out, "Kunde A")
	assert.Contains(t, out, "Übernachtung")
	assert.Contains(t, out, "München")
	assert.Contains(t, out, "keine Termine")
}

func TestRenderCLIPrintsSummaryAndNotes(t *testing.T) {
	f := NewFormatter()
	week := sampleWeek()

	out := captureStdout(t, func() {
		f.RenderCLI(week)
	})

	assert.Contains(t, out, "Wochenplan ab")
	assert.Contains(t, out, "ZUSAMMENFASSUNG")
	assert.Contains(t, out, "1 bestätigt, 1 vorgeschlagen (von 2 gesamt)")
	assert.Contains(t, out, "geringer Adressgenauigkeit")
	assert.Contains(t, out, "HINWEISE")
	assert.Contains(t, out, "Länderebene aufgelöst werden")
}

func TestRenderCLIOmitsNotesSectionWhenNoOptimizations(t *testing.T) {
	f := NewFormatter()
	week := sampleWeek()
	week.Optimizations = nil
	week.Stats.LowConfidenceAppointments = 0

	out := captureStdout(t, func() {
		f.RenderCLI(week)
	})

	assert.NotContains(t, out, "HINWEISE")
	assert.NotContains(t, out, "geringer Adressgenauigkeit")
}
