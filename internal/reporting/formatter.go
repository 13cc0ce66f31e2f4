// Package reporting renders a planned Week for a human reader: a plain
// report struct for JSON/API consumers, a tablewriter table per day, and a
// colorized CLI summary.
package reporting

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/dimanh55/tourenplaner-backend-sub001/internal/domain"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	headerColor  = color.New(color.FgMagenta, color.Bold)
	infoColor    = color.New(color.FgCyan)
	dimColor     = color.New(color.FgBlack, color.Bold)
)

// DayReport mirrors one planned Day in the host-facing output shape.
type DayReport struct {
	DayName     string   `json:"dayName"`
	Date        string   `json:"date"`
	Segments    []string `json:"segments"`
	WorkHours   float64  `json:"workHours"`
	TravelHours float64  `json:"travelHours"`
	TotalHours  float64  `json:"totalHours"`
	Overnight   string   `json:"overnight,omitempty"`
}

// StatsReport mirrors domain.Stats in the host-facing output shape.
type StatsReport struct {
	TotalAppointments         int     `json:"totalAppointments"`
	ConfirmedAppointments     int     `json:"confirmedAppointments"`
	ProposalAppointments      int     `json:"proposalAppointments"`
	TotalTravelTime           float64 `json:"totalTravelTime"`
	WorkDays                  int     `json:"workDays"`
	OvernightStays            int     `json:"overnightStays"`
	LowConfidenceAppointments int     `json:"lowConfidenceAppointments"`
}

// WeekReport is the full external shape returned to a caller: a Monday
// weekStart, five days, and a stats/optimizations summary.
type WeekReport struct {
	WeekStart     string      `json:"weekStart"`
	Days          []DayReport `json:"days"`
	TotalHours    float64     `json:"totalHours"`
	Optimizations []string    `json:"optimizations"`
	Stats         StatsReport `json:"stats"`
	GeneratedAt   string      `json:"generatedAt"`
}

// Formatter turns a planned Week into the external report shape and into
// human-facing presentations of it.
type Formatter struct{}

// NewFormatter returns a Formatter. It carries no state: every method's
// result or printed output depends only on its Week argument.
func NewFormatter() *Formatter { return &Formatter{} }

// Render builds the WeekReport a host system would serialize to JSON.
func (f *Formatter) Render(week domain.Week) WeekReport {
	report := WeekReport{
		WeekStart:     week.WeekStart.Format("2006-01-02"),
		TotalHours:    round1(week.TotalHours),
		Optimizations: append([]string(nil), week.Optimizations...),
		Stats: StatsReport{
			TotalAppointments:         week.Stats.TotalAppointments,
			ConfirmedAppointments:     week.Stats.ConfirmedAppointments,
			ProposalAppointments:      week.Stats.ProposalAppointments,
			TotalTravelTime:           round1(week.Stats.TotalTravelTime),
			WorkDays:                  week.Stats.WorkDays,
			OvernightStays:            week.Stats.OvernightStays,
			LowConfidenceAppointments: week.Stats.LowConfidenceAppointments,
		},
		GeneratedAt: week.GeneratedAt.Format(time.RFC3339),
	}
	for _, day := range week.Days {
		report.Days = append(report.Days, renderDay(day))
	}
	return report
}

func renderDay(day domain.Day) DayReport {
	dr := DayReport{
		DayName:     string(day.DayName),
		Date:        day.Date.Format("2006-01-02"),
		WorkHours:   round1(day.WorkHours),
		TravelHours: round1(day.TravelHours),
		TotalHours:  round1(day.TotalHours),
	}
	for _, seg := range day.Segments {
		dr.Segments = append(dr.Segments, seg.String())
	}
	if day.Overnight != nil {
		dr.Overnight = fmt.Sprintf("%s (%s)", day.Overnight.City, day.Overnight.Reason)
	}
	return dr
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

// RenderTable writes one tablewriter table per day to stdout: time range,
// kind, and description, in segment order.
func (f *Formatter) RenderTable(week domain.Week) {
	for _, day := range week.Days {
		headerColor.Printf("\n%s, %s\n", day.DayName, day.Date.Format("02.01.2006"))
		if len(day.Segments) == 0 {
			dimColor.Println("keine Termine")
			if day.Overnight != nil {
				infoColor.Printf("Übernachtung: %s ab %s (%s)\n", day.Overnight.City, day.Overnight.CheckIn, day.Overnight.Reason)
			}
			continue
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Zeit", "Art", "Beschreibung"})
		table.SetBorder(false)
		table.SetRowSeparator("-")
		table.SetHeaderColor(
			tablewriter.Colors{tablewriter.FgMagentaColor, tablewriter.Bold},
			tablewriter.Colors{tablewriter.FgMagentaColor, tablewriter.Bold},
			tablewriter.Colors{tablewriter.FgMagentaColor, tablewriter.Bold},
		)

		for _, seg := range day.Segments {
			kind, desc := segmentColumns(seg)
			table.Append([]string{
				seg.StartTime + "-" + seg.EndTime,
				kind,
				desc,
			})
		}
		table.Render()

		if day.Overnight != nil {
			infoColor.Printf("Übernachtung: %s ab %s (%s)\n", day.Overnight.City, day.Overnight.CheckIn, day.Overnight.Reason)
		}
		fmt.Printf("Arbeit: %.1fh  Fahrt: %.1fh  Gesamt: %.1fh\n", day.WorkHours, day.TravelHours, day.TotalHours)
	}
}

func segmentColumns(seg domain.Segment) (kind, desc string) {
	switch seg.Kind {
	case domain.SegmentAppointment:
		return "Termin", seg.Customer
	case domain.SegmentTravel:
		return string(seg.TravelType), seg.FromLabel + " -> " + seg.ToLabel
	default:
		return "?", ""
	}
}

// RenderCLI prints the colorized week summary a terminal user sees after
// running the planning command: a header, per-day table, and a closing
// stats/optimizations block.
func (f *Formatter) RenderCLI(week domain.Week) {
	fmt.Println()
	headerColor.Printf("Wochenplan ab %s\n", week.WeekStart.Format("02.01.2006"))
	fmt.Println(strings.Repeat("=", 50))

	f.RenderTable(week)

	fmt.Println()
	successColor.Println("ZUSAMMENFASSUNG:")
	fmt.Printf("Gesamtstunden: %.1fh (Reisezeit: %.1fh)\n", week.TotalHours, week.Stats.TotalTravelTime)
	fmt.Printf("Termine: %d bestätigt, %d vorgeschlagen (von %d gesamt)\n",
		week.Stats.ConfirmedAppointments, week.Stats.ProposalAppointments, week.Stats.TotalAppointments)
	fmt.Printf("Arbeitstage: %d, Übernachtungen: %d\n", week.Stats.WorkDays, week.Stats.OvernightStays)

	if week.Stats.LowConfidenceAppointments > 0 {
		warningColor.Printf("Achtung: %d Termin(e) mit geringer Adressgenauigkeit\n", week.Stats.LowConfidenceAppointments)
	}

	if len(week.Optimizations) > 0 {
		fmt.Println()
		warningColor.Println("HINWEISE:")
		for _, note := range week.Optimizations {
			fmt.Printf("- %s\n", note)
		}
	}
}
