package planner

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dimanh55/tourenplaner-backend-sub001/internal/config"
	"github.com/dimanh55/tourenplaner-backend-sub001/internal/domain"
	"github.com/dimanh55/tourenplaner-backend-sub001/internal/geo"
	"github.com/dimanh55/tourenplaner-backend-sub001/pkg/logger"
)

// WeekPlanner orchestrates a full week: resolving coordinates, placing
// fixed appointments first, then flexible appointments region by region,
// stopping early once the weekly budget is spent.
type WeekPlanner struct {
	cfg       config.PlanningConfig
	geocoder  *geo.Geocoder
	distance  *geo.DistanceOracle
	clusterer *RegionClusterer
	log       logger.Logger
}

// NewWeekPlanner wires a week planner to its geocoding/distance
// collaborators and a planning configuration.
func NewWeekPlanner(cfg config.PlanningConfig, geocoder *geo.Geocoder, distance *geo.DistanceOracle, log logger.Logger) *WeekPlanner {
	if log == nil {
		log = logger.Noop{}
	}
	return &WeekPlanner{
		cfg:       cfg,
		geocoder:  geocoder,
		distance:  distance,
		clusterer: NewRegionClusterer(cfg.HomeBase),
		log:       log,
	}
}

// Plan builds a full 5-day Week from appointments, anchored at weekStart
// (expected to be a Monday; the caller is responsible for that invariant).
func (wp *WeekPlanner) Plan(ctx context.Context, appointments []domain.Appointment, weekStart time.Time) domain.Week {
	week := domain.Week{
		ID:          uuid.NewString(),
		WeekStart:   weekStart,
		GeneratedAt: time.Now().UTC(),
	}
	for i, name := range domain.WeekdayOrder {
		week.Days[i] = domain.Day{DayName: name, Date: weekStart.AddDate(0, 0, i)}
	}

	points, labels, lowConfidence := wp.resolveAll(ctx, appointments)

	dayPlanner := NewDayPlanner(wp.cfg, wp.distance)

	fixedPoints := wp.placeFixed(week.Days[:], appointments, points, labels)

	clustered := wp.clusterer.Cluster(appointments, points)

	weekHours := 0.0
	var overnight *domain.Overnight

	for dayIdx := range week.Days {
		day := &week.Days[dayIdx]
		isFriday := day.DayName == domain.Friday

		if weekHours >= wp.cfg.MaxHoursPerWeek {
			day.Recompute()
			weekHours += day.TotalHours
			continue
		}

		if len(clustered.RegionPlan) > 0 {
			region := clustered.RegionPlan[dayIdx%len(clustered.RegionPlan)]
			bucket := clustered.ByRegion[region]

			if len(bucket) > 0 {
				take := wp.cfg.MaxCandidatesPerDay
				if take > len(bucket) {
					take = len(bucket)
				}
				ordered := pickCandidates(bucket, take)
				picked := ordered[:take]
				rest := ordered[take:]

				candidates := make([]Candidate, 0, len(picked))
				for _, a := range picked {
					candidates = append(candidates, Candidate{
						Appointment: a,
						Point:       points[a.ID],
						Label:       labels[a.ID],
					})
				}

				result := dayPlanner.Place(ctx, day, candidates, fixedPoints, overnight, isFriday)
				week.Optimizations = append(week.Optimizations, result.Violations...)

				leftover := make([]domain.Appointment, 0, len(result.Remaining)+len(rest))
				for _, c := range result.Remaining {
					leftover = append(leftover, c.Appointment)
				}
				leftover = append(leftover, rest...)
				clustered.ByRegion[region] = leftover
			} else if hasFixedSegments(day) {
				result := dayPlanner.Place(ctx, day, nil, fixedPoints, overnight, isFriday)
				week.Optimizations = append(week.Optimizations, result.Violations...)
			}
		} else if hasFixedSegments(day) {
			result := dayPlanner.Place(ctx, day, nil, fixedPoints, overnight, isFriday)
			week.Optimizations = append(week.Optimizations, result.Violations...)
		}

		day.Recompute()
		weekHours += day.TotalHours
		overnight = day.Overnight
	}

	week.Stats = wp.computeStats(appointments, week, lowConfidence)
	week.Optimizations = append(week.Optimizations, lowConfidenceNotes(appointments, lowConfidence)...)
	week.Recompute()
	return week
}

// lowConfidenceNotes renders one note per appointment whose address only
// resolved to country-level accuracy, so a reviewer knows which customers to
// double-check.
func lowConfidenceNotes(appointments []domain.Appointment, lowConfidence map[string]bool) []string {
	var notes []string
	for _, a := range appointments {
		if lowConfidence[a.ID] {
			notes = append(notes, "Adresse von "+a.Customer+" konnte nur auf Länderebene aufgelöst werden")
		}
	}
	return notes
}

// resolveAll geocodes every appointment lacking coordinates, returning a
// point and display label per appointment ID, plus the set of IDs whose
// resolution bottomed out at country-level accuracy (still planned, but
// reported as low-confidence).
func (wp *WeekPlanner) resolveAll(ctx context.Context, appointments []domain.Appointment) (map[string]domain.GeoPoint, map[string]string, map[string]bool) {
	points := make(map[string]domain.GeoPoint, len(appointments))
	labels := make(map[string]string, len(appointments))
	lowConfidence := make(map[string]bool)

	for _, a := range appointments {
		if a.HasCoordinates() {
			points[a.ID] = domain.GeoPoint{Lat: *a.Lat, Lng: *a.Lng}
			labels[a.ID] = a.Customer
			continue
		}
		result := wp.geocoder.Resolve(ctx, a.Address)
		points[a.ID] = result.Point
		labels[a.ID] = a.Customer
		if result.Accuracy == domain.AccuracyCountry {
			lowConfidence[a.ID] = true
			wp.log.Warn("appointment resolved only to country accuracy", "appointment", a.ID)
		}
	}
	return points, labels, lowConfidence
}

// placeFixed places every fixed appointment on its fixedDate at its
// fixedTime (default 08:30), rounded up to the half-hour grid, then sorts
// each day's segment list by start time. Fixed appointments outside
// [weekStart, weekStart+4] are silently skipped — they belong to a
// different week.
func (wp *WeekPlanner) placeFixed(days []domain.Day, appointments []domain.Appointment, points map[string]domain.GeoPoint, labels map[string]string) map[string]domain.GeoPoint {
	fixedPoints := make(map[string]domain.GeoPoint)

	for _, a := range appointments {
		if !a.IsFixed {
			continue
		}
		dayIdx := dayIndexFor(days, a.FixedDate)
		if dayIdx < 0 {
			continue
		}

		start, err := domain.ParseHHMM(a.EffectiveFixedTime())
		if err != nil {
			start = wp.cfg.WorkStart
		}
		start = start.SnapUp()
		end := start.Add(wp.cfg.AppointmentDuration)

		days[dayIdx].Segments = append(days[dayIdx].Segments, domain.Segment{
			Kind:          domain.SegmentAppointment,
			StartTime:     start.String(),
			EndTime:       end.String(),
			AppointmentID: a.ID,
			Customer:      labels[a.ID],
		})
		fixedPoints[a.ID] = points[a.ID]
	}

	for i := range days {
		sortDaySegments(&days[i])
	}
	return fixedPoints
}

func dayIndexFor(days []domain.Day, fixedDate time.Time) int {
	if fixedDate.IsZero() {
		return -1
	}
	for i, d := range days {
		if sameDate(d.Date, fixedDate) {
			return i
		}
	}
	return -1
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// pickCandidates selects up to n appointments from bucket, preferring
// confirmed status first, then larger pipelineDays, and returns them along
// with the bucket's remaining entries (the unpicked suffix, stable-ordered).
func pickCandidates(bucket []domain.Appointment, n int) []domain.Appointment {
	ordered := append([]domain.Appointment(nil), bucket...)
	sortByPreference(ordered)
	if n > len(ordered) {
		n = len(ordered)
	}
	picked := ordered[:n]

	pickedIDs := make(map[string]bool, len(picked))
	for _, a := range picked {
		pickedIDs[a.ID] = true
	}

	result := make([]domain.Appointment, 0, len(picked)+len(bucket)-len(picked))
	result = append(result, picked...)
	for _, a := range bucket {
		if !pickedIDs[a.ID] {
			result = append(result, a)
		}
	}
	return result
}

func sortByPreference(appointments []domain.Appointment) {
	sort.SliceStable(appointments, func(i, j int) bool {
		return less(appointments[i], appointments[j])
	})
}

func less(a, b domain.Appointment) bool {
	aConfirmed := a.Status == domain.StatusConfirmed
	bConfirmed := b.Status == domain.StatusConfirmed
	if aConfirmed != bConfirmed {
		return aConfirmed
	}
	return a.PipelineDays > b.PipelineDays
}

func (wp *WeekPlanner) computeStats(appointments []domain.Appointment, week domain.Week, lowConfidence map[string]bool) domain.Stats {
	stats := domain.Stats{TotalAppointments: len(appointments)}
	placed := make(map[string]bool)
	for _, day := range week.Days {
		for _, seg := range day.Segments {
			if seg.Kind == domain.SegmentAppointment {
				placed[seg.AppointmentID] = true
			}
		}
	}
	for _, a := range appointments {
		if !placed[a.ID] {
			continue
		}
		switch a.Status {
		case domain.StatusConfirmed:
			stats.ConfirmedAppointments++
		case domain.StatusProposed:
			stats.ProposalAppointments++
		}
		if lowConfidence[a.ID] {
			stats.LowConfidenceAppointments++
		}
	}
	for _, day := range week.Days {
		stats.TotalTravelTime += day.TravelHours
		if len(day.Segments) > 0 {
			stats.WorkDays++
		}
		if day.Overnight != nil {
			stats.OvernightStays++
		}
	}
	return stats
}
