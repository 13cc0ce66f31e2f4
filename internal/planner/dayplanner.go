package planner

import (
	"context"
	"fmt"
	"sort"

	"github.com/dimanh55/tourenplaner-backend-sub001/internal/config"
	"github.com/dimanh55/tourenplaner-backend-sub001/internal/domain"
	"github.com/dimanh55/tourenplaner-backend-sub001/internal/geo"
)

// breakLongThreshold/breakShortThreshold are the elapsed-hours cutoffs past
// which a break of the matching length must be inserted.
const (
	breakLongThreshold  = 9.0
	breakShortThreshold = 6.0
	breakLongMinutes    = 60
	breakShortMinutes   = 30
)

// DayPlanner places appointments, travel legs, breaks, and an overnight
// decision onto a single day.
type DayPlanner struct {
	cfg      config.PlanningConfig
	distance *geo.DistanceOracle
}

// NewDayPlanner constructs a planner bound to a distance resolver and a
// planning configuration.
func NewDayPlanner(cfg config.PlanningConfig, distance *geo.DistanceOracle) *DayPlanner {
	return &DayPlanner{cfg: cfg, distance: distance}
}

// Candidate is a flexible appointment being offered to a day, along with its
// resolved location.
type Candidate struct {
	Appointment domain.Appointment
	Point       domain.GeoPoint
	Label       string
}

// PlaceResult reports what a single Place call did: the candidates that did
// not fit, and any constraint-violation messages the caller should surface
// (e.g. a Friday return that could not make the deadline).
type PlaceResult struct {
	Remaining  []Candidate
	Violations []string
}

// location is a point paired with the label used in segment output; day
// state carries this alongside *domain.Day since Segment itself only
// stores labels, not coordinates.
type location struct {
	point domain.GeoPoint
	label string
}

// Place fills the day with as many candidates as fit. If day already has
// fixed segments it runs gap-fill mode; otherwise it runs sequence mode
// starting from prevOvernight (or home base if nil). It always leaves the
// day correctly closed: either a return segment to home base, or, for
// Mon-Thu, an overnight when the distance/time thresholds are tripped.
func (p *DayPlanner) Place(ctx context.Context, day *domain.Day, candidates []Candidate, fixedPoints map[string]domain.GeoPoint, prevOvernight *domain.Overnight, isFriday bool) PlaceResult {
	home := location{point: p.cfg.HomeBase, label: p.cfg.HomeBaseLabel}

	// points locates every appointment the day can hold: fixed and candidate.
	points := make(map[string]domain.GeoPoint, len(fixedPoints)+len(candidates))
	for id, pt := range fixedPoints {
		points[id] = pt
	}
	for _, c := range candidates {
		points[c.Appointment.ID] = c.Point
	}

	var remaining []Candidate
	var last location

	if hasFixedSegments(day) {
		remaining, last = p.gapFill(ctx, day, candidates, home, points, prevOvernight)
	} else {
		remaining, last = p.sequence(ctx, day, candidates, prevOvernight, home)
	}

	sortDaySegments(day)
	day.Recompute()

	violations := p.closeDay(ctx, day, last, isFriday, fixedPoints, points)

	sortDaySegments(day)
	day.Recompute()

	return PlaceResult{Remaining: remaining, Violations: violations}
}

func hasFixedSegments(day *domain.Day) bool {
	return len(day.Segments) > 0
}

// window is an open gap in the day's segment list a candidate might fit
// into.
type window struct {
	start domain.Minutes
	end   domain.Minutes
	from  location
	to    location
}

// gapFill handles a day that already carries fixed appointments: it looks
// for open windows between (and around) them wide enough to hold a
// candidate's travel-in, 3-hour appointment, and travel-out. prevOvernight,
// if set, anchors the first window at the previous night's hotel instead of
// home base. Returns the candidates that didn't fit anywhere, and the
// location of the day's last appointment (for closeDay).
func (p *DayPlanner) gapFill(ctx context.Context, day *domain.Day, candidates []Candidate, home location, fixedPoints map[string]domain.GeoPoint, prevOvernight *domain.Overnight) ([]Candidate, location) {
	remaining := make([]Candidate, 0, len(candidates))

	dayStart := home
	if prevOvernight != nil {
		dayStart = location{point: prevOvernight.Point, label: prevOvernight.City}
	}

	for _, c := range candidates {
		placed := false
		for _, w := range p.openWindows(day, home, dayStart, fixedPoints) {
			if p.tryPlaceInWindow(ctx, day, c, w) {
				placed = true
				break
			}
		}
		if !placed {
			remaining = append(remaining, c)
		}
	}
	return remaining, lastLocation(day, home, fixedPoints)
}

// openWindows returns the gaps between (and around) a day's existing
// segments, in chronological order, anchored at workStart and the day's
// deadline (Friday 17:00, otherwise workStart+maxDayHours). fixedPoints
// supplies the real coordinates of the appointments already on the day
// (Place passes both fixed and candidate points); a window whose boundary
// appointment is missing from that map falls back to home base. dayStart is where the day actually begins (the
// previous night's hotel, if any, otherwise home) and anchors the first
// window's "from" location.
func (p *DayPlanner) openWindows(day *domain.Day, home, dayStart location, fixedPoints map[string]domain.GeoPoint) []window {
	sortDaySegments(day)

	deadline := p.cfg.WorkStart.Add(p.cfg.MaxHoursPerDay)
	if isFridayDate(day) {
		deadline = p.cfg.FridayReturnDeadline
	}

	var windows []window
	cursor := p.cfg.WorkStart
	cursorLoc := dayStart

	for _, seg := range day.Segments {
		segStart, err1 := domain.ParseHHMM(seg.StartTime)
		segEnd, err2 := domain.ParseHHMM(seg.EndTime)
		if err1 != nil || err2 != nil {
			continue
		}
		segPoint := home.point
		if seg.Kind == domain.SegmentAppointment {
			if pt, ok := fixedPoints[seg.AppointmentID]; ok {
				segPoint = pt
			}
		}
		segLoc := location{point: segPoint, label: segLabel(seg)}
		if segStart > cursor {
			windows = append(windows, window{
				start: cursor, end: segStart,
				from: cursorLoc, to: segLoc,
			})
		}
		if segEnd > cursor {
			cursor = segEnd
			cursorLoc = segLoc
		}
	}
	if deadline > cursor {
		windows = append(windows, window{
			start: cursor, end: deadline,
			from: cursorLoc, to: home,
		})
	}
	return windows
}

func segLabel(seg domain.Segment) string {
	if seg.Kind == domain.SegmentAppointment {
		return seg.Customer
	}
	return seg.ToLabel
}

// tryPlaceInWindow attempts to fit a single candidate into window w,
// refusing (returning false) if the coarse feasibility estimate, the final
// leg resolution, or a collision check fails.
func (p *DayPlanner) tryPlaceInWindow(ctx context.Context, day *domain.Day, c Candidate, w window) bool {
	travelInGuess := geo.QuickEstimate(w.from.point, c.Point)
	travelOutGuess := geo.QuickEstimate(c.Point, w.to.point)

	widthHours := (w.end - w.start).Hours()
	if widthHours < travelInGuess+p.cfg.AppointmentDuration+travelOutGuess {
		return false
	}

	travelInLeg := p.distance.Resolve(ctx, w.from.point, c.Point)
	start := w.start.Add(travelInLeg.DurationHours).SnapUp()
	apptEnd := start.Add(p.cfg.AppointmentDuration)

	travelOutLeg := p.distance.Resolve(ctx, c.Point, w.to.point)
	finish := apptEnd.Add(travelOutLeg.DurationHours).SnapUp()
	if finish > w.end {
		return false
	}
	if collidesWithDay(day, start, apptEnd) {
		return false
	}

	appendTravel(day, domain.TravelLeg, w.start, start, w.from.label, c.Label)
	appendAppointment(day, c, start, apptEnd)
	return true
}

// sequence handles a day with no fixed segments: appointments are placed
// nearest-first starting from the previous overnight or home base. Returns
// the candidates that didn't fit, and the final location reached (for
// closeDay).
func (p *DayPlanner) sequence(ctx context.Context, day *domain.Day, candidates []Candidate, prevOvernight *domain.Overnight, home location) ([]Candidate, location) {
	if len(candidates) == 0 {
		return nil, home
	}

	current := home
	departKind := domain.TravelDeparture
	if prevOvernight != nil {
		current = location{point: prevOvernight.Point, label: prevOvernight.City}
		departKind = domain.TravelDepartureFromHotel
	}

	remainingCandidates := append([]Candidate(nil), candidates...)
	sortByDistanceFrom(remainingCandidates, current.point)

	var workedSoFar float64
	currentTime := p.cfg.WorkStart
	first := true

	for len(remainingCandidates) > 0 {
		next := remainingCandidates[0]
		leg := p.distance.Resolve(ctx, current.point, next.Point)

		if !first && workedSoFar+leg.DurationHours+p.cfg.AppointmentDuration > p.cfg.MaxHoursPerDay {
			if workedSoFar+leg.DurationHours <= p.cfg.MaxHoursPerDay {
				departAt := currentTime
				arriveAt := departAt.Add(leg.DurationHours).SnapUp()
				appendTravel(day, domain.TravelLeg, departAt, arriveAt, current.label, next.Label)
				setOvernight(day, next.Point, next.Label, arriveAt, "Arbeitszeitlimit erreicht")
				return remainingCandidates, location{point: next.Point, label: next.Label}
			}
			return remainingCandidates, current
		}

		departAt := currentTime
		if first {
			departAt = maxMinutes(p.cfg.WorkStart, currentTime)
		}
		arriveAt := departAt.Add(leg.DurationHours).SnapUp()
		kind := domain.TravelLeg
		if first {
			kind = departKind
		}
		appendTravel(day, kind, departAt, arriveAt, current.label, next.Label)

		apptEnd := arriveAt.Add(p.cfg.AppointmentDuration)
		appendAppointment(day, next, arriveAt, apptEnd)
		insertBreakIfNeeded(day, workedSoFar+leg.DurationHours+p.cfg.AppointmentDuration)

		workedSoFar += leg.DurationHours + p.cfg.AppointmentDuration
		if end, ok := dayEnd(day); ok {
			// dayEnd picks up a break just inserted after the appointment, so
			// the next departure never overlaps it.
			currentTime = end
		} else {
			currentTime = apptEnd
		}
		current = location{point: next.Point, label: next.Label}
		first = false

		remainingCandidates = remainingCandidates[1:]
		sortByDistanceFrom(remainingCandidates, current.point)
	}

	return nil, current
}

// insertBreakIfNeeded compares elapsed work+travel hours against the break
// thresholds and inserts a half-hour-aligned break segment for whatever
// portion hasn't already been accounted for.
func insertBreakIfNeeded(day *domain.Day, elapsedHours float64) {
	required := 0
	switch {
	case elapsedHours > breakLongThreshold:
		required = breakLongMinutes
	case elapsedHours > breakShortThreshold:
		required = breakShortMinutes
	}
	if required == 0 {
		return
	}

	already := existingBreakMinutes(day)
	missing := required - already
	if missing <= 0 {
		return
	}

	last, ok := day.LastSegment()
	if !ok {
		return
	}
	start, err := domain.ParseHHMM(last.EndTime)
	if err != nil {
		return
	}
	end := start.Add(float64(missing) / 60.0).SnapUp()
	day.Segments = append(day.Segments, domain.Segment{
		Kind:       domain.SegmentTravel,
		StartTime:  start.String(),
		EndTime:    end.String(),
		TravelType: domain.TravelBreak,
	})
}

func existingBreakMinutes(day *domain.Day) int {
	total := 0
	for _, seg := range day.Segments {
		if seg.Kind != domain.SegmentTravel || seg.TravelType != domain.TravelBreak {
			continue
		}
		start, err1 := domain.ParseHHMM(seg.StartTime)
		end, err2 := domain.ParseHHMM(seg.EndTime)
		if err1 != nil || err2 != nil {
			continue
		}
		total += int(end - start)
	}
	return total
}

// closeDay computes the leg from last back to home base and either emits a
// return segment or, for Mon-Thu, sets an overnight. For Friday it pops
// trailing flexible appointments (never fixed ones) until the return fits
// the deadline; see closeFriday for when a violation is reported.
func (p *DayPlanner) closeDay(ctx context.Context, day *domain.Day, last location, isFriday bool, fixedPoints, points map[string]domain.GeoPoint) []string {
	if isFriday {
		return p.closeFriday(ctx, day, last, fixedPoints, points)
	}
	return p.closeWeekday(ctx, day, last)
}

func (p *DayPlanner) closeWeekday(ctx context.Context, day *domain.Day, last location) []string {
	lastEnd, ok := dayEnd(day)
	if !ok {
		return nil
	}

	leg := p.distance.Resolve(ctx, last.point, p.cfg.HomeBase)
	arrival := lastEnd.Add(leg.DurationHours).SnapUp()

	overDistance := leg.DistanceKm > p.cfg.OvernightThresholdKm
	overTime := arrival > p.cfg.WorkStart.Add(p.cfg.MaxHoursPerDay)

	if overDistance || overTime {
		reason := fmt.Sprintf("%.0f km bis %s", leg.DistanceKm, p.cfg.HomeBaseLabel)
		if !overDistance && overTime {
			reason = fmt.Sprintf("Rückkehr erst %s", arrival.String())
		}
		checkIn := lastEnd.Add(0.5).SnapNearest()
		day.Overnight = &domain.Overnight{
			City:       last.label,
			Point:      last.point,
			Reason:     reason,
			CheckIn:    checkIn.String(),
			HotelLabel: last.label,
		}
		return nil
	}

	appendTravel(day, domain.TravelReturn, lastEnd, arrival, last.label, p.cfg.HomeBaseLabel)
	return nil
}

// closeFriday emits the return leg once its arrival fits the 17:00
// deadline. Until then it pops the day's trailing segment with
// popTrailingFlexible (a break, or a flexible appointment together with the
// travel leg into it) and retries from the new last appointment, located
// through points. When the trailing segment can't be popped (a fixed
// appointment), it appends a zero-length return at the day's end and
// reports a violation rather than silently rescheduling — Friday overnights
// are not allowed. If popping empties the day, no return segment is added
// and no violation is reported.
func (p *DayPlanner) closeFriday(ctx context.Context, day *domain.Day, last location, fixedPoints, points map[string]domain.GeoPoint) []string {
	current := last

	for {
		lastEnd, ok := dayEnd(day)
		if !ok {
			return nil
		}
		leg := p.distance.Resolve(ctx, current.point, p.cfg.HomeBase)
		arrival := lastEnd.Add(leg.DurationHours).SnapUp()

		if arrival <= p.cfg.FridayReturnDeadline {
			appendTravel(day, domain.TravelReturn, lastEnd, arrival, current.label, p.cfg.HomeBaseLabel)
			return nil
		}

		popped := popTrailingFlexible(day, fixedPoints)
		if !popped {
			break
		}
		current = lastLocation(day, location{point: p.cfg.HomeBase, label: p.cfg.HomeBaseLabel}, points)
	}

	lastEnd, ok := dayEnd(day)
	if !ok {
		appendTravel(day, domain.TravelReturn, p.cfg.WorkStart, p.cfg.WorkStart, p.cfg.HomeBaseLabel, p.cfg.HomeBaseLabel)
		return []string{fmt.Sprintf("Freitag: Rückkehr nach %s konnte den 17:00-Termin nicht einhalten", p.cfg.HomeBaseLabel)}
	}
	appendTravel(day, domain.TravelReturn, lastEnd, lastEnd, current.label, p.cfg.HomeBaseLabel)
	return []string{fmt.Sprintf("Freitag: Rückkehr nach %s konnte den 17:00-Termin nicht einhalten", p.cfg.HomeBaseLabel)}
}

// popTrailingFlexible removes the day's last segment if it is a flexible
// appointment or a trailing break, making room to retry the return leg from
// an earlier point. fixedPoints is consulted so a fixed appointment (placed
// before Place ever ran) is refused: it must stay on its fixedDate even
// if that means the Friday return can't make the deadline.
func popTrailingFlexible(day *domain.Day, fixedPoints map[string]domain.GeoPoint) bool {
	if len(day.Segments) == 0 {
		return false
	}
	last := day.Segments[len(day.Segments)-1]
	if last.Kind == domain.SegmentAppointment {
		if _, fixed := fixedPoints[last.AppointmentID]; fixed {
			return false
		}
		day.Segments = day.Segments[:len(day.Segments)-1]
		// also drop the travel leg that led into the popped segment, if any
		if len(day.Segments) > 0 {
			prev := day.Segments[len(day.Segments)-1]
			if prev.Kind == domain.SegmentTravel && prev.TravelType != domain.TravelBreak {
				day.Segments = day.Segments[:len(day.Segments)-1]
			}
		}
		return true
	}
	if last.Kind == domain.SegmentTravel && last.TravelType == domain.TravelBreak {
		day.Segments = day.Segments[:len(day.Segments)-1]
		return true
	}
	return false
}

// lastLocation reports the point/label of the day's last appointment, or
// fallback if the day has none. Segment doesn't carry coordinates, so the
// point is looked up by appointment ID in fixedPoints (Place passes fixed
// and candidate points); an ID missing from it gets fallback's point.
func lastLocation(day *domain.Day, fallback location, fixedPoints map[string]domain.GeoPoint) location {
	for i := len(day.Segments) - 1; i >= 0; i-- {
		seg := day.Segments[i]
		if seg.Kind == domain.SegmentAppointment {
			point := fallback.point
			if pt, ok := fixedPoints[seg.AppointmentID]; ok {
				point = pt
			}
			return location{point: point, label: seg.Customer}
		}
	}
	return fallback
}

func dayEnd(day *domain.Day) (domain.Minutes, bool) {
	last, ok := day.LastSegment()
	if !ok {
		return 0, false
	}
	end, err := domain.ParseHHMM(last.EndTime)
	if err != nil {
		return 0, false
	}
	return end, true
}

func appendAppointment(day *domain.Day, c Candidate, start, end domain.Minutes) {
	day.Segments = append(day.Segments, domain.Segment{
		Kind:          domain.SegmentAppointment,
		StartTime:     start.String(),
		EndTime:       end.String(),
		AppointmentID: c.Appointment.ID,
		Customer:      c.Label,
	})
}

func appendTravel(day *domain.Day, kind domain.TravelKind, start, end domain.Minutes, fromLabel, toLabel string) {
	day.Segments = append(day.Segments, domain.Segment{
		Kind:       domain.SegmentTravel,
		StartTime:  start.String(),
		EndTime:    end.String(),
		TravelType: kind,
		FromLabel:  fromLabel,
		ToLabel:    toLabel,
	})
}

func setOvernight(day *domain.Day, point domain.GeoPoint, label string, arrival domain.Minutes, reason string) {
	checkIn := arrival.Add(0.5).SnapNearest()
	day.Overnight = &domain.Overnight{
		City:       label,
		Point:      point,
		Reason:     reason,
		CheckIn:    checkIn.String(),
		HotelLabel: label,
	}
}

func collidesWithDay(day *domain.Day, start, end domain.Minutes) bool {
	for _, seg := range day.Segments {
		segStart, err1 := domain.ParseHHMM(seg.StartTime)
		segEnd, err2 := domain.ParseHHMM(seg.EndTime)
		if err1 != nil || err2 != nil {
			continue
		}
		if domain.Overlaps(start, end, segStart, segEnd) {
			return true
		}
	}
	return false
}

func sortDaySegments(day *domain.Day) {
	sort.SliceStable(day.Segments, func(i, j int) bool {
		si, erri := domain.ParseHHMM(day.Segments[i].StartTime)
		sj, errj := domain.ParseHHMM(day.Segments[j].StartTime)
		if erri != nil || errj != nil {
			return false
		}
		return si < sj
	})
}

func sortByDistanceFrom(candidates []Candidate, from domain.GeoPoint) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return haversine(from, candidates[i].Point) < haversine(from, candidates[j].Point)
	})
}

func maxMinutes(a, b domain.Minutes) domain.Minutes {
	if a > b {
		return a
	}
	return b
}

func isFridayDate(day *domain.Day) bool {
	return day.DayName == domain.Friday
}
