// Package config holds the immutable planning configuration and the
// daemon-style environment configuration used to wire up providers and
// cache backends.
package config

import "github.com/dimanh55/tourenplaner-backend-sub001/internal/domain"

// PlanningConfig collects every scheduling knob (max hours/day, overnight
// threshold, appointment duration, ...) into a single immutable struct
// passed into WeekPlanner, rather than threading loose parameters through
// every call.
type PlanningConfig struct {
	MaxHoursPerDay       float64
	MaxHoursPerWeek      float64
	WorkStart            domain.Minutes
	AppointmentDuration  float64 // hours
	OvernightThresholdKm float64
	TravelPad            float64 // hours
	FridayReturnDeadline domain.Minutes
	HomeBase             domain.GeoPoint
	HomeBaseLabel        string

	// MaxCandidatesPerDay bounds how many flexible candidates WeekPlanner
	// considers per day before moving on.
	MaxCandidatesPerDay int

	// MemoryCacheCap bounds the in-memory LRU caches; 0 means unbounded.
	MemoryCacheCap int
}

// Strict40h10h is the default preset: a 40h/week, 10h/day budget.
func Strict40h10h() PlanningConfig {
	return PlanningConfig{
		MaxHoursPerDay:       10,
		MaxHoursPerWeek:      40,
		WorkStart:            domain.MustParseHHMM("08:30"),
		AppointmentDuration:  3,
		OvernightThresholdKm: 120,
		TravelPad:            0.25,
		FridayReturnDeadline: domain.MustParseHHMM("17:00"),
		HomeBase:             domain.GeoPoint{Lat: 52.3759, Lng: 9.7320}, // Hannover
		HomeBaseLabel:        "Hannover",
		MaxCandidatesPerDay:  6,
		MemoryCacheCap:       0,
	}
}

// Flex50h14h is a looser override for operators who need it: a 50h/week,
// 14h/day budget with an earlier start, selected explicitly rather than
// defaulted to.
func Flex50h14h() PlanningConfig {
	c := Strict40h10h()
	c.MaxHoursPerDay = 14
	c.MaxHoursPerWeek = 50
	c.WorkStart = domain.MustParseHHMM("06:00")
	return c
}
