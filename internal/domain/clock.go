package domain

import "fmt"

// Minutes is a time-of-day expressed as minutes since midnight. Every
// scheduled time in this system is a Minutes value aligned to the half-hour
// grid; half-hour alignment is a first-class operation, not an afterthought.
type Minutes int

const halfHour Minutes = 30

// ParseHHMM parses an "HH:MM" string into Minutes.
func ParseHHMM(s string) (Minutes, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if h < 0 || h > 47 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return Minutes(h*60 + m), nil
}

// MustParseHHMM is ParseHHMM for call sites working with compile-time
// constant times (e.g. config defaults) where a parse error is a bug.
func MustParseHHMM(s string) Minutes {
	m, err := ParseHHMM(s)
	if err != nil {
		panic(err)
	}
	return m
}

// String renders Minutes back as "HH:MM".
func (m Minutes) String() string {
	h := int(m) / 60
	mm := int(m) % 60
	return fmt.Sprintf("%02d:%02d", h, mm)
}

// Hours converts Minutes to a fractional hour count.
func (m Minutes) Hours() float64 {
	return float64(m) / 60.0
}

// FromHours builds Minutes from a fractional hour count, truncating to the
// minute (callers snap separately when grid alignment matters).
func FromHours(h float64) Minutes {
	return Minutes(h * 60.0)
}

// SnapUp rounds m up to the next half-hour grid point.
func (m Minutes) SnapUp() Minutes {
	if m%halfHour == 0 {
		return m
	}
	return (m/halfHour + 1) * halfHour
}

// SnapNearest rounds m to the nearest half-hour grid point, ties rounding up.
func (m Minutes) SnapNearest() Minutes {
	rem := m % halfHour
	if rem*2 >= halfHour {
		return m - rem + halfHour
	}
	return m - rem
}

// OnGrid reports whether m is an exact multiple of 30 minutes.
func (m Minutes) OnGrid() bool {
	return m%halfHour == 0
}

// Add returns m advanced by h hours.
func (m Minutes) Add(h float64) Minutes {
	return m + FromHours(h)
}

// Before, After report strict ordering; segments use these for the
// collision invariant: no two segments may overlap open-endedly.
func (m Minutes) Before(o Minutes) bool { return m < o }
func (m Minutes) After(o Minutes) bool  { return m > o }

// Overlaps reports whether interval [m, mEnd) intersects [oStart, oEnd).
func Overlaps(mStart, mEnd, oStart, oEnd Minutes) bool {
	return mStart < oEnd && oStart < mEnd
}
