package geo

import (
	"regexp"
	"strings"
)

// NormalizedAddress is the best-effort decomposition AddressNormalizer
// extracts from a free-form string. Any field may be empty; the normalizer
// never fails.
type NormalizedAddress struct {
	Street      string
	HouseNumber string
	PostalCode  string
	City        string
}

var (
	postalCodeRe = regexp.MustCompile(`\b\d{5}\b`)
	houseNumberRe = regexp.MustCompile(`^(\d+)\s*([a-zA-Z]?)$`)
)

// Normalizer parses a free-form German address into its
// constituent parts using only positional and punctuation heuristics, never
// a full grammar, mirroring how real-world German address strings vary.
type Normalizer struct{}

// NewNormalizer constructs a stateless Normalizer.
func NewNormalizer() *Normalizer { return &Normalizer{} }

// Normalize decomposes a trimmed, non-empty address string. Callers pass
// the raw Appointment.Address; an empty/blank string yields an all-empty
// NormalizedAddress rather than an error.
func (n *Normalizer) Normalize(address string) NormalizedAddress {
	addr := strings.TrimSpace(address)
	if addr == "" {
		return NormalizedAddress{}
	}

	var result NormalizedAddress

	postal := postalCodeRe.FindString(addr)
	result.PostalCode = postal

	parts := strings.Split(addr, ",")

	if postal != "" {
		idx := strings.Index(addr, postal)
		before := strings.TrimSpace(addr[:idx])
		after := strings.TrimSpace(addr[idx+len(postal):])

		// City is whatever follows the postal code up to the next comma.
		cityPart := after
		if c := strings.Index(after, ","); c >= 0 {
			cityPart = after[:c]
		}
		result.City = strings.TrimSpace(cityPart)

		result.Street, result.HouseNumber = splitStreetAndHouseNumber(before)
	} else {
		// No postal code found: city is the last comma-separated segment,
		// street/house-number come from the leading portion.
		if len(parts) > 1 {
			result.City = strings.TrimSpace(parts[len(parts)-1])
			leading := strings.Join(parts[:len(parts)-1], ",")
			result.Street, result.HouseNumber = splitStreetAndHouseNumber(leading)
		} else {
			result.Street, result.HouseNumber = splitStreetAndHouseNumber(addr)
		}
	}

	return result
}

// splitStreetAndHouseNumber takes the leading portion of an address (up to
// the first comma or the postal code) and, if it ends in a digit run
// (optionally suffixed by one letter), splits that off as the house
// number.
func splitStreetAndHouseNumber(leading string) (street, houseNumber string) {
	leading = strings.TrimSpace(leading)
	if leading == "" {
		return "", ""
	}
	// Only consider the first comma-separated segment of the leading part.
	if c := strings.Index(leading, ","); c >= 0 {
		leading = strings.TrimSpace(leading[:c])
	}

	fields := strings.Fields(leading)
	if len(fields) == 0 {
		return "", ""
	}

	last := fields[len(fields)-1]
	if m := houseNumberRe.FindStringSubmatch(last); m != nil {
		houseNumber = m[1] + m[2]
		street = strings.TrimSpace(strings.Join(fields[:len(fields)-1], " "))
		return street, houseNumber
	}

	return leading, ""
}
