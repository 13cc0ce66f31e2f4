package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dimanh55/tourenplaner-backend-sub001/internal/domain"
)

func TestStaticTablesLookup(t *testing.T) {
	tables := NewStaticTables()

	t.Run("exact key hit", func(t *testing.T) {
		point, canonical, ok := tables.Lookup("berlin")
		assert.True(t, ok)
		assert.Equal(t, "Berlin", canonical)
		assert.InDelta(t, 52.52, point.Lat, 0.01)
	})

	t.Run("case and whitespace insensitive", func(t *testing.T) {
		_, canonical, ok := tables.Lookup("  BERLIN  ")
		assert.True(t, ok)
		assert.Equal(t, "Berlin", canonical)
	})

	t.Run("alias resolves to canonical entry", func(t *testing.T) {
		point, canonical, ok := tables.Lookup("muenchen")
		assert.True(t, ok)
		assert.Equal(t, "München", canonical)
		assert.InDelta(t, 48.1351, point.Lat, 0.001)
	})

	t.Run("frankfurt am main collapses to frankfurt", func(t *testing.T) {
		_, canonical, ok := tables.Lookup("Frankfurt am Main")
		assert.True(t, ok)
		assert.Equal(t, "Frankfurt am Main", canonical)
	})

	t.Run("unknown city misses", func(t *testing.T) {
		_, _, ok := tables.Lookup("nichtstadt")
		assert.False(t, ok)
	})
}

func TestStaticTablesKeys(t *testing.T) {
	tables := NewStaticTables()
	keys := tables.Keys()
	assert.NotEmpty(t, keys)
	assert.Contains(t, keys, "hannover")
	assert.Contains(t, keys, "münchen")
}

func TestStaticTablesEntryFor(t *testing.T) {
	tables := NewStaticTables()

	t.Run("hit on normalized key", func(t *testing.T) {
		point, canonical, ok := tables.EntryFor("hannover")
		assert.True(t, ok)
		assert.Equal(t, "Hannover", canonical)
		assert.InDelta(t, 9.7320, point.Lng, 0.001)
	})

	t.Run("miss on raw alias key", func(t *testing.T) {
		// EntryFor expects an already-normalized key; aliases aren't resolved here.
		_, _, ok := tables.EntryFor("muenchen")
		assert.False(t, ok)
	})
}

func TestStaticTablesPostalAnchor(t *testing.T) {
	tables := NewStaticTables()

	t.Run("valid code resolves by first digit", func(t *testing.T) {
		point, region, ok := tables.PostalAnchor("30159")
		assert.True(t, ok)
		assert.Equal(t, "Niedersachsen/Hannover", region)
		assert.InDelta(t, 52.38, point.Lat, 0.01)
	})

	t.Run("different first digit resolves a different region", func(t *testing.T) {
		_, region, ok := tables.PostalAnchor("80331")
		assert.True(t, ok)
		assert.Equal(t, "Bayern (Süd)", region)
	})

	t.Run("not exactly five characters misses", func(t *testing.T) {
		_, _, ok := tables.PostalAnchor("3015")
		assert.False(t, ok)
	})
}

func TestCountryCentroid(t *testing.T) {
	assert.Equal(t, domain.GeoPoint{Lat: 51.1657, Lng: 10.4515}, CountryCentroid)
}
