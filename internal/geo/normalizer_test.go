package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmptyAddress(t *testing.T) {
	n := NewNormalizer()
	assert.Equal(t, NormalizedAddress{}, n.Normalize("   "))
}

func TestNormalizeWithPostalCodeAndCity(t *testing.T) {
	n := NewNormalizer()
	got := n.Normalize("Marktplatz 1, 30159 Hannover")

	assert.Equal(t, "Marktplatz", got.Street)
	assert.Equal(t, "1", got.HouseNumber)
	assert.Equal(t, "30159", got.PostalCode)
	assert.Equal(t, "Hannover", got.City)
}

func TestNormalizeWithHouseNumberSuffix(t *testing.T) {
	n := NewNormalizer()
	got := n.Normalize("Hauptstraße 12a, 10115 Berlin")

	assert.Equal(t, "Hauptstraße", got.Street)
	assert.Equal(t, "12a", got.HouseNumber)
}

func TestNormalizeCityAfterPostalWithTrailingComma(t *testing.T) {
	n := NewNormalizer()
	got := n.Normalize("Lagerweg 9, 65183 Wiesbaden, Deutschland")

	assert.Equal(t, "Wiesbaden", got.City)
	assert.Equal(t, "65183", got.PostalCode)
}

func TestNormalizeWithoutPostalCodeUsesLastCommaSegmentAsCity(t *testing.T) {
	n := NewNormalizer()
	got := n.Normalize("Musterstraße 5, München")

	assert.Equal(t, "München", got.City)
	assert.Equal(t, "Musterstraße", got.Street)
	assert.Equal(t, "5", got.HouseNumber)
	assert.Empty(t, got.PostalCode)
}

func TestNormalizeSingleSegmentNoCommaNoPostal(t *testing.T) {
	n := NewNormalizer()
	got := n.Normalize("irgendwo im nirgendwo")

	assert.Empty(t, got.City)
	assert.Empty(t, got.PostalCode)
	assert.Equal(t, "irgendwo im nirgendwo", got.Street)
}

func TestSplitStreetAndHouseNumberNoTrailingDigits(t *testing.T) {
	street, house := splitStreetAndHouseNumber("Am Kirchplatz")
	assert.Equal(t, "Am Kirchplatz", street)
	assert.Empty(t, house)
}
