package geo

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimanh55/tourenplaner-backend-sub001/internal/domain"
	"github.com/dimanh55/tourenplaner-backend-sub001/pkg/logger"
)

// stubProvider is a minimal Provider double whose Geocode behavior is
// configured per test; DistanceMatrix is unused by these tests.
type stubProvider struct {
	resp GeocodeResponse
	err  error
	hits int
}

func (s *stubProvider) Geocode(_ context.Context, _ GeocodeQuery) (GeocodeResponse, error) {
	s.hits++
	return s.resp, s.err
}

func (s *stubProvider) DistanceMatrix(_ context.Context, origins, destinations []domain.GeoPoint, _ TrafficHint) ([][]DistanceElement, error) {
	return nil, nil
}

func TestGeocoderResolveEmptyAddressFallsBackToCountryCentroid(t *testing.T) {
	g := NewGeocoder(nil, nil, 0, logger.Noop{})
	result := g.Resolve(context.Background(), "   ")
	assert.Equal(t, domain.AccuracyCountry, result.Accuracy)
	assert.Equal(t, domain.MethodFallback, result.Method)
	assert.Equal(t, CountryCentroid, result.Point)
}

func TestGeocoderResolveKnownCityUsesIntelligentTier(t *testing.T) {
	g := NewGeocoder(nil, nil, 0, logger.Noop{})
	result := g.Resolve(context.Background(), "Marktplatz 1, 30159 Hannover")

	assert.Equal(t, domain.AccuracyCity, result.Accuracy)
	assert.Equal(t, domain.MethodIntelligent, result.Method)
	assert.Equal(t, domain.ConfidenceHigh, result.Confidence)
	assert.Equal(t, "Hannover", result.FormattedAddress)

	hannover, _, _ := NewStaticTables().Lookup("hannover")
	assert.InDelta(t, hannover.Lat, result.Point.Lat, 0.011)
	assert.InDelta(t, hannover.Lng, result.Point.Lng, 0.011)
}

func TestGeocoderResolveSimilarCityFallsThroughToFuzzyMatch(t *testing.T) {
	g := NewGeocoder(nil, nil, 0, logger.Noop{})
	result := g.Resolve(context.Background(), "Musterstraße 1, 30161 Hannoverr")

	assert.Equal(t, domain.AccuracyApproximate, result.Accuracy)
	assert.Equal(t, domain.MethodIntelligent, result.Method)
	assert.Equal(t, domain.ConfidenceMedium, result.Confidence)
	assert.Equal(t, "Hannover", result.FormattedAddress)
}

func TestGeocoderResolvePostalOnlyUsesAnchorTier(t *testing.T) {
	g := NewGeocoder(nil, nil, 0, logger.Noop{})
	result := g.Resolve(context.Background(), "Lagerweg 9, 65183 Flubberwitz")

	assert.Equal(t, domain.AccuracyPostalCode, result.Accuracy)
	assert.Equal(t, domain.MethodPostal, result.Method)
	assert.Equal(t, domain.ConfidenceMedium, result.Confidence)
	assert.Equal(t, "Hessen", result.FormattedAddress)
}

func TestGeocoderResolveNoCityNoPostalFallsBackToCountryCentroid(t *testing.T) {
	g := NewGeocoder(nil, nil, 0, logger.Noop{})
	result := g.Resolve(context.Background(), "irgendwo im nirgendwo")

	assert.Equal(t, domain.AccuracyCountry, result.Accuracy)
	assert.Equal(t, domain.MethodFallback, result.Method)
}

func TestGeocoderResolveMemoryCacheHitOnSecondCall(t *testing.T) {
	g := NewGeocoder(nil, nil, 0, logger.Noop{})
	ctx := context.Background()

	first := g.Resolve(ctx, "Marktplatz 1, 30159 Hannover")
	assert.NotEqual(t, domain.MethodMemoryCache, first.Method)

	second := g.Resolve(ctx, "Marktplatz 1, 30159 Hannover")
	assert.Equal(t, domain.MethodMemoryCache, second.Method)
	assert.Equal(t, first.Point, second.Point)
}

func TestGeocoderResolveUsesProviderWhenAvailable(t *testing.T) {
	provider := &stubProvider{resp: GeocodeResponse{
		Point:            domain.GeoPoint{Lat: 52.5200, Lng: 13.4050},
		FormattedAddress: "Alexanderplatz, Berlin",
		AccuracyTag:      "rooftop",
	}}
	g := NewGeocoder(provider, nil, 0, logger.Noop{})

	result := g.Resolve(context.Background(), "Alexanderplatz, Berlin")

	require.Equal(t, 1, provider.hits)
	assert.Equal(t, domain.MethodProvider, result.Method)
	assert.Equal(t, domain.AccuracyRooftop, result.Accuracy)
	assert.Equal(t, domain.GeoPoint{Lat: 52.5200, Lng: 13.4050}, result.Point)
	assert.False(t, g.Disabled())
}

func TestGeocoderResolveRejectsProviderPointOutsideGermany(t *testing.T) {
	provider := &stubProvider{resp: GeocodeResponse{
		Point:            domain.GeoPoint{Lat: 48.8566, Lng: 2.3522}, // Paris
		FormattedAddress: "Paris",
		AccuracyTag:      "rooftop",
	}}
	g := NewGeocoder(provider, nil, 0, logger.Noop{})

	result := g.Resolve(context.Background(), "Marktplatz 1, 30159 Hannover")

	assert.NotEqual(t, domain.MethodProvider, result.Method)
	assert.Equal(t, domain.MethodIntelligent, result.Method)
}

func TestGeocoderResolveDisablesProviderOnRequestDenied(t *testing.T) {
	provider := &stubProvider{err: NewProviderError(ErrKindRequestDenied, "geocode", errors.New("quota exceeded"))}
	g := NewGeocoder(provider, nil, 0, logger.Noop{})

	first := g.Resolve(context.Background(), "Marktplatz 1, 30159 Hannover")
	assert.True(t, g.Disabled())
	assert.Equal(t, domain.MethodIntelligent, first.Method)

	// Second call for a different address must not even reach the disabled provider.
	second := g.Resolve(context.Background(), "Alexanderplatz 1, 10178 Berlin")
	assert.Equal(t, domain.MethodIntelligent, second.Method)
	assert.Equal(t, 1, provider.hits)
}

func TestGeocoderResolveKeepsProviderEnabledOnRateLimit(t *testing.T) {
	provider := &stubProvider{err: NewProviderError(ErrKindRateLimited, "geocode", errors.New("rate limited"))}
	g := NewGeocoder(provider, nil, 0, logger.Noop{})

	g.Resolve(context.Background(), "Marktplatz 1, 30159 Hannover")
	assert.False(t, g.Disabled())
}

func TestProviderAccuracyMapping(t *testing.T) {
	cases := map[string]domain.Accuracy{
		"rooftop":            domain.AccuracyRooftop,
		"range_interpolated": domain.AccuracyRange,
		"range":              domain.AccuracyRange,
		"geometric_center":   domain.AccuracyGeometric,
		"geometric":          domain.AccuracyGeometric,
		"":                   domain.AccuracyApproximate,
		"unexpected":         domain.AccuracyApproximate,
	}
	for tag, want := range cases {
		assert.Equal(t, want, providerAccuracy(tag), "tag=%q", tag)
	}
}

func TestJitterIsDeterministicPerAddress(t *testing.T) {
	base := domain.GeoPoint{Lat: 50.0, Lng: 10.0}
	a := jitter(base, "some address")
	b := jitter(base, "some address")
	c := jitter(base, "a different address")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.InDelta(t, base.Lat, a.Lat, 0.011)
	assert.InDelta(t, base.Lng, a.Lng, 0.011)
}

func TestPostalOffsetRejectsNonFiveDigitCodes(t *testing.T) {
	assert.Equal(t, domain.GeoPoint{}, postalOffset("1234"))
	assert.Equal(t, domain.GeoPoint{}, postalOffset("123456"))
}

func TestPostalOffsetIsDeterministic(t *testing.T) {
	off := postalOffset("30159")
	assert.InDelta(t, (1.0-50)*0.01, off.Lat, 1e-9)
	assert.InDelta(t, (59.0-50)*0.01, off.Lng, 1e-9)
}

func TestCitySimilarity(t *testing.T) {
	assert.Equal(t, 1.0, citySimilarity("hannover", "hannover"))
	assert.Less(t, citySimilarity("hannover", "muenchen"), 0.6)
	assert.Greater(t, citySimilarity("hannover", "hannoverr"), 0.6)
}
