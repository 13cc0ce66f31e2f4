package geo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimanh55/tourenplaner-backend-sub001/internal/domain"
	"github.com/dimanh55/tourenplaner-backend-sub001/pkg/logger"
)

var (
	hannover = domain.GeoPoint{Lat: 52.3759, Lng: 9.7320}
	berlin   = domain.GeoPoint{Lat: 52.5200, Lng: 13.4050}
)

// stubDistanceProvider implements Provider for DistanceOracle tests; Geocode
// is unused.
type stubDistanceProvider struct {
	elements [][]DistanceElement
	err      error
	hits     int
}

func (s *stubDistanceProvider) Geocode(_ context.Context, _ GeocodeQuery) (GeocodeResponse, error) {
	return GeocodeResponse{}, nil
}

func (s *stubDistanceProvider) DistanceMatrix(_ context.Context, origins, destinations []domain.GeoPoint, _ TrafficHint) ([][]DistanceElement, error) {
	s.hits++
	if s.err != nil {
		return nil, s.err
	}
	return s.elements, nil
}

func TestDistanceOracleResolveSamePointIsZero(t *testing.T) {
	o := NewDistanceOracle(nil, nil, 0, logger.Noop{})
	leg := o.Resolve(context.Background(), hannover, hannover)
	assert.Zero(t, leg.DistanceKm)
	assert.Zero(t, leg.DurationHours)
}

func TestDistanceOracleResolveTinyHopUsesClosedForm(t *testing.T) {
	o := NewDistanceOracle(nil, nil, 0, logger.Noop{})
	near := domain.GeoPoint{Lat: hannover.Lat + 0.01, Lng: hannover.Lng}
	leg := o.Resolve(context.Background(), hannover, near)

	assert.Equal(t, domain.LegOriginHaversineFallback, leg.Origin)
	assert.Greater(t, leg.DistanceKm, 0.0)
	assert.Greater(t, leg.DurationHours, travelPad)
}

func TestDistanceOracleResolveShortHopUsesClosedForm(t *testing.T) {
	o := NewDistanceOracle(nil, nil, 0, logger.Noop{})
	nearby := domain.GeoPoint{Lat: hannover.Lat + 0.2, Lng: hannover.Lng}
	leg := o.Resolve(context.Background(), hannover, nearby)
	assert.Equal(t, domain.LegOriginHaversineFallback, leg.Origin)
}

func TestDistanceOracleResolveLongHopUsesProvider(t *testing.T) {
	provider := &stubDistanceProvider{elements: [][]DistanceElement{
		{{Km: 280.0, Seconds: 10800}},
	}}
	o := NewDistanceOracle(provider, nil, 0, logger.Noop{})

	leg := o.Resolve(context.Background(), hannover, berlin)

	require.Equal(t, 1, provider.hits)
	assert.Equal(t, domain.LegOriginProvider, leg.Origin)
	assert.Equal(t, 280.0, leg.DistanceKm)
	assert.InDelta(t, 10800.0/3600.0+travelPad, leg.DurationHours, 1e-9)
}

func TestDistanceOracleResolveLongHopFallsBackToHaversineWhenProviderFails(t *testing.T) {
	provider := &stubDistanceProvider{err: NewProviderError(ErrKindTimeout, "distance", assertError{})}
	o := NewDistanceOracle(provider, nil, 0, logger.Noop{})

	leg := o.Resolve(context.Background(), hannover, berlin)

	assert.Equal(t, domain.LegOriginHaversineFallback, leg.Origin)
	assert.Greater(t, leg.DistanceKm, 0.0)
}

func TestDistanceOracleResolveMemoryCacheHit(t *testing.T) {
	provider := &stubDistanceProvider{elements: [][]DistanceElement{
		{{Km: 280.0, Seconds: 10800}},
	}}
	o := NewDistanceOracle(provider, nil, 0, logger.Noop{})

	first := o.Resolve(context.Background(), hannover, berlin)
	second := o.Resolve(context.Background(), hannover, berlin)

	assert.Equal(t, 1, provider.hits)
	assert.Equal(t, domain.LegOriginMemoryCache, second.Origin)
	assert.Equal(t, first.DistanceKm, second.DistanceKm)
}

func TestQuickEstimate(t *testing.T) {
	est := QuickEstimate(hannover, berlin)
	assert.Greater(t, est, travelPad)
}

func TestDistanceOracleResolveMatrixWithoutProviderUsesHaversine(t *testing.T) {
	o := NewDistanceOracle(nil, nil, 0, logger.Noop{})
	matrix, err := o.ResolveMatrix(context.Background(), []domain.GeoPoint{hannover}, []domain.GeoPoint{berlin})

	require.NoError(t, err)
	require.Len(t, matrix, 1)
	require.Len(t, matrix[0], 1)
	assert.Equal(t, domain.LegOriginHaversineFallback, matrix[0][0].Origin)
	assert.Greater(t, matrix[0][0].DistanceKm, 0.0)
}

func TestDistanceOracleResolveMatrixWithProvider(t *testing.T) {
	provider := &stubDistanceProvider{elements: [][]DistanceElement{
		{{Km: 280.0, Seconds: 10800}},
	}}
	o := NewDistanceOracle(provider, nil, 0, logger.Noop{})

	matrix, err := o.ResolveMatrix(context.Background(), []domain.GeoPoint{hannover}, []domain.GeoPoint{berlin})

	require.NoError(t, err)
	assert.Equal(t, domain.LegOriginProvider, matrix[0][0].Origin)
	assert.Equal(t, 280.0, matrix[0][0].DistanceKm)
}

func TestHaversineKnownDistance(t *testing.T) {
	km := haversine(hannover, berlin)
	// Straight-line Hannover-Berlin is roughly 240-290km great-circle.
	assert.InDelta(t, 260, km, 40)
}

// assertError is a trivial error used where only a non-nil error value
// matters, not its text.
type assertError struct{}

func (assertError) Error() string { return "stub failure" }
