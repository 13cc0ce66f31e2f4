package geo

import (
	"context"
	"time"

	"github.com/golang/geo/s2"

	"github.com/dimanh55/tourenplaner-backend-sub001/internal/domain"
	"github.com/dimanh55/tourenplaner-backend-sub001/internal/storage"
	"github.com/dimanh55/tourenplaner-backend-sub001/pkg/logger"
)

// earthRadiusKm is the sphere used for every great-circle computation in
// this package.
const earthRadiusKm = 6371.0

// distanceTTL is the persistent-cache freshness window: rows older than
// this are treated as a miss.
const distanceTTL = 30 * 24 * time.Hour

// similarRouteTolerance is the coordinate window (degrees) within which two
// legs are considered the "same route" for the similar-route cache tier.
const similarRouteTolerance = 0.02

// travelPad is added to every computed travel duration except where the
// branch-specific padding below overrides it; the branches are kept
// literally distinct rather than unified so each route reproduces the same
// estimate every time.
const travelPad = 0.25

// Closed-form estimate tier thresholds and factors: below tinyHopKm and
// shortHopKm, a provider round trip isn't worth it, so distance and duration
// are derived directly from the great-circle measurement.
const (
	tinyHopKm  = 5.0
	shortHopKm = 50.0

	tinyHopFactor  = 1.4
	shortHopFactor = 1.25

	tinyHopSpeedKmh  = 30.0
	shortHopSpeedKmh = 60.0
)

// Haversine fallback factor/speed/padding, used when the provider is
// unavailable for a hop too long for the closed-form estimate.
const (
	haversineFallbackFactor  = 1.3
	haversineFallbackSpeed   = 80.0
	haversineFallbackPadding = 0.3
)

// distanceMatrixMaxElements bounds a single provider batch: origins times
// destinations must not exceed this per request.
const distanceMatrixMaxElements = 625

// distanceMatrixBatchPause is the cooperative sleep between batches.
const distanceMatrixBatchPause = 250 * time.Millisecond

// distanceMinTimeout and distanceMaxTimeout bound a single provider call,
// scaled to how many elements the call covers.
const (
	distanceMinTimeout = 4 * time.Second
	distanceMaxTimeout = 15 * time.Second
)

// DistanceOracle is cached, tiered travel-leg resolution between
// two points, always returning a usable estimate.
type DistanceOracle struct {
	provider Provider
	cache    storage.DistanceCache
	memory   memCache[legKey, domain.Leg]
	log      logger.Logger
}

// legKey is the memory-cache key: a full-precision coordinate pair, kept
// as a comparable struct instead of a formatted string.
type legKey struct {
	fromLat, fromLng float64
	toLat, toLng     float64
}

func newLegKey(from, to domain.GeoPoint) legKey {
	return legKey{fromLat: from.Lat, fromLng: from.Lng, toLat: to.Lat, toLng: to.Lng}
}

// NewDistanceOracle wires the oracle to its collaborators. cache may be nil to skip
// the persistent tiers; memoryCacheCap <= 0 means unbounded.
func NewDistanceOracle(provider Provider, cache storage.DistanceCache, memoryCacheCap int, log logger.Logger) *DistanceOracle {
	if log == nil {
		log = logger.Noop{}
	}
	return &DistanceOracle{
		provider: provider,
		cache:    cache,
		memory:   newMemCache[legKey, domain.Leg](memoryCacheCap),
		log:      log,
	}
}

// Resolve returns the travel leg between from and to, trying memory cache,
// persistent exact cache, persistent similar-route cache, closed-form
// estimates for short hops, the external provider, and finally a Haversine
// fallback, in that order.
func (o *DistanceOracle) Resolve(ctx context.Context, from, to domain.GeoPoint) domain.Leg {
	if from.Equal(to) {
		return domain.Leg{From: from, To: to, DistanceKm: 0, DurationHours: 0, Origin: domain.LegOriginMemoryCache}
	}

	key := newLegKey(from, to)
	if cached, ok := o.memory.Get(key); ok {
		cached.Origin = domain.LegOriginMemoryCache
		return cached
	}

	if o.cache != nil {
		if row, ok, err := o.cache.GetDistance(ctx, from, to, distanceTTL); err != nil {
			o.log.Warn("distance cache read failed", "err", err)
		} else if ok {
			leg := legFromRow(from, to, row, domain.LegOriginDBCache)
			o.memory.Put(key, leg)
			return leg
		}

		if row, ok, err := o.cache.GetSimilarDistance(ctx, from, to, similarRouteTolerance, distanceTTL); err != nil {
			o.log.Warn("similar-route cache read failed", "err", err)
		} else if ok {
			leg := legFromRow(from, to, row, domain.LegOriginSimilarRoute)
			o.memory.Put(key, leg)
			return leg
		}
	}

	greatCircle := haversine(from, to)

	if greatCircle < shortHopKm {
		leg := closedFormEstimate(from, to, greatCircle)
		o.store(ctx, key, leg)
		return leg
	}

	if o.provider != nil {
		if leg, ok := o.tryProvider(ctx, from, to); ok {
			o.store(ctx, key, leg)
			return leg
		}
	}

	leg := domain.Leg{
		From: from, To: to,
		DistanceKm:    greatCircle * haversineFallbackFactor,
		DurationHours: greatCircle/haversineFallbackSpeed + haversineFallbackPadding,
		Origin:        domain.LegOriginHaversineFallback,
	}
	o.store(ctx, key, leg)
	return leg
}

func legFromRow(from, to domain.GeoPoint, row storage.DistanceRow, origin domain.LegOrigin) domain.Leg {
	return domain.Leg{From: from, To: to, DistanceKm: row.DistanceKm, DurationHours: row.DurationHours, Origin: origin}
}

// closedFormEstimate applies a flat-factor shortcut for
// hops short enough that a provider round-trip isn't worth it.
func closedFormEstimate(from, to domain.GeoPoint, greatCircle float64) domain.Leg {
	factor := shortHopFactor
	speed := shortHopSpeedKmh
	if greatCircle < tinyHopKm {
		factor = tinyHopFactor
		speed = tinyHopSpeedKmh
	}
	distanceKm := greatCircle * factor
	return domain.Leg{
		From: from, To: to,
		DistanceKm:    distanceKm,
		DurationHours: distanceKm/speed + travelPad,
		Origin:        domain.LegOriginHaversineFallback,
	}
}

func (o *DistanceOracle) tryProvider(ctx context.Context, from, to domain.GeoPoint) (domain.Leg, bool) {
	callCtx, cancel := context.WithTimeout(ctx, distanceMinTimeout)
	defer cancel()

	elements, err := o.provider.DistanceMatrix(callCtx, []domain.GeoPoint{from}, []domain.GeoPoint{to}, TrafficBestGuess)
	if err != nil {
		o.classifyAndLog(err)
		return domain.Leg{}, false
	}
	if len(elements) == 0 || len(elements[0]) == 0 {
		o.log.Warn("provider returned empty distance matrix")
		return domain.Leg{}, false
	}

	e := elements[0][0]
	seconds := e.SecondsInTraffic
	if seconds == 0 {
		seconds = e.Seconds
	}
	return domain.Leg{
		From: from, To: to,
		DistanceKm:    e.Km,
		DurationHours: seconds/3600.0 + travelPad,
		Origin:        domain.LegOriginProvider,
	}, true
}

func (o *DistanceOracle) classifyAndLog(err error) {
	if pe, ok := err.(*ProviderError); ok {
		o.log.Warn("distance provider call failed", "kind", pe.Kind, "err", err)
		return
	}
	o.log.Warn("distance provider call failed", "err", err)
}

func (o *DistanceOracle) store(ctx context.Context, key legKey, leg domain.Leg) {
	o.memory.Put(key, leg)
	if o.cache == nil {
		return
	}
	row := storage.DistanceRow{
		OriginLat: leg.From.Lat, OriginLng: leg.From.Lng,
		DestLat: leg.To.Lat, DestLng: leg.To.Lng,
		DistanceKm:    leg.DistanceKm,
		DurationHours: leg.DurationHours,
		CachedAt:      time.Now().UTC(),
	}
	if err := o.cache.PutDistance(ctx, row); err != nil {
		o.log.Warn("failed to persist distance cache row", "err", err)
	}
}

// QuickEstimate returns a coarse Haversine-derived feasibility guess (speed
// 80 km/h + travelPad) without consulting any cache tier or the provider.
// Gap-fill day placement uses this to test whether a window is wide enough
// before resolving the real leg via Resolve.
func QuickEstimate(from, to domain.GeoPoint) float64 {
	return haversine(from, to)/haversineFallbackSpeed + travelPad
}

// ResolveMatrix batches a full origin x destination distance matrix through
// the provider, respecting the <=625-elements-per-call cap and sleeping
// between batches. Cache tiers are not consulted here: callers
// that want per-pair caching should call Resolve individually; ResolveMatrix
// exists for bulk lookups where a single round trip matters more than cache
// reuse.
func (o *DistanceOracle) ResolveMatrix(ctx context.Context, origins, destinations []domain.GeoPoint) ([][]domain.Leg, error) {
	if o.provider == nil {
		return o.haversineMatrix(origins, destinations), nil
	}

	result := make([][]domain.Leg, len(origins))
	for i := range result {
		result[i] = make([]domain.Leg, len(destinations))
	}

	batchSize := distanceMatrixMaxElements / max(1, len(destinations))
	if batchSize < 1 {
		batchSize = 1
	}

	for start := 0; start < len(origins); start += batchSize {
		end := start + batchSize
		if end > len(origins) {
			end = len(origins)
		}
		batchOrigins := origins[start:end]

		timeout := distanceMinTimeout
		if elements := len(batchOrigins) * len(destinations); elements > 100 {
			timeout = distanceMaxTimeout
		}
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		elements, err := o.provider.DistanceMatrix(callCtx, batchOrigins, destinations, TrafficBestGuess)
		cancel()
		if err != nil {
			o.classifyAndLog(err)
			o.fillHaversine(result, batchOrigins, destinations, start)
			continue
		}

		for oi, row := range elements {
			for di, e := range row {
				seconds := e.SecondsInTraffic
				if seconds == 0 {
					seconds = e.Seconds
				}
				result[start+oi][di] = domain.Leg{
					From: batchOrigins[oi], To: destinations[di],
					DistanceKm: e.Km, DurationHours: seconds/3600.0 + travelPad,
					Origin: domain.LegOriginProvider,
				}
			}
		}

		if end < len(origins) {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(distanceMatrixBatchPause):
			}
		}
	}

	return result, nil
}

func (o *DistanceOracle) haversineMatrix(origins, destinations []domain.GeoPoint) [][]domain.Leg {
	result := make([][]domain.Leg, len(origins))
	for i, from := range origins {
		result[i] = make([]domain.Leg, len(destinations))
		for j, to := range destinations {
			gc := haversine(from, to)
			result[i][j] = domain.Leg{
				From: from, To: to,
				DistanceKm:    gc * haversineFallbackFactor,
				DurationHours: gc/haversineFallbackSpeed + haversineFallbackPadding,
				Origin:        domain.LegOriginHaversineFallback,
			}
		}
	}
	return result
}

func (o *DistanceOracle) fillHaversine(result [][]domain.Leg, batchOrigins, destinations []domain.GeoPoint, startIdx int) {
	for oi, from := range batchOrigins {
		for di, to := range destinations {
			gc := haversine(from, to)
			result[startIdx+oi][di] = domain.Leg{
				From: from, To: to,
				DistanceKm:    gc * haversineFallbackFactor,
				DurationHours: gc/haversineFallbackSpeed + haversineFallbackPadding,
				Origin:        domain.LegOriginHaversineFallback,
			}
		}
	}
}

// haversine computes the great-circle distance in kilometers using the
// golang/geo s2 LatLng helper rather than a hand-rolled trig formula.
func haversine(a, b domain.GeoPoint) float64 {
	p1 := s2.LatLngFromDegrees(a.Lat, a.Lng)
	p2 := s2.LatLngFromDegrees(b.Lat, b.Lng)
	angle := p1.Distance(p2)
	return angle.Radians() * earthRadiusKm
}
