package geo

import (
	"context"
	"hash/fnv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/dimanh55/tourenplaner-backend-sub001/internal/domain"
	"github.com/dimanh55/tourenplaner-backend-sub001/internal/storage"
	"github.com/dimanh55/tourenplaner-backend-sub001/pkg/logger"
)

// geocodeTimeout bounds a single provider call.
const geocodeTimeout = 8 * time.Second

// geocodingTTL is the persistent-cache freshness window: rows older than
// this are treated as a miss.
const geocodingTTL = 90 * 24 * time.Hour

// similarCityThreshold is the minimum Levenshtein similarity to accept a
// fuzzy city match.
const similarCityThreshold = 0.6

// Geocoder performs tiered address resolution that always succeeds.
type Geocoder struct {
	tables     *StaticTables
	normalizer *Normalizer
	provider   Provider
	cache      storage.GeocodingCache
	memory     memCache[string, domain.GeocodeResult]
	log        logger.Logger

	// disabled is process-wide and write-once-true: once the provider
	// returns RequestDenied, every future call in the process skips tier 3;
	// nothing re-enables it.
	disabled atomic.Bool
}

// NewGeocoder wires the geocoder to its collaborators. cache may be nil to skip the
// persistent tier entirely (e.g. in tests); memoryCacheCap <= 0 means
// unbounded.
func NewGeocoder(provider Provider, cache storage.GeocodingCache, memoryCacheCap int, log logger.Logger) *Geocoder {
	if log == nil {
		log = logger.Noop{}
	}
	return &Geocoder{
		tables:     NewStaticTables(),
		normalizer: NewNormalizer(),
		provider:   provider,
		cache:      cache,
		memory:     newMemCache[string, domain.GeocodeResult](memoryCacheCap),
		log:        log,
	}
}

// Disabled reports whether the external provider has been permanently
// disabled for this process (RequestDenied was observed).
func (g *Geocoder) Disabled() bool {
	return g.disabled.Load()
}

// Resolve implements the tiered resolution chain. It always
// returns a result; ctx cancellation only affects whichever tier is
// currently suspended (provider/db calls), never the fallback tiers.
func (g *Geocoder) Resolve(ctx context.Context, address string) domain.GeocodeResult {
	key := strings.ToLower(strings.TrimSpace(address))
	if key == "" {
		g.log.Warn("empty address, falling back to country centroid")
		return g.countryCentroidResult()
	}

	// Tier 1: memory cache.
	if cached, ok := g.memory.Get(key); ok {
		cached.Method = domain.MethodMemoryCache
		return cached
	}

	// Tier 2: persistent cache.
	if g.cache != nil {
		if row, ok, err := g.cache.GetGeocoding(ctx, key, geocodingTTL); err != nil {
			g.log.Warn("geocoding cache read failed", "err", err)
		} else if ok {
			result := domain.GeocodeResult{
				Point:            row.Point,
				FormattedAddress: row.FormattedAddress,
				Accuracy:         row.Accuracy,
				Method:           domain.MethodDBCache,
				Confidence:       domain.ConfidenceHigh,
			}
			g.memory.Put(key, result)
			return result
		}
	}

	// Tier 3: external provider.
	if result, ok := g.tryProvider(ctx, address, key); ok {
		return result
	}

	// Tier 4/5/6/7: intelligent analysis through country centroid.
	result := g.resolveOffline(key)
	g.store(ctx, key, result)
	return result
}

func (g *Geocoder) tryProvider(ctx context.Context, address, key string) (domain.GeocodeResult, bool) {
	if g.provider == nil || g.disabled.Load() {
		return domain.GeocodeResult{}, false
	}

	callCtx, cancel := context.WithTimeout(ctx, geocodeTimeout)
	defer cancel()

	resp, err := g.provider.Geocode(callCtx, GeocodeQuery{Address: address, RegionHint: "DE", LanguageHint: "de"})
	if err != nil {
		g.classifyAndLog(err)
		return domain.GeocodeResult{}, false
	}

	if !resp.Point.InGermany() {
		g.log.Warn("provider result outside Germany, rejecting tier", "address", address)
		return domain.GeocodeResult{}, false
	}

	result := domain.GeocodeResult{
		Point:            resp.Point,
		FormattedAddress: resp.FormattedAddress,
		Accuracy:         providerAccuracy(resp.AccuracyTag),
		Method:           domain.MethodProvider,
		Confidence:       domain.ConfidenceHigh,
	}
	g.store(context.Background(), key, result)
	g.memory.Put(key, result)
	return result, true
}

func (g *Geocoder) classifyAndLog(err error) {
	pe, ok := err.(*ProviderError)
	if !ok {
		g.log.Warn("provider geocode failed", "err", err)
		return
	}
	switch pe.Kind {
	case ErrKindRequestDenied:
		g.disabled.Store(true)
		g.log.Error("provider disabled for remainder of process (request denied)", "err", err)
	case ErrKindRateLimited:
		g.log.Warn("provider rate-limited, not disabling", "err", err)
	case ErrKindTimeout, ErrKindTransient:
		g.log.Warn("provider transient failure, falling through", "err", err)
	default:
		g.log.Warn("provider invalid request, falling through", "err", err)
	}
}

// resolveOffline runs tiers 4-7, which never fail.
func (g *Geocoder) resolveOffline(key string) domain.GeocodeResult {
	normalized := g.normalizer.Normalize(key)

	// Tier 4: intelligent analysis — exact city hit.
	if normalized.City != "" {
		normKey := strings.ToLower(strings.TrimSpace(normalized.City))
		if point, canonical, ok := g.tables.Lookup(normKey); ok {
			jittered := jitter(point, key)
			return domain.GeocodeResult{
				Point:            jittered,
				FormattedAddress: canonical,
				Accuracy:         domain.AccuracyCity,
				Method:           domain.MethodIntelligent,
				Confidence:       domain.ConfidenceHigh,
			}
		}

		// Tier 5: similar-city Levenshtein match.
		if point, canonical, ok := g.similarCity(normKey); ok {
			return domain.GeocodeResult{
				Point:            point,
				FormattedAddress: canonical,
				Accuracy:         domain.AccuracyApproximate,
				Method:           domain.MethodIntelligent,
				Confidence:       domain.ConfidenceMedium,
			}
		}
	}

	// Tier 6: postal-code anchor.
	if normalized.PostalCode != "" {
		if point, region, ok := g.tables.PostalAnchor(normalized.PostalCode); ok {
			offset := postalOffset(normalized.PostalCode)
			point.Lat += offset.Lat
			point.Lng += offset.Lng
			return domain.GeocodeResult{
				Point:            point,
				FormattedAddress: region,
				Accuracy:         domain.AccuracyPostalCode,
				Method:           domain.MethodPostal,
				Confidence:       domain.ConfidenceMedium,
			}
		}
	}

	// Tier 7: country centroid, always succeeds.
	return g.countryCentroidResult()
}

func (g *Geocoder) similarCity(normalizedCity string) (domain.GeoPoint, string, bool) {
	best := 0.0
	var bestKey string
	for _, k := range g.tables.Keys() {
		sim := citySimilarity(normalizedCity, k)
		if sim > best {
			best = sim
			bestKey = k
		}
	}
	if best < similarCityThreshold {
		return domain.GeoPoint{}, "", false
	}
	return g.tables.EntryFor(bestKey)
}

// citySimilarity is (maxLen - editDistance) / maxLen.
func citySimilarity(a, b string) float64 {
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return float64(maxLen-dist) / float64(maxLen)
}

func (g *Geocoder) countryCentroidResult() domain.GeocodeResult {
	return domain.GeocodeResult{
		Point:            CountryCentroid,
		FormattedAddress: "Deutschland",
		Accuracy:         domain.AccuracyCountry,
		Method:           domain.MethodFallback,
		Confidence:       domain.ConfidenceLow,
	}
}

func (g *Geocoder) store(ctx context.Context, key string, result domain.GeocodeResult) {
	g.memory.Put(key, result)
	if g.cache == nil {
		return
	}
	row := storage.GeocodingRow{
		AddressLower:     key,
		Point:            result.Point,
		FormattedAddress: result.FormattedAddress,
		Accuracy:         result.Accuracy,
		Method:           result.Method,
		CachedAt:         time.Now().UTC(),
	}
	if err := g.cache.PutGeocoding(ctx, row); err != nil {
		g.log.Warn("failed to persist geocoding cache row", "err", err)
	}
}

// jitter derives a deterministic ±0.01° offset from an FNV hash of the
// address. Hash-based rather than math/rand, so repeated calls for the
// same address are byte-identical within one process.
func jitter(p domain.GeoPoint, address string) domain.GeoPoint {
	h := fnv.New64a()
	_, _ = h.Write([]byte(address))
	sum := h.Sum64()

	latBits := sum & 0xFFFF
	lngBits := (sum >> 16) & 0xFFFF

	latOffset := (float64(latBits)/0xFFFF - 0.5) * 0.02 // +/- 0.01
	lngOffset := (float64(lngBits)/0xFFFF - 0.5) * 0.02

	return domain.GeoPoint{Lat: p.Lat + latOffset, Lng: p.Lng + lngOffset}
}

// postalOffset computes a deterministic per-digit-pair offset from the
// postal code: lat += (d2d3 - 50) * 0.01, lng += (d4d5 - 50) * 0.01.
func postalOffset(postalCode string) domain.GeoPoint {
	if len(postalCode) != 5 {
		return domain.GeoPoint{}
	}
	d2d3 := atoiSafe(postalCode[1:3])
	d4d5 := atoiSafe(postalCode[3:5])
	return domain.GeoPoint{
		Lat: (float64(d2d3) - 50) * 0.01,
		Lng: (float64(d4d5) - 50) * 0.01,
	}
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

func providerAccuracy(tag string) domain.Accuracy {
	switch strings.ToLower(tag) {
	case "rooftop":
		return domain.AccuracyRooftop
	case "range_interpolated", "range":
		return domain.AccuracyRange
	case "geometric_center", "geometric":
		return domain.AccuracyGeometric
	default:
		return domain.AccuracyApproximate
	}
}
