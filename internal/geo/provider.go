// Package geo implements the geocoding resolver: static
// reference tables, address normalization, the tiered Geocoder, and the
// DistanceOracle. The external GeoProvider is specified only as an
// interface here — the concrete HTTP-backed adapter is a host concern.
package geo

import (
	"context"

	"github.com/pkg/errors"

	"github.com/dimanh55/tourenplaner-backend-sub001/internal/domain"
)

// ErrorKind classifies a ProviderError so callers can decide whether to
// fall through to the next tier, mark the call degraded, or disable the
// provider outright.
type ErrorKind int

const (
	ErrKindTimeout ErrorKind = iota
	ErrKindRateLimited
	ErrKindRequestDenied
	ErrKindInvalidRequest
	ErrKindTransient
)

// ProviderError wraps a failure from the external GeoProvider with the
// classification the geocoder and distance oracle branch on.
type ProviderError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *ProviderError) Error() string {
	return errors.Wrapf(e.Err, "geo provider %s failed", e.Op).Error()
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NewProviderError classifies and wraps err with context about which
// provider operation failed.
func NewProviderError(kind ErrorKind, op string, err error) *ProviderError {
	return &ProviderError{Kind: kind, Op: op, Err: err}
}

// GeocodeQuery is the request shape passed to Provider.Geocode.
type GeocodeQuery struct {
	Address      string
	RegionHint   string // "DE"
	LanguageHint string // "de"
}

// GeocodeResponse is what a successful Provider.Geocode call returns.
type GeocodeResponse struct {
	Point            domain.GeoPoint
	FormattedAddress string
	AccuracyTag      string
	Components       map[string]string
}

// DistanceElement is one origin/destination pair's result within a
// DistanceMatrix response.
type DistanceElement struct {
	Km               float64
	Seconds          float64
	SecondsInTraffic float64 // 0 if the provider had no traffic hint
}

// TrafficHint mirrors the provider's traffic-model parameter.
type TrafficHint string

const (
	TrafficBestGuess  TrafficHint = "best_guess"
	TrafficPessimistic TrafficHint = "pessimistic"
)

// Provider is the abstract external geocoding/distance-matrix collaborator.
// The core never constructs one directly; a host-provided implementation is
// injected into Geocoder and DistanceOracle.
type Provider interface {
	Geocode(ctx context.Context, q GeocodeQuery) (GeocodeResponse, error)
	DistanceMatrix(ctx context.Context, origins, destinations []domain.GeoPoint, hint TrafficHint) ([][]DistanceElement, error)
}
