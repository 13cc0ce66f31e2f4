// Package storage defines the CacheStore port: the thin persistence
// boundary the geocoding and distance caches read and write through. Two
// concrete backends live in storage/sqlite (default) and storage/postgres
// (alternate), both implementing CacheStore.
package storage

import (
	"context"
	"time"

	"github.com/dimanh55/tourenplaner-backend-sub001/internal/domain"
)

// GeocodingRow is one persisted geocoding cache entry, keyed by the
// lower-cased address.
type GeocodingRow struct {
	AddressLower     string
	Point            domain.GeoPoint
	FormattedAddress string
	Accuracy         domain.Accuracy
	Method           domain.Method
	CachedAt         time.Time
}

// DistanceRow is one persisted distance cache entry, keyed by the
// full-precision coordinate pair.
type DistanceRow struct {
	OriginLat, OriginLng float64
	DestLat, DestLng     float64
	DistanceKm           float64
	DurationHours        float64
	CachedAt             time.Time
}

// CacheStats summarizes both cache tables for operational visibility.
type CacheStats struct {
	GeocodingRows int
	DistanceRows  int
	OldestEntry   time.Time
	NewestEntry   time.Time
}

// GeocodingCache is the persistence port the Geocoder reads/writes through.
// Expiry (90 days) is a read-time filter, not a delete.
type GeocodingCache interface {
	GetGeocoding(ctx context.Context, addressLower string, maxAge time.Duration) (GeocodingRow, bool, error)
	PutGeocoding(ctx context.Context, row GeocodingRow) error
}

// DistanceCache is the persistence port the DistanceOracle reads/writes
// through. Expiry (30 days) is a read-time filter, not a delete.
type DistanceCache interface {
	GetDistance(ctx context.Context, from, to domain.GeoPoint, maxAge time.Duration) (DistanceRow, bool, error)
	GetSimilarDistance(ctx context.Context, from, to domain.GeoPoint, tolerance float64, maxAge time.Duration) (DistanceRow, bool, error)
	PutDistance(ctx context.Context, row DistanceRow) error
}

// CacheStore is the full persistence port: both cache tables, row-level key
// disjointness guaranteed by the backend's schema, plus read-only
// statistics and lifecycle management.
type CacheStore interface {
	GeocodingCache
	DistanceCache
	Stats(ctx context.Context) (CacheStats, error)
	Clear(ctx context.Context) error
	Close() error
}
