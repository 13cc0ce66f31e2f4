package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dimanh55/tourenplaner-backend-sub001/internal/domain"
	"github.com/dimanh55/tourenplaner-backend-sub001/internal/storage"
)

// Store implements storage.CacheStore over Postgres, upserting with
// INSERT ... ON CONFLICT DO UPDATE.
type Store struct {
	db *DB
}

// NewStore adapts an opened DB into a storage.CacheStore.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

var _ storage.CacheStore = (*Store)(nil)

func (s *Store) GetGeocoding(ctx context.Context, addressLower string, maxAge time.Duration) (storage.GeocodingRow, bool, error) {
	query := `
		SELECT address_lower, lat, lng, formatted_address, accuracy, method, cached_at
		FROM geocoding_cache WHERE address_lower = $1
	`
	var row storage.GeocodingRow
	var accuracy, method string
	err := s.db.Conn().QueryRowContext(ctx, query, addressLower).Scan(
		&row.AddressLower, &row.Point.Lat, &row.Point.Lng, &row.FormattedAddress,
		&accuracy, &method, &row.CachedAt,
	)
	if err == sql.ErrNoRows {
		return storage.GeocodingRow{}, false, nil
	}
	if err != nil {
		return storage.GeocodingRow{}, false, fmt.Errorf("failed to get geocoding cache row: %w", err)
	}
	row.Accuracy = domain.Accuracy(accuracy)
	row.Method = domain.Method(method)
	if time.Since(row.CachedAt) > maxAge {
		return storage.GeocodingRow{}, false, nil
	}
	return row, true, nil
}

func (s *Store) PutGeocoding(ctx context.Context, row storage.GeocodingRow) error {
	query := `
		INSERT INTO geocoding_cache (address_lower, lat, lng, formatted_address, accuracy, method, cached_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (address_lower) DO UPDATE SET
			lat = EXCLUDED.lat, lng = EXCLUDED.lng,
			formatted_address = EXCLUDED.formatted_address,
			accuracy = EXCLUDED.accuracy, method = EXCLUDED.method,
			cached_at = EXCLUDED.cached_at
	`
	if row.CachedAt.IsZero() {
		row.CachedAt = time.Now().UTC()
	}
	_, err := s.db.Conn().ExecContext(ctx, query,
		row.AddressLower, row.Point.Lat, row.Point.Lng, row.FormattedAddress,
		string(row.Accuracy), string(row.Method), row.CachedAt)
	if err != nil {
		return fmt.Errorf("failed to put geocoding cache row: %w", err)
	}
	return nil
}

func (s *Store) GetDistance(ctx context.Context, from, to domain.GeoPoint, maxAge time.Duration) (storage.DistanceRow, bool, error) {
	query := `
		SELECT origin_lat, origin_lng, dest_lat, dest_lng, distance_km, duration_hours, cached_at
		FROM distance_cache
		WHERE origin_lat = $1 AND origin_lng = $2 AND dest_lat = $3 AND dest_lng = $4
	`
	var row storage.DistanceRow
	err := s.db.Conn().QueryRowContext(ctx, query, from.Lat, from.Lng, to.Lat, to.Lng).Scan(
		&row.OriginLat, &row.OriginLng, &row.DestLat, &row.DestLng,
		&row.DistanceKm, &row.DurationHours, &row.CachedAt,
	)
	if err == sql.ErrNoRows {
		return storage.DistanceRow{}, false, nil
	}
	if err != nil {
		return storage.DistanceRow{}, false, fmt.Errorf("failed to get distance cache row: %w", err)
	}
	if time.Since(row.CachedAt) > maxAge {
		return storage.DistanceRow{}, false, nil
	}
	return row, true, nil
}

func (s *Store) GetSimilarDistance(ctx context.Context, from, to domain.GeoPoint, tolerance float64, maxAge time.Duration) (storage.DistanceRow, bool, error) {
	query := `
		SELECT origin_lat, origin_lng, dest_lat, dest_lng, distance_km, duration_hours, cached_at
		FROM distance_cache
		WHERE origin_lat BETWEEN $1 AND $2
		  AND origin_lng BETWEEN $3 AND $4
		  AND dest_lat BETWEEN $5 AND $6
		  AND dest_lng BETWEEN $7 AND $8
		ORDER BY cached_at DESC
		LIMIT 1
	`
	var row storage.DistanceRow
	err := s.db.Conn().QueryRowContext(ctx, query,
		from.Lat-tolerance, from.Lat+tolerance,
		from.Lng-tolerance, from.Lng+tolerance,
		to.Lat-tolerance, to.Lat+tolerance,
		to.Lng-tolerance, to.Lng+tolerance,
	).Scan(
		&row.OriginLat, &row.OriginLng, &row.DestLat, &row.DestLng,
		&row.DistanceKm, &row.DurationHours, &row.CachedAt,
	)
	if err == sql.ErrNoRows {
		return storage.DistanceRow{}, false, nil
	}
	if err != nil {
		return storage.DistanceRow{}, false, fmt.Errorf("failed to get similar distance cache row: %w", err)
	}
	if time.Since(row.CachedAt) > maxAge {
		return storage.DistanceRow{}, false, nil
	}
	return row, true, nil
}

func (s *Store) PutDistance(ctx context.Context, row storage.DistanceRow) error {
	query := `
		INSERT INTO distance_cache (origin_lat, origin_lng, dest_lat, dest_lng, distance_km, duration_hours, cached_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (origin_lat, origin_lng, dest_lat, dest_lng) DO UPDATE SET
			distance_km = EXCLUDED.distance_km,
			duration_hours = EXCLUDED.duration_hours,
			cached_at = EXCLUDED.cached_at
	`
	if row.CachedAt.IsZero() {
		row.CachedAt = time.Now().UTC()
	}
	_, err := s.db.Conn().ExecContext(ctx, query,
		row.OriginLat, row.OriginLng, row.DestLat, row.DestLng,
		row.DistanceKm, row.DurationHours, row.CachedAt)
	if err != nil {
		return fmt.Errorf("failed to put distance cache row: %w", err)
	}
	return nil
}

func (s *Store) Stats(ctx context.Context) (storage.CacheStats, error) {
	var stats storage.CacheStats
	if err := s.db.Conn().QueryRowContext(ctx, `SELECT COUNT(*) FROM geocoding_cache`).Scan(&stats.GeocodingRows); err != nil {
		return stats, fmt.Errorf("failed to count geocoding rows: %w", err)
	}
	if err := s.db.Conn().QueryRowContext(ctx, `SELECT COUNT(*) FROM distance_cache`).Scan(&stats.DistanceRows); err != nil {
		return stats, fmt.Errorf("failed to count distance rows: %w", err)
	}

	var oldestG, newestG, oldestD, newestD sql.NullTime
	_ = s.db.Conn().QueryRowContext(ctx, `SELECT MIN(cached_at), MAX(cached_at) FROM geocoding_cache`).Scan(&oldestG, &newestG)
	_ = s.db.Conn().QueryRowContext(ctx, `SELECT MIN(cached_at), MAX(cached_at) FROM distance_cache`).Scan(&oldestD, &newestD)

	stats.OldestEntry = earliest(oldestG, oldestD)
	stats.NewestEntry = latest(newestG, newestD)
	return stats, nil
}

func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.Conn().ExecContext(ctx, `DELETE FROM geocoding_cache`); err != nil {
		return fmt.Errorf("failed to clear geocoding cache: %w", err)
	}
	if _, err := s.db.Conn().ExecContext(ctx, `DELETE FROM distance_cache`); err != nil {
		return fmt.Errorf("failed to clear distance cache: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

func earliest(a, b sql.NullTime) time.Time {
	switch {
	case a.Valid && b.Valid:
		if a.Time.Before(b.Time) {
			return a.Time
		}
		return b.Time
	case a.Valid:
		return a.Time
	case b.Valid:
		return b.Time
	default:
		return time.Time{}
	}
}

func latest(a, b sql.NullTime) time.Time {
	switch {
	case a.Valid && b.Valid:
		if a.Time.After(b.Time) {
			return a.Time
		}
		return b.Time
	case a.Valid:
		return a.Time
	case b.Valid:
		return b.Time
	default:
		return time.Time{}
	}
}
