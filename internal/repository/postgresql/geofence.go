package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/fichado-app/fichado-backend-go/internal/domain/geofence"
	"github.com/fichado-app/fichado-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type geofenceConfigRepository struct {
	db *database.DB
}

// GetActive implements geofence.GeofenceConfigRepository.
func (r *geofenceConfigRepository) GetActive(ctx context.Context) (geofence.GeofenceConfig, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT center_latitude, center_longitude, radius_meters, label, updated_at, updated_by
		FROM geofence_config
		WHERE id = 1
	`

	var cfg geofence.GeofenceConfig
	err := q.QueryRow(ctx, query).Scan(
		&cfg.CenterLatitude, &cfg.CenterLongitude, &cfg.RadiusMeters,
		&cfg.Label, &cfg.UpdatedAt, &cfg.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return geofence.GeofenceConfig{}, geofence.ErrNotConfigured
		}
		return geofence.GeofenceConfig{}, fmt.Errorf("failed to get geofence config: %w", err)
	}

	return cfg, nil
}

// Upsert implements geofence.GeofenceConfigRepository. A single INSERT ... ON
// CONFLICT statement keeps concurrent admin writes linearized; partial field
// interleaving is impossible.
func (r *geofenceConfigRepository) Upsert(ctx context.Context, cfg geofence.GeofenceConfig) (geofence.GeofenceConfig, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO geofence_config (id, center_latitude, center_longitude, radius_meters, label, updated_at, updated_by)
		VALUES (1, $1, $2, $3, $4, now(), $5)
		ON CONFLICT (id) DO UPDATE SET
			center_latitude = EXCLUDED.center_latitude,
			center_longitude = EXCLUDED.center_longitude,
			radius_meters = EXCLUDED.radius_meters,
			label = EXCLUDED.label,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by
		RETURNING center_latitude, center_longitude, radius_meters, label, updated_at, updated_by
	`

	var saved geofence.GeofenceConfig
	err := q.QueryRow(ctx, query,
		cfg.CenterLatitude, cfg.CenterLongitude, cfg.RadiusMeters, cfg.Label, cfg.UpdatedBy,
	).Scan(
		&saved.CenterLatitude, &saved.CenterLongitude, &saved.RadiusMeters,
		&saved.Label, &saved.UpdatedAt, &saved.UpdatedBy,
	)
	if err != nil {
		return geofence.GeofenceConfig{}, fmt.Errorf("failed to upsert geofence config: %w", err)
	}

	return saved, nil
}

func NewGeofenceConfigRepository(db *database.DB) geofence.GeofenceConfigRepository {
	return &geofenceConfigRepository{db: db}
}
