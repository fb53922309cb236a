package memory

import (
	"context"
	"sync"
	"time"

	"github.com/fichado-app/fichado-backend-go/internal/domain/geofence"
)

type GeofenceConfigStore struct {
	mu  sync.RWMutex
	cfg *geofence.GeofenceConfig
}

func NewGeofenceConfigStore() *GeofenceConfigStore {
	return &GeofenceConfigStore{}
}

func (s *GeofenceConfigStore) GetActive(ctx context.Context) (geofence.GeofenceConfig, error) {
	if err := ctx.Err(); err != nil {
		return geofence.GeofenceConfig{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cfg == nil {
		return geofence.GeofenceConfig{}, geofence.ErrNotConfigured
	}
	return *s.cfg, nil
}

func (s *GeofenceConfigStore) Upsert(ctx context.Context, cfg geofence.GeofenceConfig) (geofence.GeofenceConfig, error) {
	if err := ctx.Err(); err != nil {
		return geofence.GeofenceConfig{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg.UpdatedAt = time.Now()
	stored := cfg
	s.cfg = &stored
	return cfg, nil
}
