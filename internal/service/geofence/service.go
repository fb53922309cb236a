package geofence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fichado-app/fichado-backend-go/internal/domain/audit"
	"github.com/fichado-app/fichado-backend-go/internal/domain/geofence"
	"github.com/fichado-app/fichado-backend-go/internal/pkg/database"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
)

type GeofenceServiceImpl struct {
	geofence.GeofenceConfigRepository
	auditor        audit.Recorder
	cacheTTL       time.Duration
	storageTimeout time.Duration

	// Configuration changes are rare and not safety-critical at sub-second
	// granularity, so reads tolerate cacheTTL of staleness.
	mu            sync.RWMutex
	cached        geofence.GeofenceConfig
	cachedMissing bool
	cachedAt      time.Time
}

// GetActiveConfig implements geofence.GeofenceService.
func (s *GeofenceServiceImpl) GetActiveConfig(ctx context.Context) (geofence.GeofenceConfig, error) {
	s.mu.RLock()
	if !s.cachedAt.IsZero() && time.Since(s.cachedAt) < s.cacheTTL {
		cfg, missing := s.cached, s.cachedMissing
		s.mu.RUnlock()
		if missing {
			return geofence.GeofenceConfig{}, geofence.ErrNotConfigured
		}
		return cfg, nil
	}
	s.mu.RUnlock()

	storageCtx, cancel := context.WithTimeout(ctx, s.storageTimeout)
	defer cancel()

	cfg, err := s.GeofenceConfigRepository.GetActive(storageCtx)
	if err != nil {
		if errors.Is(err, geofence.ErrNotConfigured) {
			s.fill(geofence.GeofenceConfig{}, true)
			return geofence.GeofenceConfig{}, geofence.ErrNotConfigured
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return geofence.GeofenceConfig{}, database.ErrStorageTimeout
		}
		return geofence.GeofenceConfig{}, fmt.Errorf("failed to get geofence config: %w", err)
	}

	s.fill(cfg, false)
	return cfg, nil
}

// UpsertConfig implements geofence.GeofenceService. Role enforcement lives in
// the router middleware; this trusts its caller's authorization decision.
func (s *GeofenceServiceImpl) UpsertConfig(ctx context.Context, req geofence.UpsertConfigRequest) (geofence.GeofenceConfig, error) {
	if err := req.Validate(); err != nil {
		return geofence.GeofenceConfig{}, err
	}

	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return geofence.GeofenceConfig{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}
	updatedBy, _ := claims["employee_id"].(string)

	candidate := geofence.GeofenceConfig{
		CenterLatitude:  req.Latitude,
		CenterLongitude: req.Longitude,
		RadiusMeters:    req.RadiusMeters,
		Label:           req.Label,
		UpdatedBy:       updatedBy,
	}

	storageCtx, cancel := context.WithTimeout(ctx, s.storageTimeout)
	defer cancel()

	saved, err := s.GeofenceConfigRepository.Upsert(storageCtx, candidate)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return geofence.GeofenceConfig{}, database.ErrStorageTimeout
		}
		return geofence.GeofenceConfig{}, fmt.Errorf("failed to upsert geofence config: %w", err)
	}

	s.fill(saved, false)

	// Best-effort: a failed audit write must never roll back the change.
	go s.recordAudit(audit.AuditEvent{
		ID:      uuid.NewString(),
		Kind:    audit.KindGeofenceUpdated,
		ActorID: updatedBy,
		Detail: map[string]any{
			"latitude":      saved.CenterLatitude,
			"longitude":     saved.CenterLongitude,
			"radius_meters": saved.RadiusMeters,
			"label":         saved.Label,
		},
		OccurredAt: saved.UpdatedAt,
	})

	return saved, nil
}

func (s *GeofenceServiceImpl) fill(cfg geofence.GeofenceConfig, missing bool) {
	s.mu.Lock()
	s.cached = cfg
	s.cachedMissing = missing
	s.cachedAt = time.Now()
	s.mu.Unlock()
}

func (s *GeofenceServiceImpl) recordAudit(event audit.AuditEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), s.storageTimeout)
	defer cancel()

	if err := s.auditor.Record(ctx, event); err != nil {
		slog.Error("audit write failed", "kind", event.Kind, "error", err)
	}
}

func NewGeofenceService(
	repo geofence.GeofenceConfigRepository,
	auditor audit.Recorder,
	cacheTTL time.Duration,
	storageTimeout time.Duration,
) geofence.GeofenceService {
	return &GeofenceServiceImpl{
		GeofenceConfigRepository: repo,
		auditor:                  auditor,
		cacheTTL:                 cacheTTL,
		storageTimeout:           storageTimeout,
	}
}
