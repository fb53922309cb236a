package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fichado-app/fichado-backend-go/internal/domain/geofence"
	"github.com/fichado-app/fichado-backend-go/internal/handler/http/response"
)

type GeofenceHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
	Upsert(w http.ResponseWriter, r *http.Request)
}

type geofenceHandlerImpl struct {
	geofenceService geofence.GeofenceService
}

func NewGeofenceHandler(geofenceService geofence.GeofenceService) GeofenceHandler {
	return &geofenceHandlerImpl{
		geofenceService: geofenceService,
	}
}

// Get implements GeofenceHandler. An unconfigured site is not an error for
// the reader: the client gets an explicit configured=false payload.
func (h *geofenceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.geofenceService.GetActiveConfig(r.Context())
	if err != nil {
		if errors.Is(err, geofence.ErrNotConfigured) {
			response.Success(w, geofence.UnconfiguredResponse())
			return
		}
		response.HandleError(w, err)
		return
	}

	response.Success(w, geofence.MapConfigToResponse(cfg))
}

// Upsert implements GeofenceHandler.
func (h *geofenceHandlerImpl) Upsert(w http.ResponseWriter, r *http.Request) {
	var req geofence.UpsertConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	cfg, err := h.geofenceService.UpsertConfig(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Geofence updated successfully", geofence.MapConfigToResponse(cfg))
}
