package get_facility_config

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CourtBooking/internal/api/handlers"
)

const (
	msgInvalidFacilityID = "некорректный ID площадки"
	msgInvalidSportID    = "некорректный ID вида спорта"
)

type Handler struct {
	service ConfigService
	logger  Logger
}

func NewHandler(service ConfigService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/facilities/{facilityId}/config
// Query params: sportId (опционально)
// Публичный endpoint - без авторизации, возвращает действующую конфигурацию
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	facilityID, err := strconv.ParseInt(vars["facilityId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /facilities/{id}/config - Invalid facility ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidFacilityID)
		return
	}

	var sportID *int64
	if sportIDStr := r.URL.Query().Get("sportId"); sportIDStr != "" {
		parsed, err := strconv.ParseInt(sportIDStr, 10, 64)
		if err != nil {
			h.logger.Warn("GET /facilities/{id}/config - Invalid sport ID: %v", err)
			handlers.RespondBadRequest(w, msgInvalidSportID)
			return
		}
		sportID = &parsed
	}

	result, err := h.service.GetEffective(r.Context(), facilityID, sportID)
	if err != nil {
		h.logger.Error("GET /facilities/{id}/config - Failed to get config: facility_id=%d, error=%v",
			facilityID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /facilities/{id}/config - Config retrieved successfully: facility_id=%d, config_id=%d",
		facilityID, result.ID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
