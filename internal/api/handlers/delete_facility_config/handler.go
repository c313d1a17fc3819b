package delete_facility_config

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CourtBooking/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBooking/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBooking/internal/service/config"
)

const (
	msgInvalidFacilityID = "некорректный ID площадки"
	msgInvalidSportID    = "некорректный ID вида спорта"
	msgMissingUserID     = "отсутствует ID пользователя"
	msgNotFound          = "конфигурация не найдена"
	msgFacilityNotFound  = "площадка не найдена"
	msgForbidden         = "доступ запрещен"
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

// Handle DELETE /api/v1/facilities/{facilityId}/config
// Query params: sportId (опционально, без него удаляется общий уровень площадки)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	facilityID, err := strconv.ParseInt(vars["facilityId"], 10, 64)
	if err != nil {
		h.logger.Warn("DELETE /facilities/{id}/config - Invalid facility ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidFacilityID)
		return
	}

	var sportID *int64
	if sportIDStr := r.URL.Query().Get("sportId"); sportIDStr != "" {
		parsed, err := strconv.ParseInt(sportIDStr, 10, 64)
		if err != nil {
			handlers.RespondBadRequest(w, msgInvalidSportID)
			return
		}
		sportID = &parsed
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	if err := h.service.Delete(r.Context(), facilityID, sportID, userID); err != nil {
		switch {
		case errors.Is(err, config.ErrConfigNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, config.ErrFacilityNotFound):
			handlers.RespondNotFound(w, msgFacilityNotFound)

		case errors.Is(err, config.ErrAccessDenied):
			h.logger.Warn("DELETE /facilities/{id}/config - Access denied: facility_id=%d, user_id=%d", facilityID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("DELETE /facilities/{id}/config - Failed to delete config: facility_id=%d, error=%v", facilityID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /facilities/{id}/config - Config deleted: facility_id=%d, sport_id=%v", facilityID, sportID)
	w.WriteHeader(http.StatusNoContent)
}
