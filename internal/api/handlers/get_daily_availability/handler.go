package get_daily_availability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CourtBooking/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/service/availability"
)

const (
	msgInvalidFacilityID = "некорректный ID площадки"
	msgInvalidSportID    = "некорректный ID вида спорта"
	msgMissingDate       = "дата обязательна"
	msgInvalidDate       = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgDateOutOfWindow   = "дата вне окна бронирования"
	msgFacilityNotFound  = "площадка не найдена"
	msgSportNotOffered   = "вид спорта недоступен на площадке"
	msgNotConfigured     = "расписание площадки не настроено"
)

type Handler struct {
	service AvailabilityService
	logger  Logger
}

func NewHandler(service AvailabilityService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/facilities/{facilityId}/sports/{sportId}/availability
// Query params: date (required, YYYY-MM-DD)
// Публичный endpoint - без авторизации
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	facilityID, err := strconv.ParseInt(vars["facilityId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /facilities/{id}/sports/{id}/availability - Invalid facility ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidFacilityID)
		return
	}

	sportID, err := strconv.ParseInt(vars["sportId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /facilities/{id}/sports/{id}/availability - Invalid sport ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSportID)
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /facilities/{id}/sports/{id}/availability - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		h.logger.Warn("GET /facilities/{id}/sports/{id}/availability - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.service.GetDailyAvailability(r.Context(), facilityID, sportID, date)
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrFacilityNotFound):
			h.logger.Warn("GET /facilities/{id}/sports/{id}/availability - Facility not found: facility_id=%d", facilityID)
			handlers.RespondNotFound(w, msgFacilityNotFound)

		case errors.Is(err, availability.ErrSportNotOffered):
			h.logger.Warn("GET /facilities/{id}/sports/{id}/availability - Sport not offered: facility_id=%d, sport_id=%d",
				facilityID, sportID)
			handlers.RespondNotFound(w, msgSportNotOffered)

		case errors.Is(err, availability.ErrInvalidDate):
			h.logger.Warn("GET /facilities/{id}/sports/{id}/availability - Date out of window: facility_id=%d, date=%s",
				facilityID, dateStr)
			handlers.RespondBadRequest(w, msgDateOutOfWindow)

		case errors.Is(err, availability.ErrInvalidInput):
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, domain.ErrConfiguration):
			h.logger.Error("GET /facilities/{id}/sports/{id}/availability - Facility misconfigured: facility_id=%d, error=%v",
				facilityID, err)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgNotConfigured)

		default:
			h.logger.Error("GET /facilities/{id}/sports/{id}/availability - Failed to get availability: facility_id=%d, sport_id=%d, error=%v",
				facilityID, sportID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /facilities/{id}/sports/{id}/availability - Availability retrieved: facility_id=%d, sport_id=%d, slots_count=%d",
		facilityID, sportID, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromServiceResponse(result))
}
