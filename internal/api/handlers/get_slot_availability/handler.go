package get_slot_availability

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CourtBooking/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/service/availability"
)

const (
	msgInvalidFacilityID = "некорректный ID площадки"
	msgInvalidSportID    = "некорректный ID вида спорта"
	msgMissingParams     = "параметры date, startTime и endTime обязательны"
	msgInvalidParams     = "некорректные параметры запроса"
	msgDateOutOfWindow   = "дата вне окна бронирования"
	msgSlotNotInGrid     = "слот не входит в сетку дня"
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

// Handle GET /api/v1/facilities/{facilityId}/sports/{sportId}/availability/slot
// Query params: date (YYYY-MM-DD), startTime и endTime (HH:MM)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	facilityID, err := strconv.ParseInt(vars["facilityId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /facilities/{id}/sports/{id}/availability/slot - Invalid facility ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidFacilityID)
		return
	}

	sportID, err := strconv.ParseInt(vars["sportId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /facilities/{id}/sports/{id}/availability/slot - Invalid sport ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSportID)
		return
	}

	q := r.URL.Query()
	dateStr, startStr, endStr := q.Get("date"), q.Get("startTime"), q.Get("endTime")
	if dateStr == "" || startStr == "" || endStr == "" {
		h.logger.Warn("GET /facilities/{id}/sports/{id}/availability/slot - Missing query params")
		handlers.RespondBadRequest(w, msgMissingParams)
		return
	}

	query, err := parseQuery(dateStr, startStr, endStr)
	if err != nil {
		h.logger.Warn("GET /facilities/{id}/sports/{id}/availability/slot - Invalid query params: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.service.GetSlotAvailability(r.Context(), facilityID, sportID, query.date, query.slot)
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrFacilityNotFound):
			h.logger.Warn("GET /facilities/{id}/sports/{id}/availability/slot - Facility not found: facility_id=%d", facilityID)
			handlers.RespondNotFound(w, msgFacilityNotFound)

		case errors.Is(err, availability.ErrSportNotOffered):
			h.logger.Warn("GET /facilities/{id}/sports/{id}/availability/slot - Sport not offered: facility_id=%d, sport_id=%d",
				facilityID, sportID)
			handlers.RespondNotFound(w, msgSportNotOffered)

		case errors.Is(err, availability.ErrSlotNotInGrid):
			h.logger.Warn("GET /facilities/{id}/sports/{id}/availability/slot - Slot not in grid: facility_id=%d, slot=%s",
				facilityID, query.slot)
			handlers.RespondBadRequest(w, msgSlotNotInGrid)

		case errors.Is(err, availability.ErrInvalidDate):
			handlers.RespondBadRequest(w, msgDateOutOfWindow)

		case errors.Is(err, availability.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidParams)

		case errors.Is(err, domain.ErrConfiguration):
			h.logger.Error("GET /facilities/{id}/sports/{id}/availability/slot - Facility misconfigured: facility_id=%d, error=%v",
				facilityID, err)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgNotConfigured)

		default:
			h.logger.Error("GET /facilities/{id}/sports/{id}/availability/slot - Failed to get slot: facility_id=%d, sport_id=%d, error=%v",
				facilityID, sportID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /facilities/{id}/sports/{id}/availability/slot - Slot retrieved: facility_id=%d, slot=%s, free=%d",
		facilityID, query.slot, len(result.FreeCourts))
	handlers.RespondJSON(w, http.StatusOK, handlers.FromDomainSlotAvailability(result))
}
