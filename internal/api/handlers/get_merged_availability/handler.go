package get_merged_availability

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CourtBooking/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/service/availability"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgDateOutOfWindow    = "дата вне окна бронирования одной из площадок"
	msgFacilityNotFound   = "площадка не найдена"
	msgSportNotOffered    = "вид спорта недоступен на одной из площадок"
	msgGranularity        = "площадки используют разную длительность слота"
	msgNotConfigured      = "расписание площадки не настроено"
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

// Handle POST /api/v1/availability/merged
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req MergedAvailabilityRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /availability/merged - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	date, candidates, err := req.ToServiceRequest()
	if err != nil {
		h.logger.Warn("POST /availability/merged - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.service.GetMergedAvailability(r.Context(), date, candidates)
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrInvalidInput):
			h.logger.Warn("POST /availability/merged - Invalid input: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, availability.ErrFacilityNotFound):
			h.logger.Warn("POST /availability/merged - Facility not found: %v", err)
			handlers.RespondNotFound(w, msgFacilityNotFound)

		case errors.Is(err, availability.ErrSportNotOffered):
			handlers.RespondNotFound(w, msgSportNotOffered)

		case errors.Is(err, availability.ErrInvalidDate):
			handlers.RespondBadRequest(w, msgDateOutOfWindow)

		case errors.Is(err, domain.ErrGranularityMismatch):
			h.logger.Warn("POST /availability/merged - Granularity mismatch: %v", err)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgGranularity)

		case errors.Is(err, domain.ErrConfiguration):
			h.logger.Error("POST /availability/merged - Facility misconfigured: %v", err)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgNotConfigured)

		default:
			h.logger.Error("POST /availability/merged - Failed to merge availability: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /availability/merged - Merged availability retrieved: candidates=%d, slots_count=%d",
		len(candidates), len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromServiceResponse(result))
}
