package attempt_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CourtBooking/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBooking/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	attemptBooking "github.com/m04kA/SMC-CourtBooking/internal/usecase/attempt_booking"
)

const (
	msgUnauthorized       = "требуется авторизация"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgSlotTaken          = "корт уже занят на выбранное время"
	msgFacilityNotFound   = "площадка не найдена"
	msgCourtNotFound      = "корт не найден"
	msgSportNotOffered    = "вид спорта недоступен на выбранном корте"
	msgInvalidBookingDate = "дата вне окна бронирования"
	msgTooLateToBook      = "слишком поздно для бронирования этого слота"
	msgInvalidTimeSlot    = "некорректный временной слот"
	msgPricingError       = "для слота не настроена цена"
	msgNotConfigured      = "расписание площадки не настроено"
)

type Handler struct {
	useCase AttemptBookingUseCase
	logger  Logger
}

func NewHandler(useCase AttemptBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/reservations
// Создаёт удержание слота в статусе pending, оплата подтверждает его асинхронно
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /reservations - User ID not found in context")
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req AttemptBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(userID))
	if err != nil {
		var taken *attemptBooking.SlotTakenError
		switch {
		case errors.As(err, &taken):
			h.logger.Warn("POST /reservations - Slot taken: user_id=%d, court_id=%d, date=%s, slot=%s",
				userID, taken.CourtID, taken.Date, taken.Slot)
			handlers.RespondJSON(w, http.StatusConflict, fromSlotTaken(taken))

		case errors.Is(err, domain.ErrSlotAlreadyTaken):
			handlers.RespondConflict(w, msgSlotTaken)

		case errors.Is(err, attemptBooking.ErrInvalidInput):
			h.logger.Warn("POST /reservations - Invalid draft: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, attemptBooking.ErrFacilityNotFound):
			h.logger.Warn("POST /reservations - Facility not found: user_id=%d", userID)
			handlers.RespondNotFound(w, msgFacilityNotFound)

		case errors.Is(err, attemptBooking.ErrCourtNotFound):
			h.logger.Warn("POST /reservations - Court not found: user_id=%d", userID)
			handlers.RespondNotFound(w, msgCourtNotFound)

		case errors.Is(err, attemptBooking.ErrSportNotOffered):
			handlers.RespondBadRequest(w, msgSportNotOffered)

		case errors.Is(err, attemptBooking.ErrInvalidDate):
			h.logger.Warn("POST /reservations - Invalid booking date: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidBookingDate)

		case errors.Is(err, attemptBooking.ErrTooLateToBook):
			h.logger.Warn("POST /reservations - Too late to book: user_id=%d", userID)
			handlers.RespondBadRequest(w, msgTooLateToBook)

		case errors.Is(err, attemptBooking.ErrInvalidTimeSlot):
			h.logger.Warn("POST /reservations - Invalid time slot: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidTimeSlot)

		case domain.IsPricingError(err):
			h.logger.Error("POST /reservations - Pricing error: user_id=%d, error=%v", userID, err)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgPricingError)

		case errors.Is(err, domain.ErrConfiguration):
			h.logger.Error("POST /reservations - Facility misconfigured: user_id=%d, error=%v", userID, err)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgNotConfigured)

		default:
			h.logger.Error("POST /reservations - Failed to hold slot: user_id=%d, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /reservations - Slot held: reservation_id=%d, user_id=%d, court_id=%d, expires_at=%s",
		result.ID, userID, result.CourtID, result.ExpiresAt)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
