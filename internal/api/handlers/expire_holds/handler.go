package expire_holds

import (
	"net/http"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/api/handlers"
)

// ExpireHoldsResponse HTTP response model
type ExpireHoldsResponse struct {
	Expired int       `json:"expired"`
	SweptAt time.Time `json:"sweptAt"`
}

type Handler struct {
	useCase ExpireHoldsUseCase
	clock   TimeProvider
	logger  Logger
}

func NewHandler(useCase ExpireHoldsUseCase, clock TimeProvider, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		clock:   clock,
		logger:  logger,
	}
}

// Handle POST /api/v1/admin/holds/expire
// Ручной запуск той же очистки, что выполняет планировщик
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	now := h.clock.Now()

	expired, err := h.useCase.Execute(r.Context(), now)
	if err != nil {
		h.logger.Error("POST /admin/holds/expire - Failed to expire holds: error=%v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /admin/holds/expire - Holds expired: count=%d", expired)
	handlers.RespondJSON(w, http.StatusOK, ExpireHoldsResponse{Expired: expired, SweptAt: now})
}
