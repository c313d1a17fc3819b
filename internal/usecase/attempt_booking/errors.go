package attempt_booking

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

var (
	// ErrFacilityNotFound возвращается, когда площадка не найдена
	ErrFacilityNotFound = errors.New("attempt_booking: facility not found")

	// ErrCourtNotFound возвращается, когда корт не найден или выключен
	ErrCourtNotFound = errors.New("attempt_booking: court not found")

	// ErrSportNotOffered возвращается, когда корт не принимает выбранный вид спорта
	ErrSportNotOffered = errors.New("attempt_booking: sport is not offered on this court")

	// ErrInvalidDate возвращается, когда дата вне окна бронирования
	ErrInvalidDate = errors.New("attempt_booking: invalid booking date")

	// ErrTooLateToBook возвращается, когда попытка забронировать слот нарушает minBookingNoticeMinutes
	ErrTooLateToBook = errors.New("attempt_booking: too late to book this slot")

	// ErrInvalidTimeSlot возвращается, когда слот не входит в сетку дня
	ErrInvalidTimeSlot = errors.New("attempt_booking: invalid time slot")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("attempt_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("attempt_booking: internal error")
)

// SlotTakenError слот занят другой бронью, блокировкой или постоянной бронью
// Availability - свежая доступность слота, nil если её не удалось получить
type SlotTakenError struct {
	CourtID      int64
	Date         string
	Slot         domain.Slot
	Availability *domain.SlotAvailability
}

func (e *SlotTakenError) Error() string {
	return fmt.Sprintf("attempt_booking: court %d is already taken on %s at %s", e.CourtID, e.Date, e.Slot)
}

func (e *SlotTakenError) Unwrap() error {
	return domain.ErrSlotAlreadyTaken
}
