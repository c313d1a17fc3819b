package booking

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrReservationNotFound возвращается, когда бронь не найдена
	ErrReservationNotFound = errors.New("booking.repository: reservation not found")

	// ErrSlotTaken нарушен уникальный индекс активной брони (корт, дата, начало)
	ErrSlotTaken = errors.New("booking.repository: slot already taken")

	// ErrSerialization конфликт сериализуемой транзакции или deadlock, запрос можно повторить
	ErrSerialization = errors.New("booking.repository: serialization failure")

	// ErrStatusConflict условное обновление не нашло строку в ожидаемом статусе
	ErrStatusConflict = errors.New("booking.repository: reservation status changed")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)

const (
	pqUniqueViolation      = "23505"
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

// classify переводит ошибку драйвера в ошибку репозитория
// Возвращает nil, если ошибка не относится к конкурентному доступу
func classify(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	switch pqErr.Code {
	case pqUniqueViolation:
		return ErrSlotTaken
	case pqSerializationFailure, pqDeadlockDetected:
		return ErrSerialization
	}
	return nil
}

// IsRetryable true для конфликтов сериализации, в том числе пришедших из COMMIT
// Нарушение уникальности повтором не лечится и сюда не входит
func IsRetryable(err error) bool {
	if errors.Is(err, ErrSerialization) {
		return true
	}
	return classify(err) == ErrSerialization
}

// IsUniqueViolation true, если ошибка (в том числе из COMMIT) вызвана уникальным индексом
func IsUniqueViolation(err error) bool {
	if errors.Is(err, ErrSlotTaken) {
		return true
	}
	return classify(err) == ErrSlotTaken
}
