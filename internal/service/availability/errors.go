package availability

import "errors"

var (
	// ErrFacilityNotFound возвращается, когда площадки нет в справочнике
	ErrFacilityNotFound = errors.New("availability: facility not found")

	// ErrSportNotOffered возвращается, когда на площадке нет активных кортов для вида спорта
	ErrSportNotOffered = errors.New("availability: sport is not offered at the facility")

	// ErrInvalidDate возвращается, когда дата вне окна бронирования
	ErrInvalidDate = errors.New("availability: invalid date")

	// ErrSlotNotInGrid возвращается, когда интервал не совпадает ни с одним слотом сетки
	ErrSlotNotInGrid = errors.New("availability: slot is not part of the slot grid")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("availability: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("availability: internal error")
)
