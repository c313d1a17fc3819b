package config

import "errors"

var (
	// ErrConfigNotFound возвращается, когда конфигурация уровня не найдена
	ErrConfigNotFound = errors.New("config not found")

	// ErrFacilityNotFound возвращается, когда площадка не найдена
	ErrFacilityNotFound = errors.New("facility not found")

	// ErrSportNotOffered возвращается, когда площадка не предлагает вид спорта
	ErrSportNotOffered = errors.New("sport is not offered at the facility")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
