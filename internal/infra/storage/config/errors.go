package config

import "errors"

var (
	// ErrConfigNotFound нет настроек ни для площадки, ни для вида спорта
	ErrConfigNotFound = errors.New("slot_config.repository: not found")

	ErrBuildQuery = errors.New("slot_config.repository: build query")
	ErrExecQuery  = errors.New("slot_config.repository: exec query")
	ErrScanRow    = errors.New("slot_config.repository: scan row")
)
