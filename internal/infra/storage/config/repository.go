package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtBooking/pkg/psqlbuilder"
)

const tableSlotConfig = "slot_config"

var configColumns = []string{
	"id",
	"facility_id",
	"sport_id",
	"slot_duration_minutes",
	"hold_window_minutes",
	"advance_booking_days",
	"min_booking_notice_minutes",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с конфигурацией бронирования площадок
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория конфигурации
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByFacilityAndSport получает конфигурацию ровно указанного уровня
// sportID == nil - конфигурация площадки для всех видов спорта
func (r *Repository) GetByFacilityAndSport(ctx context.Context, facilityID int64, sportID *int64) (*domain.SlotConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(configColumns...).
		From(tableSlotConfig).
		Where(squirrel.Eq{"facility_id": facilityID})

	// Фильтрация по sport_id (NULL или конкретное значение)
	if sportID == nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"sport_id": nil})
	} else {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"sport_id": *sportID})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByFacilityAndSport - build select query: %v", ErrBuildQuery, err)
	}

	config, err := scanConfig(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByFacilityAndSport - scan config: %v", ErrScanRow, err)
	}

	return config, nil
}

// GetConfigWithHierarchy получает конфигурацию с учетом иерархии приоритетов
// 1. Конфигурация вида спорта на площадке (facilityID, sportID)
// 2. Конфигурация площадки (facilityID, NULL)
//
// Если конфигурация не найдена ни на одном уровне, возвращает ErrConfigNotFound
func (r *Repository) GetConfigWithHierarchy(ctx context.Context, facilityID int64, sportID *int64) (*domain.SlotConfig, error) {
	// 1. Конфигурация вида спорта
	if sportID != nil {
		config, err := r.GetByFacilityAndSport(ctx, facilityID, sportID)
		if err == nil {
			return config, nil
		}
		if !errors.Is(err, ErrConfigNotFound) {
			return nil, fmt.Errorf("%w: GetConfigWithHierarchy - level 1 (sport): %v", ErrExecQuery, err)
		}
	}

	// 2. Конфигурация площадки
	config, err := r.GetByFacilityAndSport(ctx, facilityID, nil)
	if err == nil {
		return config, nil
	}
	if !errors.Is(err, ErrConfigNotFound) {
		return nil, fmt.Errorf("%w: GetConfigWithHierarchy - level 2 (facility): %v", ErrExecQuery, err)
	}

	return nil, ErrConfigNotFound
}

// ListByFacility получает все конфигурации площадки, общая первой
func (r *Repository) ListByFacility(ctx context.Context, facilityID int64) ([]*domain.SlotConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(configColumns...).
		From(tableSlotConfig).
		Where(squirrel.Eq{"facility_id": facilityID}).
		OrderBy("sport_id ASC NULLS FIRST").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByFacility - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByFacility - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	configs := make([]*domain.SlotConfig, 0)
	for rows.Next() {
		config, err := scanConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByFacility - scan row: %v", ErrScanRow, err)
		}
		configs = append(configs, config)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByFacility - rows error: %v", ErrScanRow, err)
	}

	return configs, nil
}

// Upsert создаёт или обновляет конфигурацию уровня (facility_id, sport_id)
func (r *Repository) Upsert(ctx context.Context, config *domain.SlotConfig) (*domain.SlotConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableSlotConfig).
		Columns(
			"facility_id",
			"sport_id",
			"slot_duration_minutes",
			"hold_window_minutes",
			"advance_booking_days",
			"min_booking_notice_minutes",
		).
		Values(
			config.FacilityID,
			config.SportID,
			config.SlotDurationMinutes,
			config.HoldWindowMinutes,
			config.AdvanceBookingDays,
			config.MinBookingNoticeMinutes,
		).
		Suffix(`ON CONFLICT (facility_id, COALESCE(sport_id, 0)) DO UPDATE SET
			slot_duration_minutes = EXCLUDED.slot_duration_minutes,
			hold_window_minutes = EXCLUDED.hold_window_minutes,
			advance_booking_days = EXCLUDED.advance_booking_days,
			min_booking_notice_minutes = EXCLUDED.min_booking_notice_minutes,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&config.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}

	config.CreatedAt = createdAt.Time
	config.UpdatedAt = updatedAt.Time

	return config, nil
}

// DeleteByFacilityAndSport удаляет конфигурацию уровня, после чего действует уровень выше
func (r *Repository) DeleteByFacilityAndSport(ctx context.Context, facilityID int64, sportID *int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	deleteBuilder := psqlbuilder.Delete(tableSlotConfig).
		Where(squirrel.Eq{"facility_id": facilityID})

	if sportID == nil {
		deleteBuilder = deleteBuilder.Where(squirrel.Eq{"sport_id": nil})
	} else {
		deleteBuilder = deleteBuilder.Where(squirrel.Eq{"sport_id": *sportID})
	}

	query, args, err := deleteBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: DeleteByFacilityAndSport - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteByFacilityAndSport - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteByFacilityAndSport - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrConfigNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanConfig(row rowScanner) (*domain.SlotConfig, error) {
	var config domain.SlotConfig
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&config.ID,
		&config.FacilityID,
		&config.SportID,
		&config.SlotDurationMinutes,
		&config.HoldWindowMinutes,
		&config.AdvanceBookingDays,
		&config.MinBookingNoticeMinutes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	config.CreatedAt = createdAt.Time
	config.UpdatedAt = updatedAt.Time

	return &config, nil
}
