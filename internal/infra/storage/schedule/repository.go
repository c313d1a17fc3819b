package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtBooking/pkg/psqlbuilder"
	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

// Repository чтение расписания площадки: недельный шаблон, блокировки и регулярные брони
type Repository struct {
	db DBExecutor
}

func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetWeeklyTemplate получает недельный шаблон площадки
// Дни, которых нет в таблице, считаются выходными
func (r *Repository) GetWeeklyTemplate(ctx context.Context, facilityID int64) (*domain.WeeklyTemplate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"weekday",
		"is_open",
		"open_time",
		"close_time",
		"updated_at",
	).
		From("weekly_templates").
		Where(squirrel.Eq{"facility_id": facilityID}).
		OrderBy("weekday ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetWeeklyTemplate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetWeeklyTemplate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	template := &domain.WeeklyTemplate{
		FacilityID: facilityID,
		Days:       make(map[time.Weekday]domain.DaySchedule, 7),
	}

	for rows.Next() {
		var (
			weekday   int
			day       domain.DaySchedule
			updatedAt sql.NullTime
		)
		if err := rows.Scan(&weekday, &day.IsOpen, &day.OpenTime, &day.CloseTime, &updatedAt); err != nil {
			return nil, fmt.Errorf("%w: GetWeeklyTemplate - scan row: %v", ErrScanRow, err)
		}
		template.Days[time.Weekday(weekday)] = day
		if updatedAt.Time.After(template.UpdatedAt) {
			template.UpdatedAt = updatedAt.Time
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetWeeklyTemplate - rows error: %v", ErrScanRow, err)
	}

	if len(template.Days) == 0 {
		return nil, ErrTemplateNotFound
	}

	return template, nil
}

// ListBlackouts получает блокировки площадки на дату (и на всю площадку, и на отдельные корты)
func (r *Repository) ListBlackouts(ctx context.Context, facilityID int64, date time.Time) ([]*domain.BlackoutRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"facility_id",
		"blackout_date",
		"court_id",
		"reason",
		"created_at",
	).
		From("blackout_rules").
		Where(squirrel.Eq{"facility_id": facilityID}).
		Where(squirrel.Eq{"blackout_date": date.Format(domain.DateFormat)}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListBlackouts - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListBlackouts - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	blackouts := make([]*domain.BlackoutRule, 0)
	for rows.Next() {
		var b domain.BlackoutRule
		var createdAt sql.NullTime
		if err := rows.Scan(&b.ID, &b.FacilityID, &b.Date, &b.CourtID, &b.Reason, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: ListBlackouts - scan row: %v", ErrScanRow, err)
		}
		b.Date = domain.DateOnly(b.Date)
		b.CreatedAt = createdAt.Time
		blackouts = append(blackouts, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListBlackouts - rows error: %v", ErrScanRow, err)
	}

	return blackouts, nil
}

// ListRecurring получает активные регулярные брони площадки на день недели
// courtID != nil сужает выборку до одного корта
func (r *Repository) ListRecurring(ctx context.Context, facilityID int64, weekday time.Weekday, courtID *int64) ([]*domain.RecurringReservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"facility_id",
		"sport_id",
		"court_id",
		"weekday",
		"start_time",
		"end_time",
		"rate_id",
		"owner_id",
		"is_active",
		"created_at",
		"updated_at",
	).
		From("recurring_reservations").
		Where(squirrel.Eq{"facility_id": facilityID}).
		Where(squirrel.Eq{"weekday": int(weekday)}).
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("court_id ASC, start_time ASC")

	if courtID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"court_id": *courtID})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListRecurring - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListRecurring - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	recurring := make([]*domain.RecurringReservation, 0)
	for rows.Next() {
		var (
			rr                   domain.RecurringReservation
			day                  int
			start, end           types.TimeString
			createdAt, updatedAt sql.NullTime
		)
		err := rows.Scan(
			&rr.ID,
			&rr.FacilityID,
			&rr.SportID,
			&rr.CourtID,
			&day,
			&start,
			&end,
			&rr.RateID,
			&rr.OwnerID,
			&rr.IsActive,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListRecurring - scan row: %v", ErrScanRow, err)
		}
		rr.Weekday = time.Weekday(day)
		rr.StartTime = start
		rr.EndTime = end
		rr.CreatedAt = createdAt.Time
		rr.UpdatedAt = updatedAt.Time
		recurring = append(recurring, &rr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListRecurring - rows error: %v", ErrScanRow, err)
	}

	return recurring, nil
}
