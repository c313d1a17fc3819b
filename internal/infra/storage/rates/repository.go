package rates

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtBooking/pkg/psqlbuilder"
)

// Repository чтение тарифов и промо площадки
type Repository struct {
	db DBExecutor
}

func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// ListRateRules получает все тарифы вида спорта на площадке
// Отбор по дню недели, времени и сроку действия делает pricing.Resolver
func (r *Repository) ListRateRules(ctx context.Context, facilityID, sportID int64) ([]*domain.RateRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"facility_id",
		"sport_id",
		"days_of_week",
		"start_time",
		"end_time",
		"price",
		"deposit_amount",
		"valid_from",
		"valid_to",
		"created_at",
	).
		From("rate_rules").
		Where(squirrel.Eq{"facility_id": facilityID}).
		Where(squirrel.Eq{"sport_id": sportID}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListRateRules - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListRateRules - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	rules := make([]*domain.RateRule, 0)
	for rows.Next() {
		var (
			rule      domain.RateRule
			days      []int64
			createdAt sql.NullTime
		)
		err := rows.Scan(
			&rule.ID,
			&rule.FacilityID,
			&rule.SportID,
			pq.Array(&days),
			&rule.StartTime,
			&rule.EndTime,
			&rule.Price,
			&rule.DepositAmount,
			&rule.ValidFrom,
			&rule.ValidTo,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListRateRules - scan row: %v", ErrScanRow, err)
		}
		rule.DaysOfWeek = toWeekdays(days)
		rule.CreatedAt = createdAt.Time
		rules = append(rules, &rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListRateRules - rows error: %v", ErrScanRow, err)
	}

	return rules, nil
}

// ListActivePromotions получает активные промо площадки
func (r *Repository) ListActivePromotions(ctx context.Context, facilityID int64) ([]*domain.Promotion, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"facility_id",
		"name",
		"promo_type",
		"value",
		"gift_item",
		"days_of_week",
		"start_time",
		"end_time",
		"valid_from",
		"valid_to",
		"scope",
		"sport_id",
		"court_id",
		"is_active",
		"created_at",
	).
		From("promotions").
		Where(squirrel.Eq{"facility_id": facilityID}).
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListActivePromotions - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActivePromotions - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	promotions := make([]*domain.Promotion, 0)
	for rows.Next() {
		var (
			p         domain.Promotion
			days      []int64
			createdAt sql.NullTime
		)
		err := rows.Scan(
			&p.ID,
			&p.FacilityID,
			&p.Name,
			&p.Type,
			&p.Value,
			&p.GiftItem,
			pq.Array(&days),
			&p.StartTime,
			&p.EndTime,
			&p.ValidFrom,
			&p.ValidTo,
			&p.Scope,
			&p.SportID,
			&p.CourtID,
			&p.IsActive,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListActivePromotions - scan row: %v", ErrScanRow, err)
		}
		p.DaysOfWeek = toWeekdays(days)
		p.CreatedAt = createdAt.Time
		promotions = append(promotions, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListActivePromotions - rows error: %v", ErrScanRow, err)
	}

	return promotions, nil
}

func toWeekdays(days []int64) []time.Weekday {
	out := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		if d >= 0 && d <= 6 {
			out = append(out, time.Weekday(d))
		}
	}
	return out
}
