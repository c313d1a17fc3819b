package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtBooking/pkg/psqlbuilder"
)

const tableReservations = "reservations"

var reservationColumns = []string{
	"id",
	"facility_id",
	"sport_id",
	"court_id",
	"customer_id",
	"booking_date",
	"start_time",
	"end_time",
	"status",
	"price",
	"deposit_amount",
	"applied_promotion_id",
	"gift_item",
	"expires_at",
	"payment_ref",
	"origin_recurring_id",
	"cancelled_by",
	"cancellation_reason",
	"cancelled_at",
	"confirmed_at",
	"completed_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий броней кортов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория броней
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create вставляет новую бронь
// Если в контексте передана активная транзакция (через context.Value), использует её.
//
// Уникальный индекс по (court_id, booking_date, start_time) среди активных статусов
// гарантирует, что из параллельных вставок на один слот пройдёт ровно одна,
// остальные получат ErrSlotTaken.
func (r *Repository) Create(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableReservations).
		Columns(
			"facility_id",
			"sport_id",
			"court_id",
			"customer_id",
			"booking_date",
			"start_time",
			"end_time",
			"status",
			"price",
			"deposit_amount",
			"applied_promotion_id",
			"gift_item",
			"expires_at",
			"origin_recurring_id",
		).
		Values(
			reservation.FacilityID,
			reservation.SportID,
			reservation.CourtID,
			reservation.CustomerID,
			dateParam(reservation.Date),
			reservation.StartTime,
			reservation.EndTime,
			reservation.Status,
			reservation.Price,
			reservation.DepositAmount,
			reservation.AppliedPromotionID,
			reservation.GiftItem,
			reservation.ExpiresAt,
			reservation.OriginRecurringID,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&reservation.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if known := classify(err); known != nil {
			return nil, fmt.Errorf("%w: Create - court %d %s %s", known, reservation.CourtID,
				reservation.Date.Format(domain.DateFormat), reservation.StartTime)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	reservation.CreatedAt = createdAt.Time
	reservation.UpdatedAt = updatedAt.Time

	return reservation, nil
}

// GetByID получает бронь по ID
// Внутри транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From(tableReservations).
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	reservation, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan reservation: %v", ErrScanRow, err)
	}

	return reservation, nil
}

// List получает брони площадки на дату
// Пустые CourtIDs и Statuses означают все корты и все статусы.
// Неактивные статусы нужны чтению доступности: по ним видно уже материализованные регулярные брони.
func (r *Repository) List(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From(tableReservations).
		Where(squirrel.Eq{"facility_id": filter.FacilityID}).
		Where(squirrel.Eq{"booking_date": dateParam(filter.Date)})

	if len(filter.CourtIDs) > 0 {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"court_id": filter.CourtIDs})
	}
	if len(filter.Statuses) > 0 {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": statusStrings(filter.Statuses)})
	}

	query, args, err := selectBuilder.OrderBy("court_id ASC, start_time ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanReservations(rows)
}

// ListByCustomer получает брони клиента, новые первыми
// Опционально фильтрует по статусу
func (r *Repository) ListByCustomer(ctx context.Context, customerID int64, status *domain.ReservationStatus) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From(tableReservations).
		Where(squirrel.Eq{"customer_id": customerID}).
		OrderBy("booking_date DESC, start_time DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByCustomer - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByCustomer - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanReservations(rows)
}

// ListActiveOverlapping получает активные брони корта, пересекающие [start, end)
// Внутри транзакции строки блокируются (FOR UPDATE)
func (r *Repository) ListActiveOverlapping(ctx context.Context, courtID int64, date time.Time, slot domain.Slot) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := overlappingQuery(courtID, date, slot, dbmetrics.IsInTransaction(ctx)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveOverlapping - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		if known := classify(err); known != nil {
			return nil, fmt.Errorf("%w: ListActiveOverlapping: %v", known, err)
		}
		return nil, fmt.Errorf("%w: ListActiveOverlapping - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanReservations(rows)
}

// MaterializeRecurring создаёт строки CONFIRMED для регулярных броней корта на дату
// Цена берётся из тарифа регулярной брони. Уже материализованные вхождения
// (в любом статусе) пропускаются через ON CONFLICT DO NOTHING.
// Возвращает число созданных строк.
func (r *Repository) MaterializeRecurring(ctx context.Context, courtID int64, date time.Time, now time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	day := domain.DateOnly(date)
	dayParam := dateParam(day)

	// вложенный select собирается с плейсхолдерами "?", нумерацию $n делает внешний insert
	occurrences := squirrel.Select().
		Column("rr.facility_id").
		Column("rr.sport_id").
		Column("rr.court_id").
		Column("rr.owner_id").
		Column(squirrel.Expr("?::date", dayParam)).
		Column("rr.start_time").
		Column("rr.end_time").
		Column(squirrel.Expr("?", string(domain.StatusConfirmed))).
		Column("rt.price").
		Column("rt.deposit_amount").
		Column("rr.id").
		Column(squirrel.Expr("?::timestamptz", now)).
		From("recurring_reservations rr").
		Join("rate_rules rt ON rt.id = rr.rate_id").
		Where(squirrel.Eq{"rr.court_id": courtID}).
		Where(squirrel.Eq{"rr.weekday": int(day.Weekday())}).
		Where(squirrel.Eq{"rr.is_active": true}).
		Where(squirrel.Expr(
			"NOT EXISTS (SELECT 1 FROM reservations x WHERE x.origin_recurring_id = rr.id AND x.booking_date = ?::date)", dayParam,
		))

	query, args, err := psqlbuilder.Insert(tableReservations).
		Columns(
			"facility_id",
			"sport_id",
			"court_id",
			"customer_id",
			"booking_date",
			"start_time",
			"end_time",
			"status",
			"price",
			"deposit_amount",
			"origin_recurring_id",
			"confirmed_at",
		).
		Select(occurrences).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: MaterializeRecurring - build insert query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if known := classify(err); known != nil {
			return 0, fmt.Errorf("%w: MaterializeRecurring: %v", known, err)
		}
		return 0, fmt.Errorf("%w: MaterializeRecurring - execute insert: %v", ErrExecQuery, err)
	}

	created, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: MaterializeRecurring - get rows affected: %v", ErrExecQuery, err)
	}

	return created, nil
}

// Confirm переводит PENDING -> CONFIRMED
// Условное обновление: если строка уже не в PENDING, возвращает ErrStatusConflict
func (r *Repository) Confirm(ctx context.Context, id int64, paymentRef *string, now time.Time) (*domain.Reservation, error) {
	update := psqlbuilder.Update(tableReservations).
		Set("status", domain.StatusConfirmed).
		Set("payment_ref", paymentRef).
		Set("expires_at", nil).
		Set("confirmed_at", now).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": string(domain.StatusPending)})

	return r.transition(ctx, "Confirm", update)
}

// Cancel переводит бронь из одного из статусов from в CANCELLED
// Обычно from = ActiveStatuses; для неоплаченного удержания только PENDING
func (r *Repository) Cancel(ctx context.Context, id int64, from []domain.ReservationStatus, actor domain.Actor, reason *string, now time.Time) (*domain.Reservation, error) {
	return r.transition(ctx, "Cancel", cancelQuery(id, from, actor, reason, now))
}

// overlappingQuery активные брони корта, пересекающие слот; forUpdate - блокировка строк в транзакции
func overlappingQuery(courtID int64, date time.Time, slot domain.Slot, forUpdate bool) squirrel.SelectBuilder {
	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From(tableReservations).
		Where(squirrel.Eq{"court_id": courtID}).
		Where(squirrel.Eq{"booking_date": dateParam(date)}).
		Where(squirrel.Eq{"status": statusStrings(domain.ActiveStatuses)}).
		Where(squirrel.Lt{"start_time": slot.End}).
		Where(squirrel.Gt{"end_time": slot.Start}).
		OrderBy("start_time ASC")

	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}
	return selectBuilder
}

// cancelQuery условное обновление: строка меняется, только пока её статус входит в from
func cancelQuery(id int64, from []domain.ReservationStatus, actor domain.Actor, reason *string, now time.Time) squirrel.UpdateBuilder {
	return psqlbuilder.Update(tableReservations).
		Set("status", domain.StatusCancelled).
		Set("cancelled_by", actor).
		Set("cancellation_reason", reason).
		Set("cancelled_at", now).
		Set("expires_at", nil).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": statusStrings(from)})
}

// Complete переводит CONFIRMED -> COMPLETED
func (r *Repository) Complete(ctx context.Context, id int64, now time.Time) (*domain.Reservation, error) {
	update := psqlbuilder.Update(tableReservations).
		Set("status", domain.StatusCompleted).
		Set("completed_at", now).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": string(domain.StatusConfirmed)})

	return r.transition(ctx, "Complete", update)
}

// ExpirePending переводит в EXPIRED все PENDING с истёкшим expires_at
// Возвращает освобождённые брони. Гонка с Confirm решается условием status = 'pending':
// строку, подтверждённую раньше, запрос уже не увидит.
func (r *Repository) ExpirePending(ctx context.Context, now time.Time) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableReservations).
		Set("status", domain.StatusExpired).
		Set("expires_at", nil).
		Set("updated_at", now).
		Where(squirrel.Eq{"status": string(domain.StatusPending)}).
		Where(squirrel.Lt{"expires_at": now}).
		Suffix("RETURNING " + joinColumns()).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ExpirePending - build update query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ExpirePending - execute update: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanReservations(rows)
}

func (r *Repository) transition(ctx context.Context, op string, update squirrel.UpdateBuilder) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := update.Suffix("RETURNING " + joinColumns()).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	reservation, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrStatusConflict, op)
	}
	if err != nil {
		if known := classify(err); known != nil {
			return nil, fmt.Errorf("%w: %s: %v", known, op, err)
		}
		return nil, fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	return reservation, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var reservation domain.Reservation
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&reservation.ID,
		&reservation.FacilityID,
		&reservation.SportID,
		&reservation.CourtID,
		&reservation.CustomerID,
		&reservation.Date,
		&reservation.StartTime,
		&reservation.EndTime,
		&reservation.Status,
		&reservation.Price,
		&reservation.DepositAmount,
		&reservation.AppliedPromotionID,
		&reservation.GiftItem,
		&reservation.ExpiresAt,
		&reservation.PaymentRef,
		&reservation.OriginRecurringID,
		&reservation.CancelledBy,
		&reservation.CancellationReason,
		&reservation.CancelledAt,
		&reservation.ConfirmedAt,
		&reservation.CompletedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	reservation.Date = domain.DateOnly(reservation.Date)
	reservation.CreatedAt = createdAt.Time
	reservation.UpdatedAt = updatedAt.Time

	return &reservation, nil
}

// scanReservations сканирует результаты запроса в слайс броней
func (r *Repository) scanReservations(rows *sql.Rows) ([]*domain.Reservation, error) {
	reservations := make([]*domain.Reservation, 0)

	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanReservations - scan row: %v", ErrScanRow, err)
		}
		reservations = append(reservations, reservation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanReservations - rows error: %v", ErrScanRow, err)
	}

	return reservations, nil
}

func joinColumns() string {
	return strings.Join(reservationColumns, ", ")
}

// dateParam передаёт дату строкой: DATE не зависит от часового пояса сессии
func dateParam(t time.Time) string {
	return t.Format(domain.DateFormat)
}

func statusStrings(statuses []domain.ReservationStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
