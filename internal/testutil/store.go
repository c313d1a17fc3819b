package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/booking"
)

// ReservationStore хранилище броней в памяти с гарантиями таблицы reservations:
// одна активная бронь на (корт, дата, начало), одно вхождение регулярной брони на дату
// и условные переходы статусов. Ошибки те же, что у booking.Repository.
type ReservationStore struct {
	mu        sync.Mutex
	nextID    int64
	rows      map[int64]*domain.Reservation
	recurring []recurringEntry
}

type recurringEntry struct {
	rr      domain.RecurringReservation
	price   int64
	deposit int64
}

func NewReservationStore() *ReservationStore {
	return &ReservationStore{rows: make(map[int64]*domain.Reservation)}
}

// AddRecurring регистрирует регулярную бронь для MaterializeRecurring
func (s *ReservationStore) AddRecurring(rr *domain.RecurringReservation, price, deposit int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recurring = append(s.recurring, recurringEntry{rr: *rr, price: price, deposit: deposit})
}

// Snapshot копия строки для проверок в тестах, nil если строки нет
func (s *ReservationStore) Snapshot(id int64) *domain.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return nil
	}
	return clone(row)
}

// CountByStatus число строк в статусе
func (s *ReservationStore) CountByStatus(status domain.ReservationStatus) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, row := range s.rows {
		if row.Status == status {
			n++
		}
	}
	return n
}

func (s *ReservationStore) Create(_ context.Context, reservation *domain.Reservation) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUniqueLocked(reservation); err != nil {
		return nil, err
	}

	s.nextID++
	now := time.Now()
	reservation.ID = s.nextID
	reservation.Date = domain.DateOnly(reservation.Date)
	reservation.CreatedAt = now
	reservation.UpdatedAt = now
	s.rows[reservation.ID] = clone(reservation)

	return clone(reservation), nil
}

func (s *ReservationStore) GetByID(_ context.Context, id int64) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return nil, bookingRepo.ErrReservationNotFound
	}
	return clone(row), nil
}

func (s *ReservationStore) List(_ context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*domain.Reservation, 0)
	for _, row := range s.rows {
		if row.FacilityID != filter.FacilityID || !domain.SameDate(row.Date, filter.Date) {
			continue
		}
		if len(filter.CourtIDs) > 0 && !containsID(filter.CourtIDs, row.CourtID) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, row.Status) {
			continue
		}
		result = append(result, clone(row))
	}
	sortByCourtAndStart(result)
	return result, nil
}

func (s *ReservationStore) ListByCustomer(_ context.Context, customerID int64, status *domain.ReservationStatus) ([]*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*domain.Reservation, 0)
	for _, row := range s.rows {
		if row.CustomerID != customerID {
			continue
		}
		if status != nil && row.Status != *status {
			continue
		}
		result = append(result, clone(row))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].StartTime.IsAfter(result[j].StartTime)
	})
	return result, nil
}

func (s *ReservationStore) ListActiveOverlapping(_ context.Context, courtID int64, date time.Time, slot domain.Slot) ([]*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*domain.Reservation, 0)
	for _, row := range s.rows {
		if row.CourtID == courtID && domain.SameDate(row.Date, date) && row.IsActive() && row.Overlaps(slot.Start, slot.End) {
			result = append(result, clone(row))
		}
	}
	sortByCourtAndStart(result)
	return result, nil
}

func (s *ReservationStore) MaterializeRecurring(_ context.Context, courtID int64, date time.Time, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var created int64
	for _, entry := range s.recurring {
		rr := entry.rr
		if rr.CourtID != courtID || !rr.OccursOn(date) {
			continue
		}
		originID := rr.ID
		confirmedAt := now
		occurrence := &domain.Reservation{
			FacilityID:        rr.FacilityID,
			SportID:           rr.SportID,
			CourtID:           rr.CourtID,
			CustomerID:        rr.OwnerID,
			Date:              domain.DateOnly(date),
			StartTime:         rr.StartTime,
			EndTime:           rr.EndTime,
			Status:            domain.StatusConfirmed,
			Price:             entry.price,
			DepositAmount:     entry.deposit,
			OriginRecurringID: &originID,
			ConfirmedAt:       &confirmedAt,
		}
		// ON CONFLICT DO NOTHING
		if s.checkUniqueLocked(occurrence) != nil {
			continue
		}
		s.nextID++
		occurrence.ID = s.nextID
		occurrence.CreatedAt = now
		occurrence.UpdatedAt = now
		s.rows[occurrence.ID] = occurrence
		created++
	}
	return created, nil
}

func (s *ReservationStore) Confirm(_ context.Context, id int64, paymentRef *string, now time.Time) (*domain.Reservation, error) {
	return s.transition("Confirm", id, []domain.ReservationStatus{domain.StatusPending}, func(row *domain.Reservation) {
		row.Status = domain.StatusConfirmed
		row.PaymentRef = paymentRef
		row.ExpiresAt = nil
		row.ConfirmedAt = &now
	}, now)
}

func (s *ReservationStore) Cancel(_ context.Context, id int64, from []domain.ReservationStatus, actor domain.Actor, reason *string, now time.Time) (*domain.Reservation, error) {
	return s.transition("Cancel", id, from, func(row *domain.Reservation) {
		row.Status = domain.StatusCancelled
		row.CancelledBy = &actor
		row.CancellationReason = reason
		row.CancelledAt = &now
		row.ExpiresAt = nil
	}, now)
}

func (s *ReservationStore) Complete(_ context.Context, id int64, now time.Time) (*domain.Reservation, error) {
	return s.transition("Complete", id, []domain.ReservationStatus{domain.StatusConfirmed}, func(row *domain.Reservation) {
		row.Status = domain.StatusCompleted
		row.CompletedAt = &now
	}, now)
}

func (s *ReservationStore) ExpirePending(_ context.Context, now time.Time) ([]*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*domain.Reservation, 0)
	for _, row := range s.rows {
		if !row.IsHoldExpired(now) {
			continue
		}
		row.Status = domain.StatusExpired
		row.ExpiresAt = nil
		row.UpdatedAt = now
		result = append(result, clone(row))
	}
	sortByCourtAndStart(result)
	return result, nil
}

func (s *ReservationStore) transition(
	op string,
	id int64,
	from []domain.ReservationStatus,
	apply func(row *domain.Reservation),
	now time.Time,
) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[id]
	if !ok || !containsStatus(from, row.Status) {
		return nil, fmt.Errorf("%w: %s", bookingRepo.ErrStatusConflict, op)
	}
	apply(row)
	row.UpdatedAt = now
	return clone(row), nil
}

func (s *ReservationStore) checkUniqueLocked(r *domain.Reservation) error {
	for _, row := range s.rows {
		if !domain.SameDate(row.Date, r.Date) {
			continue
		}
		if r.IsActive() && row.IsActive() && row.CourtID == r.CourtID && row.StartTime.Equal(r.StartTime) {
			return fmt.Errorf("%w: Create - court %d %s %s", bookingRepo.ErrSlotTaken,
				r.CourtID, r.Date.Format(domain.DateFormat), r.StartTime)
		}
		if r.OriginRecurringID != nil && row.OriginRecurringID != nil && *row.OriginRecurringID == *r.OriginRecurringID {
			return fmt.Errorf("%w: Create - recurring %d already materialized", bookingRepo.ErrSlotTaken, *r.OriginRecurringID)
		}
	}
	return nil
}

func clone(r *domain.Reservation) *domain.Reservation {
	c := *r
	return &c
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func containsStatus(statuses []domain.ReservationStatus, status domain.ReservationStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func sortByCourtAndStart(rows []*domain.Reservation) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CourtID != rows[j].CourtID {
			return rows[i].CourtID < rows[j].CourtID
		}
		if !rows[i].StartTime.Equal(rows[j].StartTime) {
			return rows[i].StartTime.IsBefore(rows[j].StartTime)
		}
		return rows[i].ID < rows[j].ID
	})
}
