package availability

import (
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

// Kind источник занятости. Порядок значений задаёт приоритет:
// блокировка > регулярная бронь > разовая бронь
type Kind int

const (
	KindNone Kind = iota
	KindAdHoc
	KindRecurring
	KindBlackout
)

func (k Kind) String() string {
	switch k {
	case KindAdHoc:
		return "ad_hoc"
	case KindRecurring:
		return "recurring"
	case KindBlackout:
		return "blackout"
	default:
		return "none"
	}
}

// Occupancy один факт занятости корта
// CourtID == nil означает все корты площадки, Interval == nil означает весь день
type Occupancy struct {
	Kind     Kind
	CourtID  *int64
	Interval *domain.Slot
	SourceID int64
}

func (o Occupancy) appliesTo(courtID int64, slot domain.Slot) bool {
	if o.CourtID != nil && *o.CourtID != courtID {
		return false
	}
	if o.Interval == nil {
		return true
	}
	return domain.Overlaps(o.Interval.Start, o.Interval.End, slot.Start, slot.End)
}

// Sources три источника занятости на дату
type Sources struct {
	// Reservations все брони площадки на дату в любых статусах:
	// неактивные нужны, чтобы увидеть уже материализованные регулярные брони
	Reservations []*domain.Reservation
	Recurring    []*domain.RecurringReservation
	Blackouts    []*domain.BlackoutRule
}

// CollectOccupancy приводит три источника к одному списку Occupancy
//
// Регулярная бронь не учитывается, если на эту дату уже есть строка reservations
// с origin_recurring_id на неё в любом статусе: активная строка уже учтена как разовая,
// а отменённая освобождает именно эту неделю.
func CollectOccupancy(date time.Time, src Sources) []Occupancy {
	result := make([]Occupancy, 0, len(src.Reservations)+len(src.Recurring)+len(src.Blackouts))
	materialized := make(map[int64]struct{})

	for _, r := range src.Reservations {
		if !domain.SameDate(r.Date, date) {
			continue
		}
		if r.OriginRecurringID != nil {
			materialized[*r.OriginRecurringID] = struct{}{}
		}
		if !r.IsActive() {
			continue
		}
		courtID := r.CourtID
		result = append(result, Occupancy{
			Kind:     KindAdHoc,
			CourtID:  &courtID,
			Interval: &domain.Slot{Start: r.StartTime, End: r.EndTime},
			SourceID: r.ID,
		})
	}

	for _, rr := range src.Recurring {
		if !rr.OccursOn(date) {
			continue
		}
		if _, ok := materialized[rr.ID]; ok {
			continue
		}
		courtID := rr.CourtID
		result = append(result, Occupancy{
			Kind:     KindRecurring,
			CourtID:  &courtID,
			Interval: &domain.Slot{Start: rr.StartTime, End: rr.EndTime},
			SourceID: rr.ID,
		})
	}

	for _, b := range src.Blackouts {
		if !domain.SameDate(b.Date, date) {
			continue
		}
		result = append(result, Occupancy{
			Kind:     KindBlackout,
			CourtID:  b.CourtID,
			SourceID: b.ID,
		})
	}

	return result
}

// CourtState состояние корта в слоте
type CourtState struct {
	CourtID  int64
	By       Kind // KindNone = свободен
	SourceID int64
}

func (c CourtState) IsFree() bool {
	return c.By == KindNone
}

// SlotOccupancy состояние всех кортов в одном слоте
type SlotOccupancy struct {
	Slot   domain.Slot
	Courts []CourtState
}

// FreeCourtIDs свободные корты в порядке исходного списка
func (s SlotOccupancy) FreeCourtIDs() []int64 {
	ids := make([]int64, 0, len(s.Courts))
	for _, c := range s.Courts {
		if c.IsFree() {
			ids = append(ids, c.CourtID)
		}
	}
	return ids
}

// Reduce сворачивает занятость в карту (корт, слот)
// Пара занята, если хоть один факт её покрывает; в CourtState записывается факт с наибольшим приоритетом
func Reduce(grid []domain.Slot, courtIDs []int64, occupancies []Occupancy) []SlotOccupancy {
	result := make([]SlotOccupancy, len(grid))

	for i, slot := range grid {
		courts := make([]CourtState, len(courtIDs))
		for j, courtID := range courtIDs {
			state := CourtState{CourtID: courtID}
			for _, occ := range occupancies {
				if occ.Kind > state.By && occ.appliesTo(courtID, slot) {
					state.By = occ.Kind
					state.SourceID = occ.SourceID
				}
			}
			courts[j] = state
		}
		result[i] = SlotOccupancy{Slot: slot, Courts: courts}
	}

	return result
}

// Merge полный проход: источники -> факты занятости -> карта по сетке
func Merge(grid []domain.Slot, courtIDs []int64, date time.Time, src Sources) []SlotOccupancy {
	return Reduce(grid, courtIDs, CollectOccupancy(date, src))
}
