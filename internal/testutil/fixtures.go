package testutil

import (
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

// Идентификаторы стандартной площадки
const (
	FacilityID int64 = 1
	SportID    int64 = 10
	CourtA     int64 = 101
	CourtB     int64 = 102
	ManagerID  int64 = 900
)

// Monday дата, на которую открыт стандартный шаблон
var Monday = time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC)

// NewFacilityCatalog площадка с двумя кортами, открытая по понедельникам 08:00-12:00,
// и единственный тариф 100.00 на все дни недели (депозит 20.00)
func NewFacilityCatalog() *Catalog {
	c := NewCatalog()
	c.Facilities[FacilityID] = &domain.Facility{
		ID:       FacilityID,
		Name:     "Center Court Club",
		Timezone: "UTC",
		Courts: []domain.Court{
			{ID: CourtA, Name: "A", SportIDs: []int64{SportID}, IsActive: true},
			{ID: CourtB, Name: "B", SportIDs: []int64{SportID}, IsActive: true},
		},
		ManagerIDs: []int64{ManagerID},
	}
	c.Templates[FacilityID] = &domain.WeeklyTemplate{
		FacilityID: FacilityID,
		Days: map[time.Weekday]domain.DaySchedule{
			time.Monday: {IsOpen: true, OpenTime: types.MustTimeString("08:00"), CloseTime: types.MustTimeString("12:00")},
		},
	}
	c.RateRules = []*domain.RateRule{
		{
			ID:            1,
			FacilityID:    FacilityID,
			SportID:       SportID,
			DaysOfWeek:    AllWeekdays(),
			StartTime:     types.MustTimeString("00:00"),
			EndTime:       types.MustTimeString("24:00"),
			Price:         10000,
			DepositAmount: 2000,
		},
	}
	return c
}

// AllWeekdays воскресенье..суббота
func AllWeekdays() []time.Weekday {
	return []time.Weekday{
		time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
		time.Thursday, time.Friday, time.Saturday,
	}
}

// Slot интервал из двух строк "HH:MM"
func Slot(start, end string) domain.Slot {
	return domain.Slot{Start: types.MustTimeString(start), End: types.MustTimeString(end)}
}
