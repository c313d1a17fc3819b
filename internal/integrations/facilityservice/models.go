package facilityservice

import "github.com/m04kA/SMC-CourtBooking/internal/domain"

// Facility модель площадки из справочника площадок
type Facility struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Timezone   string  `json:"timezone"`
	Courts     []Court `json:"courts"`
	ManagerIDs []int64 `json:"manager_ids"`
}

// Court модель корта
type Court struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	SportIDs []int64 `json:"sport_ids"`
	IsActive bool    `json:"is_active"`
}

// ErrorResponse модель ошибки от справочника площадок
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (f *Facility) toDomain() *domain.Facility {
	courts := make([]domain.Court, 0, len(f.Courts))
	for _, c := range f.Courts {
		courts = append(courts, domain.Court{
			ID:       c.ID,
			Name:     c.Name,
			SportIDs: c.SportIDs,
			IsActive: c.IsActive,
		})
	}
	return &domain.Facility{
		ID:         f.ID,
		Name:       f.Name,
		Timezone:   f.Timezone,
		Courts:     courts,
		ManagerIDs: f.ManagerIDs,
	}
}
