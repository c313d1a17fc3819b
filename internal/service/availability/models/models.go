package models

import (
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

// DailyAvailability слоты площадки и вида спорта на дату
type DailyAvailability struct {
	FacilityID          int64
	SportID             int64
	Date                time.Time
	SlotDurationMinutes int
	Slots               []domain.SlotAvailability
}

// Candidate площадка и вид спорта для объединённой выдачи
type Candidate struct {
	FacilityID int64
	SportID    int64
}

// MergedAvailability объединённая доступность нескольких площадок
type MergedAvailability struct {
	Date                time.Time
	SlotDurationMinutes int
	Slots               []MergedSlot
}

// MergedSlot слот и площадки, которые могут его обслужить
// Sources пуст, если слот занят везде
type MergedSlot struct {
	Slot    domain.Slot
	Sources []MergedSource
}

// MergedSource свободные корты одной площадки в слоте и их цены
type MergedSource struct {
	FacilityID   int64
	SportID      int64
	FreeCourts   []domain.FreeCourt
	Quote        *domain.Quote
	PricingError string
}
