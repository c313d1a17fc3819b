package get_merged_availability

import (
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/service/availability/models"
)

// MergedAvailabilityRequest HTTP request model
type MergedAvailabilityRequest struct {
	Date       string             `json:"date"` // YYYY-MM-DD
	Candidates []CandidateRequest `json:"candidates"`
}

// CandidateRequest площадка и вид спорта
type CandidateRequest struct {
	FacilityID int64 `json:"facilityId"`
	SportID    int64 `json:"sportId"`
}

// ToServiceRequest парсит дату и собирает кандидатов
func (r *MergedAvailabilityRequest) ToServiceRequest() (time.Time, []models.Candidate, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return time.Time{}, nil, err
	}

	candidates := make([]models.Candidate, 0, len(r.Candidates))
	for _, c := range r.Candidates {
		candidates = append(candidates, models.Candidate{FacilityID: c.FacilityID, SportID: c.SportID})
	}
	return date, candidates, nil
}

// MergedAvailabilityResponse HTTP response model
type MergedAvailabilityResponse struct {
	Date                string               `json:"date"`
	SlotDurationMinutes int                  `json:"slotDurationMinutes"`
	Slots               []MergedSlotResponse `json:"slots"`
}

// MergedSlotResponse слот и площадки, где он свободен
type MergedSlotResponse struct {
	StartTime string                 `json:"startTime"`
	EndTime   string                 `json:"endTime"`
	Sources   []MergedSourceResponse `json:"sources"`
}

type MergedSourceResponse struct {
	FacilityID   int64                        `json:"facilityId"`
	SportID      int64                        `json:"sportId"`
	FreeCourts   []handlers.FreeCourtResponse `json:"freeCourts"`
	Quote        *handlers.QuoteResponse      `json:"quote,omitempty"`
	PricingError string                       `json:"pricingError,omitempty"`
}

// FromServiceResponse конвертирует ответ сервиса в HTTP response
func FromServiceResponse(resp *models.MergedAvailability) *MergedAvailabilityResponse {
	slots := make([]MergedSlotResponse, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		sources := make([]MergedSourceResponse, 0, len(s.Sources))
		for _, src := range s.Sources {
			sources = append(sources, MergedSourceResponse{
				FacilityID:   src.FacilityID,
				SportID:      src.SportID,
				FreeCourts:   handlers.FromDomainFreeCourts(src.FreeCourts),
				Quote:        handlers.FromDomainQuote(src.Quote),
				PricingError: src.PricingError,
			})
		}
		slots = append(slots, MergedSlotResponse{
			StartTime: s.Slot.Start.String(),
			EndTime:   s.Slot.End.String(),
			Sources:   sources,
		})
	}

	return &MergedAvailabilityResponse{
		Date:                resp.Date.Format(domain.DateFormat),
		SlotDurationMinutes: resp.SlotDurationMinutes,
		Slots:               slots,
	}
}
