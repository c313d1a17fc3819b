package get_facility_reservations

import (
	"errors"
	"strconv"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/service/reservations/models"
)

var errMissingDate = errors.New("date is required")

// ToServiceRequest формирует запрос к сервису из query параметров
func ToServiceRequest(facilityID, userID int64, dateStr, courtIDStr, statusStr string) (*models.GetFacilityReservationsRequest, error) {
	if dateStr == "" {
		return nil, errMissingDate
	}

	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	req := &models.GetFacilityReservationsRequest{
		UserID:     userID,
		FacilityID: facilityID,
		Date:       date,
	}

	// Парсим courtId если указан
	if courtIDStr != "" {
		courtID, err := strconv.ParseInt(courtIDStr, 10, 64)
		if err != nil {
			return nil, err
		}
		req.CourtID = &courtID
	}

	if statusStr != "" {
		req.Status = &statusStr
	}

	return req, nil
}
