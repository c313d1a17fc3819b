package domain

import "time"

// Facility is the read model of a facility owned by the facility directory.
type Facility struct {
	ID         int64
	Name       string
	Timezone   string
	Courts     []Court
	ManagerIDs []int64
}

// Court is a bookable unit of a facility.
type Court struct {
	ID       int64
	Name     string
	SportIDs []int64
	IsActive bool
}

// Location returns the facility time zone, UTC when unknown.
func (f *Facility) Location() *time.Location {
	if f.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(f.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsManager reports whether the user manages the facility.
func (f *Facility) IsManager(userID int64) bool {
	for _, id := range f.ManagerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// CourtsForSport returns active courts that host the sport, in directory order.
func (f *Facility) CourtsForSport(sportID int64) []Court {
	courts := make([]Court, 0, len(f.Courts))
	for _, c := range f.Courts {
		if c.IsActive && c.HostsSport(sportID) {
			courts = append(courts, c)
		}
	}
	return courts
}

// OffersSport reports whether any active court hosts the sport.
func (f *Facility) OffersSport(sportID int64) bool {
	return len(f.CourtsForSport(sportID)) > 0
}

// FindCourt returns the court with the id.
func (f *Facility) FindCourt(courtID int64) (Court, bool) {
	for _, c := range f.Courts {
		if c.ID == courtID {
			return c, true
		}
	}
	return Court{}, false
}

// HostsSport reports whether the court can be booked for the sport.
func (c Court) HostsSport(sportID int64) bool {
	for _, id := range c.SportIDs {
		if id == sportID {
			return true
		}
	}
	return false
}
