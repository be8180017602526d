package visits

import "time"

// Visit is a single recorded access to a short code.
type Visit struct {
	Code       string
	Referer    string
	RemoteAddr string
	UserAgent  string
	VisitedAt  time.Time
	Location   *Location
}

// Location is the optional geolocation attached to a visit. Presentation
// layers decide whether to show or withhold it.
type Location struct {
	CountryCode string
	CityName    string
	Latitude    float64
	Longitude   float64
}

// DateRange bounds a visit query. A nil end leaves that side unbounded.
type DateRange struct {
	Since *time.Time
	Until *time.Time
}

// Contains reports whether the timestamp falls inside the range. Both
// bounds are inclusive.
func (r DateRange) Contains(t time.Time) bool {
	if r.Since != nil && t.Before(*r.Since) {
		return false
	}

	if r.Until != nil && t.After(*r.Until) {
		return false
	}

	return true
}
