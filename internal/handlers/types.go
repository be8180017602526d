package handlers

import "time"

// CreateShortURLRequest is the request body for creating a short URL.
type CreateShortURLRequest struct {
	Body struct {
		URL        string     `doc:"The URL to shorten"                       example:"https://example.com/very/long/path" json:"url"`
		Tags       []string   `doc:"Tags to attach to the short URL"          json:"tags,omitempty"`
		ValidSince *time.Time `doc:"Start of the validity window"             json:"validSince,omitempty"`
		ValidUntil *time.Time `doc:"End of the validity window"               json:"validUntil,omitempty"`
		CustomSlug string     `doc:"Custom alias to use instead of a derived code" json:"customSlug,omitempty"`
		MaxVisits  *int       `doc:"Visit count ceiling"                      json:"maxVisits,omitempty"`
	}
}

// CreateShortURLResponse is the response for a successfully created short URL.
type CreateShortURLResponse struct {
	Headers struct {
		Location string `doc:"The short URL location" header:"Location"`
	}
	Body struct {
		ShortCode   string `doc:"The short code"     example:"12C12"                              json:"shortCode"`
		ShortURL    string `doc:"The full short URL" example:"https://kurz.example/12C12"         json:"shortUrl"`
		OriginalURL string `doc:"The original URL"   example:"https://example.com/very/long/path" json:"originalUrl"`
	}
}

// ResolveRequest is the request for resolving a short code.
type ResolveRequest struct {
	Code string `doc:"The short code" example:"12C12" path:"code"`
}

// ResolveResponse is the full short URL record behind a code.
type ResolveResponse struct {
	Body struct {
		ShortCode   string     `json:"shortCode"`
		ShortURL    string     `json:"shortUrl"`
		OriginalURL string     `json:"originalUrl"`
		ValidSince  *time.Time `json:"validSince,omitempty"`
		ValidUntil  *time.Time `json:"validUntil,omitempty"`
		MaxVisits   *int       `json:"maxVisits,omitempty"`
		Tags        []string   `json:"tags,omitempty"`
		CreatedAt   time.Time  `json:"createdAt"`
	}
}

// RedirectRequest is the request for redirecting a short URL.
type RedirectRequest struct {
	Code string `doc:"The short code" example:"12C12" path:"code"`
}

// RedirectResponse redirects the client to the original URL.
type RedirectResponse struct {
	Status  int
	Headers struct {
		Location string `doc:"The original URL" header:"Location"`
	}
}

// ListVisitsRequest is the request for listing the visits of a short code.
type ListVisitsRequest struct {
	Code      string `doc:"The short code"                                   path:"code"`
	StartDate string `doc:"Only visits at or after this RFC 3339 timestamp" query:"startDate" required:"false"`
	EndDate   string `doc:"Only visits at or before this RFC 3339 timestamp" query:"endDate"   required:"false"`
}

// VisitRecord is one visit row in a listing response.
type VisitRecord struct {
	Referer    string         `json:"referer,omitempty"`
	VisitedAt  time.Time      `json:"date"`
	RemoteAddr string         `json:"remoteAddr"`
	UserAgent  string         `json:"userAgent"`
	Location   *VisitLocation `json:"visitLocation,omitempty"`
}

// VisitLocation is the optional geolocation of a visit.
type VisitLocation struct {
	CountryCode string  `json:"countryCode,omitempty"`
	CityName    string  `json:"cityName,omitempty"`
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`
}

// ListVisitsResponse is the ordered visit listing for a short code.
type ListVisitsResponse struct {
	Body struct {
		Visits []VisitRecord `json:"visits"`
	}
}
