package shortener

import "time"

// Code is a short URL code.
type Code string

// ShortURL is the mapping between a short code and its target URL.
//
// ID is assigned by the store on the draft insert; Code stays empty until
// the second phase of the creation transaction assigns it. Once creation
// commits, both are immutable.
type ShortURL struct {
	ID          int64
	Code        Code
	OriginalURL string
	ValidSince  *time.Time
	ValidUntil  *time.Time
	MaxVisits   *int
	Tags        []string
	CreatedAt   time.Time
}
