package visits

import "time"

// TopicVisitOccurred is the topic visit events are published on.
const TopicVisitOccurred = "visit.occurred"

// VisitOccurredEvent is emitted when a short code is followed.
type VisitOccurredEvent struct {
	Code       string    `json:"code"`
	Referer    string    `json:"referer,omitempty"`
	RemoteAddr string    `json:"remoteAddr"`
	UserAgent  string    `json:"userAgent"`
	VisitedAt  time.Time `json:"visitedAt"`
}

// ToVisit converts the event into its stored record form.
func (e *VisitOccurredEvent) ToVisit() *Visit {
	return &Visit{
		Code:       e.Code,
		Referer:    e.Referer,
		RemoteAddr: e.RemoteAddr,
		UserAgent:  e.UserAgent,
		VisitedAt:  e.VisitedAt,
	}
}
