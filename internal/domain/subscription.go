package domain

import "time"

// Subscription is a service subscription owned by exactly one user. Only the
// owner's id is held; listing a user's subscriptions is a query.
type Subscription struct {
	ID          int64
	UserID      int64
	ServiceName string
	StartDate   time.Time
	EndDate     time.Time
	Active      bool
}

// DateLayout is the calendar-date format used on the wire and in events.
const DateLayout = "2006-01-02"
