package dto

// SubscriptionRequest payload for POST /users/:id/subscriptions. ID and
// UserID are accepted for symmetry with the response and then ignored.
// ServiceName must be present but may be empty.
type SubscriptionRequest struct {
	ID          *int64  `json:"id,omitempty"`
	UserID      *int64  `json:"userId,omitempty"`
	ServiceName *string `json:"serviceName" validate:"required"`
	StartDate   string  `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate     string  `json:"endDate" validate:"required,datetime=2006-01-02"`
	Active      *bool   `json:"active"`
}

// SubscriptionResponse is the wire form of a subscription.
type SubscriptionResponse struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"userId"`
	ServiceName string `json:"serviceName"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Active      bool   `json:"active"`
}
