package dto

import (
	"fmt"
	"time"

	"github.com/spec-kit/subscription-service/internal/domain"
)

// UserFromDomain builds the wire form of a user.
func UserFromDomain(user *domain.User) UserResponse {
	return UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}

// SubscriptionFromDomain formats dates as YYYY-MM-DD.
func SubscriptionFromDomain(sub *domain.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:          sub.ID,
		UserID:      sub.UserID,
		ServiceName: sub.ServiceName,
		StartDate:   sub.StartDate.Format(domain.DateLayout),
		EndDate:     sub.EndDate.Format(domain.DateLayout),
		Active:      sub.Active,
	}
}

// SubscriptionsFromDomain never returns nil so empty lists encode as [].
func SubscriptionsFromDomain(subs []domain.Subscription) []SubscriptionResponse {
	items := make([]SubscriptionResponse, 0, len(subs))
	for i := range subs {
		items = append(items, SubscriptionFromDomain(&subs[i]))
	}
	return items
}

// ToDomain converts a validated request. Active defaults to true when omitted.
func (r SubscriptionRequest) ToDomain() (domain.Subscription, error) {
	start, err := time.Parse(domain.DateLayout, r.StartDate)
	if err != nil {
		return domain.Subscription{}, fmt.Errorf("startDate: %w", err)
	}
	end, err := time.Parse(domain.DateLayout, r.EndDate)
	if err != nil {
		return domain.Subscription{}, fmt.Errorf("endDate: %w", err)
	}

	active := true
	if r.Active != nil {
		active = *r.Active
	}
	var serviceName string
	if r.ServiceName != nil {
		serviceName = *r.ServiceName
	}

	return domain.Subscription{
		ServiceName: serviceName,
		StartDate:   start,
		EndDate:     end,
		Active:      active,
	}, nil
}
