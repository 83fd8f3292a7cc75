package domain

// User is the domain model for an account that owns subscriptions.
type User struct {
	ID    int64
	Name  string
	Email string
}
