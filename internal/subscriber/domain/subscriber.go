package domain

import "time"

// Subscriber is a user's opt-in to the emailed report.
type Subscriber struct {
	ID        string
	UserID    string
	Email     string
	Name      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
