package repository

import "context"

// Repository stores the indicators a user keeps visible on the dashboard.
type Repository interface {
	// Get returns the stored kinds, or nil when the user has no stored preference.
	Get(ctx context.Context, userID string) ([]string, error)
	Save(ctx context.Context, userID string, kinds []string) error
}
