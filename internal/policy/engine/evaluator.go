package engine

import "context"

// Actions evaluated against a record.
const (
	ActionRead   = "read"
	ActionDelete = "delete"
)

// Input is what the access policy sees for one decision.
type Input struct {
	Action    string
	SubjectID string
	OwnerID   string
}

// Evaluator decides whether a subject may act on a user-scoped record.
type Evaluator interface {
	Allow(ctx context.Context, in Input) (bool, error)
}
