package question

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("question not found")

// Store is the persistence collaborator the organizer reads from and writes to.
// UpdateItem is an idempotent upsert of the full record.
type Store interface {
	FetchItems(ctx context.Context, containerID string) ([]Question, error)
	UpdateItem(ctx context.Context, q Question) error
}
