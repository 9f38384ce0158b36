package tasks

import (
	"context"
	"errors"
)

var ErrStoreNotFound = errors.New("task not found in store")

// Store is the per-owner task persistence collaborator. FindMany returns
// tasks ordered by created_at descending with id descending as tiebreak so
// that "most recent wins" disambiguation is deterministic. Delete reports
// false rather than an error when the task is already gone.
type Store interface {
	Create(ctx context.Context, ownerID string, p CreateParams) (Task, error)
	Get(ctx context.Context, taskID string) (Task, error)
	FindMany(ctx context.Context, ownerID string, f Filter, limit int) ([]Task, error)
	Update(ctx context.Context, taskID string, p UpdateParams) (Task, error)
	Delete(ctx context.Context, taskID string) (bool, error)
	Close() error
}
