package interpreter

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"tasktalk/internal/tasks"
)

// ErrNoMatch is returned when a filter selects no task for the owner.
var ErrNoMatch = errors.New("no task matches filter")

// resolveLimit bounds the candidate query. Only the newest match is acted
// on, but enough candidates are fetched to re-assert the tiebreak locally.
const resolveLimit = 50

// Resolver deterministically selects the single task a filter targets:
// newest created_at wins, highest id breaks ties. Acting on the newest match
// avoids surprising deletion of old, possibly-forgotten tasks and fits the
// common "undo what I just did" case.
type Resolver struct {
	store tasks.Store
}

func NewResolver(store tasks.Store) *Resolver {
	return &Resolver{store: store}
}

func (r *Resolver) Resolve(ctx context.Context, ownerID string, f tasks.Filter) (tasks.Task, error) {
	candidates, err := r.store.FindMany(ctx, ownerID, f, resolveLimit)
	if err != nil {
		return tasks.Task{}, fmt.Errorf("resolve candidates: %w", err)
	}
	if len(candidates) == 0 {
		return tasks.Task{}, ErrNoMatch
	}

	// The store already orders this way; re-sorting keeps the selection a
	// strict total order even if a backend is sloppy about the tiebreak.
	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].CreatedAt.Equal(candidates[j].CreatedAt) {
			return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
		}
		return candidates[i].ID > candidates[j].ID
	})
	return candidates[0], nil
}
