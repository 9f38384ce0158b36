package interpreter

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"tasktalk/internal/observability"
	"tasktalk/internal/tasks"
)

// Dispatcher executes a validated intent against the task store. It issues
// at most one mutating store call per command and never issues one for a
// NONE or rejected intent.
type Dispatcher struct {
	store     tasks.Store
	resolver  *Resolver
	metrics   *observability.Metrics
	logger    *zap.Logger
	readLimit int
}

func NewDispatcher(store tasks.Store, metrics *observability.Metrics, logger *zap.Logger, readLimit int) *Dispatcher {
	if readLimit <= 0 {
		readLimit = 20
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		store:     store,
		resolver:  NewResolver(store),
		metrics:   metrics,
		logger:    logger,
		readLimit: readLimit,
	}
}

// Dispatch runs the intent and returns a fully-formed outcome. A returned
// error is always a store failure (ErrStore); every other condition folds
// into the outcome's rejection reason.
func (d *Dispatcher) Dispatch(ctx context.Context, ownerID string, intent Intent, provisional string) (Outcome, error) {
	outcome := Outcome{Intent: intent, ResponseText: provisional}

	switch intent.Action {
	case ActionCreate:
		task, err := d.store.Create(ctx, ownerID, tasks.CreateParams{
			Description: intent.Create.Description,
			Priority:    intent.Create.Priority,
			Status:      intent.Create.Status,
			Deadline:    intent.Create.Deadline,
		})
		d.metrics.ObserveStoreOp("create", err)
		if err != nil {
			return outcome, fmt.Errorf("%w: %v", ErrStore, err)
		}
		outcome.Dispatched = true
		outcome.AffectedTaskID = task.ID
		d.logger.Info("task created",
			zap.String("task_id", task.ID),
			zap.String("owner_id", ownerID),
			zap.String("priority", string(task.Priority)))
		return outcome, nil

	case ActionDelete:
		target, err := d.resolver.Resolve(ctx, ownerID, *intent.Filter)
		if errors.Is(err, ErrNoMatch) {
			outcome.Rejection = RejectionNotFound
			return outcome, nil
		}
		if err != nil {
			d.metrics.ObserveStoreOp("resolve", err)
			return outcome, fmt.Errorf("%w: %v", ErrStore, err)
		}

		deleted, err := d.store.Delete(ctx, target.ID)
		d.metrics.ObserveStoreOp("delete", err)
		if err != nil {
			return outcome, fmt.Errorf("%w: %v", ErrStore, err)
		}
		if !deleted {
			// Lost the race to a concurrent delete between resolve and
			// delete; fold into the same not-found outcome.
			outcome.Rejection = RejectionNotFound
			return outcome, nil
		}
		outcome.Dispatched = true
		outcome.AffectedTaskID = target.ID
		d.logger.Info("task deleted",
			zap.String("task_id", target.ID),
			zap.String("owner_id", ownerID))
		return outcome, nil

	case ActionRead:
		list, err := d.store.FindMany(ctx, ownerID, *intent.Filter, d.readLimit)
		d.metrics.ObserveStoreOp("find", err)
		if err != nil {
			return outcome, fmt.Errorf("%w: %v", ErrStore, err)
		}
		outcome.Tasks = list
		if len(list) == 0 {
			outcome.Rejection = RejectionNotFound
		}
		// Reads never mutate; Dispatched stays false.
		return outcome, nil

	default:
		return outcome, nil
	}
}
