// Package notify delivers best-effort outbound notifications. Delivery
// failures are logged by callers and never fail the triggering command.
package notify

import (
	"context"

	"tasktalk/internal/tasks"
)

type Notifier interface {
	TaskCreated(ctx context.Context, ownerEmail string, task tasks.Task) error
}

// NoopNotifier is used when no delivery provider is configured.
type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier { return &NoopNotifier{} }

func (*NoopNotifier) TaskCreated(context.Context, string, tasks.Task) error { return nil }
