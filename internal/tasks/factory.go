package tasks

import (
	"context"
	"strings"
)

// NewStore returns a Postgres-backed store when a database URL is configured
// and an in-memory store otherwise. The second return names the mode for
// health reporting.
func NewStore(ctx context.Context, databaseURL string) (Store, string, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return NewMemoryStore(), "in-memory", nil
	}
	st, err := NewPostgresStore(ctx, databaseURL)
	if err != nil {
		return nil, "", err
	}
	return st, "postgres", nil
}
