package interpreter

import (
	"context"
	"errors"
	"testing"
	"time"

	"tasktalk/internal/tasks"
)

func TestResolverPicksNewestMatch(t *testing.T) {
	store := newFakeStore()
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	store.put("u1", "t1", tasks.PriorityUrgent, base)
	store.put("u1", "t2", tasks.PriorityUrgent, base.Add(time.Hour))
	store.put("u1", "t3", tasks.PriorityUrgent, base.Add(2*time.Hour))
	store.put("u1", "t9", tasks.PriorityLow, base.Add(3*time.Hour))

	urgent := tasks.PriorityUrgent
	got, err := NewResolver(store).Resolve(context.Background(), "u1", tasks.Filter{Priority: &urgent})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.ID != "t3" {
		t.Fatalf("Resolve() = %q, want newest urgent t3", got.ID)
	}
}

func TestResolverBreaksTiesByHighestID(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	store.put("u1", "t1", tasks.PriorityUrgent, now)
	store.put("u1", "t2", tasks.PriorityUrgent, now)

	urgent := tasks.PriorityUrgent
	for i := 0; i < 5; i++ {
		got, err := NewResolver(store).Resolve(context.Background(), "u1", tasks.Filter{Priority: &urgent})
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if got.ID != "t2" {
			t.Fatalf("Resolve() = %q, want deterministic t2", got.ID)
		}
	}
}

func TestResolverScopesToOwner(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	store.put("u2", "t1", tasks.PriorityUrgent, now)

	urgent := tasks.PriorityUrgent
	_, err := NewResolver(store).Resolve(context.Background(), "u1", tasks.Filter{Priority: &urgent})
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("Resolve() error = %v, want ErrNoMatch for foreign task", err)
	}
}

func TestResolverNoMatch(t *testing.T) {
	store := newFakeStore()
	urgent := tasks.PriorityUrgent
	_, err := NewResolver(store).Resolve(context.Background(), "u1", tasks.Filter{Priority: &urgent})
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("Resolve() error = %v, want ErrNoMatch", err)
	}
}
