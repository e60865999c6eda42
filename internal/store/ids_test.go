package store

import (
	"testing"
	"time"

	"rcadesk/internal/domain"
)

func TestIDGenMonotonicWithFrozenClock(t *testing.T) {
	now := time.UnixMilli(1_000)
	g := NewIDGen(func() time.Time { return now })
	a, b, c := g.Next(), g.Next(), g.Next()
	if a != 1_000 || b != 1_001 || c != 1_002 {
		t.Fatalf("unexpected ids %d %d %d", a, b, c)
	}
}

func TestIDGenObserve(t *testing.T) {
	g := NewIDGen(func() time.Time { return time.UnixMilli(10) })
	g.Observe(500)
	if id := g.Next(); id != 501 {
		t.Fatalf("expected 501, got %d", id)
	}
	g.Observe(3)
	if id := g.Next(); id != 502 {
		t.Fatalf("expected 502, got %d", id)
	}
}

func TestConversationIDOrderIndependent(t *testing.T) {
	pairs := [][2]int64{{1, 3}, {3, 1}, {10, 2}, {7, 7}, {1_700_000_000_000, 4}}
	for _, p := range pairs {
		if domain.ConversationID(p[0], p[1]) != domain.ConversationID(p[1], p[0]) {
			t.Fatalf("conversation id depends on order for %v", p)
		}
	}
	if got := domain.ConversationID(10, 2); got != "2_10" {
		t.Fatalf("expected numeric ordering, got %s", got)
	}
}

func TestPermissiveTables(t *testing.T) {
	flow := permissive(domain.ProjectStatuses)
	for _, from := range domain.ProjectStatuses {
		for _, to := range domain.ProjectStatuses {
			if err := ensureTransition(flow, "project", from, to); err != nil {
				t.Fatalf("%s -> %s rejected: %v", from, to, err)
			}
		}
	}
	delete(flow, domain.ProjectCompleted)
	if err := ensureTransition(flow, "project", domain.ProjectCompleted, domain.ProjectOpportunity); err == nil {
		t.Fatalf("expected error once the edge is removed")
	}
}
