package feed

import (
	"reflect"
	"testing"

	"rcadesk/internal/domain"
)

func counter() func() int64 {
	var n int64 = 100
	return func() int64 {
		n++
		return n
	}
}

func TestAddActivityPrepends(t *testing.T) {
	l := New(counter(), []domain.Activity{{ID: 1, Type: domain.ActivityTask, Title: "old"}}, nil)
	a := l.AddActivity(domain.ActivityInvoice, "Invoice paid", "desc")
	if a.ID != 101 || a.Time != JustNow {
		t.Fatalf("unexpected activity %+v", a)
	}
	if len(l.Activities) != 2 || l.Activities[0].ID != 101 || l.Activities[1].ID != 1 {
		t.Fatalf("expected newest first, got %+v", l.Activities)
	}
}

func TestNotificationsStartUnread(t *testing.T) {
	l := New(counter(), nil, nil)
	n := l.AddNotification("New message", "hi...", 3)
	if n.Read {
		t.Fatalf("new notification should be unread")
	}
	if n.RecipientID != 3 {
		t.Fatalf("expected recipient 3, got %d", n.RecipientID)
	}
}

func TestMarkAllReadIdempotent(t *testing.T) {
	l := New(counter(), nil, []domain.Notification{
		{ID: 1, Title: "a"},
		{ID: 2, Title: "b", Read: true},
	})
	l.AddNotification("c", "", 0)
	if got := l.MarkAllRead(); got != 2 {
		t.Fatalf("expected 2 flipped, got %d", got)
	}
	once := append([]domain.Notification(nil), l.Notifications...)
	if got := l.MarkAllRead(); got != 0 {
		t.Fatalf("second pass flipped %d", got)
	}
	if !reflect.DeepEqual(once, l.Notifications) {
		t.Fatalf("state changed on second pass")
	}
	for _, n := range l.Notifications {
		if !n.Read {
			t.Fatalf("notification %d still unread", n.ID)
		}
	}
}

func TestNewCopiesSeed(t *testing.T) {
	seed := []domain.Activity{{ID: 1, Title: "seed"}}
	l := New(counter(), seed, nil)
	l.Activities[0].Title = "changed"
	if seed[0].Title != "seed" {
		t.Fatalf("seed slice aliased by log")
	}
}
