// Package feed keeps the activity and notification logs. Entries are only
// ever prepended, so index 0 is always the most recent one.
package feed

import (
	"rcadesk/internal/domain"
)

// JustNow is the time label stamped on entries created by the running process.
const JustNow = "Just now"

// Log is not safe for concurrent use; the store owns it behind its lock.
type Log struct {
	NextID        func() int64
	Activities    []domain.Activity
	Notifications []domain.Notification
}

func New(nextID func() int64, activities []domain.Activity, notifications []domain.Notification) *Log {
	return &Log{
		NextID:        nextID,
		Activities:    append([]domain.Activity(nil), activities...),
		Notifications: append([]domain.Notification(nil), notifications...),
	}
}

func (l *Log) AddActivity(typ domain.ActivityType, title, description string) domain.Activity {
	a := domain.Activity{
		ID:          l.NextID(),
		Type:        typ,
		Title:       title,
		Description: description,
		Time:        JustNow,
	}
	l.Activities = prepend(l.Activities, a)
	return a
}

func (l *Log) AddNotification(title, description string, recipientID int64) domain.Notification {
	n := domain.Notification{
		ID:          l.NextID(),
		Title:       title,
		Description: description,
		Time:        JustNow,
		RecipientID: recipientID,
	}
	l.Notifications = prepend(l.Notifications, n)
	return n
}

// MarkAllRead returns how many notifications flipped from unread to read.
func (l *Log) MarkAllRead() int {
	changed := 0
	next := make([]domain.Notification, len(l.Notifications))
	for i, n := range l.Notifications {
		if !n.Read {
			changed++
		}
		n.Read = true
		next[i] = n
	}
	l.Notifications = next
	return changed
}

func prepend[T any](items []T, item T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, item)
	return append(out, items...)
}
