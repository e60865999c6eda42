// Package store owns every mutable business collection. Consumers read through
// Snapshot and change state only through the named mutations; each mutation
// replaces the affected entity in a copied collection, records the feed side
// effects, and forwards a row to the journal when one is configured.
package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"rcadesk/internal/domain"
	"rcadesk/internal/events"
	"rcadesk/internal/feed"
	"rcadesk/internal/logging"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrEmptyMessage = errors.New("message text is empty")
	ErrInvalidInput = errors.New("invalid input")
)

// Journal receives one entry per successful mutation. Failures are logged and
// never undo the mutation.
type Journal interface {
	Append(ctx context.Context, evtType, entityKind string, entityID int64, payload events.EventPayload) error
}

type Options struct {
	Now     func() time.Time
	Journal Journal
}

type Store struct {
	mu      sync.RWMutex
	now     func() time.Time
	ids     *IDGen
	journal Journal

	users        []domain.User
	projects     []domain.Project
	applications []domain.Application
	tasks        []domain.Task
	invoices     []domain.Invoice
	documents    []domain.Document
	messages     []domain.ChatMessage
	feed         *feed.Log

	projectFlow     transitions[domain.ProjectStatus]
	applicationFlow transitions[domain.ApplicationStatus]
	invoiceFlow     transitions[domain.InvoiceStatus]
}

// New builds a store holding a private copy of seed.
func New(seed Snapshot, opts Options) *Store {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	data := seed.Clone()
	ids := NewIDGen(opts.Now)
	ids.Observe(data.MaxID())
	return &Store{
		now:             opts.Now,
		ids:             ids,
		journal:         opts.Journal,
		users:           data.Users,
		projects:        data.Projects,
		applications:    data.Applications,
		tasks:           data.Tasks,
		invoices:        data.Invoices,
		documents:       data.Documents,
		messages:        data.Messages,
		feed:            feed.New(ids.Next, data.Activities, data.Notifications),
		projectFlow:     permissive(domain.ProjectStatuses),
		applicationFlow: permissive(domain.ApplicationStatuses),
		invoiceFlow:     permissive(domain.InvoiceStatuses),
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked().Clone()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Users:         s.users,
		Projects:      s.projects,
		Applications:  s.applications,
		Tasks:         s.tasks,
		Invoices:      s.invoices,
		Documents:     s.documents,
		Messages:      s.messages,
		Notifications: s.feed.Notifications,
		Activities:    s.feed.Activities,
	}
}

func (s *Store) User(id int64) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.users, id, userID)
	if i < 0 {
		return domain.User{}, false
	}
	return cloneUser(s.users[i]), true
}

// UserByEmail matches the email case-insensitively and requires the role to
// agree.
func (s *Store) UserByEmail(email string, role domain.Role) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email = strings.TrimSpace(email)
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) && u.Role == role {
			return cloneUser(u), true
		}
	}
	return domain.User{}, false
}

func (s *Store) Project(id int64) (domain.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.projects, id, projectID)
	if i < 0 {
		return domain.Project{}, false
	}
	return cloneProject(s.projects[i]), true
}

// record forwards a mutation to the journal. Callers hold the write lock so
// journal rows keep mutation order.
func (s *Store) record(ctx context.Context, evtType, kind string, id int64, payload events.EventPayload) {
	log := logging.FromContext(ctx)
	log.Debug("store mutation", "type", evtType, "entity_kind", kind, "entity_id", id)
	if s.journal == nil {
		return
	}
	if err := s.journal.Append(ctx, evtType, kind, id, payload); err != nil {
		log.Warn("journal append failed", "type", evtType, "entity_id", id, "err", err)
	}
}

func userID(u domain.User) int64               { return u.ID }
func projectID(p domain.Project) int64         { return p.ID }
func applicationID(a domain.Application) int64 { return a.ID }
func invoiceID(i domain.Invoice) int64         { return i.ID }

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}
