package store

import "rcadesk/internal/domain"

// Snapshot is a point-in-time copy of every collection. Callers own it and
// may modify it freely.
type Snapshot struct {
	Users         []domain.User         `json:"users" yaml:"users"`
	Projects      []domain.Project      `json:"projects" yaml:"projects"`
	Applications  []domain.Application  `json:"applications" yaml:"applications"`
	Tasks         []domain.Task         `json:"tasks" yaml:"tasks"`
	Invoices      []domain.Invoice      `json:"invoices" yaml:"invoices"`
	Documents     []domain.Document     `json:"documents" yaml:"documents"`
	Messages      []domain.ChatMessage  `json:"messages" yaml:"messages"`
	Notifications []domain.Notification `json:"notifications" yaml:"notifications"`
	Activities    []domain.Activity     `json:"activities" yaml:"activities"`
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Users:         cloneEach(s.Users, cloneUser),
		Projects:      cloneEach(s.Projects, cloneProject),
		Applications:  cloneEach(s.Applications, same[domain.Application]),
		Tasks:         cloneEach(s.Tasks, same[domain.Task]),
		Invoices:      cloneEach(s.Invoices, cloneInvoice),
		Documents:     cloneEach(s.Documents, same[domain.Document]),
		Messages:      cloneEach(s.Messages, same[domain.ChatMessage]),
		Notifications: cloneEach(s.Notifications, same[domain.Notification]),
		Activities:    cloneEach(s.Activities, same[domain.Activity]),
	}
}

// MaxID is the largest id present in any collection.
func (s Snapshot) MaxID() int64 {
	var top int64
	see := func(id int64) {
		if id > top {
			top = id
		}
	}
	for _, v := range s.Users {
		see(v.ID)
	}
	for _, v := range s.Projects {
		see(v.ID)
	}
	for _, v := range s.Applications {
		see(v.ID)
	}
	for _, v := range s.Tasks {
		see(v.ID)
	}
	for _, v := range s.Invoices {
		see(v.ID)
	}
	for _, v := range s.Documents {
		see(v.ID)
	}
	for _, v := range s.Messages {
		see(v.ID)
	}
	for _, v := range s.Notifications {
		see(v.ID)
	}
	for _, v := range s.Activities {
		see(v.ID)
	}
	return top
}

func same[T any](v T) T { return v }

func cloneEach[T any](items []T, clone func(T) T) []T {
	if items == nil {
		return nil
	}
	out := make([]T, len(items))
	for i, v := range items {
		out[i] = clone(v)
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneUser(u domain.User) domain.User {
	u.Certifications = cloneStrings(u.Certifications)
	u.Tags = cloneStrings(u.Tags)
	return u
}

func cloneProject(p domain.Project) domain.Project {
	p.Tags = cloneStrings(p.Tags)
	if p.RelatedDocuments != nil {
		p.RelatedDocuments = append([]domain.DocumentRef(nil), p.RelatedDocuments...)
	}
	return p
}

func cloneInvoice(inv domain.Invoice) domain.Invoice {
	if inv.LineItems != nil {
		inv.LineItems = append([]domain.InvoiceLineItem(nil), inv.LineItems...)
	}
	return inv
}

func indexOf[T any](items []T, id int64, idOf func(T) int64) int {
	for i, v := range items {
		if idOf(v) == id {
			return i
		}
	}
	return -1
}

// replaced returns a copy of items with position i set to v.
func replaced[T any](items []T, i int, v T) []T {
	out := append([]T(nil), items...)
	out[i] = v
	return out
}

func prepended[T any](items []T, v T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, v)
	return append(out, items...)
}

func appended[T any](items []T, v T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, items...)
	return append(out, v)
}
