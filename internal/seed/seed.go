// Package seed loads the initial contents of every collection. The running
// process reads a fixture once at startup and never writes it back.
package seed

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"rcadesk/internal/domain"
	"rcadesk/internal/store"
)

//go:embed default.yml
var defaultFixture []byte

// Default returns the embedded fixture.
func Default() store.Snapshot {
	s, err := FromYAML(defaultFixture)
	if err != nil {
		panic(fmt.Sprintf("embedded fixture: %v", err))
	}
	return s
}

// DefaultYAML returns the embedded fixture source.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultFixture...)
}

// Load reads the fixture at path, or the embedded default when path is empty.
func Load(path string) (store.Snapshot, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("read seed %s: %w", path, err)
	}
	return FromYAML(data)
}

// FromYAML parses and validates a fixture.
func FromYAML(data []byte) (store.Snapshot, error) {
	var s store.Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return store.Snapshot{}, fmt.Errorf("invalid seed yaml: %w", err)
	}
	if err := Validate(s); err != nil {
		return store.Snapshot{}, err
	}
	return s, nil
}

// Validate checks enumerations, numeric ranges, unique ids and references
// between collections.
func Validate(s store.Snapshot) error {
	users := map[int64]domain.User{}
	for _, u := range s.Users {
		if u.ID <= 0 {
			return fmt.Errorf("user %q has no id", u.Name)
		}
		if _, dup := users[u.ID]; dup {
			return fmt.Errorf("duplicate user id %d", u.ID)
		}
		if !u.Role.Valid() {
			return fmt.Errorf("user %d: invalid role %q", u.ID, u.Role)
		}
		if !u.Status.Valid() {
			return fmt.Errorf("user %d: invalid status %q", u.ID, u.Status)
		}
		if u.Email == "" {
			return fmt.Errorf("user %d: email is required", u.ID)
		}
		users[u.ID] = u
	}
	projects := map[int64]bool{}
	for _, p := range s.Projects {
		if projects[p.ID] {
			return fmt.Errorf("duplicate project id %d", p.ID)
		}
		projects[p.ID] = true
		if !p.Status.Valid() {
			return fmt.Errorf("project %d: invalid status %q", p.ID, p.Status)
		}
		if _, ok := users[p.ClientID]; !ok {
			return fmt.Errorf("project %d references unknown client %d", p.ID, p.ClientID)
		}
		if p.BudgetedHours < 0 || p.TrackedHours < 0 || p.Rate < 0 || p.Expenses < 0 {
			return fmt.Errorf("project %d: hours, rate and expenses must be non-negative", p.ID)
		}
	}
	for _, a := range s.Applications {
		if !a.Status.Valid() {
			return fmt.Errorf("application %d: invalid status %q", a.ID, a.Status)
		}
		if _, ok := users[a.ContractorID]; !ok {
			return fmt.Errorf("application %d references unknown contractor %d", a.ID, a.ContractorID)
		}
	}
	for _, t := range s.Tasks {
		if !t.Status.Valid() {
			return fmt.Errorf("task %d: invalid status %q", t.ID, t.Status)
		}
		if !projects[t.ProjectID] {
			return fmt.Errorf("task %d references unknown project %d", t.ID, t.ProjectID)
		}
		if _, ok := users[t.AssignedTo]; !ok {
			return fmt.Errorf("task %d references unknown assignee %d", t.ID, t.AssignedTo)
		}
	}
	for _, inv := range s.Invoices {
		if !inv.Status.Valid() {
			return fmt.Errorf("invoice %d: invalid status %q", inv.ID, inv.Status)
		}
		if !projects[inv.ProjectID] {
			return fmt.Errorf("invoice %d references unknown project %d", inv.ID, inv.ProjectID)
		}
		if inv.Amount < 0 {
			return fmt.Errorf("invoice %d: amount must be non-negative", inv.ID)
		}
	}
	for _, d := range s.Documents {
		if !d.Type.Valid() {
			return fmt.Errorf("document %d: invalid type %q", d.ID, d.Type)
		}
	}
	for _, m := range s.Messages {
		if _, ok := users[m.SenderID]; !ok {
			return fmt.Errorf("message %d references unknown sender %d", m.ID, m.SenderID)
		}
	}
	for _, a := range s.Activities {
		if !a.Type.Valid() {
			return fmt.Errorf("activity %d: invalid type %q", a.ID, a.Type)
		}
	}
	return nil
}
