package seed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rcadesk/internal/domain"
)

func TestDefaultFixture(t *testing.T) {
	s := Default()
	counts := map[string]int{
		"users":         len(s.Users),
		"projects":      len(s.Projects),
		"applications":  len(s.Applications),
		"tasks":         len(s.Tasks),
		"invoices":      len(s.Invoices),
		"documents":     len(s.Documents),
		"messages":      len(s.Messages),
		"notifications": len(s.Notifications),
		"activities":    len(s.Activities),
	}
	want := map[string]int{
		"users": 5, "projects": 4, "applications": 1, "tasks": 4, "invoices": 3,
		"documents": 2, "messages": 2, "notifications": 2, "activities": 4,
	}
	for k, n := range want {
		if counts[k] != n {
			t.Fatalf("%s: expected %d, got %d", k, n, counts[k])
		}
	}
	if s.Users[3].Status != domain.UserPendingReview {
		t.Fatalf("user 4 should start pending review, got %s", s.Users[3].Status)
	}
	if s.Notifications[1].Title != "Invoice #2024-002 is due soon." {
		t.Fatalf("notification title lost: %q", s.Notifications[1].Title)
	}
	if s.Projects[0].ClientName != "City of Arcadia, FL" || len(s.Projects[0].RelatedDocuments) != 2 {
		t.Fatalf("project 1 decoded wrong: %+v", s.Projects[0])
	}
	if s.MaxID() != 5 {
		t.Fatalf("expected max id 5, got %d", s.MaxID())
	}
}

func TestDefaultReturnsFreshCopies(t *testing.T) {
	a := Default()
	a.Users[0].Name = "changed"
	if Default().Users[0].Name != "Moni Roy" {
		t.Fatalf("Default shares state between calls")
	}
}

func TestValidateErrors(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"bad role", "users:\n  - {id: 1, name: A, role: owner, email: a@x, status: active}\n", "invalid role"},
		{"duplicate user", "users:\n  - {id: 1, name: A, role: admin, email: a@x, status: active}\n  - {id: 1, name: B, role: admin, email: b@x, status: active}\n", "duplicate user id"},
		{"unknown client", "users:\n  - {id: 1, name: A, role: admin, email: a@x, status: active}\nprojects:\n  - {id: 9, title: P, client_id: 2, status: opportunity}\n", "unknown client"},
		{"negative hours", "users:\n  - {id: 1, name: A, role: admin, email: a@x, status: active}\nprojects:\n  - {id: 9, title: P, client_id: 1, status: opportunity, tracked_hours: -1}\n", "non-negative"},
		{"bad project status", "users:\n  - {id: 1, name: A, role: admin, email: a@x, status: active}\nprojects:\n  - {id: 9, title: P, client_id: 1, status: archived}\n", "invalid status"},
		{"bad yaml", "users: [", "invalid seed yaml"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromYAML([]byte(tc.yaml))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yml")
	data := "users:\n  - {id: 7, name: Solo, role: admin, email: solo@x, status: active}\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(s.Users) != 1 || s.Users[0].ID != 7 || len(s.Projects) != 0 {
		t.Fatalf("unexpected snapshot %+v", s)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
