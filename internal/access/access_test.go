package access

import (
	"errors"
	"testing"

	"rcadesk/internal/domain"
	"rcadesk/internal/seed"
)

var (
	admin   = domain.Actor{ID: 1, Role: domain.RoleAdmin}
	coastal = domain.Actor{ID: 3, Role: domain.RoleContractor}
)

func TestScopeContractor(t *testing.T) {
	s := Scope(coastal, seed.Default())
	if len(s.Projects) != 2 {
		t.Fatalf("expected projects 1 and 4, got %d", len(s.Projects))
	}
	for _, p := range s.Projects {
		if p.ClientID != 3 {
			t.Fatalf("foreign project %d leaked", p.ID)
		}
	}
	if len(s.Invoices) != 2 || len(s.Applications) != 1 || len(s.Documents) != 1 {
		t.Fatalf("unexpected scope: %d invoices, %d applications, %d documents", len(s.Invoices), len(s.Applications), len(s.Documents))
	}
	if len(s.Tasks) != 0 {
		t.Fatalf("contractor 3 has no assigned tasks, got %d", len(s.Tasks))
	}
	if len(s.Users) != 5 || len(s.Activities) != 4 {
		t.Fatalf("pass-through collections were filtered")
	}
}

func TestScopeAdminSeesAll(t *testing.T) {
	full := seed.Default()
	s := Scope(admin, full)
	if len(s.Projects) != len(full.Projects) || len(s.Tasks) != len(full.Tasks) || len(s.Invoices) != len(full.Invoices) {
		t.Fatalf("admin scope dropped entities")
	}
}

func TestUnknownRoleSeesNothing(t *testing.T) {
	s := Scope(domain.Actor{ID: 3, Role: domain.Role("auditor")}, seed.Default())
	if len(s.Projects) != 0 || len(s.Invoices) != 0 {
		t.Fatalf("unknown role saw data")
	}
	if err := RequirePage(domain.Actor{Role: "auditor"}, PageDashboard); err == nil {
		t.Fatalf("unknown role opened dashboard")
	}
}

func TestPageTable(t *testing.T) {
	cases := []struct {
		role domain.Role
		page Page
		ok   bool
	}{
		{domain.RoleAdmin, PageAnalytics, true},
		{domain.RoleContractor, PageAnalytics, false},
		{domain.RoleContractor, PageApplications, true},
		{domain.RoleContractor, PageDocumentHub, false},
		{domain.RoleContractor, PageClients, false},
		{domain.RoleContractor, PageBilling, true},
		{domain.RoleAdmin, PageTeam, true},
		{domain.RoleAdmin, Page("nowhere"), false},
	}
	for _, tc := range cases {
		err := RequirePage(domain.Actor{Role: tc.role}, tc.page)
		if (err == nil) != tc.ok {
			t.Fatalf("%s on %s: got %v", tc.role, tc.page, err)
		}
		var denied AccessDeniedError
		if err != nil && !errors.As(err, &denied) {
			t.Fatalf("expected AccessDeniedError, got %T", err)
		}
	}
	if got := len(Pages(domain.RoleContractor)); got != 8 {
		t.Fatalf("contractor should see 8 pages, got %d", got)
	}
}

func TestLogin(t *testing.T) {
	users := seed.Default().Users
	u, err := Login(users, "  Info@Coastal.com ", domain.RoleContractor)
	if err != nil || u.ID != 3 {
		t.Fatalf("expected Coastal, got %+v %v", u, err)
	}
	if _, err := Login(users, "info@coastal.com", domain.RoleAdmin); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("role mismatch should fail, got %v", err)
	}
	if _, err := Login(users, "nobody@x.com", domain.RoleAdmin); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email should fail, got %v", err)
	}
}

func TestActionRules(t *testing.T) {
	if err := Require(coastal, ActionMoveProject); err == nil {
		t.Fatalf("contractor moved a project")
	}
	if err := Require(admin, ActionApply); err == nil {
		t.Fatalf("admin applied to an opportunity")
	}
	if err := Require(coastal, ActionApply); err != nil {
		t.Fatalf("contractor apply denied: %v", err)
	}
}

func TestInvoiceStatusRule(t *testing.T) {
	sent := domain.Invoice{ID: 2, ClientID: 3, Status: domain.InvoiceSent}
	draft := domain.Invoice{ID: 3, ClientID: 3, Status: domain.InvoiceDraft}
	foreign := domain.Invoice{ID: 1, ClientID: 5, Status: domain.InvoiceOverdue}
	if err := RequireInvoiceStatus(coastal, sent, domain.InvoicePaid); err != nil {
		t.Fatalf("owner could not pay: %v", err)
	}
	if err := RequireInvoiceStatus(coastal, draft, domain.InvoicePaid); err == nil {
		t.Fatalf("draft invoice paid by contractor")
	}
	if err := RequireInvoiceStatus(coastal, sent, domain.InvoiceDraft); err == nil {
		t.Fatalf("contractor set draft")
	}
	if err := RequireInvoiceStatus(coastal, foreign, domain.InvoicePaid); err == nil {
		t.Fatalf("contractor paid someone else's invoice")
	}
	if err := RequireInvoiceStatus(admin, draft, domain.InvoiceSent); err != nil {
		t.Fatalf("admin denied: %v", err)
	}
}

func TestPartners(t *testing.T) {
	users := seed.Default().Users
	if got := Partners(admin, users); len(got) != 3 {
		t.Fatalf("admin should reach 3 contractors, got %d", len(got))
	}
	got := Partners(coastal, users)
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("contractor should reach the first admin, got %+v", got)
	}
	if err := RequireConversation(coastal, users[1], users); err == nil {
		t.Fatalf("contractor reached second admin")
	}
}
