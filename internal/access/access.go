// Package access decides what an actor may see and do. Every decision switches
// over the closed set of roles and denies anything it does not recognise.
package access

import (
	"errors"
	"fmt"
	"strings"

	"rcadesk/internal/domain"
	"rcadesk/internal/store"
)

var ErrInvalidCredentials = errors.New("invalid credentials for the selected role")

// AccessDeniedError is returned when an actor reaches for a page or action
// their role does not grant.
type AccessDeniedError struct {
	Role     domain.Role
	Resource string
}

func (e AccessDeniedError) Error() string {
	return fmt.Sprintf("access denied: role %s cannot use %s", e.Role, e.Resource)
}

func CanSeeProject(a domain.Actor, p domain.Project) bool {
	return owns(a, p.ClientID)
}

func CanSeeTask(a domain.Actor, t domain.Task) bool {
	return owns(a, t.AssignedTo)
}

func CanSeeInvoice(a domain.Actor, inv domain.Invoice) bool {
	return owns(a, inv.ClientID)
}

func CanSeeApplication(a domain.Actor, app domain.Application) bool {
	return owns(a, app.ContractorID)
}

func CanSeeDocument(a domain.Actor, d domain.Document) bool {
	return owns(a, d.UploadedBy)
}

func owns(a domain.Actor, ownerID int64) bool {
	switch a.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleContractor:
		return ownerID == a.ID
	default:
		return false
	}
}

// Scope narrows a snapshot to what the actor may see. Users, messages,
// notifications and activities pass through unchanged.
func Scope(a domain.Actor, s store.Snapshot) store.Snapshot {
	s.Projects = filter(s.Projects, func(p domain.Project) bool { return CanSeeProject(a, p) })
	s.Tasks = filter(s.Tasks, func(t domain.Task) bool { return CanSeeTask(a, t) })
	s.Invoices = filter(s.Invoices, func(inv domain.Invoice) bool { return CanSeeInvoice(a, inv) })
	s.Applications = filter(s.Applications, func(app domain.Application) bool { return CanSeeApplication(a, app) })
	s.Documents = filter(s.Documents, func(d domain.Document) bool { return CanSeeDocument(a, d) })
	return s
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, v := range items {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// Login finds the user with the given email and role. The email comparison
// ignores case and surrounding space.
func Login(users []domain.User, email string, role domain.Role) (domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || !role.Valid() {
		return domain.User{}, ErrInvalidCredentials
	}
	for _, u := range users {
		if strings.EqualFold(u.Email, email) && u.Role == role {
			return u, nil
		}
	}
	return domain.User{}, ErrInvalidCredentials
}
