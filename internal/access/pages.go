package access

import "rcadesk/internal/domain"

type Page string

const (
	PageDashboard    Page = "dashboard"
	PageProjects     Page = "projects"
	PageApplications Page = "applications"
	PageClients      Page = "clients"
	PageClientDetail Page = "client-detail"
	PageTeam         Page = "team"
	PageTasks        Page = "tasks"
	PageBilling      Page = "billing"
	PageMessages     Page = "messages"
	PageDocumentHub  Page = "document-hub"
	PageAnalytics    Page = "analytics"
	PageProfile      Page = "profile"
	PageSettings     Page = "settings"
)

var pageRoles = map[Page][]domain.Role{
	PageDashboard:    {domain.RoleAdmin, domain.RoleContractor},
	PageProjects:     {domain.RoleAdmin, domain.RoleContractor},
	PageApplications: {domain.RoleAdmin, domain.RoleContractor},
	PageClients:      {domain.RoleAdmin},
	PageClientDetail: {domain.RoleAdmin},
	PageTeam:         {domain.RoleAdmin},
	PageTasks:        {domain.RoleAdmin, domain.RoleContractor},
	PageBilling:      {domain.RoleAdmin, domain.RoleContractor},
	PageMessages:     {domain.RoleAdmin, domain.RoleContractor},
	PageDocumentHub:  {domain.RoleAdmin},
	PageAnalytics:    {domain.RoleAdmin},
	PageProfile:      {domain.RoleAdmin, domain.RoleContractor},
	PageSettings:     {domain.RoleAdmin, domain.RoleContractor},
}

// Pages lists the pages a role may open, in menu order.
func Pages(role domain.Role) []Page {
	order := []Page{
		PageDashboard, PageProjects, PageApplications, PageClients, PageTeam, PageTasks,
		PageBilling, PageMessages, PageDocumentHub, PageAnalytics, PageProfile, PageSettings,
	}
	var out []Page
	for _, p := range order {
		if CanOpen(role, p) {
			out = append(out, p)
		}
	}
	return out
}

func CanOpen(role domain.Role, p Page) bool {
	for _, r := range pageRoles[p] {
		if r == role {
			return true
		}
	}
	return false
}

func RequirePage(a domain.Actor, p Page) error {
	if CanOpen(a.Role, p) {
		return nil
	}
	return AccessDeniedError{Role: a.Role, Resource: "page " + string(p)}
}
