package derive

import (
	"time"

	"rcadesk/internal/access"
	"rcadesk/internal/domain"
	"rcadesk/internal/store"
)

type AdminStats struct {
	ActiveProjects int `json:"active_projects"`
	ActiveClients  int `json:"active_clients"`
	PendingReviews int `json:"pending_reviews"`
	OverdueTasks   int `json:"overdue_tasks"`
}

type ContractorStats struct {
	ActiveProjects    int `json:"active_projects"`
	PendingTasks      int `json:"pending_tasks"`
	UnpaidInvoices    int `json:"unpaid_invoices"`
	CompletedProjects int `json:"completed_projects"`
}

type Limits struct {
	Recent int
	Urgent int
}

func (l Limits) withDefaults() Limits {
	if l.Recent <= 0 {
		l.Recent = 5
	}
	if l.Urgent <= 0 {
		l.Urgent = 5
	}
	return l
}

type DashboardView struct {
	Role             domain.Role      `json:"role"`
	Admin            *AdminStats      `json:"admin,omitempty"`
	Contractor       *ContractorStats `json:"contractor,omitempty"`
	RecentActivities []domain.Activity `json:"recent_activities"`
	Urgent           []UrgentItem     `json:"urgent"`
	Unread           int              `json:"unread_notifications"`
}

func AdminStatsOf(s store.Snapshot, now time.Time) AdminStats {
	var st AdminStats
	for _, p := range s.Projects {
		if p.Status == domain.ProjectInProgress {
			st.ActiveProjects++
		}
	}
	for _, u := range s.Users {
		if u.Role != domain.RoleContractor {
			continue
		}
		switch u.Status {
		case domain.UserActive:
			st.ActiveClients++
		case domain.UserPendingReview:
			st.PendingReviews++
		}
	}
	for _, t := range s.Tasks {
		if t.Status == domain.TaskDone {
			continue
		}
		if days, ok := DaysUntil(t.DueDate, now); ok && days < 0 {
			st.OverdueTasks++
		}
	}
	return st
}

// ContractorStatsOf expects a snapshot already scoped to the contractor.
func ContractorStatsOf(s store.Snapshot) ContractorStats {
	var st ContractorStats
	for _, p := range s.Projects {
		switch p.Status {
		case domain.ProjectInProgress:
			st.ActiveProjects++
		case domain.ProjectCompleted:
			st.CompletedProjects++
		}
	}
	for _, t := range s.Tasks {
		if t.Status != domain.TaskDone {
			st.PendingTasks++
		}
	}
	for _, inv := range s.Invoices {
		if inv.Status.Outstanding() {
			st.UnpaidInvoices++
		}
	}
	return st
}

// Dashboard builds the landing view for the actor from the role-scoped
// collections.
func Dashboard(a domain.Actor, s store.Snapshot, now time.Time, limits Limits) (DashboardView, error) {
	if err := access.RequirePage(a, access.PageDashboard); err != nil {
		return DashboardView{}, err
	}
	limits = limits.withDefaults()
	scoped := access.Scope(a, s)
	view := DashboardView{
		Role:             a.Role,
		RecentActivities: head(scoped.Activities, limits.Recent),
		Urgent:           head(UrgentItems(scoped.Tasks, scoped.Invoices, now), limits.Urgent),
		Unread:           UnreadCount(scoped.Notifications),
	}
	switch a.Role {
	case domain.RoleAdmin:
		st := AdminStatsOf(scoped, now)
		view.Admin = &st
	case domain.RoleContractor:
		st := ContractorStatsOf(scoped)
		view.Contractor = &st
	}
	return view, nil
}

func UnreadCount(notifications []domain.Notification) int {
	n := 0
	for _, x := range notifications {
		if !x.Read {
			n++
		}
	}
	return n
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		items = items[:n]
	}
	return append([]T{}, items...)
}
