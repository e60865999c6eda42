package derive

import (
	"rcadesk/internal/domain"
	"rcadesk/internal/store"
)

type ProjectFinancials struct {
	ProjectID      int64               `json:"project_id"`
	Title          string              `json:"title"`
	Profitability  ProfitabilityResult `json:"profitability"`
	BudgetProgress float64             `json:"budget_progress"`
}

type AnalyticsView struct {
	Revenue       RevenueSummary      `json:"revenue"`
	ProjectCount  int                 `json:"project_count"`
	OpenTasks     int                 `json:"open_tasks"`
	ProjectStatus []StatusBar         `json:"project_status"`
	TaskStatus    []StatusBar         `json:"task_status"`
	Projects      []ProjectFinancials `json:"projects"`
}

func Analytics(s store.Snapshot) AnalyticsView {
	view := AnalyticsView{
		Revenue:       Revenue(s.Invoices),
		ProjectCount:  len(s.Projects),
		OpenTasks:     openTasks(s.Tasks),
		ProjectStatus: ProjectStatusDistribution(s.Projects),
		TaskStatus:    TaskStatusDistribution(s.Tasks),
		Projects:      make([]ProjectFinancials, 0, len(s.Projects)),
	}
	for _, p := range s.Projects {
		view.Projects = append(view.Projects, ProjectFinancials{
			ProjectID:      p.ID,
			Title:          p.Title,
			Profitability:  Profitability(p),
			BudgetProgress: BudgetProgress(p),
		})
	}
	return view
}

type MemberLoad struct {
	User         domain.User      `json:"user"`
	TotalTasks   int              `json:"total_tasks"`
	PendingTasks int              `json:"pending_tasks"`
	Projects     []domain.Project `json:"projects"`
}

// TeamLoad reports task load for every administrator, in user order.
func TeamLoad(s store.Snapshot) []MemberLoad {
	var out []MemberLoad
	for _, u := range s.Users {
		if u.Role != domain.RoleAdmin {
			continue
		}
		m := MemberLoad{User: u, Projects: []domain.Project{}}
		projectIDs := map[int64]bool{}
		for _, t := range s.Tasks {
			if t.AssignedTo != u.ID {
				continue
			}
			m.TotalTasks++
			if t.Status != domain.TaskDone {
				m.PendingTasks++
			}
			projectIDs[t.ProjectID] = true
		}
		for _, p := range s.Projects {
			if projectIDs[p.ID] {
				m.Projects = append(m.Projects, p)
			}
		}
		out = append(out, m)
	}
	return out
}

type ClientView struct {
	Client    domain.User      `json:"client"`
	Projects  []domain.Project `json:"projects"`
	Tasks     []domain.Task    `json:"tasks"`
	Invoices  []domain.Invoice `json:"invoices"`
	OpenTasks int              `json:"open_tasks"`
}

// ClientDetail gathers a contractor's projects, the tasks on them and their
// invoices. ok is false when no such contractor exists.
func ClientDetail(s store.Snapshot, clientID int64) (ClientView, bool) {
	var view ClientView
	found := false
	for _, u := range s.Users {
		if u.ID == clientID && u.Role == domain.RoleContractor {
			view.Client, found = u, true
			break
		}
	}
	if !found {
		return ClientView{}, false
	}
	view.Projects = []domain.Project{}
	view.Tasks = []domain.Task{}
	view.Invoices = []domain.Invoice{}
	projectIDs := map[int64]bool{}
	for _, p := range s.Projects {
		if p.ClientID == clientID {
			view.Projects = append(view.Projects, p)
			projectIDs[p.ID] = true
		}
	}
	for _, t := range s.Tasks {
		if projectIDs[t.ProjectID] {
			view.Tasks = append(view.Tasks, t)
		}
	}
	for _, inv := range s.Invoices {
		if inv.ClientID == clientID {
			view.Invoices = append(view.Invoices, inv)
		}
	}
	view.OpenTasks = openTasks(view.Tasks)
	return view, true
}

func openTasks(tasks []domain.Task) int {
	n := 0
	for _, t := range tasks {
		if t.Status != domain.TaskDone {
			n++
		}
	}
	return n
}
