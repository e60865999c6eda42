// Package derive computes read-only views from a snapshot. Nothing here is
// cached; every call recomputes from its inputs.
package derive

import "rcadesk/internal/domain"

type RevenueSummary struct {
	Realized float64 `json:"realized"`
	Pending  float64 `json:"pending"`
}

// Revenue sums paid invoices as realized and sent or overdue ones as pending.
func Revenue(invoices []domain.Invoice) RevenueSummary {
	var r RevenueSummary
	for _, inv := range invoices {
		switch {
		case inv.Status == domain.InvoicePaid:
			r.Realized += inv.Amount
		case inv.Status.Outstanding():
			r.Pending += inv.Amount
		}
	}
	return r
}

type ProfitabilityResult struct {
	Revenue float64 `json:"revenue"`
	Profit  float64 `json:"profit"`
	Percent float64 `json:"percent"`
}

// Profitability is 0% whenever tracked hours times rate is 0.
func Profitability(p domain.Project) ProfitabilityResult {
	revenue := p.TrackedHours * p.Rate
	profit := revenue - p.Expenses
	res := ProfitabilityResult{Revenue: revenue, Profit: profit}
	if revenue != 0 {
		res.Percent = profit / revenue * 100
	}
	return res
}

// BudgetProgress is tracked over budgeted hours in percent, 0 with no budget.
func BudgetProgress(p domain.Project) float64 {
	if p.BudgetedHours == 0 {
		return 0
	}
	return p.TrackedHours / p.BudgetedHours * 100
}

type StatusBar struct {
	Status string  `json:"status"`
	Count  int     `json:"count"`
	Height float64 `json:"height"`
}

func ProjectStatusDistribution(projects []domain.Project) []StatusBar {
	counts := map[domain.ProjectStatus]int{}
	for _, p := range projects {
		counts[p.Status]++
	}
	return bars(domain.ProjectStatuses, counts)
}

func TaskStatusDistribution(tasks []domain.Task) []StatusBar {
	counts := map[domain.TaskStatus]int{}
	for _, t := range tasks {
		counts[t.Status]++
	}
	return bars(domain.TaskStatuses, counts)
}

// bars emits one bar per status in enumeration order. Height is relative to
// the tallest bar, with the divisor floored at 1 for empty collections.
func bars[S ~string](order []S, counts map[S]int) []StatusBar {
	tallest := 1
	for _, n := range counts {
		if n > tallest {
			tallest = n
		}
	}
	out := make([]StatusBar, 0, len(order))
	for _, s := range order {
		n := counts[s]
		out = append(out, StatusBar{Status: string(s), Count: n, Height: float64(n) / float64(tallest) * 100})
	}
	return out
}
