package derive

import (
	"fmt"
	"sort"
	"time"

	"rcadesk/internal/domain"
)

const urgencyWindowDays = 7

type UrgentItem struct {
	Kind     string `json:"kind" enum:"task,invoice"`
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	DueDate  string `json:"due_date"`
	DaysLeft int    `json:"days_left"`
	Overdue  bool   `json:"overdue"`
	DueText  string `json:"due_text"`
}

func DueText(days int) string {
	switch {
	case days < 0:
		return fmt.Sprintf("Overdue by %d days", -days)
	case days == 0:
		return "Due today"
	case days == 1:
		return "Due tomorrow"
	default:
		return fmt.Sprintf("Due in %d days", days)
	}
}

// DaysUntil counts calendar days in UTC from now to the due date. Unparseable
// dates report ok=false.
func DaysUntil(due string, now time.Time) (int, bool) {
	d, err := time.Parse("2006-01-02", due)
	if err != nil {
		return 0, false
	}
	n := now.UTC()
	today := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
	return int(d.Sub(today).Hours() / 24), true
}

// UrgentItems lists open tasks and outstanding invoices due within the window
// or already overdue. Overdue items come first; order is otherwise stable,
// tasks before invoices.
func UrgentItems(tasks []domain.Task, invoices []domain.Invoice, now time.Time) []UrgentItem {
	var items []UrgentItem
	for _, t := range tasks {
		if t.Status == domain.TaskDone {
			continue
		}
		if it, ok := urgent("task", t.ID, t.Title, t.DueDate, now); ok {
			items = append(items, it)
		}
	}
	for _, inv := range invoices {
		if !inv.Status.Outstanding() {
			continue
		}
		if it, ok := urgent("invoice", inv.ID, invoiceLabel(inv), inv.DueDate, now); ok {
			items = append(items, it)
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Overdue && !items[j].Overdue })
	return items
}

func urgent(kind string, id int64, title, due string, now time.Time) (UrgentItem, bool) {
	days, ok := DaysUntil(due, now)
	if !ok || days > urgencyWindowDays {
		return UrgentItem{}, false
	}
	return UrgentItem{
		Kind:     kind,
		ID:       id,
		Title:    title,
		DueDate:  due,
		DaysLeft: days,
		Overdue:  days < 0,
		DueText:  DueText(days),
	}, true
}

func invoiceLabel(inv domain.Invoice) string {
	year := "0000"
	if len(inv.IssueDate) >= 4 {
		year = inv.IssueDate[:4]
	}
	return fmt.Sprintf("Invoice #%s-%03d", year, inv.ID)
}
