package domain

import "fmt"

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleContractor Role = "contractor"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleContractor:
		return true
	}
	return false
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("invalid role %q", s)
	}
	return r, nil
}

type UserStatus string

const (
	UserActive        UserStatus = "active"
	UserPendingReview UserStatus = "pending_review"
)

func (s UserStatus) Valid() bool {
	switch s {
	case UserActive, UserPendingReview:
		return true
	}
	return false
}

func ParseUserStatus(s string) (UserStatus, error) {
	st := UserStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid user status %q", s)
	}
	return st, nil
}

type ProjectStatus string

const (
	ProjectOpportunity ProjectStatus = "opportunity"
	ProjectInProgress  ProjectStatus = "in_progress"
	ProjectOnHold      ProjectStatus = "on_hold"
	ProjectCompleted   ProjectStatus = "completed"
)

// ProjectStatuses lists the kanban columns in board order.
var ProjectStatuses = []ProjectStatus{ProjectOpportunity, ProjectInProgress, ProjectOnHold, ProjectCompleted}

func (s ProjectStatus) Valid() bool {
	for _, v := range ProjectStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func ParseProjectStatus(s string) (ProjectStatus, error) {
	st := ProjectStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid project status %q", s)
	}
	return st, nil
}

type ApplicationStatus string

const (
	ApplicationDraft     ApplicationStatus = "draft"
	ApplicationSubmitted ApplicationStatus = "submitted"
	ApplicationReview    ApplicationStatus = "review"
	ApplicationUpdate    ApplicationStatus = "update"
	ApplicationApproved  ApplicationStatus = "approved"
	ApplicationRejected  ApplicationStatus = "rejected"
)

var ApplicationStatuses = []ApplicationStatus{
	ApplicationDraft, ApplicationSubmitted, ApplicationReview,
	ApplicationUpdate, ApplicationApproved, ApplicationRejected,
}

func (s ApplicationStatus) Valid() bool {
	for _, v := range ApplicationStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	st := ApplicationStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid application status %q", s)
	}
	return st, nil
}

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

var TaskStatuses = []TaskStatus{TaskTodo, TaskInProgress, TaskDone}

func (s TaskStatus) Valid() bool {
	for _, v := range TaskStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func ParseTaskStatus(s string) (TaskStatus, error) {
	st := TaskStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid task status %q", s)
	}
	return st, nil
}

type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoiceSent    InvoiceStatus = "sent"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
)

var InvoiceStatuses = []InvoiceStatus{InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceOverdue}

func (s InvoiceStatus) Valid() bool {
	for _, v := range InvoiceStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Outstanding reports whether the invoice is awaiting payment.
func (s InvoiceStatus) Outstanding() bool {
	return s == InvoiceSent || s == InvoiceOverdue
}

func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	st := InvoiceStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid invoice status %q", s)
	}
	return st, nil
}

type DocumentType string

const (
	DocumentPDF   DocumentType = "pdf"
	DocumentWord  DocumentType = "word"
	DocumentExcel DocumentType = "excel"
)

func (t DocumentType) Valid() bool {
	switch t {
	case DocumentPDF, DocumentWord, DocumentExcel:
		return true
	}
	return false
}

func ParseDocumentType(s string) (DocumentType, error) {
	t := DocumentType(s)
	if !t.Valid() {
		return "", fmt.Errorf("invalid document type %q", s)
	}
	return t, nil
}

type ActivityType string

const (
	ActivityContract    ActivityType = "contract"
	ActivityUser        ActivityType = "user"
	ActivityFeedback    ActivityType = "feedback"
	ActivityDeadline    ActivityType = "deadline"
	ActivityDocument    ActivityType = "document"
	ActivityApplication ActivityType = "application"
	ActivityTask        ActivityType = "task"
	ActivityInvoice     ActivityType = "invoice"
)

func (t ActivityType) Valid() bool {
	switch t {
	case ActivityContract, ActivityUser, ActivityFeedback, ActivityDeadline,
		ActivityDocument, ActivityApplication, ActivityTask, ActivityInvoice:
		return true
	}
	return false
}
