package store

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"rcadesk/internal/domain"
	"rcadesk/internal/events"
)

const (
	messagePreviewLen = 50
	dateLayout        = "2006-01-02"
	documentDayLayout = "Jan 2, 2006"
)

func notFound(kind string, id int64) error {
	return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
}

// AdvanceProjectStatus moves a project to another board column.
func (s *Store) AdvanceProjectStatus(ctx context.Context, id int64, status domain.ProjectStatus) (domain.Project, error) {
	if !status.Valid() {
		return domain.Project{}, fmt.Errorf("project status %q: %w", status, ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.projects, id, projectID)
	if i < 0 {
		return domain.Project{}, notFound("project", id)
	}
	p := cloneProject(s.projects[i])
	from := p.Status
	if err := ensureTransition(s.projectFlow, "project", from, status); err != nil {
		return domain.Project{}, err
	}
	p.Status = status
	s.projects = replaced(s.projects, i, p)
	s.feed.AddActivity(domain.ActivityContract, "Project Status Updated",
		fmt.Sprintf("Project %q was moved to %s.", p.Title, strings.Replace(string(status), "_", " ", 1)))
	s.record(ctx, "project.status", "project", id, events.EventPayload{"from": from, "to": status})
	return cloneProject(p), nil
}

// SetApplicationStatus changes only the status; contractor and contract stay fixed.
func (s *Store) SetApplicationStatus(ctx context.Context, id int64, status domain.ApplicationStatus) (domain.Application, error) {
	if !status.Valid() {
		return domain.Application{}, fmt.Errorf("application status %q: %w", status, ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.applications, id, applicationID)
	if i < 0 {
		return domain.Application{}, notFound("application", id)
	}
	app := s.applications[i]
	from := app.Status
	if err := ensureTransition(s.applicationFlow, "application", from, status); err != nil {
		return domain.Application{}, err
	}
	app.Status = status
	s.applications = replaced(s.applications, i, app)
	contractor := app.Contractor
	if j := indexOf(s.users, app.ContractorID, userID); j >= 0 {
		contractor = s.users[j].Name
	}
	s.feed.AddActivity(domain.ActivityApplication, fmt.Sprintf("Application %s", status),
		fmt.Sprintf("Application from %s for %q was marked as %s.", contractor, app.ContractTitle, status))
	s.record(ctx, "application.status", "application", id, events.EventPayload{"from": from, "to": status})
	return app, nil
}

func (s *Store) SetInvoiceStatus(ctx context.Context, id int64, status domain.InvoiceStatus) (domain.Invoice, error) {
	if !status.Valid() {
		return domain.Invoice{}, fmt.Errorf("invoice status %q: %w", status, ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.invoices, id, invoiceID)
	if i < 0 {
		return domain.Invoice{}, notFound("invoice", id)
	}
	inv := cloneInvoice(s.invoices[i])
	from := inv.Status
	if err := ensureTransition(s.invoiceFlow, "invoice", from, status); err != nil {
		return domain.Invoice{}, err
	}
	inv.Status = status
	s.invoices = replaced(s.invoices, i, inv)
	var title string
	if j := indexOf(s.projects, inv.ProjectID, projectID); j >= 0 {
		title = s.projects[j].Title
	}
	s.feed.AddActivity(domain.ActivityInvoice, fmt.Sprintf("Invoice %s", status),
		fmt.Sprintf("Invoice for project %q marked as %s.", title, status))
	s.record(ctx, "invoice.status", "invoice", id, events.EventPayload{"from": from, "to": status})
	return cloneInvoice(inv), nil
}

// SetUserStatus records an approval in the feed only when the user becomes active.
func (s *Store) SetUserStatus(ctx context.Context, id int64, status domain.UserStatus) (domain.User, error) {
	if !status.Valid() {
		return domain.User{}, fmt.Errorf("user status %q: %w", status, ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.users, id, userID)
	if i < 0 {
		return domain.User{}, notFound("user", id)
	}
	u := cloneUser(s.users[i])
	from := u.Status
	u.Status = status
	s.users = replaced(s.users, i, u)
	if status == domain.UserActive {
		s.feed.AddActivity(domain.ActivityUser, "Client Approved",
			fmt.Sprintf("%s has been approved and is now active.", u.Name))
		s.feed.AddNotification("Profile Approved", "Congratulations, your company profile has been approved.", u.ID)
	}
	s.record(ctx, "user.status", "user", id, events.EventPayload{"from": from, "to": status})
	return cloneUser(u), nil
}

type CreateTaskOptions struct {
	Title      string
	ProjectID  int64
	AssigneeID int64
	DueDate    string
}

// CreateTask adds a todo task at the head of the list.
func (s *Store) CreateTask(ctx context.Context, opts CreateTaskOptions) (domain.Task, error) {
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		return domain.Task{}, fmt.Errorf("task title required: %w", ErrInvalidInput)
	}
	if opts.DueDate != "" {
		if _, err := parseDate(opts.DueDate); err != nil {
			return domain.Task{}, fmt.Errorf("due date %q: %w", opts.DueDate, ErrInvalidInput)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.projects, opts.ProjectID, projectID) < 0 {
		return domain.Task{}, notFound("project", opts.ProjectID)
	}
	if indexOf(s.users, opts.AssigneeID, userID) < 0 {
		return domain.Task{}, notFound("user", opts.AssigneeID)
	}
	t := domain.Task{
		ID:         s.ids.Next(),
		Title:      title,
		ProjectID:  opts.ProjectID,
		AssignedTo: opts.AssigneeID,
		Status:     domain.TaskTodo,
		DueDate:    opts.DueDate,
	}
	s.tasks = prepended(s.tasks, t)
	s.feed.AddActivity(domain.ActivityTask, "New Task Created", fmt.Sprintf("Task %q was created.", t.Title))
	s.record(ctx, "task.create", "task", t.ID, events.EventPayload{"project_id": t.ProjectID, "assigned_to": t.AssignedTo})
	return t, nil
}

// AppendMessage adds a message to the sender/recipient thread and notifies
// the recipient. Blank text changes nothing and returns ErrEmptyMessage.
func (s *Store) AppendMessage(ctx context.Context, senderID, recipientID int64, text string) (domain.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return domain.ChatMessage{}, ErrEmptyMessage
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	si := indexOf(s.users, senderID, userID)
	if si < 0 {
		return domain.ChatMessage{}, notFound("user", senderID)
	}
	if indexOf(s.users, recipientID, userID) < 0 {
		return domain.ChatMessage{}, notFound("user", recipientID)
	}
	msg := domain.ChatMessage{
		ID:             s.ids.Next(),
		ConversationID: domain.ConversationID(senderID, recipientID),
		SenderID:       senderID,
		Text:           text,
		Timestamp:      s.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
	s.messages = appended(s.messages, msg)
	s.feed.AddNotification(fmt.Sprintf("New Message from %s", s.users[si].Name), preview(text), recipientID)
	s.record(ctx, "message.append", "message", msg.ID, events.EventPayload{"conversation_id": msg.ConversationID})
	return msg, nil
}

// SubmitApplication files a contractor's proposal for a project.
func (s *Store) SubmitApplication(ctx context.Context, contractorID, projID int64) (domain.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pi := indexOf(s.projects, projID, projectID)
	if pi < 0 {
		return domain.Application{}, notFound("project", projID)
	}
	ui := indexOf(s.users, contractorID, userID)
	if ui < 0 {
		return domain.Application{}, notFound("user", contractorID)
	}
	p := s.projects[pi]
	app := domain.Application{
		ID:            s.ids.Next(),
		ContractTitle: p.Title,
		Contractor:    s.users[ui].Name,
		ContractorID:  contractorID,
		Date:          s.now().UTC().Format(dateLayout),
		Status:        domain.ApplicationSubmitted,
	}
	s.applications = prepended(s.applications, app)
	s.feed.AddActivity(domain.ActivityApplication, "Proposal Submitted",
		fmt.Sprintf("You submitted a proposal for %q.", p.Title))
	s.feed.AddNotification("Proposal Submitted",
		fmt.Sprintf("Your proposal for %q is now under review.", p.Title), contractorID)
	s.record(ctx, "application.submit", "application", app.ID, events.EventPayload{"project_id": projID})
	return app, nil
}

type UploadDocumentOptions struct {
	UploaderID int64
	Name       string
	Type       domain.DocumentType
	SizeBytes  int64
}

// UploadDocument stores document metadata. A contractor upload also notifies
// the back office.
func (s *Store) UploadDocument(ctx context.Context, opts UploadDocumentOptions) (domain.Document, error) {
	if opts.Type == "" {
		opts.Type = domain.DocumentPDF
	}
	if !opts.Type.Valid() {
		return domain.Document{}, fmt.Errorf("document type %q: %w", opts.Type, ErrInvalidInput)
	}
	if opts.SizeBytes < 0 {
		return domain.Document{}, fmt.Errorf("negative document size: %w", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ui := indexOf(s.users, opts.UploaderID, userID)
	if ui < 0 {
		return domain.Document{}, notFound("user", opts.UploaderID)
	}
	u := s.users[ui]
	id := s.ids.Next()
	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = fmt.Sprintf("Document_%s_%d.pdf", strings.Join(strings.Fields(u.Name), "_"), id)
	}
	doc := domain.Document{
		ID:         id,
		Name:       name,
		Type:       opts.Type,
		Size:       sizeLabel(opts.SizeBytes),
		Date:       s.now().UTC().Format(documentDayLayout),
		UploadedBy: u.ID,
	}
	s.documents = prepended(s.documents, doc)
	s.feed.AddActivity(domain.ActivityDocument, "Document Uploaded", fmt.Sprintf("You uploaded a new file: %s", doc.Name))
	if u.Role == domain.RoleContractor {
		s.feed.AddNotification("File Received", fmt.Sprintf("%s uploaded a new document.", u.Name), 0)
	}
	s.record(ctx, "document.upload", "document", doc.ID, events.EventPayload{"name": doc.Name})
	return doc, nil
}

// MarkAllNotificationsRead returns how many notifications were unread.
func (s *Store) MarkAllNotificationsRead(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.feed.MarkAllRead()
	if n > 0 {
		s.record(ctx, "notification.read_all", "notification", 0, events.EventPayload{"count": n})
	}
	return n
}

func preview(text string) string {
	if utf8.RuneCountInString(text) > messagePreviewLen {
		text = string([]rune(text)[:messagePreviewLen])
	}
	return text + "..."
}

func sizeLabel(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1f MB", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1f KB", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
