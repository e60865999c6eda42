package domain

import "strconv"

type User struct {
	ID             int64      `json:"id" yaml:"id"`
	Name           string     `json:"name" yaml:"name"`
	Role           Role       `json:"role" yaml:"role" enum:"admin,contractor"`
	Email          string     `json:"email" yaml:"email"`
	Avatar         string     `json:"avatar,omitempty" yaml:"avatar"`
	CompanyName    string     `json:"company_name" yaml:"company_name"`
	Status         UserStatus `json:"status" yaml:"status" enum:"active,pending_review"`
	Certifications []string   `json:"certifications" yaml:"certifications"`
	Tags           []string   `json:"tags" yaml:"tags"`
}

type DocumentRef struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

type Project struct {
	ID               int64         `json:"id" yaml:"id"`
	Title            string        `json:"title" yaml:"title"`
	ClientName       string        `json:"client_name" yaml:"client_name"`
	ClientID         int64         `json:"client_id" yaml:"client_id"`
	Value            string        `json:"value" yaml:"value"`
	Description      string        `json:"description,omitempty" yaml:"description"`
	Tags             []string      `json:"tags" yaml:"tags"`
	Deadline         string        `json:"deadline" yaml:"deadline" format:"date"`
	Status           ProjectStatus `json:"status" yaml:"status" enum:"opportunity,in_progress,on_hold,completed"`
	RelatedDocuments []DocumentRef `json:"related_documents" yaml:"related_documents"`
	BudgetedHours    float64       `json:"budgeted_hours" yaml:"budgeted_hours"`
	TrackedHours     float64       `json:"tracked_hours" yaml:"tracked_hours"`
	Rate             float64       `json:"rate" yaml:"rate"`
	Expenses         float64       `json:"expenses" yaml:"expenses"`
}

type Application struct {
	ID            int64             `json:"id" yaml:"id"`
	ContractTitle string            `json:"contract_title" yaml:"contract_title"`
	Contractor    string            `json:"contractor" yaml:"contractor"`
	ContractorID  int64             `json:"contractor_id" yaml:"contractor_id"`
	Date          string            `json:"date" yaml:"date"`
	Status        ApplicationStatus `json:"status" yaml:"status" enum:"draft,submitted,review,update,approved,rejected"`
}

type Task struct {
	ID         int64      `json:"id" yaml:"id"`
	Title      string     `json:"title" yaml:"title"`
	ProjectID  int64      `json:"project_id" yaml:"project_id"`
	AssignedTo int64      `json:"assigned_to" yaml:"assigned_to"`
	Status     TaskStatus `json:"status" yaml:"status" enum:"todo,in_progress,done"`
	DueDate    string     `json:"due_date" yaml:"due_date" format:"date"`
}

type InvoiceLineItem struct {
	Description string  `json:"description" yaml:"description"`
	Quantity    float64 `json:"quantity" yaml:"quantity"`
	Price       float64 `json:"price" yaml:"price"`
}

type Invoice struct {
	ID        int64             `json:"id" yaml:"id"`
	ClientID  int64             `json:"client_id" yaml:"client_id"`
	ProjectID int64             `json:"project_id" yaml:"project_id"`
	Amount    float64           `json:"amount" yaml:"amount"`
	Status    InvoiceStatus     `json:"status" yaml:"status" enum:"draft,sent,paid,overdue"`
	IssueDate string            `json:"issue_date" yaml:"issue_date" format:"date"`
	DueDate   string            `json:"due_date" yaml:"due_date" format:"date"`
	LineItems []InvoiceLineItem `json:"line_items" yaml:"line_items"`
}

type Document struct {
	ID         int64        `json:"id" yaml:"id"`
	Name       string       `json:"name" yaml:"name"`
	Type       DocumentType `json:"type" yaml:"type" enum:"pdf,word,excel"`
	Size       string       `json:"size" yaml:"size"`
	Date       string       `json:"date" yaml:"date"`
	UploadedBy int64        `json:"uploaded_by" yaml:"uploaded_by"`
}

type ChatMessage struct {
	ID             int64  `json:"id" yaml:"id"`
	ConversationID string `json:"conversation_id" yaml:"conversation_id"`
	SenderID       int64  `json:"sender_id" yaml:"sender_id"`
	Text           string `json:"text" yaml:"text"`
	Timestamp      string `json:"timestamp" yaml:"timestamp" format:"date-time"`
}

// Notification.RecipientID is 0 for entries that are not addressed to a single user.
type Notification struct {
	ID          int64  `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Time        string `json:"time" yaml:"time"`
	Read        bool   `json:"read" yaml:"read"`
	RecipientID int64  `json:"recipient_id,omitempty" yaml:"recipient_id"`
}

type Activity struct {
	ID          int64        `json:"id" yaml:"id"`
	Type        ActivityType `json:"type" yaml:"type" enum:"contract,user,feedback,deadline,document,application,task,invoice"`
	Title       string       `json:"title" yaml:"title"`
	Description string       `json:"description" yaml:"description"`
	Time        string       `json:"time" yaml:"time"`
}

// Actor is the authenticated user performing an operation.
type Actor struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

// ConversationID keys the thread between two participants. The pair is
// unordered: ConversationID(a, b) == ConversationID(b, a).
func ConversationID(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return strconv.FormatInt(a, 10) + "_" + strconv.FormatInt(b, 10)
}
