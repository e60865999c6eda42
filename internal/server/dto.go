package server

import (
	"rcadesk/internal/access"
	"rcadesk/internal/assistant"
	"rcadesk/internal/domain"
)

// Request payloads

type LoginRequest struct {
	Email string `json:"email" minLength:"1"`
	Role  string `json:"role" enum:"admin,contractor"`
}

type SetProjectStatusRequest struct {
	Status string `json:"status" enum:"opportunity,in_progress,on_hold,completed"`
}

type SetApplicationStatusRequest struct {
	Status string `json:"status" enum:"draft,submitted,review,update,approved,rejected"`
}

type SetInvoiceStatusRequest struct {
	Status string `json:"status" enum:"draft,sent,paid,overdue"`
}

type SetUserStatusRequest struct {
	Status string `json:"status" enum:"active,pending_review"`
}

type CreateTaskRequest struct {
	Title      string `json:"title" minLength:"1"`
	ProjectID  int64  `json:"project_id"`
	AssignedTo int64  `json:"assigned_to"`
	DueDate    string `json:"due_date,omitempty" format:"date"`
}

type UploadDocumentRequest struct {
	Name      string `json:"name,omitempty"`
	Type      string `json:"type,omitempty" enum:"pdf,word,excel"`
	SizeBytes int64  `json:"size_bytes,omitempty" minimum:"0"`
}

type SendMessageRequest struct {
	Text string `json:"text"`
}

type AskRequest struct {
	Question string `json:"question" minLength:"1"`
}

// Response payloads

type LoginResponse struct {
	Token string        `json:"token"`
	User  domain.User   `json:"user"`
	Pages []access.Page `json:"pages"`
}

type MeResponse struct {
	User   domain.User   `json:"user"`
	Pages  []access.Page `json:"pages"`
	Source string        `json:"source" enum:"jwt,legacy_header"`
}

type NotificationsResponse struct {
	Unread int                   `json:"unread"`
	Items  []domain.Notification `json:"items"`
}

type MarkReadResponse struct {
	Updated int `json:"updated"`
}

type AssistantResponse = assistant.Reply
