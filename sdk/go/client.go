package rcadesksdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rcadesk/internal/assistant"
	"rcadesk/internal/derive"
	"rcadesk/internal/domain"
)

// Client is a minimal rcadesk HTTP API client.
type Client struct {
	BaseURL     string
	BasePath    string
	BearerToken string
	// ActorID is sent as X-Actor-Id when no bearer token is set.
	ActorID    int64
	HTTPClient *http.Client
	Timeout    time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:  baseURL,
		BasePath: "/v0",
		Timeout:  30 * time.Second,
	}
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error: status=%d code=%s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

type Session struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
	Pages []string    `json:"pages"`
}

type Notifications struct {
	Unread int                   `json:"unread"`
	Items  []domain.Notification `json:"items"`
}

// Login signs in and keeps the token for later calls.
func (c *Client) Login(ctx context.Context, email string, role domain.Role) (Session, error) {
	var resp Session
	err := c.do(ctx, http.MethodPost, "auth/login", map[string]any{"email": email, "role": role}, &resp)
	if err == nil {
		c.BearerToken = resp.Token
	}
	return resp, err
}

func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var resp struct {
		User domain.User `json:"user"`
	}
	err := c.do(ctx, http.MethodGet, "me", nil, &resp)
	return resp.User, err
}

func (c *Client) Dashboard(ctx context.Context) (derive.DashboardView, error) {
	var resp derive.DashboardView
	err := c.do(ctx, http.MethodGet, "dashboard", nil, &resp)
	return resp, err
}

func (c *Client) Analytics(ctx context.Context) (derive.AnalyticsView, error) {
	var resp derive.AnalyticsView
	err := c.do(ctx, http.MethodGet, "analytics", nil, &resp)
	return resp, err
}

func (c *Client) Team(ctx context.Context) ([]derive.MemberLoad, error) {
	var resp []derive.MemberLoad
	err := c.do(ctx, http.MethodGet, "team", nil, &resp)
	return resp, err
}

func (c *Client) ClientDetail(ctx context.Context, id int64) (derive.ClientView, error) {
	var resp derive.ClientView
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("clients/%d", id), nil, &resp)
	return resp, err
}

// Projects lists visible projects, optionally only those in status.
func (c *Client) Projects(ctx context.Context, status string) ([]domain.Project, error) {
	endpoint := "projects"
	if status != "" {
		endpoint += "?status=" + url.QueryEscape(status)
	}
	var resp []domain.Project
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

func (c *Client) MoveProject(ctx context.Context, id int64, status domain.ProjectStatus) (domain.Project, error) {
	var resp domain.Project
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("projects/%d/status", id), map[string]any{"status": status}, &resp)
	return resp, err
}

func (c *Client) Apply(ctx context.Context, projectID int64) (domain.Application, error) {
	var resp domain.Application
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("projects/%d/apply", projectID), nil, &resp)
	return resp, err
}

func (c *Client) Applications(ctx context.Context) ([]domain.Application, error) {
	var resp []domain.Application
	err := c.do(ctx, http.MethodGet, "applications", nil, &resp)
	return resp, err
}

func (c *Client) SetApplicationStatus(ctx context.Context, id int64, status domain.ApplicationStatus) (domain.Application, error) {
	var resp domain.Application
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("applications/%d/status", id), map[string]any{"status": status}, &resp)
	return resp, err
}

func (c *Client) Tasks(ctx context.Context, projectID int64) ([]domain.Task, error) {
	endpoint := "tasks"
	if projectID != 0 {
		endpoint = fmt.Sprintf("tasks?project_id=%d", projectID)
	}
	var resp []domain.Task
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

func (c *Client) CreateTask(ctx context.Context, title string, projectID, assignee int64, dueDate string) (domain.Task, error) {
	body := map[string]any{
		"title":       title,
		"project_id":  projectID,
		"assigned_to": assignee,
	}
	if dueDate != "" {
		body["due_date"] = dueDate
	}
	var resp domain.Task
	err := c.do(ctx, http.MethodPost, "tasks", body, &resp)
	return resp, err
}

func (c *Client) Invoices(ctx context.Context) ([]domain.Invoice, error) {
	var resp []domain.Invoice
	err := c.do(ctx, http.MethodGet, "invoices", nil, &resp)
	return resp, err
}

func (c *Client) SetInvoiceStatus(ctx context.Context, id int64, status domain.InvoiceStatus) (domain.Invoice, error) {
	var resp domain.Invoice
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("invoices/%d/status", id), map[string]any{"status": status}, &resp)
	return resp, err
}

func (c *Client) Users(ctx context.Context, role string) ([]domain.User, error) {
	endpoint := "users"
	if role != "" {
		endpoint += "?role=" + url.QueryEscape(role)
	}
	var resp []domain.User
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

func (c *Client) SetUserStatus(ctx context.Context, id int64, status domain.UserStatus) (domain.User, error) {
	var resp domain.User
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("users/%d/status", id), map[string]any{"status": status}, &resp)
	return resp, err
}

func (c *Client) Documents(ctx context.Context) ([]domain.Document, error) {
	var resp []domain.Document
	err := c.do(ctx, http.MethodGet, "documents", nil, &resp)
	return resp, err
}

// UploadDocument records document metadata; an empty name gets a generated one.
func (c *Client) UploadDocument(ctx context.Context, name string, typ domain.DocumentType, sizeBytes int64) (domain.Document, error) {
	body := map[string]any{"size_bytes": sizeBytes}
	if name != "" {
		body["name"] = name
	}
	if typ != "" {
		body["type"] = typ
	}
	var resp domain.Document
	err := c.do(ctx, http.MethodPost, "documents", body, &resp)
	return resp, err
}

func (c *Client) Conversations(ctx context.Context) ([]derive.ConversationSummary, error) {
	var resp []derive.ConversationSummary
	err := c.do(ctx, http.MethodGet, "conversations", nil, &resp)
	return resp, err
}

func (c *Client) Messages(ctx context.Context, partnerID int64) ([]domain.ChatMessage, error) {
	var resp []domain.ChatMessage
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("conversations/%d/messages", partnerID), nil, &resp)
	return resp, err
}

func (c *Client) SendMessage(ctx context.Context, partnerID int64, text string) (domain.ChatMessage, error) {
	var resp domain.ChatMessage
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("conversations/%d/messages", partnerID), map[string]any{"text": text}, &resp)
	return resp, err
}

func (c *Client) DraftMessage(ctx context.Context, partnerID int64) (assistant.Reply, error) {
	var resp assistant.Reply
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("conversations/%d/draft", partnerID), nil, &resp)
	return resp, err
}

func (c *Client) Notifications(ctx context.Context, limit int) (Notifications, error) {
	var resp Notifications
	err := c.do(ctx, http.MethodGet, withLimit("notifications", limit), nil, &resp)
	return resp, err
}

// MarkAllRead returns how many notifications flipped to read.
func (c *Client) MarkAllRead(ctx context.Context) (int, error) {
	var resp struct {
		Updated int `json:"updated"`
	}
	err := c.do(ctx, http.MethodPost, "notifications/read-all", nil, &resp)
	return resp.Updated, err
}

func (c *Client) Activities(ctx context.Context, limit int) ([]domain.Activity, error) {
	var resp []domain.Activity
	err := c.do(ctx, http.MethodGet, withLimit("activities", limit), nil, &resp)
	return resp, err
}

func (c *Client) Ask(ctx context.Context, question string) (assistant.Reply, error) {
	var resp assistant.Reply
	err := c.do(ctx, http.MethodPost, "assistant/ask", map[string]any{"question": question}, &resp)
	return resp, err
}

func withLimit(endpoint string, limit int) string {
	if limit > 0 {
		return fmt.Sprintf("%s?limit=%d", endpoint, limit)
	}
	return endpoint
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	switch {
	case c.BearerToken != "":
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	case c.ActorID != 0:
		req.Header.Set("X-Actor-Id", fmt.Sprint(c.ActorID))
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(b)}
		var env struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(b, &env) == nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	base := strings.TrimRight(c.BaseURL, "/")
	if p := strings.Trim(c.BasePath, "/"); p != "" {
		base += "/" + p
	}
	return base
}
