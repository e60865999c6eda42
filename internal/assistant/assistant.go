// Package assistant answers free-text questions about projects through a
// hosted text-generation model. Every failure resolves to a fixed reply; one
// attempt is made per request.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"rcadesk/internal/domain"
	"rcadesk/internal/logging"
)

const (
	ReplyUnavailable = "The AI assistant is currently unavailable because the API key is not configured."
	ReplyCallFailed  = "I encountered an error while processing your request. Please check the data format or try again later."
	ReplyEmpty       = "I encountered an error while processing your request. Please try again."
	ReplyBusy        = "Sorry, I'm having trouble connecting. Please try again later."
)

// Generator produces text from a system instruction and a prompt.
type Generator interface {
	Generate(ctx context.Context, systemInstruction, prompt string) (string, error)
}

type Assistant struct {
	// Gen is nil when no API key is configured.
	Gen Generator
}

// Reply is the assistant's answer. Fallback marks a fixed reply that stands
// in for model output.
type Reply struct {
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
}

type projectBrief struct {
	Title      string               `json:"title"`
	Value      string               `json:"value"`
	Deadline   string               `json:"deadline"`
	Tags       []string             `json:"tags"`
	ClientName string               `json:"clientName"`
	Status     domain.ProjectStatus `json:"status"`
}

// Ask answers question using only the given projects. Callers pass the
// projects the user is allowed to see.
func (a Assistant) Ask(ctx context.Context, user domain.User, projects []domain.Project, question string) Reply {
	if a.Gen == nil {
		return Reply{Text: ReplyUnavailable, Fallback: true}
	}
	prompt, err := buildPrompt(projects, question)
	if err != nil {
		logging.FromContext(ctx).Warn("assistant prompt", "err", err)
		return Reply{Text: ReplyCallFailed, Fallback: true}
	}
	text, err := a.Gen.Generate(ctx, systemInstruction(user), prompt)
	if err != nil {
		logging.FromContext(ctx).Warn("assistant call failed", "err", err)
		return Reply{Text: ReplyCallFailed, Fallback: true}
	}
	if strings.TrimSpace(text) == "" {
		return Reply{Text: ReplyEmpty, Fallback: true}
	}
	return Reply{Text: text}
}

// Draft writes a short follow-up message to partner.
func (a Assistant) Draft(ctx context.Context, user domain.User, partner string) Reply {
	return a.Ask(ctx, user, nil, DraftRequest(partner))
}

func DraftRequest(partner string) string {
	return fmt.Sprintf("Draft a professional follow-up email to %s regarding our ongoing work. Keep it brief and friendly.", partner)
}

func systemInstruction(u domain.User) string {
	return fmt.Sprintf(`You are an expert assistant for a company called Rosado Commercial Advisors (RCA). Your role is to analyze project data and help with communications.
The user you are speaking to is %s, who is an %s. Tailor your response accordingly.
- Be professional and helpful.
- If asked to analyze data (e.g., "which project is most valuable"), provide a clear, concise answer based ONLY on the provided JSON data.
- If asked to draft an email or a message, generate a professional, well-formatted message. You can infer common business scenarios (e.g., following up on an invoice, checking project status).
- Do not make up information for data analysis questions. If the answer is not in the provided data, state that you cannot find the information.
- Base all your answers ONLY on the JSON data provided in the prompt.`, u.Name, u.Role)
}

func buildPrompt(projects []domain.Project, question string) (string, error) {
	briefs := make([]projectBrief, 0, len(projects))
	for _, p := range projects {
		tags := p.Tags
		if tags == nil {
			tags = []string{}
		}
		briefs = append(briefs, projectBrief{
			Title:      p.Title,
			Value:      p.Value,
			Deadline:   p.Deadline,
			Tags:       tags,
			ClientName: p.ClientName,
			Status:     p.Status,
		})
	}
	data, err := json.MarshalIndent(briefs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode projects: %w", err)
	}
	return fmt.Sprintf("Here is the current list of projects in JSON format: %s.\n\nPlease answer the following request based on this data: %q", data, question), nil
}
