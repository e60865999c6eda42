package access

import "rcadesk/internal/domain"

type Action string

const (
	ActionMoveProject       Action = "project.move"
	ActionSetApplication    Action = "application.set_status"
	ActionSetUserStatus     Action = "user.set_status"
	ActionCreateTask        Action = "task.create"
	ActionApply             Action = "project.apply"
	ActionUploadDocument    Action = "document.upload"
	ActionSendMessage       Action = "message.send"
	ActionAskAssistant      Action = "assistant.ask"
	ActionViewClientDetails Action = "client.view"
)

// Require reports whether the actor's role grants the action.
func Require(a domain.Actor, action Action) error {
	if allowed(a.Role, action) {
		return nil
	}
	return AccessDeniedError{Role: a.Role, Resource: string(action)}
}

func allowed(role domain.Role, action Action) bool {
	switch role {
	case domain.RoleAdmin:
		switch action {
		case ActionMoveProject, ActionSetApplication, ActionSetUserStatus, ActionCreateTask,
			ActionUploadDocument, ActionSendMessage, ActionAskAssistant, ActionViewClientDetails:
			return true
		}
	case domain.RoleContractor:
		switch action {
		case ActionApply, ActionUploadDocument, ActionSendMessage, ActionAskAssistant:
			return true
		}
	}
	return false
}

// RequireInvoiceStatus allows administrators any status change. A contractor
// may only pay an outstanding invoice billed to them.
func RequireInvoiceStatus(a domain.Actor, inv domain.Invoice, status domain.InvoiceStatus) error {
	switch a.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleContractor:
		if inv.ClientID == a.ID && status == domain.InvoicePaid && inv.Status.Outstanding() {
			return nil
		}
	}
	return AccessDeniedError{Role: a.Role, Resource: "invoice status " + string(status)}
}

// RequireConversation allows a thread only between an actor and one of their
// partners.
func RequireConversation(a domain.Actor, partner domain.User, users []domain.User) error {
	for _, p := range Partners(a, users) {
		if p.ID == partner.ID {
			return nil
		}
	}
	return AccessDeniedError{Role: a.Role, Resource: "conversation"}
}

// Partners lists who the actor may message: administrators reach every
// contractor, contractors reach the first administrator.
func Partners(a domain.Actor, users []domain.User) []domain.User {
	var out []domain.User
	switch a.Role {
	case domain.RoleAdmin:
		for _, u := range users {
			if u.Role == domain.RoleContractor {
				out = append(out, u)
			}
		}
	case domain.RoleContractor:
		for _, u := range users {
			if u.Role == domain.RoleAdmin {
				out = append(out, u)
				break
			}
		}
	}
	return out
}
