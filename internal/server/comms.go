package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"rcadesk/internal/access"
	"rcadesk/internal/assistant"
	"rcadesk/internal/derive"
	"rcadesk/internal/domain"
	"rcadesk/internal/logging"
)

type partnerPath struct {
	PartnerID int64 `path:"partner_id" minimum:"1"`
}

// partnerFor checks that the caller may talk to the partner in the path.
func partnerFor(ctx context.Context, cfg Config, partnerID int64) (Principal, domain.User, []domain.ChatMessage, error) {
	p, authErr := principalFromContext(ctx)
	if authErr != nil {
		return Principal{}, domain.User{}, nil, authErr
	}
	if err := access.RequirePage(p.Actor(), access.PageMessages); err != nil {
		return p, domain.User{}, nil, err
	}
	snap := cfg.Store.Snapshot()
	var partner *domain.User
	for i := range snap.Users {
		if snap.Users[i].ID == partnerID {
			partner = &snap.Users[i]
			break
		}
	}
	if partner == nil {
		return p, domain.User{}, nil, newAPIError(http.StatusNotFound, "not_found", "user not found", map[string]any{"id": partnerID})
	}
	if err := access.RequireConversation(p.Actor(), *partner, snap.Users); err != nil {
		return p, domain.User{}, nil, err
	}
	return p, *partner, snap.Messages, nil
}

func registerConversations(api huma.API, cfg Config) {
	huma.Register(api, huma.Operation{
		OperationID: "list-conversations",
		Method:      http.MethodGet,
		Path:        "/conversations",
		Summary:     "Conversation partners with their latest message",
		Errors:      []int{http.StatusForbidden},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []derive.ConversationSummary `json:"body"`
	}, error) {
		actor, authErr := actorFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if err := access.RequirePage(actor, access.PageMessages); err != nil {
			return nil, handleError(err)
		}
		snap := cfg.Store.Snapshot()
		return &struct {
			Body []derive.ConversationSummary `json:"body"`
		}{Body: derive.ConversationPartners(actor, snap.Users, snap.Messages)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-messages",
		Method:      http.MethodGet,
		Path:        "/conversations/{partner_id}/messages",
		Summary:     "Messages with a partner, oldest first",
		Errors:      []int{http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *partnerPath) (*struct {
		Body []domain.ChatMessage `json:"body"`
	}, error) {
		p, partner, msgs, err := partnerFor(ctx, cfg, input.PartnerID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.ChatMessage `json:"body"`
		}{Body: derive.Conversation(msgs, p.User.ID, partner.ID)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "send-message",
		Method:        http.MethodPost,
		Path:          "/conversations/{partner_id}/messages",
		Summary:       "Send a message",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		PartnerID int64              `path:"partner_id" minimum:"1"`
		Body      SendMessageRequest `json:"body"`
	}) (*struct {
		Body domain.ChatMessage `json:"body"`
	}, error) {
		p, partner, _, err := partnerFor(ctx, cfg, input.PartnerID)
		if err != nil {
			return nil, handleError(err)
		}
		if err := access.Require(p.Actor(), access.ActionSendMessage); err != nil {
			return nil, handleError(err)
		}
		msg, err := cfg.Store.AppendMessage(ctx, p.User.ID, partner.ID, input.Body.Text)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.ChatMessage `json:"body"`
		}{Body: msg}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "draft-message",
		Method:      http.MethodPost,
		Path:        "/conversations/{partner_id}/draft",
		Summary:     "Draft a follow-up with the assistant",
		Errors:      []int{http.StatusForbidden, http.StatusNotFound, http.StatusTooManyRequests},
	}, func(ctx context.Context, input *partnerPath) (*struct {
		Body AssistantResponse `json:"body"`
	}, error) {
		p, partner, _, err := partnerFor(ctx, cfg, input.PartnerID)
		if err != nil {
			return nil, handleError(err)
		}
		if err := access.Require(p.Actor(), access.ActionAskAssistant); err != nil {
			return nil, handleError(err)
		}
		if busy := throttle(ctx, cfg, p.User.ID); busy != nil {
			return nil, busy
		}
		return &struct {
			Body AssistantResponse `json:"body"`
		}{Body: cfg.Assistant.Draft(ctx, p.User, partner.Name)}, nil
	})
}

func registerFeed(api huma.API, cfg Config) {
	huma.Register(api, huma.Operation{
		OperationID: "list-notifications",
		Method:      http.MethodGet,
		Path:        "/notifications",
		Summary:     "Notifications, newest first",
	}, func(ctx context.Context, input *struct {
		Limit int `query:"limit" minimum:"0" maximum:"200"`
	}) (*struct {
		Body NotificationsResponse `json:"body"`
	}, error) {
		if _, authErr := actorFromContext(ctx); authErr != nil {
			return nil, authErr
		}
		items := cfg.Store.Snapshot().Notifications
		resp := NotificationsResponse{Unread: derive.UnreadCount(items), Items: items}
		if limit := normalizeLimit(input.Limit); len(items) > limit {
			resp.Items = items[:limit]
		}
		return &struct {
			Body NotificationsResponse `json:"body"`
		}{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "mark-notifications-read",
		Method:      http.MethodPost,
		Path:        "/notifications/read-all",
		Summary:     "Mark every notification read",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body MarkReadResponse `json:"body"`
	}, error) {
		if _, authErr := actorFromContext(ctx); authErr != nil {
			return nil, authErr
		}
		return &struct {
			Body MarkReadResponse `json:"body"`
		}{Body: MarkReadResponse{Updated: cfg.Store.MarkAllNotificationsRead(ctx)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-activities",
		Method:      http.MethodGet,
		Path:        "/activities",
		Summary:     "Activity log, newest first",
	}, func(ctx context.Context, input *struct {
		Limit int `query:"limit" minimum:"0" maximum:"200"`
	}) (*struct {
		Body []domain.Activity `json:"body"`
	}, error) {
		if _, authErr := actorFromContext(ctx); authErr != nil {
			return nil, authErr
		}
		items := cfg.Store.Snapshot().Activities
		if limit := normalizeLimit(input.Limit); len(items) > limit {
			items = items[:limit]
		}
		return &struct {
			Body []domain.Activity `json:"body"`
		}{Body: items}, nil
	})
}

func registerAssistant(api huma.API, cfg Config) {
	huma.Register(api, huma.Operation{
		OperationID: "ask-assistant",
		Method:      http.MethodPost,
		Path:        "/assistant/ask",
		Summary:     "Ask the assistant about visible projects",
		Errors:      []int{http.StatusBadRequest, http.StatusForbidden, http.StatusTooManyRequests},
	}, func(ctx context.Context, input *struct {
		Body AskRequest `json:"body"`
	}) (*struct {
		Body AssistantResponse `json:"body"`
	}, error) {
		p, authErr := principalFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		actor := p.Actor()
		if err := access.Require(actor, access.ActionAskAssistant); err != nil {
			return nil, handleError(err)
		}
		if busy := throttle(ctx, cfg, actor.ID); busy != nil {
			return nil, busy
		}
		projects := access.Scope(actor, cfg.Store.Snapshot()).Projects
		return &struct {
			Body AssistantResponse `json:"body"`
		}{Body: cfg.Assistant.Ask(ctx, p.User, projects, input.Body.Question)}, nil
	})
}

func throttle(ctx context.Context, cfg Config, actorID int64) huma.StatusError {
	if cfg.Limiter.Allow(actorID) {
		return nil
	}
	logging.FromContext(ctx).Warn("assistant rate limited")
	return newAPIError(http.StatusTooManyRequests, "rate_limited", assistant.ReplyBusy, nil)
}
