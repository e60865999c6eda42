package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"rcadesk/internal/access"
	"rcadesk/internal/derive"
	"rcadesk/internal/domain"
	"rcadesk/internal/store"
)

type idPath struct {
	ID int64 `path:"id" minimum:"1"`
}

// view resolves the caller, checks the page and returns their scoped data.
func view(ctx context.Context, cfg Config, page access.Page) (domain.Actor, store.Snapshot, error) {
	actor, authErr := actorFromContext(ctx)
	if authErr != nil {
		return domain.Actor{}, store.Snapshot{}, authErr
	}
	if err := access.RequirePage(actor, page); err != nil {
		return actor, store.Snapshot{}, err
	}
	return actor, access.Scope(actor, cfg.Store.Snapshot()), nil
}

func allow(ctx context.Context, action access.Action) (domain.Actor, error) {
	actor, authErr := actorFromContext(ctx)
	if authErr != nil {
		return domain.Actor{}, authErr
	}
	if err := access.Require(actor, action); err != nil {
		return actor, err
	}
	return actor, nil
}

func registerAuth(api huma.API, cfg Config) {
	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Sign in with email and role",
		Errors:      []int{http.StatusBadRequest, http.StatusUnauthorized},
	}, func(ctx context.Context, input *struct {
		Body LoginRequest `json:"body"`
	}) (*struct {
		Body LoginResponse `json:"body"`
	}, error) {
		role, err := domain.ParseRole(input.Body.Role)
		if err != nil {
			return nil, badRequest(err)
		}
		u, err := access.Login(cfg.Store.Snapshot().Users, input.Body.Email, role)
		if err != nil {
			return nil, handleError(err)
		}
		token, err := signToken(cfg.Auth.JWTSecret, u, cfg.Auth.TokenTTL, cfg.Now())
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body LoginResponse `json:"body"`
		}{Body: LoginResponse{Token: token, User: u, Pages: access.Pages(u.Role)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "me",
		Method:      http.MethodGet,
		Path:        "/me",
		Summary:     "Current user",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body MeResponse `json:"body"`
	}, error) {
		p, authErr := principalFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		return &struct {
			Body MeResponse `json:"body"`
		}{Body: MeResponse{User: p.User, Pages: access.Pages(p.User.Role), Source: p.Source}}, nil
	})
}

func registerViews(api huma.API, cfg Config) {
	huma.Register(api, huma.Operation{
		OperationID: "dashboard",
		Method:      http.MethodGet,
		Path:        "/dashboard",
		Summary:     "Role dashboard",
		Errors:      []int{http.StatusForbidden},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body derive.DashboardView `json:"body"`
	}, error) {
		actor, authErr := actorFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		dv, err := derive.Dashboard(actor, cfg.Store.Snapshot(), cfg.Now(), cfg.Limits)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body derive.DashboardView `json:"body"`
		}{Body: dv}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "analytics",
		Method:      http.MethodGet,
		Path:        "/analytics",
		Summary:     "Revenue and delivery analytics",
		Errors:      []int{http.StatusForbidden},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body derive.AnalyticsView `json:"body"`
	}, error) {
		_, snap, err := view(ctx, cfg, access.PageAnalytics)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body derive.AnalyticsView `json:"body"`
		}{Body: derive.Analytics(snap)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "team",
		Method:      http.MethodGet,
		Path:        "/team",
		Summary:     "Team workload",
		Errors:      []int{http.StatusForbidden},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []derive.MemberLoad `json:"body"`
	}, error) {
		_, snap, err := view(ctx, cfg, access.PageTeam)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []derive.MemberLoad `json:"body"`
		}{Body: derive.TeamLoad(snap)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-client",
		Method:      http.MethodGet,
		Path:        "/clients/{id}",
		Summary:     "Client detail",
		Errors:      []int{http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *idPath) (*struct {
		Body derive.ClientView `json:"body"`
	}, error) {
		actor, snap, err := view(ctx, cfg, access.PageClientDetail)
		if err != nil {
			return nil, handleError(err)
		}
		if err := access.Require(actor, access.ActionViewClientDetails); err != nil {
			return nil, handleError(err)
		}
		cv, ok := derive.ClientDetail(snap, input.ID)
		if !ok {
			return nil, newAPIError(http.StatusNotFound, "not_found", "client not found", map[string]any{"id": input.ID})
		}
		return &struct {
			Body derive.ClientView `json:"body"`
		}{Body: cv}, nil
	})
}

func registerUsers(api huma.API, cfg Config) {
	huma.Register(api, huma.Operation{
		OperationID: "list-users",
		Method:      http.MethodGet,
		Path:        "/users",
		Summary:     "List users",
		Errors:      []int{http.StatusForbidden},
	}, func(ctx context.Context, input *struct {
		Role string `query:"role" doc:"Filter by role"`
	}) (*struct {
		Body []domain.User `json:"body"`
	}, error) {
		_, snap, err := view(ctx, cfg, access.PageClients)
		if err != nil {
			return nil, handleError(err)
		}
		users := snap.Users
		if input.Role != "" {
			role, err := domain.ParseRole(input.Role)
			if err != nil {
				return nil, badRequest(err)
			}
			users = []domain.User{}
			for _, u := range snap.Users {
				if u.Role == role {
					users = append(users, u)
				}
			}
		}
		return &struct {
			Body []domain.User `json:"body"`
		}{Body: users}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-user-status",
		Method:      http.MethodPatch,
		Path:        "/users/{id}/status",
		Summary:     "Approve or suspend a user",
		Errors:      []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   int64                `path:"id" minimum:"1"`
		Body SetUserStatusRequest `json:"body"`
	}) (*struct {
		Body domain.User `json:"body"`
	}, error) {
		if _, err := allow(ctx, access.ActionSetUserStatus); err != nil {
			return nil, handleError(err)
		}
		status, err := domain.ParseUserStatus(input.Body.Status)
		if err != nil {
			return nil, badRequest(err)
		}
		u, err := cfg.Store.SetUserStatus(ctx, input.ID, status)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.User `json:"body"`
		}{Body: u}, nil
	})
}
