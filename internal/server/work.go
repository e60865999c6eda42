package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"rcadesk/internal/access"
	"rcadesk/internal/domain"
	"rcadesk/internal/store"
)

func registerProjects(api huma.API, cfg Config) {
	huma.Register(api, huma.Operation{
		OperationID: "list-projects",
		Method:      http.MethodGet,
		Path:        "/projects",
		Summary:     "List projects",
		Errors:      []int{http.StatusBadRequest, http.StatusForbidden},
	}, func(ctx context.Context, input *struct {
		Status string `query:"status" doc:"Filter by kanban column"`
	}) (*struct {
		Body []domain.Project `json:"body"`
	}, error) {
		_, snap, err := view(ctx, cfg, access.PageProjects)
		if err != nil {
			return nil, handleError(err)
		}
		items := snap.Projects
		if input.Status != "" {
			status, err := domain.ParseProjectStatus(input.Status)
			if err != nil {
				return nil, badRequest(err)
			}
			items = []domain.Project{}
			for _, p := range snap.Projects {
				if p.Status == status {
					items = append(items, p)
				}
			}
		}
		return &struct {
			Body []domain.Project `json:"body"`
		}{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-project-status",
		Method:      http.MethodPatch,
		Path:        "/projects/{id}/status",
		Summary:     "Move a project to another column",
		Errors:      []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ID   int64                   `path:"id" minimum:"1"`
		Body SetProjectStatusRequest `json:"body"`
	}) (*struct {
		Body domain.Project `json:"body"`
	}, error) {
		if _, err := allow(ctx, access.ActionMoveProject); err != nil {
			return nil, handleError(err)
		}
		status, err := domain.ParseProjectStatus(input.Body.Status)
		if err != nil {
			return nil, badRequest(err)
		}
		p, err := cfg.Store.AdvanceProjectStatus(ctx, input.ID, status)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Project `json:"body"`
		}{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "apply-to-project",
		Method:        http.MethodPost,
		Path:          "/projects/{id}/apply",
		Summary:       "Submit a proposal for an opportunity",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *idPath) (*struct {
		Body domain.Application `json:"body"`
	}, error) {
		actor, err := allow(ctx, access.ActionApply)
		if err != nil {
			return nil, handleError(err)
		}
		app, err := cfg.Store.SubmitApplication(ctx, actor.ID, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Application `json:"body"`
		}{Body: app}, nil
	})
}

func registerApplications(api huma.API, cfg Config) {
	huma.Register(api, huma.Operation{
		OperationID: "list-applications",
		Method:      http.MethodGet,
		Path:        "/applications",
		Summary:     "List applications",
		Errors:      []int{http.StatusForbidden},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []domain.Application `json:"body"`
	}, error) {
		_, snap, err := view(ctx, cfg, access.PageApplications)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.Application `json:"body"`
		}{Body: snap.Applications}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-application-status",
		Method:      http.MethodPatch,
		Path:        "/applications/{id}/status",
		Summary:     "Review an application",
		Errors:      []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ID   int64                       `path:"id" minimum:"1"`
		Body SetApplicationStatusRequest `json:"body"`
	}) (*struct {
		Body domain.Application `json:"body"`
	}, error) {
		if _, err := allow(ctx, access.ActionSetApplication); err != nil {
			return nil, handleError(err)
		}
		status, err := domain.ParseApplicationStatus(input.Body.Status)
		if err != nil {
			return nil, badRequest(err)
		}
		app, err := cfg.Store.SetApplicationStatus(ctx, input.ID, status)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Application `json:"body"`
		}{Body: app}, nil
	})
}

func registerTasks(api huma.API, cfg Config) {
	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List tasks",
		Errors:      []int{http.StatusBadRequest, http.StatusForbidden},
	}, func(ctx context.Context, input *struct {
		ProjectID int64 `query:"project_id" doc:"Only tasks of this project"`
	}) (*struct {
		Body []domain.Task `json:"body"`
	}, error) {
		_, snap, err := view(ctx, cfg, access.PageTasks)
		if err != nil {
			return nil, handleError(err)
		}
		items := snap.Tasks
		if input.ProjectID != 0 {
			items = []domain.Task{}
			for _, t := range snap.Tasks {
				if t.ProjectID == input.ProjectID {
					items = append(items, t)
				}
			}
		}
		return &struct {
			Body []domain.Task `json:"body"`
		}{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-task",
		Method:        http.MethodPost,
		Path:          "/tasks",
		Summary:       "Create task",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		Body CreateTaskRequest `json:"body"`
	}) (*struct {
		Body domain.Task `json:"body"`
	}, error) {
		if _, err := allow(ctx, access.ActionCreateTask); err != nil {
			return nil, handleError(err)
		}
		t, err := cfg.Store.CreateTask(ctx, store.CreateTaskOptions{
			Title:      input.Body.Title,
			ProjectID:  input.Body.ProjectID,
			AssigneeID: input.Body.AssignedTo,
			DueDate:    input.Body.DueDate,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Task `json:"body"`
		}{Body: t}, nil
	})
}

func registerInvoices(api huma.API, cfg Config) {
	huma.Register(api, huma.Operation{
		OperationID: "list-invoices",
		Method:      http.MethodGet,
		Path:        "/invoices",
		Summary:     "List invoices",
		Errors:      []int{http.StatusForbidden},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []domain.Invoice `json:"body"`
	}, error) {
		_, snap, err := view(ctx, cfg, access.PageBilling)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.Invoice `json:"body"`
		}{Body: snap.Invoices}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-invoice-status",
		Method:      http.MethodPatch,
		Path:        "/invoices/{id}/status",
		Summary:     "Change invoice status",
		Errors:      []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ID   int64                   `path:"id" minimum:"1"`
		Body SetInvoiceStatusRequest `json:"body"`
	}) (*struct {
		Body domain.Invoice `json:"body"`
	}, error) {
		actor, snap, err := view(ctx, cfg, access.PageBilling)
		if err != nil {
			return nil, handleError(err)
		}
		status, err := domain.ParseInvoiceStatus(input.Body.Status)
		if err != nil {
			return nil, badRequest(err)
		}
		var current *domain.Invoice
		for i := range snap.Invoices {
			if snap.Invoices[i].ID == input.ID {
				current = &snap.Invoices[i]
				break
			}
		}
		if current == nil {
			return nil, newAPIError(http.StatusNotFound, "not_found", "invoice not found", map[string]any{"id": input.ID})
		}
		if err := access.RequireInvoiceStatus(actor, *current, status); err != nil {
			return nil, handleError(err)
		}
		inv, err := cfg.Store.SetInvoiceStatus(ctx, input.ID, status)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Invoice `json:"body"`
		}{Body: inv}, nil
	})
}

func registerDocuments(api huma.API, cfg Config) {
	huma.Register(api, huma.Operation{
		OperationID: "list-documents",
		Method:      http.MethodGet,
		Path:        "/documents",
		Summary:     "List documents",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []domain.Document `json:"body"`
	}, error) {
		actor, authErr := actorFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		snap := access.Scope(actor, cfg.Store.Snapshot())
		return &struct {
			Body []domain.Document `json:"body"`
		}{Body: snap.Documents}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "upload-document",
		Method:        http.MethodPost,
		Path:          "/documents",
		Summary:       "Record an uploaded document",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusForbidden},
	}, func(ctx context.Context, input *struct {
		Body UploadDocumentRequest `json:"body"`
	}) (*struct {
		Body domain.Document `json:"body"`
	}, error) {
		actor, err := allow(ctx, access.ActionUploadDocument)
		if err != nil {
			return nil, handleError(err)
		}
		typ := domain.DocumentPDF
		if input.Body.Type != "" {
			if typ, err = domain.ParseDocumentType(input.Body.Type); err != nil {
				return nil, badRequest(err)
			}
		}
		doc, err := cfg.Store.UploadDocument(ctx, store.UploadDocumentOptions{
			UploaderID: actor.ID,
			Name:       input.Body.Name,
			Type:       typ,
			SizeBytes:  input.Body.SizeBytes,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Document `json:"body"`
		}{Body: doc}, nil
	})
}
