package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/TheWizardo/InventoryPro/api/responses"
	"github.com/TheWizardo/InventoryPro/api/validators"
	projectsvc "github.com/TheWizardo/InventoryPro/internal/projects"
	pkgerrors "github.com/TheWizardo/InventoryPro/pkg/errors"
	"github.com/TheWizardo/InventoryPro/pkg/logger"
)

// ProjectList returns projects, optionally filtered by completion.
func ProjectList(svc projectsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "project service unavailable"))
			return
		}

		completed, err := boolQuery(r, "completed")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		projects, err := svc.ListProjects(r.Context(), completed)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, projects)
	}
}

// ProjectGet returns one project with its product targets.
func ProjectGet(svc projectsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "project service unavailable"))
			return
		}

		id, err := uuidParam(r, "projectID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		project, err := svc.GetProject(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, project)
	}
}

// ProjectProgress returns the per-target build progress of a project.
func ProjectProgress(svc projectsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "project service unavailable"))
			return
		}

		id, err := uuidParam(r, "projectID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		progress, err := svc.Progress(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, progress)
	}
}

// ProjectCreate creates a project with its product targets.
func ProjectCreate(svc projectsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "project service unavailable"))
			return
		}

		var payload createProjectRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		project, err := svc.CreateProject(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, project)
	}
}

// ProjectUpdate applies a partial update; replacing targets recomputes the
// completion status.
func ProjectUpdate(svc projectsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "project service unavailable"))
			return
		}

		id, err := uuidParam(r, "projectID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProjectRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		project, err := svc.UpdateProject(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, project)
	}
}

// ProjectDelete removes a project without live assemblies.
func ProjectDelete(svc projectsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "project service unavailable"))
			return
		}

		id, err := uuidParam(r, "projectID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProject(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type productTargetRequest struct {
	ItemID   string `json:"item_id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

func toTargetInputs(reqs []productTargetRequest) ([]projectsvc.ProductTargetInput, error) {
	targets := make([]projectsvc.ProductTargetInput, 0, len(reqs))
	for _, req := range reqs {
		id, err := uuid.Parse(req.ItemID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target item id")
		}
		targets = append(targets, projectsvc.ProductTargetInput{ItemID: id, Quantity: req.Quantity})
	}
	return targets, nil
}

type createProjectRequest struct {
	Name     string                 `json:"name" validate:"required"`
	DueDate  time.Time              `json:"due_date" validate:"required"`
	Products []productTargetRequest `json:"products,omitempty" validate:"omitempty,dive"`
}

func (req createProjectRequest) toInput() (projectsvc.CreateProjectInput, error) {
	targets, err := toTargetInputs(req.Products)
	if err != nil {
		return projectsvc.CreateProjectInput{}, err
	}
	return projectsvc.CreateProjectInput{
		Name:     req.Name,
		DueDate:  req.DueDate,
		Products: targets,
	}, nil
}

type updateProjectRequest struct {
	Name     *string                 `json:"name,omitempty"`
	DueDate  *time.Time              `json:"due_date,omitempty"`
	Products *[]productTargetRequest `json:"products,omitempty" validate:"omitempty,dive"`
}

func (req updateProjectRequest) toInput() (projectsvc.UpdateProjectInput, error) {
	input := projectsvc.UpdateProjectInput{
		Name:    req.Name,
		DueDate: req.DueDate,
	}
	if req.Products != nil {
		targets, err := toTargetInputs(*req.Products)
		if err != nil {
			return projectsvc.UpdateProjectInput{}, err
		}
		input.Products = &targets
	}
	return input, nil
}
