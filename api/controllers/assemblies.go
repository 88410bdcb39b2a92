package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/TheWizardo/InventoryPro/api/responses"
	"github.com/TheWizardo/InventoryPro/api/validators"
	assemblysvc "github.com/TheWizardo/InventoryPro/internal/assembly"
	pkgerrors "github.com/TheWizardo/InventoryPro/pkg/errors"
	"github.com/TheWizardo/InventoryPro/pkg/logger"
)

// AssemblyCreate records a produced unit, consuming component stock.
func AssemblyCreate(svc assemblysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assembly service unavailable"))
			return
		}

		var payload createAssemblyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assembly, err := svc.CreateAssembly(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, assembly)
	}
}

// AssemblyList returns every produced unit, newest first.
func AssemblyList(svc assemblysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assembly service unavailable"))
			return
		}

		assemblies, err := svc.ListAssemblies(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, assemblies)
	}
}

// AssemblyGet returns one produced unit with its display names.
func AssemblyGet(svc assemblysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assembly service unavailable"))
			return
		}

		id, err := uuidParam(r, "assemblyID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assembly, err := svc.GetAssembly(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, assembly)
	}
}

// AssemblyDelete removes a produced unit and recomputes its project's
// completion status.
func AssemblyDelete(svc assemblysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assembly service unavailable"))
			return
		}

		id, err := uuidParam(r, "assemblyID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteAssembly(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AssembliesByProject returns a project's assemblies, newest first.
func AssembliesByProject(svc assemblysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assembly service unavailable"))
			return
		}

		id, err := uuidParam(r, "projectID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assemblies, err := svc.ListByProject(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, assemblies)
	}
}

// AssembliesByEmployee returns an employee's assemblies, newest first.
func AssembliesByEmployee(svc assemblysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assembly service unavailable"))
			return
		}

		id, err := uuidParam(r, "employeeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assemblies, err := svc.ListByEmployee(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, assemblies)
	}
}

type createAssemblyRequest struct {
	ItemID         string     `json:"item_id" validate:"required,uuid"`
	EmployeeID     string     `json:"employee_id" validate:"required,uuid"`
	ProjectID      string     `json:"project_id" validate:"required,uuid"`
	ProductionDate *time.Time `json:"production_date,omitempty"`
}

func (req createAssemblyRequest) toInput() (assemblysvc.CreateAssemblyInput, error) {
	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		return assemblysvc.CreateAssemblyInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id")
	}
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return assemblysvc.CreateAssemblyInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid employee id")
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return assemblysvc.CreateAssemblyInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid project id")
	}
	input := assemblysvc.CreateAssemblyInput{
		ItemID:     itemID,
		EmployeeID: employeeID,
		ProjectID:  projectID,
	}
	if req.ProductionDate != nil {
		input.ProductionDate = *req.ProductionDate
	}
	return input, nil
}
