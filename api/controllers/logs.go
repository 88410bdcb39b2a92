package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/TheWizardo/InventoryPro/api/responses"
	"github.com/TheWizardo/InventoryPro/api/validators"
	logsvc "github.com/TheWizardo/InventoryPro/internal/inventorylog"
	pkgerrors "github.com/TheWizardo/InventoryPro/pkg/errors"
	"github.com/TheWizardo/InventoryPro/pkg/logger"
)

// LogList returns audit entries, newest first, with optional employee and
// date-window filters.
func LogList(svc logsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "log service unavailable"))
			return
		}

		employeeID, err := uuidQuery(r, "employee_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		from, err := timeQuery(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := timeQuery(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.ListEntries(r.Context(), logsvc.ListFilter{
			EmployeeID: employeeID,
			From:       from,
			To:         to,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}

// LogGet returns one audit entry with its lines.
func LogGet(svc logsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "log service unavailable"))
			return
		}

		id, err := uuidParam(r, "entryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.GetEntry(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entry)
	}
}

// LogCreate records a manual audit entry.
func LogCreate(svc logsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "log service unavailable"))
			return
		}

		var payload createLogEntryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.CreateEntry(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

// LogDelete removes an audit entry and its lines.
func LogDelete(svc logsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "log service unavailable"))
			return
		}

		id, err := uuidParam(r, "entryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteEntry(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type logLineRequest struct {
	ItemID   string `json:"item_id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"required"`
}

type createLogEntryRequest struct {
	EmployeeID       string           `json:"employee_id" validate:"required,uuid"`
	Description      string           `json:"description" validate:"required,max=100"`
	RegistrationDate *time.Time       `json:"registration_date,omitempty"`
	Items            []logLineRequest `json:"items,omitempty" validate:"omitempty,dive"`
}

func (req createLogEntryRequest) toInput() (logsvc.CreateEntryInput, error) {
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return logsvc.CreateEntryInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid employee id")
	}
	input := logsvc.CreateEntryInput{
		EmployeeID:  employeeID,
		Description: req.Description,
	}
	if req.RegistrationDate != nil {
		input.RegistrationDate = *req.RegistrationDate
	}
	for _, line := range req.Items {
		id, parseErr := uuid.Parse(line.ItemID)
		if parseErr != nil {
			return logsvc.CreateEntryInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid line item id")
		}
		input.Items = append(input.Items, logsvc.EntryLineInput{ItemID: id, Quantity: line.Quantity})
	}
	return input, nil
}
