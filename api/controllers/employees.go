package controllers

import (
	"net/http"

	"github.com/TheWizardo/InventoryPro/api/responses"
	"github.com/TheWizardo/InventoryPro/api/validators"
	employeesvc "github.com/TheWizardo/InventoryPro/internal/employees"
	pkgerrors "github.com/TheWizardo/InventoryPro/pkg/errors"
	"github.com/TheWizardo/InventoryPro/pkg/logger"
)

// EmployeeList returns employees with their assembly counts.
func EmployeeList(svc employeesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "employee service unavailable"))
			return
		}

		employed, err := boolQuery(r, "employed")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		employees, err := svc.ListEmployees(r.Context(), employed)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, employees)
	}
}

// EmployeeGet returns one employee.
func EmployeeGet(svc employeesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "employee service unavailable"))
			return
		}

		id, err := uuidParam(r, "employeeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		employee, err := svc.GetEmployee(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, employee)
	}
}

// EmployeeCreate registers a new employee.
func EmployeeCreate(svc employeesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "employee service unavailable"))
			return
		}

		var payload createEmployeeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		employee, err := svc.CreateEmployee(r.Context(), employeesvc.CreateEmployeeInput{Name: payload.Name})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, employee)
	}
}

// EmployeeUpdate renames an employee or records a departure.
func EmployeeUpdate(svc employeesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "employee service unavailable"))
			return
		}

		id, err := uuidParam(r, "employeeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateEmployeeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		employee, err := svc.UpdateEmployee(r.Context(), id, employeesvc.UpdateEmployeeInput{
			Name:       payload.Name,
			IsEmployed: payload.IsEmployed,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, employee)
	}
}

// EmployeeDelete removes an employee unless production history references
// them.
func EmployeeDelete(svc employeesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "employee service unavailable"))
			return
		}

		id, err := uuidParam(r, "employeeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteEmployee(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type createEmployeeRequest struct {
	Name string `json:"name" validate:"required"`
}

type updateEmployeeRequest struct {
	Name       *string `json:"name,omitempty"`
	IsEmployed *bool   `json:"is_employed,omitempty"`
}
