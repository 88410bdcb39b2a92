package employees

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/TheWizardo/InventoryPro/internal/guard"
	"github.com/TheWizardo/InventoryPro/pkg/db"
	"github.com/TheWizardo/InventoryPro/pkg/db/models"
	pkgerrors "github.com/TheWizardo/InventoryPro/pkg/errors"
	"github.com/TheWizardo/InventoryPro/pkg/metrics"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmployeeDTO is the API projection of an employee.
type EmployeeDTO struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	IsEmployed      bool      `json:"is_employed"`
	AssembliesBuilt int       `json:"assemblies_built"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Service exposes employee management operations.
type Service interface {
	ListEmployees(ctx context.Context, employed *bool) ([]EmployeeDTO, error)
	GetEmployee(ctx context.Context, id uuid.UUID) (*EmployeeDTO, error)
	CreateEmployee(ctx context.Context, input CreateEmployeeInput) (*EmployeeDTO, error)
	UpdateEmployee(ctx context.Context, id uuid.UUID, input UpdateEmployeeInput) (*EmployeeDTO, error)
	DeleteEmployee(ctx context.Context, id uuid.UUID) error
}

// CreateEmployeeInput holds the validated payload to create an employee.
type CreateEmployeeInput struct {
	Name string
}

// UpdateEmployeeInput holds optional mutation values. Setting IsEmployed to
// false records a departure without losing the production history attributed
// to the person.
type UpdateEmployeeInput struct {
	Name       *string
	IsEmployed *bool
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	guard    *guard.Checker
	metrics  *metrics.AssemblyMetrics
}

// NewService constructs an employee service instance.
func NewService(repo *Repository, dbClient *db.Client, deleteGuard *guard.Checker, assemblyMetrics *metrics.AssemblyMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("employee repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if deleteGuard == nil {
		return nil, fmt.Errorf("delete guard required")
	}
	return &service{repo: repo, dbClient: dbClient, guard: deleteGuard, metrics: assemblyMetrics}, nil
}

func (s *service) ListEmployees(ctx context.Context, employed *bool) ([]EmployeeDTO, error) {
	rows, err := s.repo.List(ctx, employed)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	counts, err := s.repo.CountAssemblies(ctx, ids)
	if err != nil {
		return nil, err
	}
	dtos := make([]EmployeeDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, toEmployeeDTO(&rows[i], counts[rows[i].ID]))
	}
	return dtos, nil
}

func (s *service) GetEmployee(ctx context.Context, id uuid.UUID) (*EmployeeDTO, error) {
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountAssemblies(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	dto := toEmployeeDTO(employee, counts[id])
	return &dto, nil
}

func (s *service) CreateEmployee(ctx context.Context, input CreateEmployeeInput) (*EmployeeDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	employee := &models.Employee{ID: uuid.New(), Name: name, IsEmployed: true}
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.repo.WithTx(tx).Create(ctx, employee)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetEmployee(ctx, employee.ID)
}

func (s *service) UpdateEmployee(ctx context.Context, id uuid.UUID, input UpdateEmployeeInput) (*EmployeeDTO, error) {
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		employee.Name = name
	}
	if input.IsEmployed != nil {
		employee.IsEmployed = *input.IsEmployed
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.repo.WithTx(tx).Update(ctx, employee)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetEmployee(ctx, id)
}

// DeleteEmployee removes an employee only when no assemblies or audit entries
// reference them; otherwise the caller should mark the person as no longer
// employed instead.
// The guard check runs inside the delete transaction so an assembly or audit
// entry recorded concurrently cannot slip in between check and delete.
func (s *service) DeleteEmployee(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	var blocked bool
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		report, err := s.guard.WithTx(tx).CheckEmployee(ctx, id)
		if err != nil {
			return err
		}
		if report.Blocked() {
			blocked = true
			return report.Err()
		}
		return s.repo.WithTx(tx).Delete(ctx, id)
	})
	if blocked {
		s.metrics.IncBlockedDelete("employee")
	}
	return err
}

func toEmployeeDTO(employee *models.Employee, assemblies int) EmployeeDTO {
	return EmployeeDTO{
		ID:              employee.ID,
		Name:            employee.Name,
		IsEmployed:      employee.IsEmployed,
		AssembliesBuilt: assemblies,
		CreatedAt:       employee.CreatedAt,
		UpdatedAt:       employee.UpdatedAt,
	}
}
