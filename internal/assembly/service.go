package assembly

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/TheWizardo/InventoryPro/internal/inventory"
	"github.com/TheWizardo/InventoryPro/internal/inventorylog"
	"github.com/TheWizardo/InventoryPro/internal/projects"
	"github.com/TheWizardo/InventoryPro/pkg/config"
	"github.com/TheWizardo/InventoryPro/pkg/db"
	"github.com/TheWizardo/InventoryPro/pkg/db/models"
	pkgerrors "github.com/TheWizardo/InventoryPro/pkg/errors"
	"github.com/TheWizardo/InventoryPro/pkg/metrics"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes the assembly production engine.
type Service interface {
	CreateAssembly(ctx context.Context, input CreateAssemblyInput) (*AssemblyDTO, error)
	DeleteAssembly(ctx context.Context, id uuid.UUID) error
	GetAssembly(ctx context.Context, id uuid.UUID) (*AssemblyDTO, error)
	ListAssemblies(ctx context.Context) ([]AssemblyDTO, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]AssemblyDTO, error)
	ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]AssemblyDTO, error)
}

// CreateAssemblyInput holds the validated payload to record a build.
type CreateAssemblyInput struct {
	ItemID         uuid.UUID
	EmployeeID     uuid.UUID
	ProjectID      uuid.UUID
	ProductionDate time.Time
}

type employeeReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Employee, error)
}

// service implements the assembly engine. Creation is a single transaction:
// consume leaf stock, allocate a serial, write the audit entry, recompute the
// project's completion status.
type service struct {
	repo      *Repository
	dbClient  *db.Client
	items     *inventory.Repository
	projects  *projects.Repository
	logs      *inventorylog.Repository
	employees employeeReader
	cfg       config.AssemblyConfig
	flags     config.FeatureFlagsConfig
	metrics   *metrics.AssemblyMetrics
	rngMu     sync.Mutex
	rng       *rand.Rand
	now       func() time.Time
}

// NewService constructs the assembly engine.
func NewService(
	repo *Repository,
	dbClient *db.Client,
	items *inventory.Repository,
	projectRepo *projects.Repository,
	logs *inventorylog.Repository,
	employees employeeReader,
	cfg config.AssemblyConfig,
	flags config.FeatureFlagsConfig,
	assemblyMetrics *metrics.AssemblyMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("assembly repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if items == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if projectRepo == nil {
		return nil, fmt.Errorf("project repository required")
	}
	if logs == nil {
		return nil, fmt.Errorf("log repository required")
	}
	if employees == nil {
		return nil, fmt.Errorf("employee repository required")
	}
	if cfg.SerialMaxAttempts < 1 {
		return nil, fmt.Errorf("serial max attempts must be at least 1")
	}
	return &service{
		repo:      repo,
		dbClient:  dbClient,
		items:     items,
		projects:  projectRepo,
		logs:      logs,
		employees: employees,
		cfg:       cfg,
		flags:     flags,
		metrics:   assemblyMetrics,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		now:       time.Now,
	}, nil
}

// CreateAssembly records one produced unit. The item's BOM tree is flattened
// and every leaf quantity is consumed from stock; a failed consumption rolls
// the whole build back.
func (s *service) CreateAssembly(ctx context.Context, input CreateAssemblyInput) (*AssemblyDTO, error) {
	employee, err := s.employees.FindByID(ctx, input.EmployeeID)
	if err != nil {
		return nil, err
	}
	if !employee.IsEmployed {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "employee is no longer employed")
	}
	project, err := s.projects.FindByID(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}

	productionDate := input.ProductionDate
	if productionDate.IsZero() {
		productionDate = s.now().UTC()
	}

	assembled := &models.AssembledItem{
		ID:             uuid.New(),
		ItemID:         input.ItemID,
		EmployeeID:     input.EmployeeID,
		ProjectID:      input.ProjectID,
		ProductionDate: productionDate,
	}

	var (
		consumption []inventory.Adjustment
		itemName    string
		attempts    int
	)
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txItems := s.items.WithTx(tx)
		forest, err := txItems.ResolveForest(ctx)
		if err != nil {
			return err
		}
		root, ok := forest[input.ItemID]
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		if !root.IsAssembledProduct {
			return pkgerrors.New(pkgerrors.CodeValidation, "item is not an assembled product")
		}
		if inventory.Unsupported(root) {
			return pkgerrors.New(pkgerrors.CodeValidation, "item or one of its components is no longer supported")
		}
		itemName = root.Name

		leaves, err := inventory.Flatten(root)
		if err != nil {
			return err
		}
		consumption = inventory.Invert(leaves)
		if err := txItems.BulkAdjustStock(ctx, consumption); err != nil {
			return err
		}

		serial, tried, err := s.allocateSerial(ctx, tx, productionDate)
		if err != nil {
			return err
		}
		attempts = tried
		assembled.SerialNumber = serial
		if _, err := s.repo.WithTx(tx).Create(ctx, assembled); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "serial number already taken")
			}
			return err
		}

		entry := s.auditEntry(input.EmployeeID,
			fmt.Sprintf("Created Assembly '%s' for %s", itemName, project.Name),
			leaves)
		if _, err := s.logs.WithTx(tx).Create(ctx, entry); err != nil {
			return err
		}

		_, err = s.projects.WithTx(tx).RecomputeCompletion(ctx, input.ProjectID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncBuilt(itemName)
	s.metrics.ObserveSerialAttempts(attempts)
	for _, adj := range consumption {
		s.metrics.AddStockDelta(adj.Quantity)
	}
	return s.GetAssembly(ctx, assembled.ID)
}

// DeleteAssembly removes a produced unit and recomputes its project's
// completion status. Consumed stock stays consumed unless the restore flag is
// on: the physical parts left the shelf when the unit was built.
func (s *service) DeleteAssembly(ctx context.Context, id uuid.UUID) error {
	assembled, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Delete(ctx, id); err != nil {
			return err
		}

		if s.flags.RestoreStockOnAssemblyDelete {
			txItems := s.items.WithTx(tx)
			forest, err := txItems.ResolveForest(ctx)
			if err != nil {
				return err
			}
			root, ok := forest[assembled.ItemID]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeConsistency, "assembled item no longer exists")
			}
			// restoration follows the item's current BOM, which may have
			// drifted since the unit was built
			leaves, err := inventory.Flatten(root)
			if err != nil {
				return err
			}
			if err := txItems.BulkAdjustStock(ctx, leaves); err != nil {
				return err
			}
			entry := s.auditEntry(assembled.EmployeeID,
				fmt.Sprintf("Restored stock for Assembly '%s'", assembled.SerialNumber),
				leaves)
			if _, err := s.logs.WithTx(tx).Create(ctx, entry); err != nil {
				return err
			}
		}

		_, err := s.projects.WithTx(tx).RecomputeCompletion(ctx, assembled.ProjectID)
		return err
	})
	if err != nil {
		return err
	}

	s.metrics.IncDeleted()
	return nil
}

// GetAssembly returns one assembly with its display names.
func (s *service) GetAssembly(ctx context.Context, id uuid.UUID) (*AssemblyDTO, error) {
	row, err := s.repo.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toAssemblyDTO(row)
	return &dto, nil
}

// ListAssemblies returns every produced unit, newest first.
func (s *service) ListAssemblies(ctx context.Context) ([]AssemblyDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return toAssemblyDTOs(rows), nil
}

// ListByProject returns a project's assemblies, newest first.
func (s *service) ListByProject(ctx context.Context, projectID uuid.UUID) ([]AssemblyDTO, error) {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return toAssemblyDTOs(rows), nil
}

// ListByEmployee returns an employee's assemblies, newest first.
func (s *service) ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]AssemblyDTO, error) {
	if _, err := s.employees.FindByID(ctx, employeeID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return toAssemblyDTOs(rows), nil
}

// allocateSerial draws serial candidates until one is free, capped so a
// crowded production day fails loudly instead of spinning.
func (s *service) allocateSerial(ctx context.Context, tx *gorm.DB, productionDate time.Time) (string, int, error) {
	txRepo := s.repo.WithTx(tx)
	for attempt := 1; attempt <= s.cfg.SerialMaxAttempts; attempt++ {
		serial := s.nextSerial(productionDate)
		taken, err := txRepo.SerialExists(ctx, serial)
		if err != nil {
			return "", attempt, err
		}
		if !taken {
			return serial, attempt, nil
		}
	}
	return "", s.cfg.SerialMaxAttempts, pkgerrors.New(pkgerrors.CodeConflict,
		fmt.Sprintf("no free serial number after %d attempts", s.cfg.SerialMaxAttempts))
}

// nextSerial draws one serial candidate. The generator is shared by every
// request the engine handles and *rand.Rand is not safe for concurrent use,
// so draws are serialized.
func (s *service) nextSerial(when time.Time) string {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return GenerateSerial(when, s.rng)
}

func (s *service) auditEntry(employeeID uuid.UUID, description string, lines []inventory.Adjustment) *models.LogRegistry {
	if len(description) > inventorylog.DescriptionMaxLen {
		description = description[:inventorylog.DescriptionMaxLen]
	}
	entry := &models.LogRegistry{
		ID:               uuid.New(),
		EmployeeID:       employeeID,
		Description:      description,
		RegistrationDate: s.now().UTC(),
	}
	for i, line := range lines {
		entry.Items = append(entry.Items, models.LogRegistryItem{
			ID:         uuid.New(),
			RegistryID: entry.ID,
			ItemID:     line.ItemID,
			Quantity:   line.Quantity,
			Position:   i,
		})
	}
	return entry
}

func toAssemblyDTOs(rows []record) []AssemblyDTO {
	dtos := make([]AssemblyDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, toAssemblyDTO(&rows[i]))
	}
	return dtos
}
