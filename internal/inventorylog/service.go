package inventorylog

import (
	"context"
	"fmt"
	"time"

	"github.com/TheWizardo/InventoryPro/pkg/db"
	"github.com/TheWizardo/InventoryPro/pkg/db/models"
	pkgerrors "github.com/TheWizardo/InventoryPro/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DescriptionMaxLen caps the audit entry description column.
const DescriptionMaxLen = 100

// Service exposes audit entry operations.
type Service interface {
	ListEntries(ctx context.Context, filter ListFilter) ([]EntryDTO, error)
	GetEntry(ctx context.Context, id uuid.UUID) (*EntryDTO, error)
	CreateEntry(ctx context.Context, input CreateEntryInput) (*EntryDTO, error)
	DeleteEntry(ctx context.Context, id uuid.UUID) error
}

// CreateEntryInput holds the validated payload for a manual audit entry.
type CreateEntryInput struct {
	EmployeeID       uuid.UUID
	Description      string
	RegistrationDate time.Time
	Items            []EntryLineInput
}

// EntryLineInput is one (item, quantity) line of the payload.
type EntryLineInput struct {
	ItemID   uuid.UUID
	Quantity int
}

type employeeReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Employee, error)
	FindMany(ctx context.Context, ids []uuid.UUID) ([]models.Employee, error)
}

type itemReader interface {
	FindMany(ctx context.Context, ids []uuid.UUID) ([]models.InventoryItem, error)
}

type service struct {
	repo      *Repository
	dbClient  *db.Client
	employees employeeReader
	items     itemReader
}

// NewService constructs an audit entry service instance.
func NewService(repo *Repository, dbClient *db.Client, employees employeeReader, items itemReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("log repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if employees == nil {
		return nil, fmt.Errorf("employee repository required")
	}
	if items == nil {
		return nil, fmt.Errorf("item repository required")
	}
	return &service{repo: repo, dbClient: dbClient, employees: employees, items: items}, nil
}

// ListEntries returns audit entries newest-first with employee and item names
// resolved.
func (s *service) ListEntries(ctx context.Context, filter ListFilter) ([]EntryDTO, error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	employeeNames, itemNames, err := s.resolveNames(ctx, rows)
	if err != nil {
		return nil, err
	}
	dtos := make([]EntryDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, toEntryDTO(&rows[i], employeeNames, itemNames))
	}
	return dtos, nil
}

// GetEntry returns one audit entry with names resolved.
func (s *service) GetEntry(ctx context.Context, id uuid.UUID) (*EntryDTO, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	employeeNames, itemNames, err := s.resolveNames(ctx, []models.LogRegistry{*entry})
	if err != nil {
		return nil, err
	}
	dto := toEntryDTO(entry, employeeNames, itemNames)
	return &dto, nil
}

// CreateEntry records a manual audit entry. The referenced employee must
// exist; item lines are stored as given without touching stock.
func (s *service) CreateEntry(ctx context.Context, input CreateEntryInput) (*EntryDTO, error) {
	if len(input.Description) > DescriptionMaxLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("description exceeds %d characters", DescriptionMaxLen))
	}
	if _, err := s.employees.FindByID(ctx, input.EmployeeID); err != nil {
		return nil, err
	}

	when := input.RegistrationDate
	if when.IsZero() {
		when = time.Now().UTC()
	}

	entry := &models.LogRegistry{
		ID:               uuid.New(),
		EmployeeID:       input.EmployeeID,
		Description:      input.Description,
		RegistrationDate: when,
	}
	for i, line := range input.Items {
		if line.Quantity == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item lines require a non-zero quantity")
		}
		entry.Items = append(entry.Items, models.LogRegistryItem{
			ID:         uuid.New(),
			RegistryID: entry.ID,
			ItemID:     line.ItemID,
			Quantity:   line.Quantity,
			Position:   i,
		})
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.repo.WithTx(tx).Create(ctx, entry)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetEntry(ctx, entry.ID)
}

// DeleteEntry removes one audit entry. Entries have no dependents, so no
// guard check is needed.
func (s *service) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, id)
	})
}

func (s *service) resolveNames(ctx context.Context, rows []models.LogRegistry) (map[uuid.UUID]string, map[uuid.UUID]string, error) {
	employeeIDs := map[uuid.UUID]struct{}{}
	itemIDs := map[uuid.UUID]struct{}{}
	for _, row := range rows {
		employeeIDs[row.EmployeeID] = struct{}{}
		for _, line := range row.Items {
			itemIDs[line.ItemID] = struct{}{}
		}
	}

	employees, err := s.employees.FindMany(ctx, keys(employeeIDs))
	if err != nil {
		return nil, nil, err
	}
	employeeNames := make(map[uuid.UUID]string, len(employees))
	for _, employee := range employees {
		employeeNames[employee.ID] = employee.Name
	}

	items, err := s.items.FindMany(ctx, keys(itemIDs))
	if err != nil {
		return nil, nil, err
	}
	itemNames := make(map[uuid.UUID]string, len(items))
	for _, item := range items {
		itemNames[item.ID] = item.Name
	}
	return employeeNames, itemNames, nil
}

func keys(set map[uuid.UUID]struct{}) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
