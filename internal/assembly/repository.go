package assembly

import (
	"context"
	"errors"
	"time"

	"github.com/TheWizardo/InventoryPro/pkg/db/models"
	pkgerrors "github.com/TheWizardo/InventoryPro/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists assembled item rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts an assembled item row.
func (r *Repository) Create(ctx context.Context, assembled *models.AssembledItem) (*models.AssembledItem, error) {
	if err := r.db.WithContext(ctx).Create(assembled).Error; err != nil {
		return nil, err
	}
	return assembled, nil
}

// FindByID loads one assembled item.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.AssembledItem, error) {
	var assembled models.AssembledItem
	if err := r.db.WithContext(ctx).First(&assembled, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "assembly not found")
		}
		return nil, err
	}
	return &assembled, nil
}

// SerialExists reports whether a serial number is already taken.
func (r *Repository) SerialExists(ctx context.Context, serial string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AssembledItem{}).
		Where("serial_number = ?", serial).
		Count(&count).Error
	return count > 0, err
}

// Delete removes an assembled item row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.AssembledItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "assembly not found")
	}
	return nil
}

// record is an assembled item joined with its display names.
type record struct {
	ID             uuid.UUID
	ItemID         uuid.UUID
	ItemName       string
	EmployeeID     uuid.UUID
	EmployeeName   string
	ProjectID      uuid.UUID
	ProjectName    string
	ProductionDate time.Time
	SerialNumber   string
	CreatedAt      time.Time
}

const recordColumns = `a.id, a.item_id, i.name AS item_name,
a.employee_id, e.name AS employee_name,
a.project_id, p.name AS project_name,
a.production_date, a.serial_number, a.created_at`

func (r *Repository) recordQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("assembled_items a").
		Select(recordColumns).
		Joins("JOIN inventory_items i ON i.id = a.item_id").
		Joins("JOIN employees e ON e.id = a.employee_id").
		Joins("JOIN projects p ON p.id = a.project_id").
		Order("a.production_date DESC").
		Order("a.created_at DESC")
}

// List returns all assemblies with names, newest first.
func (r *Repository) List(ctx context.Context) ([]record, error) {
	var rows []record
	err := r.recordQuery(ctx).Scan(&rows).Error
	return rows, err
}

// ListByProject returns the project's assemblies with names, newest first.
func (r *Repository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]record, error) {
	var rows []record
	err := r.recordQuery(ctx).Where("a.project_id = ?", projectID).Scan(&rows).Error
	return rows, err
}

// ListByEmployee returns the employee's assemblies with names, newest first.
func (r *Repository) ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]record, error) {
	var rows []record
	err := r.recordQuery(ctx).Where("a.employee_id = ?", employeeID).Scan(&rows).Error
	return rows, err
}

// GetRecord returns one assembly with names resolved.
func (r *Repository) GetRecord(ctx context.Context, id uuid.UUID) (*record, error) {
	var rows []record
	err := r.recordQuery(ctx).Where("a.id = ?", id).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "assembly not found")
	}
	return &rows[0], nil
}
