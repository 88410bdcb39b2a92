package employees

import (
	"context"
	"errors"

	"github.com/TheWizardo/InventoryPro/pkg/db/models"
	pkgerrors "github.com/TheWizardo/InventoryPro/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists employee rows.
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

// FindByID loads one employee.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	var employee models.Employee
	if err := r.db.WithContext(ctx).First(&employee, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "employee not found")
		}
		return nil, err
	}
	return &employee, nil
}

// FindMany loads the employees for the given IDs.
func (r *Repository) FindMany(ctx context.Context, ids []uuid.UUID) ([]models.Employee, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Employee
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error
	return rows, err
}

// List returns employees ordered by name, optionally filtered by employment
// status.
func (r *Repository) List(ctx context.Context, employed *bool) ([]models.Employee, error) {
	qb := r.db.WithContext(ctx)
	if employed != nil {
		qb = qb.Where("is_employed = ?", *employed)
	}
	var rows []models.Employee
	err := qb.Order("name ASC").Find(&rows).Error
	return rows, err
}

// Create inserts a new employee row.
func (r *Repository) Create(ctx context.Context, employee *models.Employee) (*models.Employee, error) {
	if err := r.db.WithContext(ctx).Create(employee).Error; err != nil {
		return nil, err
	}
	return employee, nil
}

// Update saves the employee row.
func (r *Repository) Update(ctx context.Context, employee *models.Employee) (*models.Employee, error) {
	if err := r.db.WithContext(ctx).Save(employee).Error; err != nil {
		return nil, err
	}
	return employee, nil
}

// Delete removes an employee by ID. Callers run the dependency guard first.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Employee{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "employee not found")
	}
	return nil
}

// CountAssemblies returns how many assemblies each given employee has built.
func (r *Repository) CountAssemblies(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]int{}, nil
	}
	type countRow struct {
		EmployeeID uuid.UUID
		Total      int
	}
	var rows []countRow
	err := r.db.WithContext(ctx).
		Model(&models.AssembledItem{}).
		Select("employee_id, COUNT(*) AS total").
		Where("employee_id IN ?", ids).
		Group("employee_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		counts[row.EmployeeID] = row.Total
	}
	return counts, nil
}
