package inventorylog

import (
	"context"
	"errors"
	"time"

	"github.com/TheWizardo/InventoryPro/pkg/db/models"
	pkgerrors "github.com/TheWizardo/InventoryPro/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists audit entries for stock mutations.
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

// Create inserts an audit entry together with its item lines.
func (r *Repository) Create(ctx context.Context, entry *models.LogRegistry) (*models.LogRegistry, error) {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// FindByID loads one entry with its item lines.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.LogRegistry, error) {
	var entry models.LogRegistry
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&entry, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "log entry not found")
		}
		return nil, err
	}
	return &entry, nil
}

// ListFilter narrows audit entry listings.
type ListFilter struct {
	EmployeeID *uuid.UUID
	From       *time.Time
	To         *time.Time
}

// List returns entries newest-first, optionally filtered by employee and date
// window.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.LogRegistry, error) {
	qb := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})
	if filter.EmployeeID != nil {
		qb = qb.Where("employee_id = ?", *filter.EmployeeID)
	}
	if filter.From != nil {
		qb = qb.Where("registration_date >= ?", *filter.From)
	}
	if filter.To != nil {
		qb = qb.Where("registration_date <= ?", *filter.To)
	}

	var rows []models.LogRegistry
	err := qb.Order("registration_date DESC").Find(&rows).Error
	return rows, err
}

// Delete removes one entry and its item lines.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("registry_id = ?", id).Delete(&models.LogRegistryItem{}).Error; err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.LogRegistry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "log entry not found")
	}
	return nil
}
