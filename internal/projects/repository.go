package projects

import (
	"context"
	"errors"

	"github.com/TheWizardo/InventoryPro/pkg/db/models"
	pkgerrors "github.com/TheWizardo/InventoryPro/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists project rows and their product targets.
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

func preloadProducts(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// FindByID loads one project with its product targets.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Preload("Products", preloadProducts).
		First(&project, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "project not found")
		}
		return nil, err
	}
	return &project, nil
}

// List returns projects ordered by due date, optionally filtered by
// completion status.
func (r *Repository) List(ctx context.Context, completed *bool) ([]models.Project, error) {
	qb := r.db.WithContext(ctx).Preload("Products", preloadProducts)
	if completed != nil {
		qb = qb.Where("is_completed = ?", *completed)
	}
	var rows []models.Project
	err := qb.Order("due_date ASC").Find(&rows).Error
	return rows, err
}

// Create inserts a project together with its product targets.
func (r *Repository) Create(ctx context.Context, project *models.Project) (*models.Project, error) {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

// Update saves the project's scalar columns.
func (r *Repository) Update(ctx context.Context, project *models.Project) (*models.Project, error) {
	if err := r.db.WithContext(ctx).Omit("Products").Save(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

// ReplaceProducts replaces the project's product targets.
func (r *Repository) ReplaceProducts(ctx context.Context, projectID uuid.UUID, products []models.ProjectProduct) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectProduct{}).Error; err != nil {
		return err
	}
	if len(products) == 0 {
		return nil
	}
	return tx.Create(&products).Error
}

// Delete removes a project and its product targets.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("project_id = ?", id).Delete(&models.ProjectProduct{}).Error; err != nil {
		return err
	}
	res := tx.Where("id = ?", id).Delete(&models.Project{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
	}
	return nil
}

// CountAssembliesByItem returns, per target item, how many live assemblies
// exist in the project.
func (r *Repository) CountAssembliesByItem(ctx context.Context, projectID uuid.UUID) (map[uuid.UUID]int, error) {
	type countRow struct {
		ItemID uuid.UUID
		Total  int
	}
	var rows []countRow
	err := r.db.WithContext(ctx).
		Model(&models.AssembledItem{}).
		Select("item_id, COUNT(*) AS total").
		Where("project_id = ?", projectID).
		Group("item_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		counts[row.ItemID] = row.Total
	}
	return counts, nil
}

// CountAssemblies returns the total number of live assemblies in the project.
func (r *Repository) CountAssemblies(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AssembledItem{}).
		Where("project_id = ?", projectID).
		Count(&count).Error
	return count, err
}

// RecomputeCompletion rewrites is_completed from the live assembly counts:
// the project is complete when every target has at least its required
// quantity built. Returns the new status.
func (r *Repository) RecomputeCompletion(ctx context.Context, projectID uuid.UUID) (bool, error) {
	project, err := r.FindByID(ctx, projectID)
	if err != nil {
		return false, err
	}
	counts, err := r.CountAssembliesByItem(ctx, projectID)
	if err != nil {
		return false, err
	}

	completed := true
	for _, target := range project.Products {
		if counts[target.ItemID] < target.Quantity {
			completed = false
			break
		}
	}

	if completed != project.IsCompleted {
		err = r.db.WithContext(ctx).
			Model(&models.Project{}).
			Where("id = ?", projectID).
			Update("is_completed", completed).Error
		if err != nil {
			return false, err
		}
	}
	return completed, nil
}
