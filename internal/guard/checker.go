package guard

import (
	"context"

	"github.com/TheWizardo/InventoryPro/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Checker answers "what still points at this row?" questions before deletes.
type Checker struct {
	db *gorm.DB
}

// NewChecker builds a checker tied to the provided GORM DB.
func NewChecker(db *gorm.DB) *Checker {
	return &Checker{db: db}
}

// WithTx returns a checker bound to the provided transaction.
func (c *Checker) WithTx(tx *gorm.DB) *Checker {
	return &Checker{db: tx}
}

// CheckEmployee reports the assemblies and audit entries still attributed to
// the employee.
func (c *Checker) CheckEmployee(ctx context.Context, id uuid.UUID) (*Report, error) {
	report := &Report{Entity: "employee", EntityID: id}

	assemblies, err := c.assembledRefs(ctx, "employee_id", id)
	if err != nil {
		return nil, err
	}
	report.addGroup("assembly", assemblies)

	var logs []labeledRow
	err = c.db.WithContext(ctx).
		Model(&models.LogRegistry{}).
		Select("id, description AS label").
		Where("employee_id = ?", id).
		Scan(&logs).Error
	if err != nil {
		return nil, err
	}
	report.addGroup("log_entry", toReferences(logs))

	return report, nil
}

// CheckItem reports the parent items, project targets, assemblies, and audit
// lines still referencing the inventory item.
func (c *Checker) CheckItem(ctx context.Context, id uuid.UUID) (*Report, error) {
	report := &Report{Entity: "item", EntityID: id}

	var parents []labeledRow
	err := c.db.WithContext(ctx).
		Table("item_components ic").
		Select("i.id, i.name AS label").
		Joins("JOIN inventory_items i ON i.id = ic.parent_item_id").
		Where("ic.item_id = ?", id).
		Scan(&parents).Error
	if err != nil {
		return nil, err
	}
	report.addGroup("parent_item", toReferences(parents))

	var projects []labeledRow
	err = c.db.WithContext(ctx).
		Table("project_products pp").
		Select("p.id, p.name AS label").
		Joins("JOIN projects p ON p.id = pp.project_id").
		Where("pp.item_id = ?", id).
		Scan(&projects).Error
	if err != nil {
		return nil, err
	}
	report.addGroup("project", toReferences(projects))

	assemblies, err := c.assembledRefs(ctx, "item_id", id)
	if err != nil {
		return nil, err
	}
	report.addGroup("assembly", assemblies)

	var logLines []labeledRow
	err = c.db.WithContext(ctx).
		Table("log_registry_items li").
		Select("r.id, r.description AS label").
		Joins("JOIN log_registries r ON r.id = li.registry_id").
		Where("li.item_id = ?", id).
		Scan(&logLines).Error
	if err != nil {
		return nil, err
	}
	report.addGroup("log_entry", toReferences(logLines))

	return report, nil
}

func (c *Checker) assembledRefs(ctx context.Context, column string, id uuid.UUID) ([]Reference, error) {
	var rows []labeledRow
	err := c.db.WithContext(ctx).
		Model(&models.AssembledItem{}).
		Select("id, serial_number AS label").
		Where(column+" = ?", id).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toReferences(rows), nil
}

type labeledRow struct {
	ID    uuid.UUID
	Label string
}

func toReferences(rows []labeledRow) []Reference {
	if len(rows) == 0 {
		return nil
	}
	refs := make([]Reference, 0, len(rows))
	for _, row := range rows {
		refs = append(refs, Reference{ID: row.ID, Label: row.Label})
	}
	return refs
}
