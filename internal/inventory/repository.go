package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/TheWizardo/InventoryPro/pkg/db/models"
	pkgerrors "github.com/TheWizardo/InventoryPro/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// Repository wires together inventory item persistence helpers.
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

func preloadComponents(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// FindByID loads the item with its component lines.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Preload("Components", preloadComponents).
		First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "item not found")
		}
		return nil, err
	}
	return &item, nil
}

// FindMany loads the items for the given IDs with their component lines.
func (r *Repository) FindMany(ctx context.Context, ids []uuid.UUID) ([]models.InventoryItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.InventoryItem
	err := r.db.WithContext(ctx).
		Preload("Components", preloadComponents).
		Where("id IN ?", ids).
		Find(&rows).Error
	return rows, err
}

// ListFilter narrows item listings.
type ListFilter struct {
	AssembledProduct *bool
	Supported        *bool
	Vendor           *string
	Query            string
}

// List returns items matching the filter, ordered by name.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.InventoryItem, error) {
	qb := r.db.WithContext(ctx).Preload("Components", preloadComponents)
	if filter.AssembledProduct != nil {
		qb = qb.Where("is_assembled_product = ?", *filter.AssembledProduct)
	}
	if filter.Supported != nil {
		qb = qb.Where("is_supported = ?", *filter.Supported)
	}
	if filter.Vendor != nil {
		qb = qb.Where("vendor = ?", *filter.Vendor)
	}
	if search := strings.TrimSpace(filter.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(name) LIKE ? OR LOWER(sku) LIKE ?)", pattern, pattern)
	}

	var rows []models.InventoryItem
	err := qb.Order("name ASC").Find(&rows).Error
	return rows, err
}

// DistinctVendors returns the vendor names present in the catalog.
func (r *Repository) DistinctVendors(ctx context.Context) ([]string, error) {
	var vendors []string
	err := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Distinct("vendor").
		Order("vendor ASC").
		Pluck("vendor", &vendors).Error
	return vendors, err
}

// Create inserts a new item row together with its component lines.
func (r *Repository) Create(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Update saves the item's scalar columns.
func (r *Repository) Update(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	if err := r.db.WithContext(ctx).Omit("Components").Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// ReplaceComponents replaces the item's bill of materials.
func (r *Repository) ReplaceComponents(ctx context.Context, parentID uuid.UUID, components []models.ItemComponent) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("parent_item_id = ?", parentID).Delete(&models.ItemComponent{}).Error; err != nil {
		return err
	}
	if len(components) == 0 {
		return nil
	}
	return tx.Create(&components).Error
}

// Delete removes an item and its own component lines. Callers run the
// dependency guard first; this does not verify inbound references.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("parent_item_id = ?", id).Delete(&models.ItemComponent{}).Error; err != nil {
		return err
	}
	res := tx.Where("id = ?", id).Delete(&models.InventoryItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	return nil
}

// BulkAdjustStock applies signed stock deltas row by row. A delta that would
// push stock below zero, or that targets a missing item, is rejected; all
// failures are reported together. Run inside a transaction when the batch
// must be atomic.
func (r *Repository) BulkAdjustStock(ctx context.Context, adjustments []Adjustment) error {
	var errs error
	applied := 0
	failedIDs := []uuid.UUID{}
	for _, adj := range adjustments {
		if adj.Quantity == 0 {
			continue
		}
		res := r.db.WithContext(ctx).
			Model(&models.InventoryItem{}).
			Where("id = ?", adj.ItemID).
			Where("stock + ? >= 0", adj.Quantity).
			Update("stock", gorm.Expr("stock + ?", adj.Quantity))
		switch {
		case res.Error != nil:
			errs = multierr.Append(errs, fmt.Errorf("item %s: %w", adj.ItemID, res.Error))
			failedIDs = append(failedIDs, adj.ItemID)
		case res.RowsAffected == 0:
			errs = multierr.Append(errs, fmt.Errorf("item %s: missing or insufficient stock for delta %d", adj.ItemID, adj.Quantity))
			failedIDs = append(failedIDs, adj.ItemID)
		default:
			applied++
		}
	}
	if errs == nil {
		return nil
	}
	details := map[string]any{"failed_item_ids": failedIDs}
	if applied > 0 {
		return pkgerrors.Wrap(pkgerrors.CodePartialFailure, errs, "stock adjustment applied partially").
			WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeConflict, errs, "stock adjustment rejected").
		WithDetails(details)
}

// StockOverride sets an item's stock to an absolute value.
type StockOverride struct {
	ItemID uuid.UUID `json:"item_id"`
	Stock  int       `json:"stock"`
}

// BulkOverrideStock writes absolute stock values. Negative targets and
// missing items are rejected with the failures reported together.
func (r *Repository) BulkOverrideStock(ctx context.Context, overrides []StockOverride) error {
	var errs error
	failedIDs := []uuid.UUID{}
	for _, override := range overrides {
		if override.Stock < 0 {
			errs = multierr.Append(errs, fmt.Errorf("item %s: negative stock %d", override.ItemID, override.Stock))
			failedIDs = append(failedIDs, override.ItemID)
			continue
		}
		res := r.db.WithContext(ctx).
			Model(&models.InventoryItem{}).
			Where("id = ?", override.ItemID).
			Update("stock", override.Stock)
		switch {
		case res.Error != nil:
			errs = multierr.Append(errs, fmt.Errorf("item %s: %w", override.ItemID, res.Error))
			failedIDs = append(failedIDs, override.ItemID)
		case res.RowsAffected == 0:
			errs = multierr.Append(errs, fmt.Errorf("item %s: not found", override.ItemID))
			failedIDs = append(failedIDs, override.ItemID)
		}
	}
	if errs == nil {
		return nil
	}
	return pkgerrors.Wrap(pkgerrors.CodeConflict, errs, "stock override rejected").
		WithDetails(map[string]any{"failed_item_ids": failedIDs})
}

// ResolveForest loads the whole catalog and links component references into
// an in-memory node arena. References to rows that no longer exist stay
// unresolved so the BOM engine can surface them.
func (r *Repository) ResolveForest(ctx context.Context) (map[uuid.UUID]*ItemNode, error) {
	var rows []models.InventoryItem
	err := r.db.WithContext(ctx).
		Preload("Components", preloadComponents).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return buildForest(rows), nil
}

// ResolveTree loads the catalog and returns the node for rootID.
func (r *Repository) ResolveTree(ctx context.Context, rootID uuid.UUID) (*ItemNode, error) {
	forest, err := r.ResolveForest(ctx)
	if err != nil {
		return nil, err
	}
	root, ok := forest[rootID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	return root, nil
}

func buildForest(rows []models.InventoryItem) map[uuid.UUID]*ItemNode {
	nodes := make(map[uuid.UUID]*ItemNode, len(rows))
	for i := range rows {
		row := &rows[i]
		nodes[row.ID] = &ItemNode{
			ID:                 row.ID,
			Name:               row.Name,
			SKU:                row.SKU,
			Stock:              row.Stock,
			MinStock:           row.MinStock,
			Vendor:             row.Vendor,
			IsSupported:        row.IsSupported,
			IsAssembledProduct: row.IsAssembledProduct,
		}
	}
	for i := range rows {
		row := &rows[i]
		node := nodes[row.ID]
		for _, comp := range row.Components {
			ref := UnresolvedRef(comp.ItemID)
			if child, ok := nodes[comp.ItemID]; ok {
				ref = ResolvedRef(child)
			}
			node.Components = append(node.Components, Component{Ref: ref, Quantity: comp.Quantity})
		}
	}
	return nodes
}
