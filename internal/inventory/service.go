package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/TheWizardo/InventoryPro/internal/guard"
	"github.com/TheWizardo/InventoryPro/internal/inventorylog"
	"github.com/TheWizardo/InventoryPro/pkg/db"
	"github.com/TheWizardo/InventoryPro/pkg/db/models"
	pkgerrors "github.com/TheWizardo/InventoryPro/pkg/errors"
	"github.com/TheWizardo/InventoryPro/pkg/metrics"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes inventory catalog and stock operations.
type Service interface {
	ListItems(ctx context.Context, filter ListFilter) ([]ItemDTO, error)
	GetItem(ctx context.Context, id uuid.UUID) (*ItemDTO, error)
	GetManyItems(ctx context.Context, ids []uuid.UUID) ([]ItemDTO, error)
	CreateItem(ctx context.Context, input CreateItemInput) (*ItemDTO, error)
	UpdateItem(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*ItemDTO, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	ListVendors(ctx context.Context) ([]string, error)
	AdjustStock(ctx context.Context, input AdjustStockInput) ([]ItemDTO, error)
	OverrideStock(ctx context.Context, input OverrideStockInput) ([]ItemDTO, error)
	FlattenItem(ctx context.Context, id uuid.UUID) ([]FlattenedComponentDTO, error)
	PredictStock(ctx context.Context, input PredictStockInput) ([]StockPredictionDTO, error)
}

// CreateItemInput holds the validated payload to create an item.
type CreateItemInput struct {
	Name               string
	SKU                string
	Stock              int
	MinStock           int
	Vendor             string
	Link               *string
	IsAssembledProduct bool
	IsSupported        bool
	Components         []ComponentInput
}

// ComponentInput is one BOM line of the payload.
type ComponentInput struct {
	ItemID   uuid.UUID
	Quantity int
}

// UpdateItemInput holds optional mutation values for an item. Stock is not
// updatable here; stock moves through AdjustStock and OverrideStock so every
// change leaves an audit entry.
type UpdateItemInput struct {
	Name               *string
	SKU                *string
	MinStock           *int
	Vendor             *string
	Link               *string
	IsAssembledProduct *bool
	IsSupported        *bool
	Components         *[]ComponentInput
}

// AdjustStockInput applies signed stock deltas on behalf of an employee.
type AdjustStockInput struct {
	EmployeeID  uuid.UUID
	Description string
	Adjustments []Adjustment
}

// OverrideStockInput writes absolute stock counts on behalf of an employee.
type OverrideStockInput struct {
	EmployeeID  uuid.UUID
	Description string
	Overrides   []StockOverride
}

// PredictStockInput describes a planned batch of builds.
type PredictStockInput struct {
	Builds []BuildPlan
}

// BuildPlan is one planned production run.
type BuildPlan struct {
	ItemID uuid.UUID
	Count  int
}

type employeeReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Employee, error)
}

// service implements the inventory service.
type service struct {
	repo      *Repository
	dbClient  *db.Client
	logs      *inventorylog.Repository
	employees employeeReader
	guard     *guard.Checker
	metrics   *metrics.AssemblyMetrics
}

// NewService constructs an inventory service instance.
func NewService(repo *Repository, dbClient *db.Client, logs *inventorylog.Repository, employees employeeReader, deleteGuard *guard.Checker, assemblyMetrics *metrics.AssemblyMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logs == nil {
		return nil, fmt.Errorf("log repository required")
	}
	if employees == nil {
		return nil, fmt.Errorf("employee repository required")
	}
	if deleteGuard == nil {
		return nil, fmt.Errorf("delete guard required")
	}
	return &service{
		repo:      repo,
		dbClient:  dbClient,
		logs:      logs,
		employees: employees,
		guard:     deleteGuard,
		metrics:   assemblyMetrics,
	}, nil
}

// ListItems returns catalog items with their effective support status.
func (s *service) ListItems(ctx context.Context, filter ListFilter) ([]ItemDTO, error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	forest, err := s.repo.ResolveForest(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]ItemDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, toItemDTO(&rows[i], !Unsupported(forest[rows[i].ID])))
	}
	return dtos, nil
}

// GetItem returns one item with its effective support status.
func (s *service) GetItem(ctx context.Context, id uuid.UUID) (*ItemDTO, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	forest, err := s.repo.ResolveForest(ctx)
	if err != nil {
		return nil, err
	}
	dto := toItemDTO(item, !Unsupported(forest[id]))
	return &dto, nil
}

// GetManyItems returns the items for the given IDs, in request order.
// Unknown IDs are skipped.
func (s *service) GetManyItems(ctx context.Context, ids []uuid.UUID) ([]ItemDTO, error) {
	if len(ids) == 0 {
		return []ItemDTO{}, nil
	}
	return s.itemDTOs(ctx, ids)
}

// CreateItem inserts a new item with its bill of materials.
func (s *service) CreateItem(ctx context.Context, input CreateItemInput) (*ItemDTO, error) {
	if input.Stock < 0 || input.MinStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock and min_stock cannot be negative")
	}

	item := &models.InventoryItem{
		ID:                 uuid.New(),
		Name:               input.Name,
		SKU:                input.SKU,
		Stock:              input.Stock,
		MinStock:           input.MinStock,
		Vendor:             input.Vendor,
		Link:               input.Link,
		IsAssembledProduct: input.IsAssembledProduct,
		IsSupported:        input.IsSupported,
	}
	components, err := s.buildComponents(ctx, item.ID, input.Components)
	if err != nil {
		return nil, err
	}
	item.Components = components

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.repo.WithTx(tx).Create(ctx, item)
		return err
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "sku already exists")
		}
		return nil, err
	}
	return s.GetItem(ctx, item.ID)
}

// UpdateItem mutates item fields and, when provided, replaces the bill of
// materials after checking the resulting graph stays acyclic.
func (s *service) UpdateItem(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*ItemDTO, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		item.Name = *input.Name
	}
	if input.SKU != nil {
		item.SKU = *input.SKU
	}
	if input.MinStock != nil {
		if *input.MinStock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_stock cannot be negative")
		}
		item.MinStock = *input.MinStock
	}
	if input.Vendor != nil {
		item.Vendor = *input.Vendor
	}
	if input.Link != nil {
		item.Link = input.Link
	}
	if input.IsAssembledProduct != nil {
		item.IsAssembledProduct = *input.IsAssembledProduct
	}
	if input.IsSupported != nil {
		item.IsSupported = *input.IsSupported
	}

	var components []models.ItemComponent
	if input.Components != nil {
		components, err = s.buildComponents(ctx, id, *input.Components)
		if err != nil {
			return nil, err
		}
		if err := s.checkAcyclic(ctx, id, *input.Components); err != nil {
			return nil, err
		}
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.Update(ctx, item); err != nil {
			return err
		}
		if input.Components != nil {
			return txRepo.ReplaceComponents(ctx, id, components)
		}
		return nil
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "sku already exists")
		}
		return nil, err
	}
	return s.GetItem(ctx, id)
}

// DeleteItem removes an item after the dependency guard confirms nothing
// references it. The guard check runs inside the delete transaction so a
// reference created concurrently cannot slip in between check and delete.
func (s *service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	var blocked bool
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		report, err := s.guard.WithTx(tx).CheckItem(ctx, id)
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
		s.metrics.IncBlockedDelete("item")
	}
	return err
}

// ListVendors returns the distinct vendor names in the catalog.
func (s *service) ListVendors(ctx context.Context) ([]string, error) {
	return s.repo.DistinctVendors(ctx)
}

// AdjustStock applies signed deltas atomically and records an audit entry
// attributed to the acting employee.
func (s *service) AdjustStock(ctx context.Context, input AdjustStockInput) ([]ItemDTO, error) {
	if len(input.Adjustments) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one adjustment is required")
	}
	if err := s.requireEmployed(ctx, input.EmployeeID); err != nil {
		return nil, err
	}

	adjustments := Aggregate(input.Adjustments)
	description := input.Description
	if description == "" {
		description = "Manual stock adjustment"
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).BulkAdjustStock(ctx, adjustments); err != nil {
			return err
		}
		entry := s.auditEntry(input.EmployeeID, description, adjustments)
		_, err := s.logs.WithTx(tx).Create(ctx, entry)
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, adj := range adjustments {
		s.metrics.AddStockDelta(adj.Quantity)
	}
	return s.itemDTOs(ctx, adjustmentIDs(adjustments))
}

// OverrideStock writes absolute counts atomically and records the resulting
// deltas in an audit entry.
func (s *service) OverrideStock(ctx context.Context, input OverrideStockInput) ([]ItemDTO, error) {
	if len(input.Overrides) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one override is required")
	}
	if err := s.requireEmployed(ctx, input.EmployeeID); err != nil {
		return nil, err
	}

	description := input.Description
	if description == "" {
		description = "Stock count override"
	}

	ids := make([]uuid.UUID, 0, len(input.Overrides))
	for _, override := range input.Overrides {
		ids = append(ids, override.ItemID)
	}

	var deltas []Adjustment
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		current, err := txRepo.FindMany(ctx, ids)
		if err != nil {
			return err
		}
		stockByID := make(map[uuid.UUID]int, len(current))
		for _, item := range current {
			stockByID[item.ID] = item.Stock
		}

		if err := txRepo.BulkOverrideStock(ctx, input.Overrides); err != nil {
			return err
		}

		deltas = deltas[:0]
		for _, override := range input.Overrides {
			deltas = append(deltas, Adjustment{
				ItemID:   override.ItemID,
				Quantity: override.Stock - stockByID[override.ItemID],
			})
		}
		entry := s.auditEntry(input.EmployeeID, description, deltas)
		_, err = s.logs.WithTx(tx).Create(ctx, entry)
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, delta := range deltas {
		s.metrics.AddStockDelta(delta.Quantity)
	}
	return s.itemDTOs(ctx, ids)
}

// FlattenItem resolves an item's BOM tree down to leaf quantities.
func (s *service) FlattenItem(ctx context.Context, id uuid.UUID) ([]FlattenedComponentDTO, error) {
	forest, err := s.repo.ResolveForest(ctx)
	if err != nil {
		return nil, err
	}
	root, ok := forest[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	leaves, err := Flatten(root)
	if err != nil {
		return nil, err
	}

	dtos := make([]FlattenedComponentDTO, 0, len(leaves))
	for _, leaf := range leaves {
		node := forest[leaf.ItemID]
		dtos = append(dtos, FlattenedComponentDTO{
			ItemID:   leaf.ItemID,
			Name:     node.Name,
			SKU:      node.SKU,
			Quantity: leaf.Quantity,
		})
	}
	return dtos, nil
}

// PredictStock projects leaf stock levels after the planned builds without
// touching the database.
func (s *service) PredictStock(ctx context.Context, input PredictStockInput) ([]StockPredictionDTO, error) {
	if len(input.Builds) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one build is required")
	}
	forest, err := s.repo.ResolveForest(ctx)
	if err != nil {
		return nil, err
	}

	lists := make([][]Adjustment, 0, len(input.Builds))
	for _, build := range input.Builds {
		if build.Count < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "build count must be at least 1")
		}
		root, ok := forest[build.ItemID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound,
				fmt.Sprintf("item %s not found", build.ItemID))
		}
		leaves, err := Flatten(root)
		if err != nil {
			return nil, err
		}
		lists = append(lists, Scale(leaves, build.Count))
	}

	consumption := Invert(Aggregate(lists...))
	stocks := map[uuid.UUID]int{}
	for _, adj := range consumption {
		stocks[adj.ItemID] = forest[adj.ItemID].Stock
	}
	predicted := Apply(stocks, consumption)

	dtos := make([]StockPredictionDTO, 0, len(consumption))
	for _, adj := range consumption {
		node := forest[adj.ItemID]
		dtos = append(dtos, StockPredictionDTO{
			ItemID:         adj.ItemID,
			Name:           node.Name,
			SKU:            node.SKU,
			CurrentStock:   node.Stock,
			PredictedStock: predicted[adj.ItemID],
			BelowMinStock:  predicted[adj.ItemID] < node.MinStock,
		})
	}
	return dtos, nil
}

func (s *service) requireEmployed(ctx context.Context, employeeID uuid.UUID) error {
	employee, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		return err
	}
	if !employee.IsEmployed {
		return pkgerrors.New(pkgerrors.CodeValidation, "employee is no longer employed")
	}
	return nil
}

func (s *service) buildComponents(ctx context.Context, parentID uuid.UUID, inputs []ComponentInput) ([]models.ItemComponent, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(inputs))
	for _, input := range inputs {
		if input.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "component quantity must be at least 1")
		}
		if input.ItemID == parentID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "an item cannot contain itself")
		}
		ids = append(ids, input.ItemID)
	}

	existing, err := s.repo.FindMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	known := make(map[uuid.UUID]bool, len(existing))
	for _, item := range existing {
		known[item.ID] = true
	}

	components := make([]models.ItemComponent, 0, len(inputs))
	seen := map[uuid.UUID]bool{}
	for i, input := range inputs {
		if !known[input.ItemID] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("component item %s does not exist", input.ItemID))
		}
		if seen[input.ItemID] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("component item %s listed twice", input.ItemID))
		}
		seen[input.ItemID] = true
		components = append(components, models.ItemComponent{
			ID:           uuid.New(),
			ParentItemID: parentID,
			ItemID:       input.ItemID,
			Quantity:     input.Quantity,
			Position:     i,
		})
	}
	return components, nil
}

// checkAcyclic simulates the proposed bill of materials in memory and rejects
// the update if flattening it would hit a cycle.
func (s *service) checkAcyclic(ctx context.Context, id uuid.UUID, inputs []ComponentInput) error {
	forest, err := s.repo.ResolveForest(ctx)
	if err != nil {
		return err
	}
	node, ok := forest[id]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}

	proposed := make([]Component, 0, len(inputs))
	for _, input := range inputs {
		ref := UnresolvedRef(input.ItemID)
		if child, ok := forest[input.ItemID]; ok {
			ref = ResolvedRef(child)
		}
		proposed = append(proposed, Component{Ref: ref, Quantity: input.Quantity})
	}
	node.Components = proposed

	if _, err := Flatten(node); err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeConsistency {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "bill of materials would be invalid").
				WithDetails(typed.Details())
		}
		return err
	}
	return nil
}

func (s *service) auditEntry(employeeID uuid.UUID, description string, lines []Adjustment) *models.LogRegistry {
	entry := &models.LogRegistry{
		ID:               uuid.New(),
		EmployeeID:       employeeID,
		Description:      truncate(description, inventorylog.DescriptionMaxLen),
		RegistrationDate: time.Now().UTC(),
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

func (s *service) itemDTOs(ctx context.Context, ids []uuid.UUID) ([]ItemDTO, error) {
	rows, err := s.repo.FindMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	forest, err := s.repo.ResolveForest(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.InventoryItem, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}
	dtos := make([]ItemDTO, 0, len(ids))
	for _, id := range ids {
		item, ok := byID[id]
		if !ok {
			continue
		}
		dtos = append(dtos, toItemDTO(item, !Unsupported(forest[id])))
	}
	return dtos, nil
}

func adjustmentIDs(adjustments []Adjustment) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(adjustments))
	for _, adj := range adjustments {
		ids = append(ids, adj.ItemID)
	}
	return ids
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
