package inventory

import (
	"context"
	"testing"

	"github.com/TheWizardo/InventoryPro/pkg/db/models"
	pkgerrors "github.com/TheWizardo/InventoryPro/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := []string{
		`CREATE TABLE IF NOT EXISTS inventory_items (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  sku TEXT NOT NULL UNIQUE,
  stock INTEGER NOT NULL DEFAULT 0,
  min_stock INTEGER NOT NULL DEFAULT 0,
  vendor TEXT NOT NULL DEFAULT '',
  link TEXT,
  is_assembled_product INTEGER NOT NULL DEFAULT 0,
  is_supported INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS item_components (
  id TEXT PRIMARY KEY,
  parent_item_id TEXT NOT NULL,
  item_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  position INTEGER NOT NULL DEFAULT 0
);`,
	}
	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func mustCreateItem(t *testing.T, db *gorm.DB, name string, stock int, assembled bool) *models.InventoryItem {
	t.Helper()
	item := &models.InventoryItem{
		ID:                 uuid.New(),
		Name:               name,
		SKU:                "SKU-" + uuid.NewString(),
		Stock:              stock,
		Vendor:             "Acme",
		IsAssembledProduct: assembled,
		IsSupported:        true,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func mustLinkComponent(t *testing.T, db *gorm.DB, parent, child *models.InventoryItem, quantity, position int) {
	t.Helper()
	require.NoError(t, db.Create(&models.ItemComponent{
		ID:           uuid.New(),
		ParentItemID: parent.ID,
		ItemID:       child.ID,
		Quantity:     quantity,
		Position:     position,
	}).Error)
}

func TestRepositoryFindByIDLoadsOrderedComponents(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	screw := mustCreateItem(t, db, "screw", 50, false)
	plate := mustCreateItem(t, db, "plate", 20, false)
	bracket := mustCreateItem(t, db, "bracket", 0, true)
	mustLinkComponent(t, db, bracket, plate, 1, 1)
	mustLinkComponent(t, db, bracket, screw, 4, 0)

	got, err := repo.FindByID(ctx, bracket.ID)
	require.NoError(t, err)
	require.Len(t, got.Components, 2)
	assert.Equal(t, screw.ID, got.Components[0].ItemID)
	assert.Equal(t, plate.ID, got.Components[1].ItemID)
	assert.True(t, got.IsComplex())
}

func TestRepositoryFindByIDNotFound(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestRepositoryListFiltersAssembledProducts(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	mustCreateItem(t, db, "loose screw", 10, false)
	product := mustCreateItem(t, db, "finished device", 0, true)

	assembled := true
	rows, err := repo.List(ctx, ListFilter{AssembledProduct: &assembled})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, product.ID, rows[0].ID)
}

func TestRepositoryBulkAdjustStock(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	item := mustCreateItem(t, db, "bolt", 10, false)

	require.NoError(t, repo.BulkAdjustStock(ctx, []Adjustment{{ItemID: item.ID, Quantity: -4}}))

	var stock int
	require.NoError(t, db.Model(&models.InventoryItem{}).Where("id = ?", item.ID).Pluck("stock", &stock).Error)
	assert.Equal(t, 6, stock)
}

func TestRepositoryBulkAdjustStockRejectsInsufficient(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	item := mustCreateItem(t, db, "washer", 2, false)

	err := repo.BulkAdjustStock(ctx, []Adjustment{{ItemID: item.ID, Quantity: -5}})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())

	var stock int
	require.NoError(t, db.Model(&models.InventoryItem{}).Where("id = ?", item.ID).Pluck("stock", &stock).Error)
	assert.Equal(t, 2, stock, "failed adjustment must not change stock")
}

func TestRepositoryBulkAdjustStockReportsPartialFailure(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	ok := mustCreateItem(t, db, "nut", 10, false)
	short := mustCreateItem(t, db, "pin", 1, false)

	err := repo.BulkAdjustStock(ctx, []Adjustment{
		{ItemID: ok.ID, Quantity: -3},
		{ItemID: short.ID, Quantity: -2},
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodePartialFailure, typed.Code())
}

func TestRepositoryBulkOverrideStock(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	item := mustCreateItem(t, db, "spring", 7, false)

	require.NoError(t, repo.BulkOverrideStock(ctx, []StockOverride{{ItemID: item.ID, Stock: 42}}))

	var stock int
	require.NoError(t, db.Model(&models.InventoryItem{}).Where("id = ?", item.ID).Pluck("stock", &stock).Error)
	assert.Equal(t, 42, stock)

	err := repo.BulkOverrideStock(ctx, []StockOverride{{ItemID: item.ID, Stock: -1}})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestRepositoryResolveTreeLinksAndFlattens(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	screw := mustCreateItem(t, db, "screw", 100, false)
	bracket := mustCreateItem(t, db, "bracket", 0, false)
	device := mustCreateItem(t, db, "device", 0, true)
	mustLinkComponent(t, db, bracket, screw, 4, 0)
	mustLinkComponent(t, db, device, bracket, 2, 0)

	root, err := repo.ResolveTree(ctx, device.ID)
	require.NoError(t, err)
	require.True(t, root.IsComplex())

	leaves, err := Flatten(root)
	require.NoError(t, err)
	require.Len(t, leaves, 1)
	assert.Equal(t, screw.ID, leaves[0].ItemID)
	assert.Equal(t, 8, leaves[0].Quantity)
}

func TestRepositoryResolveForestKeepsDanglingRefsUnresolved(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	parent := mustCreateItem(t, db, "orphan parent", 0, false)
	missing := uuid.New()
	require.NoError(t, db.Create(&models.ItemComponent{
		ID:           uuid.New(),
		ParentItemID: parent.ID,
		ItemID:       missing,
		Quantity:     1,
	}).Error)

	forest, err := repo.ResolveForest(ctx)
	require.NoError(t, err)
	node := forest[parent.ID]
	require.NotNil(t, node)
	require.Len(t, node.Components, 1)
	assert.False(t, node.Components[0].Ref.Resolved())
	assert.Equal(t, missing, node.Components[0].Ref.ItemID())

	_, err = Flatten(node)
	require.Error(t, err)
}

func TestRepositoryDistinctVendors(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	a := mustCreateItem(t, db, "va", 0, false)
	require.NoError(t, db.Model(a).Update("vendor", "Zeta Supply").Error)
	b := mustCreateItem(t, db, "vb", 0, false)
	require.NoError(t, db.Model(b).Update("vendor", "Alpha Parts").Error)

	vendors, err := repo.DistinctVendors(ctx)
	require.NoError(t, err)
	assert.Contains(t, vendors, "Zeta Supply")
	assert.Contains(t, vendors, "Alpha Parts")
}

func TestRepositoryDeleteRemovesOwnComponents(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	child := mustCreateItem(t, db, "child", 1, false)
	parent := mustCreateItem(t, db, "parent", 0, false)
	mustLinkComponent(t, db, parent, child, 2, 0)

	require.NoError(t, repo.Delete(ctx, parent.ID))

	var count int64
	require.NoError(t, db.Model(&models.ItemComponent{}).Where("parent_item_id = ?", parent.ID).Count(&count).Error)
	assert.Zero(t, count)

	err := repo.Delete(ctx, parent.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
