package guard

import (
	"context"
	"testing"
	"time"

	"github.com/TheWizardo/InventoryPro/pkg/db/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupGuardTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := []string{
		`CREATE TABLE IF NOT EXISTS inventory_items (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  sku TEXT NOT NULL,
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
		`CREATE TABLE IF NOT EXISTS employees (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  is_employed INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS projects (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  due_date DATETIME NOT NULL,
  is_completed INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS project_products (
  id TEXT PRIMARY KEY,
  project_id TEXT NOT NULL,
  item_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  position INTEGER NOT NULL DEFAULT 0
);`,
		`CREATE TABLE IF NOT EXISTS assembled_items (
  id TEXT PRIMARY KEY,
  item_id TEXT NOT NULL,
  employee_id TEXT NOT NULL,
  project_id TEXT NOT NULL,
  production_date DATETIME NOT NULL,
  serial_number TEXT NOT NULL UNIQUE,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS log_registries (
  id TEXT PRIMARY KEY,
  employee_id TEXT NOT NULL,
  description TEXT NOT NULL,
  registration_date DATETIME NOT NULL,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS log_registry_items (
  id TEXT PRIMARY KEY,
  registry_id TEXT NOT NULL,
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

func TestCheckEmployeeReportsAssembliesAndLogs(t *testing.T) {
	db := setupGuardTestDB(t)
	checker := NewChecker(db)
	ctx := context.Background()

	employee := &models.Employee{ID: uuid.New(), Name: "Dana", IsEmployed: true}
	require.NoError(t, db.Create(employee).Error)

	item := &models.InventoryItem{ID: uuid.New(), Name: "Widget", SKU: "WID-" + uuid.NewString(), Vendor: "Acme"}
	require.NoError(t, db.Create(item).Error)

	project := &models.Project{ID: uuid.New(), Name: "Launch", DueDate: time.Now().Add(24 * time.Hour)}
	require.NoError(t, db.Create(project).Error)

	assembly := &models.AssembledItem{
		ID:             uuid.New(),
		ItemID:         item.ID,
		EmployeeID:     employee.ID,
		ProjectID:      project.ID,
		ProductionDate: time.Now(),
		SerialNumber:   "6IAB01-" + uuid.NewString(),
	}
	require.NoError(t, db.Create(assembly).Error)

	entry := &models.LogRegistry{
		ID:               uuid.New(),
		EmployeeID:       employee.ID,
		Description:      "Restocked Widget",
		RegistrationDate: time.Now(),
	}
	require.NoError(t, db.Create(entry).Error)

	report, err := checker.CheckEmployee(ctx, employee.ID)
	require.NoError(t, err)
	require.True(t, report.Blocked())
	require.Error(t, report.Err())

	kinds := map[string][]Reference{}
	for _, group := range report.Groups {
		kinds[group.Kind] = group.References
	}
	require.Len(t, kinds["assembly"], 1)
	assert.Equal(t, assembly.SerialNumber, kinds["assembly"][0].Label)
	require.Len(t, kinds["log_entry"], 1)
	assert.Equal(t, "Restocked Widget", kinds["log_entry"][0].Label)
}

func TestCheckEmployeeUnreferencedIsNotBlocked(t *testing.T) {
	db := setupGuardTestDB(t)
	checker := NewChecker(db)

	employee := &models.Employee{ID: uuid.New(), Name: "Idle", IsEmployed: true}
	require.NoError(t, db.Create(employee).Error)

	report, err := checker.CheckEmployee(context.Background(), employee.ID)
	require.NoError(t, err)
	assert.False(t, report.Blocked())
	assert.NoError(t, report.Err())
}

func TestCheckItemReportsAllDependentKinds(t *testing.T) {
	db := setupGuardTestDB(t)
	checker := NewChecker(db)
	ctx := context.Background()

	leaf := &models.InventoryItem{ID: uuid.New(), Name: "Screw", SKU: "SCR-" + uuid.NewString(), Vendor: "Acme"}
	parent := &models.InventoryItem{ID: uuid.New(), Name: "Bracket", SKU: "BRK-" + uuid.NewString(), Vendor: "Acme"}
	require.NoError(t, db.Create(leaf).Error)
	require.NoError(t, db.Create(parent).Error)
	require.NoError(t, db.Create(&models.ItemComponent{
		ID:           uuid.New(),
		ParentItemID: parent.ID,
		ItemID:       leaf.ID,
		Quantity:     4,
	}).Error)

	project := &models.Project{ID: uuid.New(), Name: "Retrofit", DueDate: time.Now().Add(48 * time.Hour)}
	require.NoError(t, db.Create(project).Error)
	require.NoError(t, db.Create(&models.ProjectProduct{
		ID:        uuid.New(),
		ProjectID: project.ID,
		ItemID:    leaf.ID,
		Quantity:  2,
	}).Error)

	report, err := checker.CheckItem(ctx, leaf.ID)
	require.NoError(t, err)
	require.True(t, report.Blocked())

	kinds := map[string][]Reference{}
	for _, group := range report.Groups {
		kinds[group.Kind] = group.References
	}
	require.Len(t, kinds["parent_item"], 1)
	assert.Equal(t, "Bracket", kinds["parent_item"][0].Label)
	assert.Equal(t, parent.ID, kinds["parent_item"][0].ID)
	require.Len(t, kinds["project"], 1)
	assert.Equal(t, "Retrofit", kinds["project"][0].Label)
	assert.Empty(t, kinds["assembly"])
	assert.Empty(t, kinds["log_entry"])
}
