package inventorylog

import (
	"context"
	"testing"
	"time"

	"github.com/TheWizardo/InventoryPro/pkg/db"
	"github.com/TheWizardo/InventoryPro/pkg/db/models"
	pkgerrors "github.com/TheWizardo/InventoryPro/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupLogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := []string{
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
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

type fakeEmployees struct {
	known map[uuid.UUID]*models.Employee
}

func (f *fakeEmployees) FindByID(_ context.Context, id uuid.UUID) (*models.Employee, error) {
	if employee, ok := f.known[id]; ok {
		return employee, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "employee not found")
}

func (f *fakeEmployees) FindMany(_ context.Context, ids []uuid.UUID) ([]models.Employee, error) {
	var out []models.Employee
	for _, id := range ids {
		if employee, ok := f.known[id]; ok {
			out = append(out, *employee)
		}
	}
	return out, nil
}

type fakeItems struct {
	known map[uuid.UUID]models.InventoryItem
}

func (f *fakeItems) FindMany(_ context.Context, ids []uuid.UUID) ([]models.InventoryItem, error) {
	var out []models.InventoryItem
	for _, id := range ids {
		if item, ok := f.known[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

type logFixture struct {
	svc      Service
	conn     *gorm.DB
	employee *models.Employee
	item     models.InventoryItem
}

func setupLogService(t *testing.T) *logFixture {
	t.Helper()
	conn := setupLogTestDB(t)

	employee := &models.Employee{ID: uuid.New(), Name: "Dana", IsEmployed: true}
	item := models.InventoryItem{ID: uuid.New(), Name: "Screw", SKU: "SCR-1"}

	svc, err := NewService(
		NewRepository(conn),
		db.NewWithConn(conn),
		&fakeEmployees{known: map[uuid.UUID]*models.Employee{employee.ID: employee}},
		&fakeItems{known: map[uuid.UUID]models.InventoryItem{item.ID: item}},
	)
	require.NoError(t, err)
	return &logFixture{svc: svc, conn: conn, employee: employee, item: item}
}

func TestCreateAndGetEntryResolvesNames(t *testing.T) {
	f := setupLogService(t)
	ctx := context.Background()

	created, err := f.svc.CreateEntry(ctx, CreateEntryInput{
		EmployeeID:  f.employee.ID,
		Description: "Cycle count correction",
		Items:       []EntryLineInput{{ItemID: f.item.ID, Quantity: -3}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Dana", created.EmployeeName)
	require.Len(t, created.Items, 1)
	assert.Equal(t, "Screw", created.Items[0].ItemName)
	assert.Equal(t, -3, created.Items[0].Quantity)
	assert.False(t, created.RegistrationDate.IsZero())
}

func TestCreateEntryRejectsUnknownEmployee(t *testing.T) {
	f := setupLogService(t)

	_, err := f.svc.CreateEntry(context.Background(), CreateEntryInput{
		EmployeeID:  uuid.New(),
		Description: "Ghost",
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestCreateEntryRejectsOverlongDescription(t *testing.T) {
	f := setupLogService(t)

	long := make([]byte, DescriptionMaxLen+1)
	for i := range long {
		long[i] = 'x'
	}
	_, err := f.svc.CreateEntry(context.Background(), CreateEntryInput{
		EmployeeID:  f.employee.ID,
		Description: string(long),
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestListEntriesFiltersByEmployeeAndWindow(t *testing.T) {
	f := setupLogService(t)
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour)
	_, err := f.svc.CreateEntry(ctx, CreateEntryInput{
		EmployeeID:       f.employee.ID,
		Description:      "old entry",
		RegistrationDate: old,
	})
	require.NoError(t, err)
	_, err = f.svc.CreateEntry(ctx, CreateEntryInput{
		EmployeeID:  f.employee.ID,
		Description: "recent entry",
	})
	require.NoError(t, err)

	from := time.Now().Add(-time.Hour)
	entries, err := f.svc.ListEntries(ctx, ListFilter{EmployeeID: &f.employee.ID, From: &from})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "recent entry", entries[0].Description)

	all, err := f.svc.ListEntries(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "recent entry", all[0].Description, "newest first")
}

func TestDeleteEntryRemovesLines(t *testing.T) {
	f := setupLogService(t)
	ctx := context.Background()

	created, err := f.svc.CreateEntry(ctx, CreateEntryInput{
		EmployeeID:  f.employee.ID,
		Description: "to delete",
		Items:       []EntryLineInput{{ItemID: f.item.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteEntry(ctx, created.ID))

	var lines int64
	require.NoError(t, f.conn.Model(&models.LogRegistryItem{}).Where("registry_id = ?", created.ID).Count(&lines).Error)
	assert.Zero(t, lines)

	err = f.svc.DeleteEntry(ctx, created.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
