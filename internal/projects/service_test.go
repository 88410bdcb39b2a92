package projects

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

func setupProjectsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := []string{
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
	}
	for _, stmt := range schema {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

type fakeItemReader struct {
	items map[uuid.UUID]models.InventoryItem
}

func (f *fakeItemReader) FindMany(_ context.Context, ids []uuid.UUID) ([]models.InventoryItem, error) {
	var out []models.InventoryItem
	for _, id := range ids {
		if item, ok := f.items[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

type projectFixture struct {
	svc    Service
	repo   *Repository
	conn   *gorm.DB
	device models.InventoryItem
	crate  models.InventoryItem
}

func setupProjectFixture(t *testing.T) *projectFixture {
	t.Helper()
	conn := setupProjectsTestDB(t)

	device := models.InventoryItem{ID: uuid.New(), Name: "Device", SKU: "DEV-1"}
	crate := models.InventoryItem{ID: uuid.New(), Name: "Crate", SKU: "CRT-1"}
	items := &fakeItemReader{items: map[uuid.UUID]models.InventoryItem{
		device.ID: device,
		crate.ID:  crate,
	}}

	repo := NewRepository(conn)
	svc, err := NewService(repo, db.NewWithConn(conn), items)
	require.NoError(t, err)
	return &projectFixture{svc: svc, repo: repo, conn: conn, device: device, crate: crate}
}

func (f *projectFixture) addAssembly(t *testing.T, projectID, itemID uuid.UUID) {
	t.Helper()
	require.NoError(t, f.conn.Create(&models.AssembledItem{
		ID:             uuid.New(),
		ItemID:         itemID,
		EmployeeID:     uuid.New(),
		ProjectID:      projectID,
		ProductionDate: time.Now(),
		SerialNumber:   "SN-" + uuid.NewString(),
	}).Error)
}

func TestCreateProjectWithTargets(t *testing.T) {
	f := setupProjectFixture(t)
	ctx := context.Background()

	dto, err := f.svc.CreateProject(ctx, CreateProjectInput{
		Name:    "Launch",
		DueDate: time.Now().Add(72 * time.Hour),
		Products: []ProductTargetInput{
			{ItemID: f.device.ID, Quantity: 3},
		},
	})
	require.NoError(t, err)
	assert.False(t, dto.IsCompleted)
	require.Len(t, dto.Products, 1)
	assert.Equal(t, "Device", dto.Products[0].ItemName)
	assert.Equal(t, 3, dto.Products[0].Quantity)
}

func TestCreateProjectRejectsUnknownTarget(t *testing.T) {
	f := setupProjectFixture(t)

	_, err := f.svc.CreateProject(context.Background(), CreateProjectInput{
		Name:     "Ghost",
		DueDate:  time.Now(),
		Products: []ProductTargetInput{{ItemID: uuid.New(), Quantity: 1}},
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestProgressAndCompletionRecompute(t *testing.T) {
	f := setupProjectFixture(t)
	ctx := context.Background()

	dto, err := f.svc.CreateProject(ctx, CreateProjectInput{
		Name:    "Batch",
		DueDate: time.Now().Add(24 * time.Hour),
		Products: []ProductTargetInput{
			{ItemID: f.device.ID, Quantity: 2},
			{ItemID: f.crate.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	f.addAssembly(t, dto.ID, f.device.ID)

	progress, err := f.svc.Progress(ctx, dto.ID)
	require.NoError(t, err)
	require.Len(t, progress.Targets, 2)
	assert.Equal(t, 1, progress.Targets[0].Built)
	assert.Equal(t, 1, progress.Targets[0].Remaining)
	assert.False(t, progress.Targets[0].Done)

	completed, err := f.repo.RecomputeCompletion(ctx, dto.ID)
	require.NoError(t, err)
	assert.False(t, completed)

	f.addAssembly(t, dto.ID, f.device.ID)
	f.addAssembly(t, dto.ID, f.crate.ID)

	completed, err = f.repo.RecomputeCompletion(ctx, dto.ID)
	require.NoError(t, err)
	assert.True(t, completed)

	got, err := f.svc.GetProject(ctx, dto.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)
}

func TestCompletionAllowsOverbuild(t *testing.T) {
	f := setupProjectFixture(t)
	ctx := context.Background()

	dto, err := f.svc.CreateProject(ctx, CreateProjectInput{
		Name:     "Overbuild",
		DueDate:  time.Now().Add(time.Hour),
		Products: []ProductTargetInput{{ItemID: f.device.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	f.addAssembly(t, dto.ID, f.device.ID)
	f.addAssembly(t, dto.ID, f.device.ID)

	completed, err := f.repo.RecomputeCompletion(ctx, dto.ID)
	require.NoError(t, err)
	assert.True(t, completed, "building past the target still counts as complete")
}

func TestUpdateProjectTargetsRecomputesCompletion(t *testing.T) {
	f := setupProjectFixture(t)
	ctx := context.Background()

	dto, err := f.svc.CreateProject(ctx, CreateProjectInput{
		Name:     "Shrink",
		DueDate:  time.Now().Add(time.Hour),
		Products: []ProductTargetInput{{ItemID: f.device.ID, Quantity: 5}},
	})
	require.NoError(t, err)
	f.addAssembly(t, dto.ID, f.device.ID)

	products := []ProductTargetInput{{ItemID: f.device.ID, Quantity: 1}}
	updated, err := f.svc.UpdateProject(ctx, dto.ID, UpdateProjectInput{Products: &products})
	require.NoError(t, err)
	assert.True(t, updated.IsCompleted, "lowering the target below the built count completes the project")
}

func TestDeleteProjectBlockedByAssemblies(t *testing.T) {
	f := setupProjectFixture(t)
	ctx := context.Background()

	dto, err := f.svc.CreateProject(ctx, CreateProjectInput{
		Name:     "Sticky",
		DueDate:  time.Now().Add(time.Hour),
		Products: []ProductTargetInput{{ItemID: f.device.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	f.addAssembly(t, dto.ID, f.device.ID)

	err = f.svc.DeleteProject(ctx, dto.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestDeleteProjectWithoutAssemblies(t *testing.T) {
	f := setupProjectFixture(t)
	ctx := context.Background()

	dto, err := f.svc.CreateProject(ctx, CreateProjectInput{
		Name:    "Clean",
		DueDate: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteProject(ctx, dto.ID))

	_, err = f.svc.GetProject(ctx, dto.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
