package projects

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/TheWizardo/InventoryPro/pkg/db"
	"github.com/TheWizardo/InventoryPro/pkg/db/models"
	pkgerrors "github.com/TheWizardo/InventoryPro/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes project tracking operations.
type Service interface {
	ListProjects(ctx context.Context, completed *bool) ([]ProjectDTO, error)
	GetProject(ctx context.Context, id uuid.UUID) (*ProjectDTO, error)
	CreateProject(ctx context.Context, input CreateProjectInput) (*ProjectDTO, error)
	UpdateProject(ctx context.Context, id uuid.UUID, input UpdateProjectInput) (*ProjectDTO, error)
	DeleteProject(ctx context.Context, id uuid.UUID) error
	Progress(ctx context.Context, id uuid.UUID) (*ProgressDTO, error)
}

// CreateProjectInput holds the validated payload to create a project.
type CreateProjectInput struct {
	Name     string
	DueDate  time.Time
	Products []ProductTargetInput
}

// ProductTargetInput is one (item, quantity) target of the payload.
type ProductTargetInput struct {
	ItemID   uuid.UUID
	Quantity int
}

// UpdateProjectInput holds optional mutation values for a project.
type UpdateProjectInput struct {
	Name     *string
	DueDate  *time.Time
	Products *[]ProductTargetInput
}

type itemReader interface {
	FindMany(ctx context.Context, ids []uuid.UUID) ([]models.InventoryItem, error)
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	items    itemReader
}

// NewService constructs a project service instance.
func NewService(repo *Repository, dbClient *db.Client, items itemReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("project repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if items == nil {
		return nil, fmt.Errorf("item repository required")
	}
	return &service{repo: repo, dbClient: dbClient, items: items}, nil
}

func (s *service) ListProjects(ctx context.Context, completed *bool) ([]ProjectDTO, error) {
	rows, err := s.repo.List(ctx, completed)
	if err != nil {
		return nil, err
	}
	itemIDs := map[uuid.UUID]struct{}{}
	for _, row := range rows {
		for _, target := range row.Products {
			itemIDs[target.ItemID] = struct{}{}
		}
	}
	names, err := s.itemNames(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	dtos := make([]ProjectDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, toProjectDTO(&rows[i], names, now))
	}
	return dtos, nil
}

func (s *service) GetProject(ctx context.Context, id uuid.UUID) (*ProjectDTO, error) {
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.projectDTO(ctx, project)
}

func (s *service) CreateProject(ctx context.Context, input CreateProjectInput) (*ProjectDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.DueDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "due_date is required")
	}

	project := &models.Project{
		ID:      uuid.New(),
		Name:    name,
		DueDate: input.DueDate,
	}
	products, err := s.buildTargets(ctx, project.ID, input.Products)
	if err != nil {
		return nil, err
	}
	project.Products = products

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.repo.WithTx(tx).Create(ctx, project)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetProject(ctx, project.ID)
}

func (s *service) UpdateProject(ctx context.Context, id uuid.UUID, input UpdateProjectInput) (*ProjectDTO, error) {
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		project.Name = name
	}
	if input.DueDate != nil {
		project.DueDate = *input.DueDate
	}

	var products []models.ProjectProduct
	if input.Products != nil {
		products, err = s.buildTargets(ctx, id, *input.Products)
		if err != nil {
			return nil, err
		}
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.Update(ctx, project); err != nil {
			return err
		}
		if input.Products != nil {
			if err := txRepo.ReplaceProducts(ctx, id, products); err != nil {
				return err
			}
			// changed targets can flip the completion status either way
			if _, err := txRepo.RecomputeCompletion(ctx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetProject(ctx, id)
}

// DeleteProject removes a project that has no live assemblies. Projects with
// production history stay, mirroring the guard on items and employees.
func (s *service) DeleteProject(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountAssemblies(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("project has %d live assemblies", count)).
			WithDetails(map[string]any{"assembly_count": count})
	}
	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, id)
	})
}

// Progress reports per-target build counts against the required quantities.
func (s *service) Progress(ctx context.Context, id uuid.UUID) (*ProgressDTO, error) {
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountAssembliesByItem(ctx, id)
	if err != nil {
		return nil, err
	}

	itemIDs := map[uuid.UUID]struct{}{}
	for _, target := range project.Products {
		itemIDs[target.ItemID] = struct{}{}
	}
	names, err := s.itemNames(ctx, itemIDs)
	if err != nil {
		return nil, err
	}

	progress := &ProgressDTO{ProjectID: id, IsCompleted: project.IsCompleted}
	for _, target := range project.Products {
		built := counts[target.ItemID]
		remaining := target.Quantity - built
		if remaining < 0 {
			remaining = 0
		}
		progress.Targets = append(progress.Targets, TargetProgressDTO{
			ItemID:    target.ItemID,
			ItemName:  names[target.ItemID],
			Required:  target.Quantity,
			Built:     built,
			Remaining: remaining,
			Done:      built >= target.Quantity,
		})
	}
	return progress, nil
}

func (s *service) buildTargets(ctx context.Context, projectID uuid.UUID, inputs []ProductTargetInput) ([]models.ProjectProduct, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(inputs))
	for _, input := range inputs {
		if input.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "target quantity must be at least 1")
		}
		ids = append(ids, input.ItemID)
	}

	existing, err := s.items.FindMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	known := make(map[uuid.UUID]bool, len(existing))
	for _, item := range existing {
		known[item.ID] = true
	}

	targets := make([]models.ProjectProduct, 0, len(inputs))
	seen := map[uuid.UUID]bool{}
	for i, input := range inputs {
		if !known[input.ItemID] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("target item %s does not exist", input.ItemID))
		}
		if seen[input.ItemID] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("target item %s listed twice", input.ItemID))
		}
		seen[input.ItemID] = true
		targets = append(targets, models.ProjectProduct{
			ID:        uuid.New(),
			ProjectID: projectID,
			ItemID:    input.ItemID,
			Quantity:  input.Quantity,
			Position:  i,
		})
	}
	return targets, nil
}

func (s *service) projectDTO(ctx context.Context, project *models.Project) (*ProjectDTO, error) {
	itemIDs := map[uuid.UUID]struct{}{}
	for _, target := range project.Products {
		itemIDs[target.ItemID] = struct{}{}
	}
	names, err := s.itemNames(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	dto := toProjectDTO(project, names, time.Now())
	return &dto, nil
}

func (s *service) itemNames(ctx context.Context, idSet map[uuid.UUID]struct{}) (map[uuid.UUID]string, error) {
	ids := make([]uuid.UUID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	items, err := s.items.FindMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(items))
	for _, item := range items {
		names[item.ID] = item.Name
	}
	return names, nil
}
