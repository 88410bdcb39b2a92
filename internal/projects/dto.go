package projects

import (
	"time"

	"github.com/TheWizardo/InventoryPro/pkg/db/models"
	"github.com/google/uuid"
)

// ProjectDTO is the API projection of a project.
type ProjectDTO struct {
	ID          uuid.UUID           `json:"id"`
	Name        string              `json:"name"`
	DueDate     time.Time           `json:"due_date"`
	IsCompleted bool                `json:"is_completed"`
	Overdue     bool                `json:"overdue"`
	Products    []ProjectProductDTO `json:"products"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// ProjectProductDTO is one target of a project.
type ProjectProductDTO struct {
	ItemID   uuid.UUID `json:"item_id"`
	ItemName string    `json:"item_name,omitempty"`
	Quantity int       `json:"quantity"`
}

// ProgressDTO reports how far along a project is.
type ProgressDTO struct {
	ProjectID   uuid.UUID           `json:"project_id"`
	IsCompleted bool                `json:"is_completed"`
	Targets     []TargetProgressDTO `json:"targets"`
}

// TargetProgressDTO is the per-item progress of one project target.
type TargetProgressDTO struct {
	ItemID    uuid.UUID `json:"item_id"`
	ItemName  string    `json:"item_name,omitempty"`
	Required  int       `json:"required"`
	Built     int       `json:"built"`
	Remaining int       `json:"remaining"`
	Done      bool      `json:"done"`
}

func toProjectDTO(project *models.Project, itemNames map[uuid.UUID]string, now time.Time) ProjectDTO {
	dto := ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		DueDate:     project.DueDate,
		IsCompleted: project.IsCompleted,
		Overdue:     !project.IsCompleted && project.DueDate.Before(now),
		Products:    make([]ProjectProductDTO, 0, len(project.Products)),
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
	for _, target := range project.Products {
		dto.Products = append(dto.Products, ProjectProductDTO{
			ItemID:   target.ItemID,
			ItemName: itemNames[target.ItemID],
			Quantity: target.Quantity,
		})
	}
	return dto
}
