package models

import (
	"time"

	"github.com/google/uuid"
)

// Project tracks a due date and target product quantities. IsCompleted is
// recomputed on every assembly create/delete: it holds exactly when every
// target has at least its quantity of live assemblies in this project.
type Project struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string           `gorm:"column:name;not null"`
	DueDate     time.Time        `gorm:"column:due_date;not null"`
	IsCompleted bool             `gorm:"column:is_completed;not null;default:false"`
	Products    []ProjectProduct `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// ProjectProduct is one (item, quantity) target of a project.
type ProjectProduct struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID uuid.UUID `gorm:"column:project_id;type:uuid;not null;index"`
	ItemID    uuid.UUID `gorm:"column:item_id;type:uuid;not null;index"`
	Quantity  int       `gorm:"column:quantity;not null"`
	Position  int       `gorm:"column:position;not null;default:0"`
}
