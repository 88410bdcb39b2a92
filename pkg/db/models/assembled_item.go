package models

import (
	"time"

	"github.com/google/uuid"
)

// AssembledItem records the production of one physical unit of an inventory
// item. Immutable once created; deletion only affects the owning project's
// completion status (stock restore is policy-gated).
type AssembledItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ItemID         uuid.UUID `gorm:"column:item_id;type:uuid;not null;index"`
	EmployeeID     uuid.UUID `gorm:"column:employee_id;type:uuid;not null;index"`
	ProjectID      uuid.UUID `gorm:"column:project_id;type:uuid;not null;index"`
	ProductionDate time.Time `gorm:"column:production_date;not null"`
	SerialNumber   string    `gorm:"column:serial_number;not null;uniqueIndex"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
