package models

import (
	"time"

	"github.com/google/uuid"
)

// LogRegistry is one append-only audit entry of a stock change. Entries may be
// deleted individually without side effects on other entities.
type LogRegistry struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EmployeeID       uuid.UUID         `gorm:"column:employee_id;type:uuid;not null;index"`
	Description      string            `gorm:"column:description;size:100;not null"`
	RegistrationDate time.Time         `gorm:"column:registration_date;not null"`
	Items            []LogRegistryItem `gorm:"foreignKey:RegistryID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
}

// LogRegistryItem is one (item, quantity) line of an audit entry.
type LogRegistryItem struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RegistryID uuid.UUID `gorm:"column:registry_id;type:uuid;not null;index"`
	ItemID     uuid.UUID `gorm:"column:item_id;type:uuid;not null;index"`
	Quantity   int       `gorm:"column:quantity;not null"`
	Position   int       `gorm:"column:position;not null;default:0"`
}
