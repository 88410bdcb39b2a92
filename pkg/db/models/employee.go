package models

import (
	"time"

	"github.com/google/uuid"
)

// Employee is a person performing assemblies and stock changes.
type Employee struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name       string    `gorm:"column:name;not null"`
	IsEmployed bool      `gorm:"column:is_employed;not null;default:true"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
