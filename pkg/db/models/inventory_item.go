package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryItem is a stockable item. A leaf item has no component rows; a
// complex item carries at least one ItemComponent and is resolved through the
// BOM engine before any stock math.
type InventoryItem struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name               string          `gorm:"column:name;not null"`
	SKU                string          `gorm:"column:sku;not null;uniqueIndex"`
	Stock              int             `gorm:"column:stock;not null;default:0"`
	MinStock           int             `gorm:"column:min_stock;not null;default:0"`
	Vendor             string          `gorm:"column:vendor;not null"`
	Link               *string         `gorm:"column:link"`
	IsAssembledProduct bool            `gorm:"column:is_assembled_product;not null;default:false"`
	IsSupported        bool            `gorm:"column:is_supported;not null;default:true"`
	Components         []ItemComponent `gorm:"foreignKey:ParentItemID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// IsComplex reports whether the item carries a bill of materials.
func (i InventoryItem) IsComplex() bool {
	return len(i.Components) > 0
}

// ItemComponent is one (item, quantity) entry in a complex item's bill of
// materials. Quantity is a positive multiplier.
type ItemComponent struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ParentItemID uuid.UUID `gorm:"column:parent_item_id;type:uuid;not null;index"`
	ItemID       uuid.UUID `gorm:"column:item_id;type:uuid;not null;index"`
	Quantity     int       `gorm:"column:quantity;not null"`
	Position     int       `gorm:"column:position;not null;default:0"`
}
