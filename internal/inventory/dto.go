package inventory

import (
	"time"

	"github.com/TheWizardo/InventoryPro/pkg/db/models"
	"github.com/google/uuid"
)

// ItemDTO is the API projection of an inventory item.
type ItemDTO struct {
	ID                 uuid.UUID      `json:"id"`
	Name               string         `json:"name"`
	SKU                string         `json:"sku"`
	Stock              int            `json:"stock"`
	MinStock           int            `json:"min_stock"`
	Vendor             string         `json:"vendor"`
	Link               *string        `json:"link,omitempty"`
	IsAssembledProduct bool           `json:"is_assembled_product"`
	IsSupported        bool           `json:"is_supported"`
	// EffectivelySupported is false when the item or anything in its
	// component tree is discontinued.
	EffectivelySupported bool           `json:"effectively_supported"`
	BelowMinStock        bool           `json:"below_min_stock"`
	Components           []ComponentDTO `json:"components,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// ComponentDTO is one BOM line of an item.
type ComponentDTO struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity int       `json:"quantity"`
}

// FlattenedComponentDTO is one leaf of a flattened BOM tree.
type FlattenedComponentDTO struct {
	ItemID   uuid.UUID `json:"item_id"`
	Name     string    `json:"name"`
	SKU      string    `json:"sku"`
	Quantity int       `json:"quantity"`
}

// StockPredictionDTO is the projected stock of one item after a planned batch
// of builds.
type StockPredictionDTO struct {
	ItemID         uuid.UUID `json:"item_id"`
	Name           string    `json:"name"`
	SKU            string    `json:"sku"`
	CurrentStock   int       `json:"current_stock"`
	PredictedStock int       `json:"predicted_stock"`
	BelowMinStock  bool      `json:"below_min_stock"`
}

func toItemDTO(item *models.InventoryItem, effectivelySupported bool) ItemDTO {
	dto := ItemDTO{
		ID:                   item.ID,
		Name:                 item.Name,
		SKU:                  item.SKU,
		Stock:                item.Stock,
		MinStock:             item.MinStock,
		Vendor:               item.Vendor,
		Link:                 item.Link,
		IsAssembledProduct:   item.IsAssembledProduct,
		IsSupported:          item.IsSupported,
		EffectivelySupported: effectivelySupported,
		BelowMinStock:        item.Stock < item.MinStock,
		CreatedAt:            item.CreatedAt,
		UpdatedAt:            item.UpdatedAt,
	}
	for _, comp := range item.Components {
		dto.Components = append(dto.Components, ComponentDTO{ItemID: comp.ItemID, Quantity: comp.Quantity})
	}
	return dto
}
