package inventorylog

import (
	"time"

	"github.com/TheWizardo/InventoryPro/pkg/db/models"
	"github.com/google/uuid"
)

// EntryDTO is the API projection of one audit entry.
type EntryDTO struct {
	ID               uuid.UUID      `json:"id"`
	EmployeeID       uuid.UUID      `json:"employee_id"`
	EmployeeName     string         `json:"employee_name,omitempty"`
	Description      string         `json:"description"`
	RegistrationDate time.Time      `json:"registration_date"`
	Items            []EntryItemDTO `json:"items"`
	CreatedAt        time.Time      `json:"created_at"`
}

// EntryItemDTO is one item line of an audit entry.
type EntryItemDTO struct {
	ItemID   uuid.UUID `json:"item_id"`
	ItemName string    `json:"item_name,omitempty"`
	Quantity int       `json:"quantity"`
}

func toEntryDTO(entry *models.LogRegistry, employeeNames map[uuid.UUID]string, itemNames map[uuid.UUID]string) EntryDTO {
	dto := EntryDTO{
		ID:               entry.ID,
		EmployeeID:       entry.EmployeeID,
		EmployeeName:     employeeNames[entry.EmployeeID],
		Description:      entry.Description,
		RegistrationDate: entry.RegistrationDate,
		Items:            make([]EntryItemDTO, 0, len(entry.Items)),
		CreatedAt:        entry.CreatedAt,
	}
	for _, line := range entry.Items {
		dto.Items = append(dto.Items, EntryItemDTO{
			ItemID:   line.ItemID,
			ItemName: itemNames[line.ItemID],
			Quantity: line.Quantity,
		})
	}
	return dto
}
