package assembly

import (
	"time"

	"github.com/google/uuid"
)

// AssemblyDTO is the API projection of one produced unit.
type AssemblyDTO struct {
	ID             uuid.UUID `json:"id"`
	ItemID         uuid.UUID `json:"item_id"`
	ItemName       string    `json:"item_name"`
	EmployeeID     uuid.UUID `json:"employee_id"`
	EmployeeName   string    `json:"employee_name"`
	ProjectID      uuid.UUID `json:"project_id"`
	ProjectName    string    `json:"project_name"`
	ProductionDate time.Time `json:"production_date"`
	SerialNumber   string    `json:"serial_number"`
	CreatedAt      time.Time `json:"created_at"`
}

func toAssemblyDTO(row *record) AssemblyDTO {
	return AssemblyDTO{
		ID:             row.ID,
		ItemID:         row.ItemID,
		ItemName:       row.ItemName,
		EmployeeID:     row.EmployeeID,
		EmployeeName:   row.EmployeeName,
		ProjectID:      row.ProjectID,
		ProjectName:    row.ProjectName,
		ProductionDate: row.ProductionDate,
		SerialNumber:   row.SerialNumber,
		CreatedAt:      row.CreatedAt,
	}
}
