package guard

import (
	"fmt"

	pkgerrors "github.com/TheWizardo/InventoryPro/pkg/errors"
	"github.com/google/uuid"
)

// Reference identifies one row that still depends on the entity whose
// deletion was requested.
type Reference struct {
	ID    uuid.UUID `json:"id"`
	Label string    `json:"label"`
}

// Group collects the blocking references of one dependent kind.
type Group struct {
	Kind       string      `json:"kind"`
	References []Reference `json:"references"`
}

// Report describes everything that blocks a delete. An empty report means the
// entity is safe to remove.
type Report struct {
	Entity   string    `json:"entity"`
	EntityID uuid.UUID `json:"entity_id"`
	Groups   []Group   `json:"groups,omitempty"`
}

// Blocked reports whether any dependent rows were found.
func (r *Report) Blocked() bool {
	return r != nil && len(r.Groups) > 0
}

// Err converts a blocking report into a conflict error carrying the full
// report as details. Returns nil when the report does not block.
func (r *Report) Err() error {
	if !r.Blocked() {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeConflict,
		fmt.Sprintf("%s %s is still referenced by other records", r.Entity, r.EntityID),
	).WithDetails(r)
}

func (r *Report) addGroup(kind string, refs []Reference) {
	if len(refs) == 0 {
		return
	}
	r.Groups = append(r.Groups, Group{Kind: kind, References: refs})
}
