package controllers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/TheWizardo/InventoryPro/api/responses"
	"github.com/TheWizardo/InventoryPro/api/validators"
	inventorysvc "github.com/TheWizardo/InventoryPro/internal/inventory"
	pkgerrors "github.com/TheWizardo/InventoryPro/pkg/errors"
	"github.com/TheWizardo/InventoryPro/pkg/logger"
)

// InventoryList returns items matching the optional filters.
func InventoryList(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		assembled, err := boolQuery(r, "assembled")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		supported, err := boolQuery(r, "supported")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := inventorysvc.ListFilter{
			AssembledProduct: assembled,
			Supported:        supported,
			Query:            r.URL.Query().Get("q"),
		}
		if vendor := r.URL.Query().Get("vendor"); vendor != "" {
			filter.Vendor = &vendor
		}

		items, err := svc.ListItems(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// InventoryGet returns one item with its direct components.
func InventoryGet(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		id, err := uuidParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.GetItem(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// InventoryGetMany returns the items for a batch of IDs, in request order.
func InventoryGetMany(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		var payload getManyItemsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ids := make([]uuid.UUID, 0, len(payload.IDs))
		for _, raw := range payload.IDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id"))
				return
			}
			ids = append(ids, id)
		}

		items, err := svc.GetManyItems(r.Context(), ids)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// InventoryVendors returns the distinct vendor names in use.
func InventoryVendors(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		vendors, err := svc.ListVendors(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vendors)
	}
}

// InventoryCreate creates an item, optionally with its bill of materials.
func InventoryCreate(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		var payload createItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.CreateItem(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// InventoryUpdate applies a partial update to an item. Stock is not accepted
// here; stock moves through the adjust and override endpoints.
func InventoryUpdate(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		id, err := uuidParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpdateItem(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// InventoryDelete removes an item unless other records still reference it.
func InventoryDelete(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		id, err := uuidParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteItem(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// InventoryFlatten returns the item's fully expanded leaf components.
func InventoryFlatten(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		id, err := uuidParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		multiplier := 1
		if raw := r.URL.Query().Get("multiplier"); raw != "" {
			multiplier, err = strconv.Atoi(raw)
			if err != nil || multiplier < 1 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "multiplier must be a positive integer"))
				return
			}
		}

		leaves, err := svc.FlattenItem(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		for i := range leaves {
			leaves[i].Quantity *= multiplier
		}
		responses.WriteSuccess(w, leaves)
	}
}

// InventoryAdjustStock applies signed stock deltas on behalf of an employee.
func InventoryAdjustStock(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		var payload adjustStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.AdjustStock(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// InventoryOverrideStock writes absolute stock counts on behalf of an
// employee, logging the deltas.
func InventoryOverrideStock(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		var payload overrideStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.OverrideStock(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// InventoryPredictStock simulates planned builds against current stock.
func InventoryPredictStock(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		var payload predictStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		predictions, err := svc.PredictStock(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, predictions)
	}
}

type getManyItemsRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid"`
}

type componentRequest struct {
	ItemID   string `json:"item_id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

func toComponentInputs(reqs []componentRequest) ([]inventorysvc.ComponentInput, error) {
	components := make([]inventorysvc.ComponentInput, 0, len(reqs))
	for _, req := range reqs {
		id, err := uuid.Parse(req.ItemID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid component item id")
		}
		components = append(components, inventorysvc.ComponentInput{ItemID: id, Quantity: req.Quantity})
	}
	return components, nil
}

type createItemRequest struct {
	Name               string             `json:"name" validate:"required"`
	SKU                string             `json:"sku" validate:"required"`
	Stock              int                `json:"stock" validate:"min=0"`
	MinStock           int                `json:"min_stock" validate:"min=0"`
	Vendor             string             `json:"vendor,omitempty"`
	Link               *string            `json:"link,omitempty"`
	IsAssembledProduct bool               `json:"is_assembled_product"`
	IsSupported        *bool              `json:"is_supported,omitempty"`
	Components         []componentRequest `json:"components,omitempty" validate:"omitempty,dive"`
}

func (req createItemRequest) toInput() (inventorysvc.CreateItemInput, error) {
	components, err := toComponentInputs(req.Components)
	if err != nil {
		return inventorysvc.CreateItemInput{}, err
	}
	supported := true
	if req.IsSupported != nil {
		supported = *req.IsSupported
	}
	return inventorysvc.CreateItemInput{
		Name:               req.Name,
		SKU:                req.SKU,
		Stock:              req.Stock,
		MinStock:           req.MinStock,
		Vendor:             req.Vendor,
		Link:               req.Link,
		IsAssembledProduct: req.IsAssembledProduct,
		IsSupported:        supported,
		Components:         components,
	}, nil
}

type updateItemRequest struct {
	Name               *string             `json:"name,omitempty"`
	SKU                *string             `json:"sku,omitempty"`
	MinStock           *int                `json:"min_stock,omitempty" validate:"omitempty,min=0"`
	Vendor             *string             `json:"vendor,omitempty"`
	Link               *string             `json:"link,omitempty"`
	IsAssembledProduct *bool               `json:"is_assembled_product,omitempty"`
	IsSupported        *bool               `json:"is_supported,omitempty"`
	Components         *[]componentRequest `json:"components,omitempty" validate:"omitempty,dive"`
}

func (req updateItemRequest) toInput() (inventorysvc.UpdateItemInput, error) {
	input := inventorysvc.UpdateItemInput{
		Name:               req.Name,
		SKU:                req.SKU,
		MinStock:           req.MinStock,
		Vendor:             req.Vendor,
		Link:               req.Link,
		IsAssembledProduct: req.IsAssembledProduct,
		IsSupported:        req.IsSupported,
	}
	if req.Components != nil {
		components, err := toComponentInputs(*req.Components)
		if err != nil {
			return inventorysvc.UpdateItemInput{}, err
		}
		input.Components = &components
	}
	return input, nil
}

type adjustmentRequest struct {
	ItemID   string `json:"item_id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"required"`
}

type adjustStockRequest struct {
	EmployeeID  string              `json:"employee_id" validate:"required,uuid"`
	Description string              `json:"description,omitempty" validate:"omitempty,max=100"`
	Adjustments []adjustmentRequest `json:"adjustments" validate:"required,min=1,dive"`
}

func (req adjustStockRequest) toInput() (inventorysvc.AdjustStockInput, error) {
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return inventorysvc.AdjustStockInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid employee id")
	}
	adjustments := make([]inventorysvc.Adjustment, 0, len(req.Adjustments))
	for _, adj := range req.Adjustments {
		id, parseErr := uuid.Parse(adj.ItemID)
		if parseErr != nil {
			return inventorysvc.AdjustStockInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid adjustment item id")
		}
		adjustments = append(adjustments, inventorysvc.Adjustment{ItemID: id, Quantity: adj.Quantity})
	}
	return inventorysvc.AdjustStockInput{
		EmployeeID:  employeeID,
		Description: req.Description,
		Adjustments: adjustments,
	}, nil
}

type overrideRequest struct {
	ItemID string `json:"item_id" validate:"required,uuid"`
	Stock  int    `json:"stock" validate:"min=0"`
}

type overrideStockRequest struct {
	EmployeeID  string            `json:"employee_id" validate:"required,uuid"`
	Description string            `json:"description,omitempty" validate:"omitempty,max=100"`
	Overrides   []overrideRequest `json:"overrides" validate:"required,min=1,dive"`
}

func (req overrideStockRequest) toInput() (inventorysvc.OverrideStockInput, error) {
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return inventorysvc.OverrideStockInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid employee id")
	}
	overrides := make([]inventorysvc.StockOverride, 0, len(req.Overrides))
	for _, override := range req.Overrides {
		id, parseErr := uuid.Parse(override.ItemID)
		if parseErr != nil {
			return inventorysvc.OverrideStockInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid override item id")
		}
		overrides = append(overrides, inventorysvc.StockOverride{ItemID: id, Stock: override.Stock})
	}
	return inventorysvc.OverrideStockInput{
		EmployeeID:  employeeID,
		Description: req.Description,
		Overrides:   overrides,
	}, nil
}

type buildPlanRequest struct {
	ItemID string `json:"item_id" validate:"required,uuid"`
	Count  int    `json:"count" validate:"required,min=1"`
}

type predictStockRequest struct {
	Builds []buildPlanRequest `json:"builds" validate:"required,min=1,dive"`
}

func (req predictStockRequest) toInput() (inventorysvc.PredictStockInput, error) {
	builds := make([]inventorysvc.BuildPlan, 0, len(req.Builds))
	for _, build := range req.Builds {
		id, err := uuid.Parse(build.ItemID)
		if err != nil {
			return inventorysvc.PredictStockInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid build item id")
		}
		builds = append(builds, inventorysvc.BuildPlan{ItemID: id, Count: build.Count})
	}
	return inventorysvc.PredictStockInput{Builds: builds}, nil
}
