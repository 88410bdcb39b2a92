package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	inventorysvc "github.com/TheWizardo/InventoryPro/internal/inventory"
	"github.com/TheWizardo/InventoryPro/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func withURLParam(req *http.Request, name, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(name, value)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	return req.WithContext(ctx)
}

func TestInventoryGetRejectsInvalidID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory/not-a-uuid", nil)
	req = withURLParam(req, "itemID", "not-a-uuid")
	rec := httptest.NewRecorder()

	InventoryGet(&stubInventoryService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid id, got %d", rec.Code)
	}
}

func TestInventoryCreateValidatesBody(t *testing.T) {
	t.Run("missing name", func(t *testing.T) {
		body := `{"sku":"SCR-1"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory", strings.NewReader(body))
		rec := httptest.NewRecorder()

		InventoryCreate(&stubInventoryService{}, testLogger()).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		body := `{"name":"Screw","sku":"SCR-1","surprise":true}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory", strings.NewReader(body))
		rec := httptest.NewRecorder()

		InventoryCreate(&stubInventoryService{}, testLogger()).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		stub := &stubInventoryService{}
		body := `{"name":"Screw","sku":"SCR-1","stock":20,"min_stock":5}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory", strings.NewReader(body))
		rec := httptest.NewRecorder()

		InventoryCreate(stub, testLogger()).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.created == nil {
			t.Fatalf("expected CreateItem to be invoked")
		}
		if !stub.created.IsSupported {
			t.Fatalf("expected is_supported to default to true")
		}
	})
}

func TestInventoryAdjustStockParsesPayload(t *testing.T) {
	stub := &stubInventoryService{}
	employeeID := uuid.New()
	itemID := uuid.New()
	body := `{"employee_id":"` + employeeID.String() + `","adjustments":[{"item_id":"` + itemID.String() + `","quantity":-3}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/adjust-stock", strings.NewReader(body))
	rec := httptest.NewRecorder()

	InventoryAdjustStock(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.adjusted == nil {
		t.Fatalf("expected AdjustStock to be invoked")
	}
	if stub.adjusted.EmployeeID != employeeID {
		t.Fatalf("expected employee id to round-trip")
	}
	if len(stub.adjusted.Adjustments) != 1 || stub.adjusted.Adjustments[0].Quantity != -3 {
		t.Fatalf("expected one adjustment of -3, got %+v", stub.adjusted.Adjustments)
	}
}

func TestInventoryAdjustStockRejectsEmptyAdjustments(t *testing.T) {
	body := `{"employee_id":"` + uuid.NewString() + `","adjustments":[]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/adjust-stock", strings.NewReader(body))
	rec := httptest.NewRecorder()

	InventoryAdjustStock(&stubInventoryService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestInventoryListPassesFilters(t *testing.T) {
	stub := &stubInventoryService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory?assembled=true&vendor=Acme&q=screw", nil)
	rec := httptest.NewRecorder()

	InventoryList(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if stub.listed == nil {
		t.Fatalf("expected ListItems to be invoked")
	}
	if stub.listed.AssembledProduct == nil || !*stub.listed.AssembledProduct {
		t.Fatalf("expected assembled filter to be set")
	}
	if stub.listed.Vendor == nil || *stub.listed.Vendor != "Acme" {
		t.Fatalf("expected vendor filter to be set")
	}
	if stub.listed.Query != "screw" {
		t.Fatalf("expected query filter to be set")
	}
}

type stubInventoryService struct {
	created  *inventorysvc.CreateItemInput
	adjusted *inventorysvc.AdjustStockInput
	listed   *inventorysvc.ListFilter
}

func (s *stubInventoryService) ListItems(_ context.Context, filter inventorysvc.ListFilter) ([]inventorysvc.ItemDTO, error) {
	s.listed = &filter
	return nil, nil
}

func (s *stubInventoryService) GetItem(context.Context, uuid.UUID) (*inventorysvc.ItemDTO, error) {
	panic("unimplemented")
}

func (s *stubInventoryService) GetManyItems(context.Context, []uuid.UUID) ([]inventorysvc.ItemDTO, error) {
	panic("unimplemented")
}

func (s *stubInventoryService) CreateItem(_ context.Context, input inventorysvc.CreateItemInput) (*inventorysvc.ItemDTO, error) {
	s.created = &input
	return &inventorysvc.ItemDTO{ID: uuid.New(), Name: input.Name, SKU: input.SKU}, nil
}

func (s *stubInventoryService) UpdateItem(context.Context, uuid.UUID, inventorysvc.UpdateItemInput) (*inventorysvc.ItemDTO, error) {
	panic("unimplemented")
}

func (s *stubInventoryService) DeleteItem(context.Context, uuid.UUID) error {
	panic("unimplemented")
}

func (s *stubInventoryService) ListVendors(context.Context) ([]string, error) {
	panic("unimplemented")
}

func (s *stubInventoryService) AdjustStock(_ context.Context, input inventorysvc.AdjustStockInput) ([]inventorysvc.ItemDTO, error) {
	s.adjusted = &input
	return nil, nil
}

func (s *stubInventoryService) OverrideStock(context.Context, inventorysvc.OverrideStockInput) ([]inventorysvc.ItemDTO, error) {
	panic("unimplemented")
}

func (s *stubInventoryService) FlattenItem(context.Context, uuid.UUID) ([]inventorysvc.FlattenedComponentDTO, error) {
	panic("unimplemented")
}

func (s *stubInventoryService) PredictStock(context.Context, inventorysvc.PredictStockInput) ([]inventorysvc.StockPredictionDTO, error) {
	panic("unimplemented")
}
