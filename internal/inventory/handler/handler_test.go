package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUseCase struct {
	err        error
	gotParams  *dto.ListParams
	gotID      auth.Identity
	gotItemID  string
	gotPatch   *dto.ItemPatch
	gotUpdates []dto.BulkItemUpdate
}

func (s *stubUseCase) ListItems(_ context.Context, p *dto.ListParams, id auth.Identity) (*dto.PagedResult, error) {
	s.gotParams, s.gotID = p, id
	if s.err != nil {
		return nil, s.err
	}
	return &dto.PagedResult{Items: []model.Item{{ID: "a1"}}, Pagination: dto.NewPagination(1, 10, 1)}, nil
}

func (s *stubUseCase) GetItem(_ context.Context, itemID string, id auth.Identity) (*model.Item, error) {
	s.gotItemID, s.gotID = itemID, id
	if s.err != nil {
		return nil, s.err
	}
	return &model.Item{ID: itemID, StockStatus: model.StockInStock}, nil
}

func (s *stubUseCase) CreateItem(_ context.Context, in *dto.CreateItemInput, id auth.Identity) (*model.Item, error) {
	s.gotID = id
	if s.err != nil {
		return nil, s.err
	}
	return &model.Item{ID: "new", Name: in.Name, OwnerID: id.UserID}, nil
}

func (s *stubUseCase) UpdateItem(_ context.Context, itemID string, p *dto.ItemPatch, id auth.Identity) (*model.Item, error) {
	s.gotItemID, s.gotPatch, s.gotID = itemID, p, id
	if s.err != nil {
		return nil, s.err
	}
	return &model.Item{ID: itemID}, nil
}

func (s *stubUseCase) DeleteItem(_ context.Context, itemID string, id auth.Identity) error {
	s.gotItemID, s.gotID = itemID, id
	return s.err
}

func (s *stubUseCase) BulkUpdate(_ context.Context, u []dto.BulkItemUpdate, id auth.Identity) (*dto.BulkUpdateResult, error) {
	s.gotUpdates, s.gotID = u, id
	if s.err != nil {
		return nil, s.err
	}
	return &dto.BulkUpdateResult{Updated: len(u)}, nil
}

func (s *stubUseCase) GetStats(_ context.Context, id auth.Identity) (*model.Stats, error) {
	s.gotID = id
	if s.err != nil {
		return nil, s.err
	}
	return &model.Stats{TotalItems: 3}, nil
}

func (s *stubUseCase) GetLowStock(_ context.Context, id auth.Identity) ([]model.Item, error) {
	s.gotID = id
	return []model.Item{{ID: "low"}}, s.err
}

func (s *stubUseCase) GetOutOfStock(_ context.Context, id auth.Identity) ([]model.Item, error) {
	s.gotID = id
	return []model.Item{}, s.err
}

func withIdentity(id *auth.Identity) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id != nil {
				req := c.Request()
				c.SetRequest(req.WithContext(auth.WithIdentity(req.Context(), *id)))
			}
			return next(c)
		}
	}
}

func newServer(uc inventory.UseCase, id *auth.Identity) *echo.Echo {
	e := echo.New()
	NewInventoryHandler(uc, logger.NewNop()).Register(e.Group("/api/inventory", withIdentity(id)))
	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

var alice = auth.Identity{UserID: "alice", Role: auth.RoleUser}

func TestListItems_ParsesQuery(t *testing.T) {
	uc := &stubUseCase{}
	e := newServer(uc, &alice)

	rec := do(e, http.MethodGet, "/api/inventory?search=bolt&category=Books&stockStatus=low-stock&minPrice=1.5&maxQuantity=20&sortBy=price&sortOrder=asc&page=2&limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, uc.gotParams)
	assert.Equal(t, "bolt", uc.gotParams.Search)
	assert.Equal(t, "Books", uc.gotParams.Category)
	assert.Equal(t, "low-stock", uc.gotParams.StockStatus)
	require.NotNil(t, uc.gotParams.MinPrice)
	assert.Equal(t, 1.5, *uc.gotParams.MinPrice)
	assert.Nil(t, uc.gotParams.MaxPrice)
	require.NotNil(t, uc.gotParams.MaxQuantity)
	assert.Equal(t, 20, *uc.gotParams.MaxQuantity)
	assert.Equal(t, "price", uc.gotParams.SortBy)
	assert.Equal(t, 2, uc.gotParams.Page)
	assert.Equal(t, 5, uc.gotParams.Limit)
	assert.Equal(t, alice, uc.gotID)

	body := decode(t, rec)
	assert.Equal(t, "success", body["status"])
	data := body["data"].(map[string]any)
	assert.Len(t, data["items"], 1)
	assert.Contains(t, data, "pagination")
}

func TestListItems_BadNumber(t *testing.T) {
	uc := &stubUseCase{}
	e := newServer(uc, &alice)

	rec := do(e, http.MethodGet, "/api/inventory?minPrice=cheap", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, uc.gotParams)

	rec = do(e, http.MethodGet, "/api/inventory?page=two", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"validation", inventory.NewValidationError("name", "required"), http.StatusBadRequest},
		{"not found", fmt.Errorf("%w: item x", inventory.ErrNotFound), http.StatusNotFound},
		{"forbidden", fmt.Errorf("%w: item x", inventory.ErrForbidden), http.StatusForbidden},
		{"store", inventory.NewStoreError("get item", errors.New("db down")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newServer(&stubUseCase{err: tt.err}, &alice)
			rec := do(e, http.MethodGet, "/api/inventory/x", "")
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, "error", decode(t, rec)["status"])
		})
	}
}

func TestValidationErrorBody(t *testing.T) {
	e := newServer(&stubUseCase{err: inventory.NewValidationError("price", "must be between 0 and 999999.99")}, &alice)

	rec := do(e, http.MethodPost, "/api/inventory", `{"name":"x"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode(t, rec)
	errs := body["errors"].([]any)
	require.Len(t, errs, 1)
	assert.Equal(t, "price", errs[0].(map[string]any)["field"])
}

func TestUnauthenticated(t *testing.T) {
	e := newServer(&stubUseCase{}, nil)
	rec := do(e, http.MethodGet, "/api/inventory/stats", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateItem(t *testing.T) {
	uc := &stubUseCase{}
	e := newServer(uc, &alice)

	rec := do(e, http.MethodPost, "/api/inventory", `{"name":"Widget","category":"Other","price":2,"quantity":3,"description":"a fine widget"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	item := decode(t, rec)["data"].(map[string]any)["item"].(map[string]any)
	assert.Equal(t, "Widget", item["name"])
	assert.Equal(t, "alice", item["ownerId"])
}

func TestCreateItem_MalformedBody(t *testing.T) {
	e := newServer(&stubUseCase{}, &alice)
	rec := do(e, http.MethodPost, "/api/inventory", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateAndDelete(t *testing.T) {
	uc := &stubUseCase{}
	e := newServer(uc, &alice)

	rec := do(e, http.MethodPut, "/api/inventory/a1", `{"quantity":4}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a1", uc.gotItemID)
	require.NotNil(t, uc.gotPatch.Quantity)
	assert.Equal(t, 4, *uc.gotPatch.Quantity)
	assert.Nil(t, uc.gotPatch.Name)

	rec = do(e, http.MethodDelete, "/api/inventory/a2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a2", uc.gotItemID)
}

func TestStaticRoutesWinOverID(t *testing.T) {
	uc := &stubUseCase{}
	e := newServer(uc, &alice)

	rec := do(e, http.MethodGet, "/api/inventory/low-stock", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["data"].(map[string]any)["count"])
	assert.Empty(t, uc.gotItemID)

	rec = do(e, http.MethodGet, "/api/inventory/out-of-stock", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/api/inventory/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode(t, rec)["data"].(map[string]any)["stats"].(map[string]any)
	assert.Equal(t, float64(3), stats["totalItems"])
}

func TestBulkUpdate(t *testing.T) {
	uc := &stubUseCase{}
	boss := auth.Identity{UserID: "boss", Role: auth.RoleManager}
	e := newServer(uc, &boss)

	rec := do(e, http.MethodPut, "/api/inventory/bulk-update", `{"items":[{"id":"a1","quantity":2},{"id":"a2","price":9.5}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, uc.gotUpdates, 2)
	assert.Equal(t, "a1", uc.gotUpdates[0].ID)
	require.NotNil(t, uc.gotUpdates[0].Quantity)
	assert.Equal(t, 2, *uc.gotUpdates[0].Quantity)
	require.NotNil(t, uc.gotUpdates[1].Price)
	assert.Equal(t, 9.5, *uc.gotUpdates[1].Price)
	assert.Empty(t, uc.gotItemID)
}
