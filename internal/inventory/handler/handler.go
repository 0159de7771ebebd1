package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

// Register mounts the inventory routes. The group must already carry the
// authentication middleware.
func (h *InventoryHandler) Register(g *echo.Group) {
	g.GET("", h.ListItems)
	g.POST("", h.CreateItem)
	g.GET("/stats", h.GetStats)
	g.GET("/low-stock", h.GetLowStock)
	g.GET("/out-of-stock", h.GetOutOfStock)
	g.PUT("/bulk-update", h.BulkUpdate)
	g.GET("/:id", h.GetItem)
	g.PUT("/:id", h.UpdateItem)
	g.DELETE("/:id", h.DeleteItem)
}

func success(c echo.Context, code int, data any) error {
	return c.JSON(code, echo.Map{"status": "success", "data": data})
}

func (h *InventoryHandler) fail(c echo.Context, err error) error {
	var ve *inventory.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "Validation failed", "errors": ve.Errors})
	case errors.Is(err, inventory.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"status": "error", "message": "Inventory item not found"})
	case errors.Is(err, inventory.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"status": "error", "message": "Not authorized to access this item"})
	default:
		h.logger.Error("inventory request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "Internal server error"})
	}
}

func identity(c echo.Context) (auth.Identity, error) {
	id, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return auth.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "not authorized to access this route")
	}
	return id, nil
}

func (h *InventoryHandler) ListItems(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	params, err := parseListParams(c)
	if err != nil {
		return h.fail(c, err)
	}

	res, err := h.uc.ListItems(c.Request().Context(), params, id)
	if err != nil {
		return h.fail(c, err)
	}
	return success(c, http.StatusOK, res)
}

func (h *InventoryHandler) GetItem(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	item, err := h.uc.GetItem(c.Request().Context(), c.Param("id"), id)
	if err != nil {
		return h.fail(c, err)
	}
	return success(c, http.StatusOK, echo.Map{"item": item})
}

func (h *InventoryHandler) CreateItem(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	var input dto.CreateItemInput
	if err := c.Bind(&input); err != nil {
		return h.fail(c, inventory.NewValidationError("body", "malformed request body"))
	}

	item, err := h.uc.CreateItem(c.Request().Context(), &input, id)
	if err != nil {
		return h.fail(c, err)
	}
	return success(c, http.StatusCreated, echo.Map{"item": item})
}

func (h *InventoryHandler) UpdateItem(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	var patch dto.ItemPatch
	if err := c.Bind(&patch); err != nil {
		return h.fail(c, inventory.NewValidationError("body", "malformed request body"))
	}

	item, err := h.uc.UpdateItem(c.Request().Context(), c.Param("id"), &patch, id)
	if err != nil {
		return h.fail(c, err)
	}
	return success(c, http.StatusOK, echo.Map{"item": item})
}

func (h *InventoryHandler) DeleteItem(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	if err := h.uc.DeleteItem(c.Request().Context(), c.Param("id"), id); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "message": "Inventory item deleted successfully"})
}

func (h *InventoryHandler) BulkUpdate(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	var body struct {
		Items []dto.BulkItemUpdate `json:"items"`
	}
	if err := c.Bind(&body); err != nil {
		return h.fail(c, inventory.NewValidationError("body", "malformed request body"))
	}

	res, err := h.uc.BulkUpdate(c.Request().Context(), body.Items, id)
	if err != nil {
		return h.fail(c, err)
	}
	return success(c, http.StatusOK, res)
}

func (h *InventoryHandler) GetStats(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	stats, err := h.uc.GetStats(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return success(c, http.StatusOK, echo.Map{"stats": stats})
}

func (h *InventoryHandler) GetLowStock(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	items, err := h.uc.GetLowStock(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return success(c, http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

func (h *InventoryHandler) GetOutOfStock(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	items, err := h.uc.GetOutOfStock(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return success(c, http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

func parseListParams(c echo.Context) (*dto.ListParams, error) {
	p := &dto.ListParams{}
	err := echo.QueryParamsBinder(c).
		String("search", &p.Search).
		String("category", &p.Category).
		String("status", &p.Status).
		String("stockStatus", &p.StockStatus).
		String("sortBy", &p.SortBy).
		String("sortOrder", &p.SortOrder).
		Int("page", &p.Page).
		Int("limit", &p.Limit).
		BindError()
	if err != nil {
		var be *echo.BindingError
		if errors.As(err, &be) {
			return nil, inventory.NewValidationError(be.Field, "must be a number")
		}
		return nil, inventory.NewValidationError("query", err.Error())
	}

	var errs []inventory.FieldError
	floatParam := func(name string) *float64 {
		raw := c.QueryParam(name)
		if raw == "" {
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs = append(errs, inventory.FieldError{Field: name, Message: "must be a number"})
			return nil
		}
		return &v
	}
	intParam := func(name string) *int {
		raw := c.QueryParam(name)
		if raw == "" {
			return nil
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, inventory.FieldError{Field: name, Message: "must be an integer"})
			return nil
		}
		return &v
	}

	p.MinPrice = floatParam("minPrice")
	p.MaxPrice = floatParam("maxPrice")
	p.MinQuantity = intParam("minQuantity")
	p.MaxQuantity = intParam("maxQuantity")

	if len(errs) > 0 {
		return nil, &inventory.ValidationError{Errors: errs}
	}
	return p, nil
}
