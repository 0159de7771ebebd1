// Package planner turns caller list parameters plus identity into a
// concrete store filter. Ownership scoping happens here and nowhere else.
package planner

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/validation"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// MaxPage keeps the row offset within a 32-bit range at the largest page size.
const MaxPage = math.MaxInt32 / MaxPageSize

// sortColumns is the sort allow-list, keyed by public field name.
var sortColumns = map[string]string{
	"name":      "name",
	"price":     "price",
	"quantity":  "quantity",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// Normalize validates params and fills defaults so equivalent requests
// compare equal. It does not look at identity.
func Normalize(p *dto.ListParams) (dto.ListParams, error) {
	out := dto.ListParams{}
	if p != nil {
		out = *p
	}

	out.Search = strings.TrimSpace(out.Search)
	if out.SortBy == "" {
		out.SortBy = "createdAt"
	}
	out.SortOrder = strings.ToLower(out.SortOrder)
	if out.SortOrder == "" {
		out.SortOrder = "desc"
	}
	if out.Page < 1 {
		out.Page = DefaultPage
	}
	out.Limit = ClampPageSize(out.Limit)

	var errs []inventory.FieldError
	if err := validation.Struct(&out); err != nil {
		var ve *inventory.ValidationError
		if !errors.As(err, &ve) {
			return dto.ListParams{}, err
		}
		errs = append(errs, ve.Errors...)
	}

	// Range checks need both bounds.
	if out.MinPrice != nil && out.MaxPrice != nil && *out.MinPrice > *out.MaxPrice {
		errs = append(errs, inventory.FieldError{Field: "maxPrice", Message: "maxPrice must not be less than minPrice"})
	}
	if out.MinQuantity != nil && out.MaxQuantity != nil && *out.MinQuantity > *out.MaxQuantity {
		errs = append(errs, inventory.FieldError{Field: "maxQuantity", Message: "maxQuantity must not be less than minQuantity"})
	}
	if out.Page > MaxPage {
		errs = append(errs, inventory.FieldError{Field: "page", Message: fmt.Sprintf("page must be at most %d", MaxPage)})
	}

	if len(errs) > 0 {
		return dto.ListParams{}, &inventory.ValidationError{Errors: errs}
	}
	return out, nil
}

// ClampPageSize bounds a page size to [1, MaxPageSize]; zero selects the default.
func ClampPageSize(n int) int {
	switch {
	case n == 0:
		return DefaultPageSize
	case n < 1:
		return 1
	case n > MaxPageSize:
		return MaxPageSize
	default:
		return n
	}
}

// Plan builds the store filter for a list request. Non-admin identities
// always get an ownership predicate; admins get none.
func Plan(p *dto.ListParams, id auth.Identity) (*dto.StoreFilter, error) {
	params, err := Normalize(p)
	if err != nil {
		return nil, err
	}

	f := &dto.StoreFilter{
		OwnerID:     OwnerScope(id),
		Search:      params.Search,
		Category:    model.Category(params.Category),
		Status:      model.ItemStatus(params.Status),
		PriceMin:    params.MinPrice,
		PriceMax:    params.MaxPrice,
		QuantityMin: params.MinQuantity,
		QuantityMax: params.MaxQuantity,
		StockStatus: model.StockStatus(params.StockStatus),
		SortBy:      sortColumns[params.SortBy],
		SortDesc:    params.SortOrder == "desc",
		Limit:       params.Limit,
		Offset:      (params.Page - 1) * params.Limit,
	}
	return f, nil
}

// PlanStockList builds an unpaginated filter for the low-stock and
// out-of-stock lists.
func PlanStockList(status model.StockStatus, id auth.Identity) *dto.StoreFilter {
	f := &dto.StoreFilter{
		OwnerID:     OwnerScope(id),
		StockStatus: status,
	}
	if status == model.StockOutOfStock {
		f.SortBy, f.SortDesc = "updated_at", true
	} else {
		f.SortBy = "quantity"
	}
	return f
}

// OwnerScope returns the ownership predicate value, nil for admins.
func OwnerScope(id auth.Identity) *string {
	if id.IsAdmin() {
		return nil
	}
	owner := id.UserID
	return &owner
}
