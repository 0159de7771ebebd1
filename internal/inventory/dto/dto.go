package dto

import "github.com/fekuna/omnipos-inventory-service/internal/model"

// ListParams are the caller-supplied list query parameters, before planning.
type ListParams struct {
	Search      string   `json:"search,omitempty" validate:"max=200"`
	Category    string   `json:"category,omitempty" validate:"omitempty,item_category"`
	Status      string   `json:"status,omitempty" validate:"omitempty,oneof=active inactive discontinued"`
	StockStatus string   `json:"stockStatus,omitempty" validate:"omitempty,oneof=in-stock low-stock out-of-stock"`
	MinPrice    *float64 `json:"minPrice,omitempty" validate:"omitempty,gte=0"`
	MaxPrice    *float64 `json:"maxPrice,omitempty" validate:"omitempty,gte=0"`
	MinQuantity *int     `json:"minQuantity,omitempty" validate:"omitempty,gte=0"`
	MaxQuantity *int     `json:"maxQuantity,omitempty" validate:"omitempty,gte=0"`
	SortBy      string   `json:"sortBy,omitempty" validate:"oneof=name price quantity createdAt updatedAt"`
	SortOrder   string   `json:"sortOrder,omitempty" validate:"oneof=asc desc"`
	Page        int      `json:"page,omitempty"`
	Limit       int      `json:"limit,omitempty"`
}

// StoreFilter is a fully resolved store query. A nil OwnerID means global scope.
// Limit 0 returns every matching record.
type StoreFilter struct {
	OwnerID     *string
	Search      string
	Category    model.Category
	Status      model.ItemStatus
	PriceMin    *float64
	PriceMax    *float64
	QuantityMin *int
	QuantityMax *int
	StockStatus model.StockStatus
	SortBy      string
	SortDesc    bool
	Limit       int
	Offset      int
}

type Pagination struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalItems"`
	ItemsPerPage int  `json:"itemsPerPage"`
	HasNextPage  bool `json:"hasNextPage"`
	HasPrevPage  bool `json:"hasPrevPage"`
}

func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: limit,
		HasNextPage:  page < totalPages,
		HasPrevPage:  page > 1,
	}
}

type PagedResult struct {
	Items      []model.Item `json:"items"`
	Pagination Pagination   `json:"pagination"`
}
