package dto

import (
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type CreateItemInput struct {
	Name            string           `json:"name" validate:"required,max=100"`
	Category        model.Category   `json:"category" validate:"required,item_category"`
	Price           float64          `json:"price" validate:"gte=0,lte=999999.99,cents"`
	Quantity        int              `json:"quantity" validate:"gte=0,lte=999999"`
	Description     string           `json:"description" validate:"required,min=10,max=1000"`
	Tags            []string         `json:"tags,omitempty" validate:"omitempty,dive,min=1,max=50"`
	SKU             string           `json:"sku,omitempty" validate:"omitempty,max=50"`
	Barcode         string           `json:"barcode,omitempty" validate:"omitempty,max=100"`
	Supplier        *model.Supplier  `json:"supplier,omitempty"`
	Location        *model.Location  `json:"location,omitempty"`
	ReorderPoint    *int             `json:"reorderPoint,omitempty" validate:"omitempty,gte=0"`
	ReorderQuantity *int             `json:"reorderQuantity,omitempty" validate:"omitempty,gte=1"`
	Unit            model.Unit       `json:"unit,omitempty" validate:"omitempty,oneof=pieces kg liters meters boxes pairs sets"`
	Status          model.ItemStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive discontinued"`
	Cost            *float64         `json:"cost,omitempty" validate:"omitempty,gte=0,lte=999999.99,cents"`
	ProfitMargin    *float64         `json:"profitMargin,omitempty" validate:"omitempty,gte=0,lte=100"`
	LastRestocked   *time.Time       `json:"lastRestocked,omitempty"`
	ExpiryDate      *time.Time       `json:"expiryDate,omitempty"`
}

// ItemPatch carries only the fields being changed. Owner is not patchable.
// A set pointer is validated even when it points at a zero value.
type ItemPatch struct {
	Name            *string           `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Category        *model.Category   `json:"category,omitempty" validate:"omitempty,item_category"`
	Price           *float64          `json:"price,omitempty" validate:"omitempty,gte=0,lte=999999.99,cents"`
	Quantity        *int              `json:"quantity,omitempty" validate:"omitempty,gte=0,lte=999999"`
	Description     *string           `json:"description,omitempty" validate:"omitempty,min=10,max=1000"`
	Tags            *[]string         `json:"tags,omitempty" validate:"omitempty,dive,min=1,max=50"`
	SKU             *string           `json:"sku,omitempty" validate:"omitempty,min=1,max=50"`
	Barcode         *string           `json:"barcode,omitempty" validate:"omitempty,max=100"`
	Supplier        *model.Supplier   `json:"supplier,omitempty"`
	Location        *model.Location   `json:"location,omitempty"`
	ReorderPoint    *int              `json:"reorderPoint,omitempty" validate:"omitempty,gte=0"`
	ReorderQuantity *int              `json:"reorderQuantity,omitempty" validate:"omitempty,gte=1"`
	Unit            *model.Unit       `json:"unit,omitempty" validate:"omitempty,oneof=pieces kg liters meters boxes pairs sets"`
	Status          *model.ItemStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive discontinued"`
	Cost            *float64          `json:"cost,omitempty" validate:"omitempty,gte=0,lte=999999.99,cents"`
	ProfitMargin    *float64          `json:"profitMargin,omitempty" validate:"omitempty,gte=0,lte=100"`
	LastRestocked   *time.Time        `json:"lastRestocked,omitempty"`
	ExpiryDate      *time.Time        `json:"expiryDate,omitempty"`
}

type BulkItemUpdate struct {
	ID string `json:"id"`
	ItemPatch
}

type BulkItemError struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

type BulkUpdateResult struct {
	Updated int             `json:"updated"`
	Results []model.Item    `json:"results"`
	Errors  []BulkItemError `json:"errors"`
}
