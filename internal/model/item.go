package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type Category string

const (
	CategoryElectronics    Category = "Electronics"
	CategoryClothing       Category = "Clothing"
	CategoryBooks          Category = "Books"
	CategoryHomeGarden     Category = "Home & Garden"
	CategorySportsOutdoors Category = "Sports & Outdoors"
	CategoryAutomotive     Category = "Automotive"
	CategoryHealthBeauty   Category = "Health & Beauty"
	CategoryToysGames      Category = "Toys & Games"
	CategoryFoodBeverages  Category = "Food & Beverages"
	CategoryOfficeSupplies Category = "Office Supplies"
	CategoryOther          Category = "Other"
)

var Categories = []Category{
	CategoryElectronics, CategoryClothing, CategoryBooks, CategoryHomeGarden,
	CategorySportsOutdoors, CategoryAutomotive, CategoryHealthBeauty, CategoryToysGames,
	CategoryFoodBeverages, CategoryOfficeSupplies, CategoryOther,
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

type Unit string

const (
	UnitPieces Unit = "pieces"
	UnitKg     Unit = "kg"
	UnitLiters Unit = "liters"
	UnitMeters Unit = "meters"
	UnitBoxes  Unit = "boxes"
	UnitPairs  Unit = "pairs"
	UnitSets   Unit = "sets"
)

func (u Unit) Valid() bool {
	switch u {
	case UnitPieces, UnitKg, UnitLiters, UnitMeters, UnitBoxes, UnitPairs, UnitSets:
		return true
	}
	return false
}

type ItemStatus string

const (
	ItemStatusActive       ItemStatus = "active"
	ItemStatusInactive     ItemStatus = "inactive"
	ItemStatusDiscontinued ItemStatus = "discontinued"
)

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusActive, ItemStatusInactive, ItemStatusDiscontinued:
		return true
	}
	return false
}

type StockStatus string

const (
	StockOutOfStock StockStatus = "out-of-stock"
	StockLowStock   StockStatus = "low-stock"
	StockInStock    StockStatus = "in-stock"
)

func (s StockStatus) Valid() bool {
	return s == StockOutOfStock || s == StockLowStock || s == StockInStock
}

const (
	DefaultReorderPoint    = 10
	DefaultReorderQuantity = 50
)

type Item struct {
	ID              string     `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Category        Category   `db:"category" json:"category"`
	Price           float64    `db:"price" json:"price"`
	Quantity        int        `db:"quantity" json:"quantity"`
	Description     string     `db:"description" json:"description"`
	Tags            Tags       `db:"tags" json:"tags"`
	SKU             *string    `db:"sku" json:"sku,omitempty"`
	Barcode         *string    `db:"barcode" json:"barcode,omitempty"`
	Supplier        *Supplier  `db:"supplier" json:"supplier,omitempty"`
	Location        *Location  `db:"location" json:"location,omitempty"`
	ReorderPoint    int        `db:"reorder_point" json:"reorderPoint"`
	ReorderQuantity int        `db:"reorder_quantity" json:"reorderQuantity"`
	Unit            Unit       `db:"unit" json:"unit"`
	Status          ItemStatus `db:"status" json:"status"`
	Cost            *float64   `db:"cost" json:"cost,omitempty"`
	ProfitMargin    *float64   `db:"profit_margin" json:"profitMargin,omitempty"`
	LastRestocked   *time.Time `db:"last_restocked" json:"lastRestocked,omitempty"`
	ExpiryDate      *time.Time `db:"expiry_date" json:"expiryDate,omitempty"`
	OwnerID         string     `db:"owner_id" json:"ownerId"`
	LastModifierID  *string    `db:"last_modifier_id" json:"lastModifierId,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updatedAt"`

	// Derived on every read, never persisted.
	StockStatus      StockStatus `db:"-" json:"stockStatus"`
	TotalValue       float64     `db:"-" json:"totalValue"`
	Profit           *float64    `db:"-" json:"profit"`
	ProfitPercentage *float64    `db:"-" json:"profitPercentage"`
	DaysUntilExpiry  *int        `db:"-" json:"daysUntilExpiry"`
}

type Supplier struct {
	Name  string `json:"name,omitempty" validate:"omitempty,max=100"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Phone string `json:"phone,omitempty"`
}

type Location struct {
	Warehouse string `json:"warehouse,omitempty" validate:"omitempty,max=50"`
	Shelf     string `json:"shelf,omitempty" validate:"omitempty,max=20"`
	Bin       string `json:"bin,omitempty" validate:"omitempty,max=20"`
}

// Tags is stored as a JSONB array.
type Tags []string

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}

func (t *Tags) Scan(src any) error {
	return scanJSON(src, t)
}

func (s *Supplier) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *Supplier) Scan(src any) error {
	return scanJSON(src, s)
}

func (l *Location) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *Location) Scan(src any) error {
	return scanJSON(src, l)
}

func scanJSON(src any, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return errors.New("unsupported json column type")
	}
}
