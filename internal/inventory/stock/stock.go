// Package stock derives availability and valuation fields from an item's
// raw attributes. It is the only place stock status is computed.
package stock

import (
	"math"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

// Status classifies availability: 0 is out of stock, up to and including
// the reorder point is low stock, anything above is in stock.
func Status(quantity, reorderPoint int) model.StockStatus {
	switch {
	case quantity <= 0:
		return model.StockOutOfStock
	case quantity <= reorderPoint:
		return model.StockLowStock
	default:
		return model.StockInStock
	}
}

func TotalValue(price float64, quantity int) float64 {
	return price * float64(quantity)
}

// Profit returns nil when cost is unknown.
func Profit(price float64, cost *float64) *float64 {
	if cost == nil {
		return nil
	}
	p := price - *cost
	return &p
}

// ProfitPercentage returns nil when cost is unknown or zero.
func ProfitPercentage(price float64, cost *float64) *float64 {
	if cost == nil || *cost == 0 {
		return nil
	}
	pct := (price - *cost) / *cost * 100
	return &pct
}

// DaysUntilExpiry rounds partial days up; negative once expired.
func DaysUntilExpiry(expiry *time.Time, now time.Time) *int {
	if expiry == nil {
		return nil
	}
	days := int(math.Ceil(expiry.Sub(now).Hours() / 24))
	return &days
}

// IsAlerting reports whether a status warrants a low-stock alert.
func IsAlerting(s model.StockStatus) bool {
	return s == model.StockLowStock || s == model.StockOutOfStock
}

// Transitioned reports whether moving from before to after enters an
// alerting state. before is empty for a newly created item.
func Transitioned(before, after model.StockStatus) bool {
	return before != after && IsAlerting(after)
}

// Decorate recomputes every derived field in place.
func Decorate(item *model.Item, now time.Time) {
	if item == nil {
		return
	}
	item.StockStatus = Status(item.Quantity, item.ReorderPoint)
	item.TotalValue = TotalValue(item.Price, item.Quantity)
	item.Profit = Profit(item.Price, item.Cost)
	item.ProfitPercentage = ProfitPercentage(item.Price, item.Cost)
	item.DaysUntilExpiry = DaysUntilExpiry(item.ExpiryDate, now)
}

func DecorateAll(items []model.Item, now time.Time) {
	for i := range items {
		Decorate(&items[i], now)
	}
}
