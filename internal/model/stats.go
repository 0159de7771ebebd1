package model

type CategoryStat struct {
	Category   Category `db:"category" json:"category"`
	Count      int      `db:"count" json:"count"`
	TotalValue float64  `db:"total_value" json:"totalValue"`
}

type Stats struct {
	TotalItems      int            `db:"total_items" json:"totalItems"`
	TotalValue      float64        `db:"total_value" json:"totalValue"`
	TotalQuantity   int            `db:"total_quantity" json:"totalQuantity"`
	AvgPrice        float64        `db:"avg_price" json:"avgPrice"`
	LowStockCount   int            `db:"low_stock_count" json:"lowStockCount"`
	OutOfStockCount int            `db:"out_of_stock_count" json:"outOfStockCount"`
	Categories      []CategoryStat `db:"-" json:"categories"`
}
