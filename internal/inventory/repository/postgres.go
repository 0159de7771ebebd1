package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

const table = "inventory_items"

var columns = []string{
	"id", "name", "category", "price", "quantity", "description", "tags", "sku", "barcode",
	"supplier", "location", "reorder_point", "reorder_quantity", "unit", "status", "cost",
	"profit_margin", "last_restocked", "expiry_date", "owner_id", "last_modifier_id",
	"created_at", "updated_at",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const (
	codeUniqueViolation      = "23505"
	codeInvalidTextRepresent = "22P02"
)

// uniqueFields maps unique constraints to the input field they guard.
var uniqueFields = map[string]string{
	"inventory_items_sku_key":     "sku",
	"inventory_items_barcode_key": "barcode",
}

// classify turns constraint failures caused by client input into
// validation errors and wraps everything else.
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			if field, ok := uniqueFields[pgErr.ConstraintName]; ok {
				return inventory.NewValidationError(field, field+" already exists")
			}
		case codeInvalidTextRepresent:
			return inventory.NewValidationError("id", "invalid id format")
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Item, error) {
	query, args, err := psql.Select(columns...).From(table).Where(sq.Eq{"id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, err
	}

	var item model.Item
	if err := r.DB.GetContext(ctx, &item, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get item", err)
	}
	return &item, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.StoreFilter) ([]model.Item, int, error) {
	countQuery, countArgs, err := buildCount(f).ToSql()
	if err != nil {
		return nil, 0, err
	}

	var count int
	if err := r.DB.GetContext(ctx, &count, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count items: %w", err)
	}

	query, args, err := buildList(f).ToSql()
	if err != nil {
		return nil, 0, err
	}

	items := []model.Item{}
	if err := r.DB.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list items: %w", err)
	}
	return items, count, nil
}

func (r *PGRepository) Create(ctx context.Context, item *model.Item) error {
	query, args, err := psql.Insert(table).Columns(columns...).Values(
		item.ID, item.Name, item.Category, item.Price, item.Quantity, item.Description, item.Tags,
		item.SKU, item.Barcode, item.Supplier, item.Location, item.ReorderPoint, item.ReorderQuantity,
		item.Unit, item.Status, item.Cost, item.ProfitMargin, item.LastRestocked, item.ExpiryDate,
		item.OwnerID, item.LastModifierID, item.CreatedAt, item.UpdatedAt,
	).ToSql()
	if err != nil {
		return err
	}

	if _, err := r.DB.ExecContext(ctx, query, args...); err != nil {
		return classify("insert item", err)
	}
	return nil
}

// Update writes every mutable column. owner_id and created_at never change.
func (r *PGRepository) Update(ctx context.Context, item *model.Item) error {
	query, args, err := psql.Update(table).SetMap(map[string]any{
		"name":             item.Name,
		"category":         item.Category,
		"price":            item.Price,
		"quantity":         item.Quantity,
		"description":      item.Description,
		"tags":             item.Tags,
		"sku":              item.SKU,
		"barcode":          item.Barcode,
		"supplier":         item.Supplier,
		"location":         item.Location,
		"reorder_point":    item.ReorderPoint,
		"reorder_quantity": item.ReorderQuantity,
		"unit":             item.Unit,
		"status":           item.Status,
		"cost":             item.Cost,
		"profit_margin":    item.ProfitMargin,
		"last_restocked":   item.LastRestocked,
		"expiry_date":      item.ExpiryDate,
		"last_modifier_id": item.LastModifierID,
		"updated_at":       item.UpdatedAt,
	}).Where(sq.Eq{"id": item.ID}).ToSql()
	if err != nil {
		return err
	}

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return classify("update item", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, id string) (bool, error) {
	query, args, err := psql.Delete(table).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return false, err
	}

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return false, classify("delete item", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PGRepository) Stats(ctx context.Context, ownerID *string) (*model.Stats, error) {
	query, args, err := buildStats(ownerID).ToSql()
	if err != nil {
		return nil, err
	}

	var stats model.Stats
	if err := r.DB.GetContext(ctx, &stats, query, args...); err != nil {
		return nil, fmt.Errorf("aggregate items: %w", err)
	}

	query, args, err = buildCategoryStats(ownerID).ToSql()
	if err != nil {
		return nil, err
	}

	stats.Categories = []model.CategoryStat{}
	if err := r.DB.SelectContext(ctx, &stats.Categories, query, args...); err != nil {
		return nil, fmt.Errorf("aggregate categories: %w", err)
	}
	return &stats, nil
}

// where translates a filter into predicates. The owner predicate is
// always first when present.
func where(f *dto.StoreFilter) sq.And {
	preds := sq.And{}
	if f == nil {
		return preds
	}

	if f.OwnerID != nil {
		preds = append(preds, sq.Eq{"owner_id": *f.OwnerID})
	}
	if f.Search != "" {
		pattern := "%" + escapeLike(f.Search) + "%"
		preds = append(preds, sq.Or{
			sq.ILike{"name": pattern},
			sq.ILike{"description": pattern},
			sq.Expr("tags::text ILIKE ?", pattern),
		})
	}
	if f.Category != "" {
		preds = append(preds, sq.Eq{"category": f.Category})
	}
	if f.Status != "" {
		preds = append(preds, sq.Eq{"status": f.Status})
	}
	if f.PriceMin != nil {
		preds = append(preds, sq.GtOrEq{"price": *f.PriceMin})
	}
	if f.PriceMax != nil {
		preds = append(preds, sq.LtOrEq{"price": *f.PriceMax})
	}
	if f.QuantityMin != nil {
		preds = append(preds, sq.GtOrEq{"quantity": *f.QuantityMin})
	}
	if f.QuantityMax != nil {
		preds = append(preds, sq.LtOrEq{"quantity": *f.QuantityMax})
	}

	switch f.StockStatus {
	case model.StockOutOfStock:
		preds = append(preds, sq.Eq{"quantity": 0})
	case model.StockLowStock:
		preds = append(preds, sq.Gt{"quantity": 0}, sq.Expr("quantity <= reorder_point"))
	case model.StockInStock:
		preds = append(preds, sq.Expr("quantity > reorder_point"))
	}
	return preds
}

func buildCount(f *dto.StoreFilter) sq.SelectBuilder {
	q := psql.Select("COUNT(*)").From(table)
	if preds := where(f); len(preds) > 0 {
		q = q.Where(preds)
	}
	return q
}

func buildList(f *dto.StoreFilter) sq.SelectBuilder {
	q := psql.Select(columns...).From(table)
	if preds := where(f); len(preds) > 0 {
		q = q.Where(preds)
	}

	sortBy, desc := "created_at", true
	if f != nil && f.SortBy != "" {
		sortBy, desc = f.SortBy, f.SortDesc
	}
	dir := " ASC"
	if desc {
		dir = " DESC"
	}
	q = q.OrderBy(sortBy+dir, "id ASC")

	if f != nil && f.Limit > 0 {
		q = q.Limit(uint64(f.Limit)).Offset(uint64(f.Offset))
	}
	return q
}

func ownerScope(q sq.SelectBuilder, ownerID *string) sq.SelectBuilder {
	if ownerID != nil {
		q = q.Where(sq.Eq{"owner_id": *ownerID})
	}
	return q
}

func buildStats(ownerID *string) sq.SelectBuilder {
	return ownerScope(psql.Select(
		"COUNT(*) AS total_items",
		"COALESCE(SUM(price * quantity), 0) AS total_value",
		"COALESCE(SUM(quantity), 0) AS total_quantity",
		"COALESCE(AVG(price), 0) AS avg_price",
		"COUNT(*) FILTER (WHERE quantity > 0 AND quantity <= reorder_point) AS low_stock_count",
		"COUNT(*) FILTER (WHERE quantity = 0) AS out_of_stock_count",
	).From(table), ownerID)
}

func buildCategoryStats(ownerID *string) sq.SelectBuilder {
	return ownerScope(psql.Select(
		"category",
		"COUNT(*) AS count",
		"COALESCE(SUM(price * quantity), 0) AS total_value",
	).From(table), ownerID).GroupBy("category").OrderBy("count DESC", "category ASC")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
