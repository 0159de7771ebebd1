package usecase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/events"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/planner"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/querycache"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/stock"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Publisher is the event side channel. *events.Dispatcher satisfies it.
type Publisher interface {
	Publish(ctx context.Context, queue events.Queue, payload any) events.Outcome
}

type Option func(*inventoryUseCase)

func WithStoreTimeout(d time.Duration) Option {
	return func(uc *inventoryUseCase) {
		if d > 0 {
			uc.storeTimeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(uc *inventoryUseCase) { uc.now = now }
}

type inventoryUseCase struct {
	repo         inventory.Repository
	cache        *querycache.Cache
	events       Publisher
	logger       logger.ZapLogger
	storeTimeout time.Duration
	now          func() time.Time
}

func NewInventoryUseCase(repo inventory.Repository, cache *querycache.Cache, publisher Publisher, log logger.ZapLogger, opts ...Option) inventory.UseCase {
	uc := &inventoryUseCase{
		repo:         repo,
		cache:        cache,
		events:       publisher,
		logger:       log,
		storeTimeout: 5 * time.Second,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func authorize(id auth.Identity) error {
	if id.UserID == "" || !id.Role.Valid() {
		return fmt.Errorf("%w: no authenticated identity", inventory.ErrForbidden)
	}
	return nil
}

func (uc *inventoryUseCase) readCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, uc.storeTimeout)
}

// writeCtx detaches from the caller's cancellation so an abandoned
// request never leaves a half-applied write.
func (uc *inventoryUseCase) writeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), uc.storeTimeout)
}

func (uc *inventoryUseCase) ListItems(ctx context.Context, params *dto.ListParams, id auth.Identity) (*dto.PagedResult, error) {
	if err := authorize(id); err != nil {
		return nil, err
	}

	normalized, err := planner.Normalize(params)
	if err != nil {
		return nil, err
	}

	// 1. Cache
	key := querycache.Fingerprint(normalized, id)
	var cached dto.PagedResult
	if uc.cache.Get(ctx, key, &cached) {
		stock.DecorateAll(cached.Items, uc.now())
		return &cached, nil
	}

	// 2. Store
	filter, err := planner.Plan(&normalized, id)
	if err != nil {
		return nil, err
	}

	rctx, cancel := uc.readCtx(ctx)
	defer cancel()
	items, total, err := uc.repo.FindAll(rctx, filter)
	if err != nil {
		return nil, inventory.NewStoreError("list items", err)
	}
	if items == nil {
		items = []model.Item{}
	}
	stock.DecorateAll(items, uc.now())

	result := &dto.PagedResult{
		Items:      items,
		Pagination: dto.NewPagination(normalized.Page, normalized.Limit, total),
	}

	// 3. Populate
	uc.cache.Put(ctx, key, result, querycache.TTLList)
	return result, nil
}

func (uc *inventoryUseCase) GetItem(ctx context.Context, itemID string, id auth.Identity) (*model.Item, error) {
	if err := authorize(id); err != nil {
		return nil, err
	}
	itemID, err := parseItemID(itemID)
	if err != nil {
		return nil, err
	}

	var item *model.Item
	var cached model.Item
	if uc.cache.Get(ctx, querycache.ItemKey(itemID), &cached) {
		item = &cached
	} else {
		found, err := uc.findItem(ctx, itemID)
		if err != nil {
			return nil, err
		}
		item = found
		uc.cache.Put(ctx, querycache.ItemKey(itemID), item, querycache.TTLItem)
	}

	// Item entries are shared across identities, so ownership is checked on every read.
	if !id.CanAccess(item.OwnerID) {
		return nil, fmt.Errorf("%w: item %s", inventory.ErrForbidden, itemID)
	}

	stock.Decorate(item, uc.now())
	return item, nil
}

func (uc *inventoryUseCase) findItem(ctx context.Context, itemID string) (*model.Item, error) {
	rctx, cancel := uc.readCtx(ctx)
	defer cancel()

	item, err := uc.repo.FindByID(rctx, itemID)
	if err != nil {
		return nil, inventory.NewStoreError("get item", err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: item %s", inventory.ErrNotFound, itemID)
	}
	return item, nil
}

func (uc *inventoryUseCase) GetStats(ctx context.Context, id auth.Identity) (*model.Stats, error) {
	if err := authorize(id); err != nil {
		return nil, err
	}

	key := querycache.StatsKey(id)
	var cached model.Stats
	if uc.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	rctx, cancel := uc.readCtx(ctx)
	defer cancel()
	stats, err := uc.repo.Stats(rctx, planner.OwnerScope(id))
	if err != nil {
		return nil, inventory.NewStoreError("aggregate stats", err)
	}
	if stats == nil {
		stats = &model.Stats{}
	}
	if stats.Categories == nil {
		stats.Categories = []model.CategoryStat{}
	}

	uc.cache.Put(ctx, key, stats, querycache.TTLAggregate)
	return stats, nil
}

func (uc *inventoryUseCase) GetLowStock(ctx context.Context, id auth.Identity) ([]model.Item, error) {
	return uc.stockList(ctx, model.StockLowStock, querycache.LowStockKey(id), id)
}

func (uc *inventoryUseCase) GetOutOfStock(ctx context.Context, id auth.Identity) ([]model.Item, error) {
	return uc.stockList(ctx, model.StockOutOfStock, querycache.OutOfStockKey(id), id)
}

func (uc *inventoryUseCase) stockList(ctx context.Context, status model.StockStatus, key string, id auth.Identity) ([]model.Item, error) {
	if err := authorize(id); err != nil {
		return nil, err
	}

	var cached []model.Item
	if uc.cache.Get(ctx, key, &cached) {
		stock.DecorateAll(cached, uc.now())
		return cached, nil
	}

	rctx, cancel := uc.readCtx(ctx)
	defer cancel()
	items, _, err := uc.repo.FindAll(rctx, planner.PlanStockList(status, id))
	if err != nil {
		return nil, inventory.NewStoreError("list "+string(status), err)
	}
	if items == nil {
		items = []model.Item{}
	}
	stock.DecorateAll(items, uc.now())

	uc.cache.Put(ctx, key, items, querycache.TTLList)
	return items, nil
}

func (uc *inventoryUseCase) CreateItem(ctx context.Context, input *dto.CreateItemInput, id auth.Identity) (*model.Item, error) {
	// 1. Authorize and validate
	if err := authorize(id); err != nil {
		return nil, err
	}
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	item := &model.Item{
		ID:              uuid.New().String(),
		Name:            strings.TrimSpace(input.Name),
		Category:        input.Category,
		Price:           input.Price,
		Quantity:        input.Quantity,
		Description:     strings.TrimSpace(input.Description),
		Tags:            cleanTags(input.Tags),
		SKU:             optional(input.SKU),
		Barcode:         optional(input.Barcode),
		Supplier:        input.Supplier,
		Location:        input.Location,
		ReorderPoint:    model.DefaultReorderPoint,
		ReorderQuantity: model.DefaultReorderQuantity,
		Unit:            model.UnitPieces,
		Status:          model.ItemStatusActive,
		Cost:            input.Cost,
		ProfitMargin:    input.ProfitMargin,
		LastRestocked:   input.LastRestocked,
		ExpiryDate:      input.ExpiryDate,
		OwnerID:         id.UserID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if input.ReorderPoint != nil {
		item.ReorderPoint = *input.ReorderPoint
	}
	if input.ReorderQuantity != nil {
		item.ReorderQuantity = *input.ReorderQuantity
	}
	if input.Unit != "" {
		item.Unit = input.Unit
	}
	if input.Status != "" {
		item.Status = input.Status
	}
	if item.SKU == nil {
		sku := GenerateSKU(item.Category, now)
		item.SKU = &sku
	}

	// 2. Apply
	wctx, cancel := uc.writeCtx(ctx)
	defer cancel()
	if err := uc.repo.Create(wctx, item); err != nil {
		return nil, inventory.NewStoreError("create item", err)
	}
	stock.Decorate(item, now)

	// 3. Invalidate
	uc.invalidate(ctx, id, []string{item.ID}, []string{item.OwnerID})

	// 4. Dispatch
	if uc.dispatchAllowed(ctx) {
		uc.publish(ctx, events.QueueInventoryUpdates, events.NewInventoryUpdate(events.UpdateCreated, item, nil, id))
		if stock.Transitioned("", item.StockStatus) {
			uc.publish(ctx, events.QueueLowStockAlerts, events.NewLowStockAlert(item, ""))
		}
	}

	return item, nil
}

func (uc *inventoryUseCase) UpdateItem(ctx context.Context, itemID string, patch *dto.ItemPatch, id auth.Identity) (*model.Item, error) {
	res, err := uc.applyUpdate(ctx, itemID, patch, id)
	if err != nil {
		return nil, err
	}

	uc.invalidate(ctx, id, []string{res.item.ID}, []string{res.item.OwnerID})

	if uc.dispatchAllowed(ctx) {
		uc.publishUpdate(ctx, res, id)
	}
	return res.item, nil
}

type updateResult struct {
	item        *model.Item
	before      model.StockStatus
	oldQuantity int
}

// applyUpdate runs the authorize and apply stages of an update. Cache
// invalidation and dispatch are left to the caller.
func (uc *inventoryUseCase) applyUpdate(ctx context.Context, itemID string, patch *dto.ItemPatch, id auth.Identity) (*updateResult, error) {
	if err := authorize(id); err != nil {
		return nil, err
	}
	itemID, err := parseItemID(itemID)
	if err != nil {
		return nil, err
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	item, err := uc.findItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !id.CanAccess(item.OwnerID) {
		return nil, fmt.Errorf("%w: item %s", inventory.ErrForbidden, itemID)
	}

	res := &updateResult{
		item:        item,
		before:      stock.Status(item.Quantity, item.ReorderPoint),
		oldQuantity: item.Quantity,
	}

	now := uc.now().UTC()
	applyPatch(item, patch)
	modifier := id.UserID
	item.LastModifierID = &modifier
	item.UpdatedAt = now

	wctx, cancel := uc.writeCtx(ctx)
	defer cancel()
	if err := uc.repo.Update(wctx, item); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: item %s", inventory.ErrNotFound, itemID)
		}
		return nil, inventory.NewStoreError("update item", err)
	}

	stock.Decorate(item, now)
	return res, nil
}

func (uc *inventoryUseCase) publishUpdate(ctx context.Context, res *updateResult, id auth.Identity) {
	old := res.oldQuantity
	uc.publish(ctx, events.QueueInventoryUpdates, events.NewInventoryUpdate(events.UpdateUpdated, res.item, &old, id))
	if stock.Transitioned(res.before, res.item.StockStatus) {
		uc.publish(ctx, events.QueueLowStockAlerts, events.NewLowStockAlert(res.item, res.before))
	}
}

func (uc *inventoryUseCase) DeleteItem(ctx context.Context, itemID string, id auth.Identity) error {
	if err := authorize(id); err != nil {
		return err
	}
	itemID, err := parseItemID(itemID)
	if err != nil {
		return err
	}

	item, err := uc.findItem(ctx, itemID)
	if err != nil {
		return err
	}
	if !id.CanAccess(item.OwnerID) {
		return fmt.Errorf("%w: item %s", inventory.ErrForbidden, itemID)
	}

	wctx, cancel := uc.writeCtx(ctx)
	defer cancel()
	deleted, err := uc.repo.Delete(wctx, itemID)
	if err != nil {
		return inventory.NewStoreError("delete item", err)
	}
	if !deleted {
		return fmt.Errorf("%w: item %s", inventory.ErrNotFound, itemID)
	}

	uc.invalidate(ctx, id, []string{item.ID}, []string{item.OwnerID})

	if uc.dispatchAllowed(ctx) {
		uc.publish(ctx, events.QueueInventoryUpdates, events.NewInventoryUpdate(events.UpdateDeleted, item, nil, id))
	}
	return nil
}

// BulkUpdate applies each update independently. Per-item failures are
// collected; the caches are invalidated once after every write landed.
func (uc *inventoryUseCase) BulkUpdate(ctx context.Context, updates []dto.BulkItemUpdate, id auth.Identity) (*dto.BulkUpdateResult, error) {
	if err := authorize(id); err != nil {
		return nil, err
	}
	if !id.CanBulkUpdate() {
		return nil, fmt.Errorf("%w: role %s cannot bulk update", inventory.ErrForbidden, id.Role)
	}
	if len(updates) == 0 {
		return nil, inventory.NewValidationError("items", "items array is required")
	}
	if len(updates) > MaxBulkItems {
		return nil, inventory.NewValidationError("items", fmt.Sprintf("at most %d items per bulk update", MaxBulkItems))
	}

	out := &dto.BulkUpdateResult{
		Results: []model.Item{},
		Errors:  []dto.BulkItemError{},
	}
	applied := make([]*updateResult, 0, len(updates))
	var ids, owners []string

	for i := range updates {
		u := &updates[i]
		res, err := uc.applyUpdate(ctx, u.ID, &u.ItemPatch, id)
		if err != nil {
			out.Errors = append(out.Errors, dto.BulkItemError{ID: u.ID, Error: bulkErrorMessage(err)})
			if errors.Is(err, inventory.ErrStore) {
				uc.logger.Error("bulk update store failure", zap.String("item_id", u.ID), zap.Error(err))
			}
			continue
		}
		applied = append(applied, res)
		out.Results = append(out.Results, *res.item)
		ids = append(ids, res.item.ID)
		owners = append(owners, res.item.OwnerID)
	}
	out.Updated = len(out.Results)

	if len(applied) > 0 {
		uc.invalidate(ctx, id, ids, owners)
	}

	if uc.dispatchAllowed(ctx) {
		for _, res := range applied {
			uc.publishUpdate(ctx, res, id)
		}
	}
	return out, nil
}

func bulkErrorMessage(err error) string {
	var ve *inventory.ValidationError
	switch {
	case errors.Is(err, inventory.ErrNotFound):
		return "Item not found"
	case errors.Is(err, inventory.ErrForbidden):
		return "Not authorized to update this item"
	case errors.As(err, &ve):
		msgs := make([]string, len(ve.Errors))
		for i, fe := range ve.Errors {
			msgs[i] = fe.Message
		}
		return strings.Join(msgs, "; ")
	default:
		return "Failed to update item"
	}
}

// invalidate drops every cached entry a mutation can have changed: the
// items themselves, the lists and aggregates of each affected owner and
// of the actor, and the global scope that admins read from.
func (uc *inventoryUseCase) invalidate(ctx context.Context, actor auth.Identity, itemIDs, owners []string) {
	scopes := make([]querycache.Scope, 0, len(itemIDs)+2*len(owners)+3)
	for _, itemID := range itemIDs {
		scopes = append(scopes, querycache.SingleItem(itemID))
	}
	for _, owner := range owners {
		scopes = append(scopes, querycache.OwnerLists(owner), querycache.OwnerAggregates(owner))
	}
	scopes = append(scopes, querycache.OwnerLists(actor.UserID), querycache.OwnerAggregates(actor.UserID))
	scopes = append(scopes, querycache.Global())

	uc.cache.InvalidateScopes(context.WithoutCancel(ctx), scopes...)
}

func (uc *inventoryUseCase) dispatchAllowed(ctx context.Context) bool {
	if ctx.Err() != nil {
		uc.logger.Warn("request cancelled, skipping event dispatch", zap.Error(ctx.Err()))
		return false
	}
	return true
}

func (uc *inventoryUseCase) publish(ctx context.Context, queue events.Queue, payload any) {
	if uc.events == nil {
		return
	}
	if out := uc.events.Publish(ctx, queue, payload); out == events.OutcomeDegraded {
		uc.logger.Warn("event dispatch degraded", zap.String("queue", string(queue)))
	}
}
