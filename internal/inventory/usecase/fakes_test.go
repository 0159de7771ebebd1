package usecase

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/events"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/stock"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

// fakeRepo is an in-memory store that evaluates filters the way the
// Postgres adapter does.
type fakeRepo struct {
	mu       sync.Mutex
	items    map[string]model.Item
	calls    map[string]int
	failures map[string]error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: map[string]model.Item{}, calls: map[string]int{}, failures: map[string]error{}}
}

func (r *fakeRepo) enter(ctx context.Context, op string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[op]++
	if err := ctx.Err(); err != nil {
		return err
	}
	if err, ok := r.failures[op]; ok {
		delete(r.failures, op)
		return err
	}
	return nil
}

func (r *fakeRepo) Calls(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[op]
}

// FailNext makes the next call to op return err.
func (r *fakeRepo) FailNext(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[op] = err
}

func (r *fakeRepo) seed(items ...model.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range items {
		r.items[it.ID] = it
	}
}

func (r *fakeRepo) FindByID(ctx context.Context, id string) (*model.Item, error) {
	if err := r.enter(ctx, "FindByID"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (r *fakeRepo) FindAll(ctx context.Context, f *dto.StoreFilter) ([]model.Item, int, error) {
	if err := r.enter(ctx, "FindAll"); err != nil {
		return nil, 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []model.Item
	for _, it := range r.items {
		if f.OwnerID != nil && it.OwnerID != *f.OwnerID {
			continue
		}
		if f.Category != "" && it.Category != f.Category {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(it.Name), strings.ToLower(f.Search)) {
			continue
		}
		if f.StockStatus != "" && stock.Status(it.Quantity, it.ReorderPoint) != f.StockStatus {
			continue
		}
		out = append(out, it)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if f.SortDesc {
			a, b = b, a
		}
		switch f.SortBy {
		case "quantity":
			if a.Quantity != b.Quantity {
				return a.Quantity < b.Quantity
			}
		case "price":
			if a.Price != b.Price {
				return a.Price < b.Price
			}
		}
		return a.ID < b.ID
	})

	total := len(out)
	if f.Limit > 0 {
		start := min(f.Offset, len(out))
		end := min(start+f.Limit, len(out))
		out = out[start:end]
	}
	return out, total, nil
}

func (r *fakeRepo) Create(ctx context.Context, item *model.Item) error {
	if err := r.enter(ctx, "Create"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = *item
	return nil
}

func (r *fakeRepo) Update(ctx context.Context, item *model.Item) error {
	if err := r.enter(ctx, "Update"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ID]; !ok {
		return sql.ErrNoRows
	}
	r.items[item.ID] = *item
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id string) (bool, error) {
	if err := r.enter(ctx, "Delete"); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return false, nil
	}
	delete(r.items, id)
	return true, nil
}

func (r *fakeRepo) Stats(ctx context.Context, ownerID *string) (*model.Stats, error) {
	if err := r.enter(ctx, "Stats"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	s := &model.Stats{}
	byCat := map[model.Category]*model.CategoryStat{}
	for _, it := range r.items {
		if ownerID != nil && it.OwnerID != *ownerID {
			continue
		}
		s.TotalItems++
		s.TotalQuantity += it.Quantity
		s.TotalValue += it.Price * float64(it.Quantity)
		switch stock.Status(it.Quantity, it.ReorderPoint) {
		case model.StockLowStock:
			s.LowStockCount++
		case model.StockOutOfStock:
			s.OutOfStockCount++
		}
		cs, ok := byCat[it.Category]
		if !ok {
			cs = &model.CategoryStat{Category: it.Category}
			byCat[it.Category] = cs
		}
		cs.Count++
		cs.TotalValue += it.Price * float64(it.Quantity)
	}
	for _, cs := range byCat {
		s.Categories = append(s.Categories, *cs)
	}
	return s, nil
}

type published struct {
	queue   events.Queue
	payload any
}

type recordingPublisher struct {
	mu      sync.Mutex
	msgs    []published
	outcome events.Outcome
}

func (p *recordingPublisher) Publish(_ context.Context, queue events.Queue, payload any) events.Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{queue: queue, payload: payload})
	return p.outcome
}

func (p *recordingPublisher) On(queue events.Queue) []any {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []any
	for _, m := range p.msgs {
		if m.queue == queue {
			out = append(out, m.payload)
		}
	}
	return out
}

func (p *recordingPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = nil
}

var errDBDown = errors.New("connection reset by peer")
