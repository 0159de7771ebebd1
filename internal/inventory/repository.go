package inventory

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

// Repository is the persistent store adapter. FindByID returns (nil, nil)
// when no record exists; Delete reports whether a row was removed.
type Repository interface {
	FindByID(ctx context.Context, id string) (*model.Item, error)
	FindAll(ctx context.Context, filter *dto.StoreFilter) ([]model.Item, int, error)
	Create(ctx context.Context, item *model.Item) error
	Update(ctx context.Context, item *model.Item) error
	Delete(ctx context.Context, id string) (bool, error)
	Stats(ctx context.Context, ownerID *string) (*model.Stats, error)
}
