package inventory

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type UseCase interface {
	ListItems(ctx context.Context, params *dto.ListParams, id auth.Identity) (*dto.PagedResult, error)
	GetItem(ctx context.Context, itemID string, id auth.Identity) (*model.Item, error)
	CreateItem(ctx context.Context, input *dto.CreateItemInput, id auth.Identity) (*model.Item, error)
	UpdateItem(ctx context.Context, itemID string, patch *dto.ItemPatch, id auth.Identity) (*model.Item, error)
	DeleteItem(ctx context.Context, itemID string, id auth.Identity) error
	BulkUpdate(ctx context.Context, updates []dto.BulkItemUpdate, id auth.Identity) (*dto.BulkUpdateResult, error)
	GetStats(ctx context.Context, id auth.Identity) (*model.Stats, error)
	GetLowStock(ctx context.Context, id auth.Identity) ([]model.Item, error)
	GetOutOfStock(ctx context.Context, id auth.Identity) ([]model.Item, error)
}
