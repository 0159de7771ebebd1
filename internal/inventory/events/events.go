package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type Queue string

const (
	QueueInventoryUpdates   Queue = "inventory-updates"
	QueueLowStockAlerts     Queue = "low-stock-alerts"
	QueueEmailNotifications Queue = "email-notifications"
)

// Queues lists every queue the service declares on startup.
func Queues() []Queue {
	return []Queue{QueueInventoryUpdates, QueueLowStockAlerts, QueueEmailNotifications}
}

// Envelope wraps every payload put on a queue.
type Envelope struct {
	ID        string          `json:"id"`
	Queue     Queue           `json:"queue"`
	Timestamp time.Time       `json:"timestamp"`
	Durable   bool            `json:"durable"`
	Data      json.RawMessage `json:"data"`
}

// Decode unmarshals the envelope payload into dst.
func (e Envelope) Decode(dst any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("envelope %s has no data", e.ID)
	}
	if err := json.Unmarshal(e.Data, dst); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Queue, err)
	}
	return nil
}

// Keyed payloads pick their partition key so events about the same
// subject stay ordered.
type Keyed interface {
	PartitionKey() string
}

type UpdateType string

const (
	UpdateCreated UpdateType = "created"
	UpdateUpdated UpdateType = "updated"
	UpdateDeleted UpdateType = "deleted"
)

type ItemSummary struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Category    model.Category `json:"category"`
	Quantity    int            `json:"quantity"`
	OldQuantity *int           `json:"oldQuantity,omitempty"`
}

type Actor struct {
	ID   string    `json:"id"`
	Role auth.Role `json:"role,omitempty"`
}

type InventoryUpdate struct {
	Type UpdateType  `json:"type"`
	Item ItemSummary `json:"item"`
	User Actor       `json:"user"`
}

func (u InventoryUpdate) PartitionKey() string { return u.Item.ID }

// NewInventoryUpdate describes a mutation. oldQuantity is set for updates only.
func NewInventoryUpdate(t UpdateType, item *model.Item, oldQuantity *int, actor auth.Identity) InventoryUpdate {
	return InventoryUpdate{
		Type: t,
		Item: ItemSummary{
			ID:          item.ID,
			Name:        item.Name,
			Category:    item.Category,
			Quantity:    item.Quantity,
			OldQuantity: oldQuantity,
		},
		User: Actor{ID: actor.UserID, Role: actor.Role},
	}
}

type AlertItem struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Category        model.Category    `json:"category"`
	Quantity        int               `json:"quantity"`
	ReorderPoint    int               `json:"reorderPoint"`
	ReorderQuantity int               `json:"reorderQuantity"`
	StockStatus     model.StockStatus `json:"stockStatus"`
}

// LowStockAlert is emitted when an item's stock status moves into
// low-stock or out-of-stock. PreviousStatus is empty for new items.
type LowStockAlert struct {
	Item           AlertItem         `json:"item"`
	OwnerID        string            `json:"ownerId"`
	PreviousStatus model.StockStatus `json:"previousStatus,omitempty"`
}

func (a LowStockAlert) PartitionKey() string { return a.Item.ID }

func NewLowStockAlert(item *model.Item, previous model.StockStatus) LowStockAlert {
	return LowStockAlert{
		Item: AlertItem{
			ID:              item.ID,
			Name:            item.Name,
			Category:        item.Category,
			Quantity:        item.Quantity,
			ReorderPoint:    item.ReorderPoint,
			ReorderQuantity: item.ReorderQuantity,
			StockStatus:     item.StockStatus,
		},
		OwnerID:        item.OwnerID,
		PreviousStatus: previous,
	}
}

// EmailNotification shares the dispatcher with inventory events; account
// lifecycle producers live outside this service.
type EmailNotification struct {
	Type  string `json:"type"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

func (n EmailNotification) PartitionKey() string { return n.Email }
