package listener

import (
	"context"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory/events"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"go.uber.org/zap"
)

// InventoryListener is the in-process sink for the inventory queues. It
// is advisory: the store stays the source of truth, so handlers only log.
type InventoryListener struct {
	logger logger.ZapLogger
}

func NewInventoryListener(logger logger.ZapLogger) *InventoryListener {
	return &InventoryListener{logger: logger}
}

// Handlers maps each queue to its handler.
func (l *InventoryListener) Handlers() map[events.Queue]events.Handler {
	return map[events.Queue]events.Handler{
		events.QueueInventoryUpdates:   l.HandleInventoryUpdate,
		events.QueueLowStockAlerts:     l.HandleLowStockAlert,
		events.QueueEmailNotifications: l.HandleEmailNotification,
	}
}

func (l *InventoryListener) HandleInventoryUpdate(_ context.Context, env events.Envelope) error {
	var u events.InventoryUpdate
	if err := env.Decode(&u); err != nil {
		return err
	}
	if u.Item.ID == "" || u.Type == "" {
		return errors.New("inventory update without item or type")
	}

	fields := []zap.Field{
		zap.String("event_id", env.ID),
		zap.String("type", string(u.Type)),
		zap.String("item_id", u.Item.ID),
		zap.Int("quantity", u.Item.Quantity),
		zap.String("user_id", u.User.ID),
	}
	if u.Item.OldQuantity != nil {
		fields = append(fields, zap.Int("old_quantity", *u.Item.OldQuantity))
	}
	l.logger.Info("Inventory updated", fields...)
	return nil
}

func (l *InventoryListener) HandleLowStockAlert(_ context.Context, env events.Envelope) error {
	var a events.LowStockAlert
	if err := env.Decode(&a); err != nil {
		return err
	}
	if a.Item.ID == "" {
		return errors.New("low stock alert without item")
	}

	l.logger.Warn("Restock suggested",
		zap.String("event_id", env.ID),
		zap.String("item_id", a.Item.ID),
		zap.String("item_name", a.Item.Name),
		zap.String("owner_id", a.OwnerID),
		zap.String("stock_status", string(a.Item.StockStatus)),
		zap.String("previous_status", string(a.PreviousStatus)),
		zap.Int("quantity", a.Item.Quantity),
		zap.Int("reorder_point", a.Item.ReorderPoint),
		zap.String("suggestion", fmt.Sprintf("reorder %d units", a.Item.ReorderQuantity)),
	)
	return nil
}

// HandleEmailNotification records account notifications; delivery is
// handled by the mail service.
func (l *InventoryListener) HandleEmailNotification(_ context.Context, env events.Envelope) error {
	var n events.EmailNotification
	if err := env.Decode(&n); err != nil {
		return err
	}
	if n.Email == "" {
		return errors.New("email notification without recipient")
	}

	l.logger.Info("Email notification received",
		zap.String("event_id", env.ID),
		zap.String("type", n.Type),
		zap.String("email", n.Email),
	)
	return nil
}
