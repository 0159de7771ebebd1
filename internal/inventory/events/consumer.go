package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Reader is satisfied by *broker.KafkaConsumer.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Handler func(ctx context.Context, env Envelope) error

// Consumer acknowledges each message after its handler returns. A
// message whose handler fails, or that cannot be decoded, is logged and
// committed anyway so it is never redelivered.
type Consumer struct {
	reader     Reader
	queue      Queue
	handle     Handler
	logger     logger.ZapLogger
	retryDelay time.Duration
}

func NewConsumer(r Reader, queue Queue, h Handler, log logger.ZapLogger) *Consumer {
	return &Consumer{
		reader:     r,
		queue:      queue,
		handle:     h,
		logger:     log.With(zap.String("queue", string(queue))),
		retryDelay: time.Second,
	}
}

// Run blocks until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("Starting consumer")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("Stopping consumer")
				return nil
			}
			c.logger.Error("Failed to fetch message", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.retryDelay):
			}
			continue
		}

		c.process(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("Failed to commit message", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	var env Envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		c.logger.Error("Dropping malformed message", zap.Int64("offset", msg.Offset), zap.Error(err))
		return
	}

	if err := c.safeHandle(ctx, env); err != nil {
		c.logger.Error("Dropping message after handler failure",
			zap.String("event_id", env.ID),
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
	}
}

func (c *Consumer) safeHandle(ctx context.Context, env Envelope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("handler panicked")
			c.logger.Error("Handler panic", zap.Any("panic", r))
		}
	}()
	return c.handle(ctx, env)
}
