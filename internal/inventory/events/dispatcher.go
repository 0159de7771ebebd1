package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Outcome int

const (
	OutcomeAcknowledged Outcome = iota
	OutcomeDegraded
)

func (o Outcome) String() string {
	if o == OutcomeAcknowledged {
		return "acknowledged"
	}
	return "degraded"
}

// Writer is satisfied by *kafka.Writer.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Dispatcher publishes durable event envelopes. It never returns an
// error: a publish that cannot be confirmed is logged and reported as
// degraded.
type Dispatcher struct {
	writer  Writer
	timeout time.Duration
	logger  logger.ZapLogger
	now     func() time.Time
}

func NewDispatcher(w Writer, timeout time.Duration, log logger.ZapLogger) *Dispatcher {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Dispatcher{
		writer:  w,
		timeout: timeout,
		logger:  log,
		now:     time.Now,
	}
}

func (d *Dispatcher) Publish(ctx context.Context, queue Queue, payload any) Outcome {
	if d == nil || d.writer == nil {
		return OutcomeDegraded
	}

	data, err := json.Marshal(payload)
	if err != nil {
		d.degraded(queue, "", err)
		return OutcomeDegraded
	}

	env := Envelope{
		ID:        uuid.New().String(),
		Queue:     queue,
		Timestamp: d.now().UTC(),
		Durable:   true,
		Data:      data,
	}
	value, err := json.Marshal(env)
	if err != nil {
		d.degraded(queue, env.ID, err)
		return OutcomeDegraded
	}

	key := env.ID
	if k, ok := payload.(Keyed); ok && k.PartitionKey() != "" {
		key = k.PartitionKey()
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err = d.writer.WriteMessages(ctx, kafka.Message{
		Topic: string(queue),
		Key:   []byte(key),
		Value: value,
		Time:  env.Timestamp,
	})
	if err != nil {
		d.degraded(queue, env.ID, err)
		return OutcomeDegraded
	}

	d.logger.Debug("event published", zap.String("queue", string(queue)), zap.String("event_id", env.ID))
	return OutcomeAcknowledged
}

func (d *Dispatcher) degraded(queue Queue, id string, err error) {
	d.logger.Warn("event publish failed",
		zap.String("queue", string(queue)),
		zap.String("event_id", id),
		zap.String("outcome", OutcomeDegraded.String()),
		zap.Error(err),
	)
}
