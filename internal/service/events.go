package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"storefront/internal/entity"
)

const (
	EventOrderCreated       = "created"
	EventOrderPaid          = "paid"
	EventOrderPaymentFailed = "payment_failed"
)

// orderEvents publishes order lifecycle events. Publishing happens after the
// database commit and never undoes it: failures are logged and dropped.
type orderEvents struct {
	writer EventWriter
}

func (p orderEvents) publish(ctx context.Context, order *entity.Order, event string) {
	if p.writer == nil {
		return
	}

	orderJSON, err := json.Marshal(order)
	if err != nil {
		logger.Error().Err(err).Msgf("Error marshalling order %d", order.ID)
		return
	}

	// order-created-1 or order-paid-1
	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("order-%s-%d", event, order.ID)),
		Value: orderJSON,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logger.Error().Err(err).Msgf("Error publishing %s event for order %d", event, order.ID)
	}
}
