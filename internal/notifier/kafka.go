package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopwise/checkout/internal/apperr"
	"github.com/shopwise/checkout/internal/models"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes JSON events keyed by order id, so all events of
// one order land on the same partition.
type KafkaNotifier struct {
	writer messageWriter
	now    func() time.Time
}

// NewKafkaNotifier creates a synchronous writer for topic.
func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return newKafkaNotifier(w)
}

func newKafkaNotifier(w messageWriter) *KafkaNotifier {
	return &KafkaNotifier{writer: w, now: time.Now}
}

func (n *KafkaNotifier) OrdersPlaced(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	at := n.now().UTC()
	msgs := make([]kafka.Message, 0, len(orders))
	for _, o := range orders {
		msg, err := encode(newEvent(EventOrderCreated, o, "", at))
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	return n.write(ctx, msgs...)
}

func (n *KafkaNotifier) OrderStatusChanged(ctx context.Context, o models.Order, from models.OrderStatus) error {
	msg, err := encode(newEvent(EventOrderStatusChanged, o, from, n.now().UTC()))
	if err != nil {
		return err
	}
	return n.write(ctx, msg)
}

// Close flushes pending messages.
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

func (n *KafkaNotifier) write(ctx context.Context, msgs ...kafka.Message) error {
	if err := n.writer.WriteMessages(ctx, msgs...); err != nil {
		return apperr.Upstream("Failed to publish order event", err)
	}
	return nil
}

func encode(e Event) (kafka.Message, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, apperr.Internal("Failed to encode order event", fmt.Errorf("event %s: %w", e.Type, err))
	}
	return kafka.Message{
		Key:   []byte(e.OrderID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(e.Type)},
		},
	}, nil
}
