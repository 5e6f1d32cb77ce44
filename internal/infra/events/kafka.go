package events

import (
	"context"
	"time"

	"cinebooking/internal/pkg/errs"
	"cinebooking/internal/usecase/shared"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher keys messages by booking id so events for one booking stay ordered.
type KafkaPublisher struct {
	writer *kafka.Writer
	routes Routes
}

func NewKafkaPublisher(brokers []string, routes Routes) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			BatchTimeout:           50 * time.Millisecond,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		routes: routes,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event shared.BookingEvent) error {
	msg, err := p.message(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errs.Wrap(err, "kafka publish")
	}
	return nil
}

func (p *KafkaPublisher) message(event shared.BookingEvent) (kafka.Message, error) {
	body, err := encode(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Topic: p.routes.destination(event.Type),
		Key:   []byte(event.BookingID.String()),
		Value: body,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	}, nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
