// Package events delivers booking events to the configured broker.
package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"cinebooking/internal/pkg/config"
	"cinebooking/internal/pkg/errs"
	"cinebooking/internal/usecase/shared"
)

const (
	DriverNone  = "none"
	DriverAMQP  = "amqp"
	DriverKafka = "kafka"
)

var ErrUnknownDriver = errs.New("unknown events driver")

// Publisher is an EventPublisher that owns a broker connection.
type Publisher interface {
	shared.EventPublisher
	Close() error
}

// New connects the publisher selected by cfg.Driver.
func New(cfg config.EventsConfig, logger *slog.Logger) (Publisher, error) {
	routes := Routes{
		shared.EventBookingConfirmed: cfg.ConfirmedTopic,
		shared.EventBookingExpired:   cfg.ExpiredTopic,
	}

	switch cfg.Driver {
	case "", DriverNone:
		return NewLogPublisher(logger), nil
	case DriverAMQP:
		return NewAMQPPublisher(cfg.AMQPURL, routes)
	case DriverKafka:
		return NewKafkaPublisher(cfg.KafkaBrokers, routes), nil
	default:
		return nil, errs.Wrapf(ErrUnknownDriver, "%q", cfg.Driver)
	}
}

// Routes maps an event type to the queue or topic it is sent to.
type Routes map[shared.EventType]string

func (r Routes) destination(t shared.EventType) string {
	if d, ok := r[t]; ok && d != "" {
		return d
	}
	return string(t)
}

func encode(event shared.BookingEvent) ([]byte, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, errs.Wrap(err, "encode booking event")
	}
	return body, nil
}

// LogPublisher only writes events to the log. Used when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event shared.BookingEvent) error {
	p.logger.InfoContext(ctx, "booking event",
		"type", string(event.Type),
		"booking_id", event.BookingID.String(),
		"customer_id", event.CustomerID.String(),
		"final_price", event.FinalPrice)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
