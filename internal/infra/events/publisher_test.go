//go:build unit

package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cinebooking/internal/pkg/config"
	"cinebooking/internal/pkg/errs"
	"cinebooking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() shared.BookingEvent {
	return shared.BookingEvent{
		Type:          shared.EventBookingConfirmed,
		BookingID:     uuid.New(),
		CustomerID:    uuid.New(),
		ShowtimeID:    uuid.New(),
		Seats:         []string{"A1", "A2"},
		FinalPrice:    180_000,
		PaymentMethod: "SIMULATOR",
		OccurredAt:    time.Date(2026, 10, 18, 9, 3, 0, 0, time.UTC),
	}
}

func TestRoutes(t *testing.T) {
	routes := Routes{shared.EventBookingConfirmed: "cinema.booking.confirmed"}

	assert.Equal(t, "cinema.booking.confirmed", routes.destination(shared.EventBookingConfirmed))
	assert.Equal(t, "booking.expired", routes.destination(shared.EventBookingExpired))
}

func TestKafkaMessage(t *testing.T) {
	p := NewKafkaPublisher([]string{"localhost:9092"}, Routes{
		shared.EventBookingConfirmed: "booking.confirmed",
		shared.EventBookingExpired:   "booking.expired",
	})
	t.Cleanup(func() { _ = p.Close() })
	event := sampleEvent()

	msg, err := p.message(event)
	require.NoError(t, err)

	assert.Equal(t, "booking.confirmed", msg.Topic)
	assert.Equal(t, event.BookingID.String(), string(msg.Key))
	assert.True(t, event.OccurredAt.Equal(msg.Time))

	var decoded shared.BookingEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.BookingID, decoded.BookingID)
	assert.Equal(t, []string{"A1", "A2"}, decoded.Seats)
	assert.Equal(t, int64(180_000), decoded.FinalPrice)
}

func TestNew(t *testing.T) {
	t.Run("none falls back to logging", func(t *testing.T) {
		p, err := New(config.EventsConfig{Driver: DriverNone}, nil)
		require.NoError(t, err)
		assert.IsType(t, &LogPublisher{}, p)
		assert.NoError(t, p.Publish(context.Background(), sampleEvent()))
		assert.NoError(t, p.Close())
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := New(config.EventsConfig{Driver: "carrier-pigeon"}, nil)
		assert.True(t, errs.Is(err, ErrUnknownDriver))
	})
}
