//go:build unit || e2e

package builder

import (
	"time"

	"cinebooking/internal/domain/showtime"

	"github.com/google/uuid"
)

type ShowtimeBuilder struct {
	ID       uuid.UUID
	MovieID  string
	RoomID   string
	StartsAt time.Time
	EndsAt   time.Time
	Seats    []showtime.Seat
	Now      time.Time
}

func NewShowtimeBuilder() *ShowtimeBuilder {
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	return &ShowtimeBuilder{
		ID:       uuid.New(),
		MovieID:  "movie-dune-3",
		RoomID:   "cinema-01/room-3",
		StartsAt: now.Add(48 * time.Hour),
		EndsAt:   now.Add(48*time.Hour + 150*time.Minute),
		Seats:    showtime.GenerateStandardSeatMap(showtime.DefaultRows, showtime.DefaultSeatsPerRow, 100_000),
		Now:      now,
	}
}

func (b *ShowtimeBuilder) With(mutate func(*ShowtimeBuilder)) *ShowtimeBuilder {
	mutate(b)
	return b
}

func (b *ShowtimeBuilder) WithSeats(seats ...showtime.Seat) *ShowtimeBuilder {
	b.Seats = seats
	return b
}

// WithSingleSeat leaves one standard seat at the given price.
func (b *ShowtimeBuilder) WithSingleSeat(code string, price int64) *ShowtimeBuilder {
	b.Seats = []showtime.Seat{{Code: code, Row: code[:1], Column: 1, Class: showtime.ClassStandard, Price: price}}
	return b
}

func (b *ShowtimeBuilder) BuildDomain() (*showtime.Showtime, error) {
	return showtime.New(b.ID, b.MovieID, b.RoomID, b.StartsAt, b.EndsAt, b.Seats, b.Now)
}

func (b *ShowtimeBuilder) MustBuild() *showtime.Showtime {
	st, err := b.BuildDomain()
	if err != nil {
		panic(err)
	}
	return st
}
