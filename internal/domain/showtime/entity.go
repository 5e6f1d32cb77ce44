package showtime

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidSeat       = errors.New("invalid seat")
	ErrSeatUnavailable   = errors.New("seat unavailable")
	ErrIllegalTransition = errors.New("illegal seat transition")
	ErrInvalidSchedule   = errors.New("invalid schedule")
	ErrEmptySeatMap      = errors.New("seat map is empty")
	ErrNegativeSeatPrice = errors.New("seat price cannot be negative")
)

type Showtime struct {
	id        uuid.UUID
	movieID   string
	roomID    string
	startsAt  time.Time
	endsAt    time.Time
	seats     map[string]Seat
	createdAt time.Time
	updatedAt time.Time
}

// New schedules a screening with every seat AVAILABLE.
func New(id uuid.UUID, movieID, roomID string, startsAt, endsAt time.Time, seats []Seat, now time.Time) (*Showtime, error) {
	if !endsAt.After(startsAt) {
		return nil, ErrInvalidSchedule
	}
	if len(seats) == 0 {
		return nil, ErrEmptySeatMap
	}
	if id == uuid.Nil {
		id = uuid.New()
	}

	seatMap := make(map[string]Seat, len(seats))
	for _, s := range seats {
		if s.Code == "" {
			return nil, ErrInvalidSeat
		}
		if _, dup := seatMap[s.Code]; dup {
			return nil, fmt.Errorf("%w: duplicate code %s", ErrInvalidSeat, s.Code)
		}
		if s.Price < 0 {
			return nil, ErrNegativeSeatPrice
		}
		if s.Class == "" {
			s.Class = ClassStandard
		}
		s.Status = SeatAvailable
		s.HolderID = nil
		s.BookingID = nil
		seatMap[s.Code] = s
	}

	return &Showtime{
		id:        id,
		movieID:   movieID,
		roomID:    roomID,
		startsAt:  startsAt,
		endsAt:    endsAt,
		seats:     seatMap,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func Reconstruct(
	id uuid.UUID,
	movieID, roomID string,
	startsAt, endsAt time.Time,
	seats map[string]Seat,
	createdAt, updatedAt time.Time,
) *Showtime {
	if seats == nil {
		seats = map[string]Seat{}
	}
	return &Showtime{
		id:        id,
		movieID:   movieID,
		roomID:    roomID,
		startsAt:  startsAt,
		endsAt:    endsAt,
		seats:     seats,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// Hold claims every listed seat for the booking and returns their summed price.
// Either all seats are claimed or none is.
func (s *Showtime) Hold(codes []string, holderID, bookingID uuid.UUID, at time.Time) (int64, error) {
	var total int64
	for _, code := range codes {
		seat, ok := s.seats[code]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrInvalidSeat, code)
		}
		if !seat.IsAvailable() {
			return 0, fmt.Errorf("%w: %s is %s", ErrSeatUnavailable, code, seat.Status)
		}
		total += seat.Price
	}

	for _, code := range codes {
		seat := s.seats[code]
		holder, booking := holderID, bookingID
		seat.Status = SeatHeld
		seat.HolderID = &holder
		seat.BookingID = &booking
		s.seats[code] = seat
	}
	s.updatedAt = at
	return total, nil
}

// Sell turns seats held by the booking into sold seats.
func (s *Showtime) Sell(codes []string, bookingID uuid.UUID, at time.Time) error {
	for _, code := range codes {
		seat, ok := s.seats[code]
		if !ok {
			return fmt.Errorf("%w: %s", ErrInvalidSeat, code)
		}
		if seat.Status != SeatHeld || !seat.claimedBy(bookingID) {
			return fmt.Errorf("%w: %s is %s", ErrIllegalTransition, code, seat.Status)
		}
	}

	for _, code := range codes {
		seat := s.seats[code]
		seat.Status = SeatSold
		s.seats[code] = seat
	}
	s.updatedAt = at
	return nil
}

// Release returns seats still held by the booking to the pool. Seats that are
// missing, sold, or claimed by another booking are left untouched.
func (s *Showtime) Release(codes []string, bookingID uuid.UUID, at time.Time) int {
	released := 0
	for _, code := range codes {
		seat, ok := s.seats[code]
		if !ok || seat.Status != SeatHeld || !seat.claimedBy(bookingID) {
			continue
		}
		seat.Status = SeatAvailable
		seat.HolderID = nil
		seat.BookingID = nil
		s.seats[code] = seat
		released++
	}
	if released > 0 {
		s.updatedAt = at
	}
	return released
}

func (s *Showtime) Seat(code string) (Seat, bool) {
	seat, ok := s.seats[code]
	return seat, ok
}

func (s *Showtime) Seats() map[string]Seat {
	out := make(map[string]Seat, len(s.seats))
	for k, v := range s.seats {
		out[k] = v
	}
	return out
}

func (s *Showtime) SeatCodes() []string {
	codes := make([]string, 0, len(s.seats))
	for code := range s.seats {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func (s *Showtime) AvailableCount() int {
	n := 0
	for _, seat := range s.seats {
		if seat.IsAvailable() {
			n++
		}
	}
	return n
}

// HasActiveClaims reports whether any seat is HELD or SOLD, in which case the
// screening must not be removed.
func (s *Showtime) HasActiveClaims() bool {
	return s.AvailableCount() != len(s.seats)
}

func (s *Showtime) ID() uuid.UUID        { return s.id }
func (s *Showtime) MovieID() string      { return s.movieID }
func (s *Showtime) RoomID() string       { return s.roomID }
func (s *Showtime) StartsAt() time.Time  { return s.startsAt }
func (s *Showtime) EndsAt() time.Time    { return s.endsAt }
func (s *Showtime) CreatedAt() time.Time { return s.createdAt }
func (s *Showtime) UpdatedAt() time.Time { return s.updatedAt }
