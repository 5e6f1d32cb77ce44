package showtime

import "github.com/google/uuid"

type SeatStatus string

const (
	SeatAvailable SeatStatus = "AVAILABLE"
	SeatHeld      SeatStatus = "HELD"
	SeatSold      SeatStatus = "SOLD"
)

func (s SeatStatus) String() string {
	return string(s)
}

func (s SeatStatus) IsValid() bool {
	switch s {
	case SeatAvailable, SeatHeld, SeatSold:
		return true
	default:
		return false
	}
}

type SeatClass string

const (
	ClassStandard SeatClass = "STANDARD"
	ClassVIP      SeatClass = "VIP"
)

// Seat is one cell of a screening's seat map. HolderID and BookingID are set
// only while the seat is HELD or SOLD.
type Seat struct {
	Code      string
	Row       string
	Column    int
	Class     SeatClass
	Price     int64
	Status    SeatStatus
	HolderID  *uuid.UUID
	BookingID *uuid.UUID
}

func (s Seat) IsAvailable() bool {
	return s.Status == SeatAvailable
}

func (s Seat) claimedBy(bookingID uuid.UUID) bool {
	return s.BookingID != nil && *s.BookingID == bookingID
}
