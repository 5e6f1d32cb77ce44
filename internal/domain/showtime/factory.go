package showtime

import "fmt"

const (
	DefaultRows        = 5
	DefaultSeatsPerRow = 10
	vipSurchargePct    = 20
)

// GenerateStandardSeatMap lays out rows A.. with numbered columns; the back row is VIP.
func GenerateStandardSeatMap(rows, seatsPerRow int, basePrice int64) []Seat {
	if rows <= 0 || rows > 26 || seatsPerRow <= 0 {
		return nil
	}

	seats := make([]Seat, 0, rows*seatsPerRow)
	for r := 0; r < rows; r++ {
		row := string(rune('A' + r))
		class, price := ClassStandard, basePrice
		if r == rows-1 {
			class = ClassVIP
			price = basePrice * (100 + vipSurchargePct) / 100
		}
		for c := 1; c <= seatsPerRow; c++ {
			seats = append(seats, Seat{
				Code:   fmt.Sprintf("%s%d", row, c),
				Row:    row,
				Column: c,
				Class:  class,
				Price:  price,
				Status: SeatAvailable,
			})
		}
	}
	return seats
}
