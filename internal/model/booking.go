package model

import "time"

// Seat limits for a single user on a single event.
const (
    MinSeatsPerBooking = 1
    MaxSeatsPerUser    = 2
)

// Booking mirrors a row of the `bookings` table.
type Booking struct {
    ID        uint64
    UserID    uint64
    EventID   uint64
    Seats     int
    CreatedAt time.Time
}

// UserBooking is one line of a user's booking list: the booking joined
// with the event it references.
type UserBooking struct {
    ID        uint64
    Title     string
    EventDate time.Time
    Seats     int
}

// Attendee is one line of an event's attendee list.
type Attendee struct {
    Name  string
    Email string
    Seats int
}
