// Package queue carries booking audit records over RabbitMQ and appends them
// to the booking log file.
package queue

import (
    "fmt"
    "strings"
    "time"
)

// Kind names the step of the booking flow an audit record describes.
type Kind string

const (
    KindAttempt   Kind = "attempt"
    KindBooked    Kind = "booked"
    KindCancelled Kind = "cancelled"
)

// BookingEvent is published for every booking attempt, successful booking
// and cancellation.  BookingID is zero for attempts.
type BookingEvent struct {
    Kind      Kind      `json:"kind"`
    UserID    uint64    `json:"user_id"`
    EventID   uint64    `json:"event_id"`
    BookingID uint64    `json:"booking_id,omitempty"`
    Seats     int       `json:"seats"`
    At        time.Time `json:"at"`
}

// LogLine renders the record as one line of logs/bookings.log.
func (e BookingEvent) LogLine() string {
    var label string
    switch e.Kind {
    case KindAttempt:
        label = "Booking attempt"
    case KindBooked:
        label = "Booking confirmed"
    case KindCancelled:
        label = "Booking cancelled"
    default:
        label = "Booking " + strings.ToLower(string(e.Kind))
    }
    line := fmt.Sprintf("[%s] %s - User: %d, Event: %d, Seats: %d",
        e.At.UTC().Format(time.RFC3339), label, e.UserID, e.EventID, e.Seats)
    if e.BookingID != 0 {
        line += fmt.Sprintf(", Booking: %d", e.BookingID)
    }
    return line + "\n"
}
