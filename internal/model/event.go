package model

import "time"

// DisplayDateLayout renders dates as DD-MMM-YYYY (e.g. 05-Mar-2025).
const DisplayDateLayout = "02-Jan-2006"

// Event mirrors a row of the `events` table.
//
// Fields:
//  Capacity    – total seats, always positive.
//  BookedSeats – seats held by live bookings; only the booking service
//                changes it and it never exceeds Capacity.
//  EventCode   – generated display identifier, EVT-<MON><YEAR>-<RAND3>.
type Event struct {
    ID          uint64
    Title       string
    Date        time.Time
    Category    string
    Location    string
    Capacity    int
    BookedSeats int
    EventCode   string
}

// Available returns the number of seats still open for booking.
func (e Event) Available() int {
    if e.BookedSeats >= e.Capacity {
        return 0
    }
    return e.Capacity - e.BookedSeats
}

// EventInput carries the admin-editable fields of an event.
type EventInput struct {
    Title    string
    Date     time.Time
    Category string
    Location string
    Capacity int
}
