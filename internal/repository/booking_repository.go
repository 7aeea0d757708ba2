package repository

import (
    "context"
    "database/sql"
    "errors"
    "fmt"

    "github.com/iliyamo/eventease/internal/model"
)

// BookingRepo is the booking ledger.  Besides the `bookings` table it owns
// the booked_seats counter of `events`, which must only change together
// with a booking row inside one transaction.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// WithTx runs fn inside a single database transaction.
func (r *BookingRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
    return withTx(ctx, r.db, fn)
}

// LockEvent reads the event row with FOR UPDATE.  Concurrent bookers of the
// same event queue on this lock until the holder commits or rolls back.
func (r *BookingRepo) LockEvent(ctx context.Context, eventID uint64) (model.Event, error) {
    return lockEvent(ctx, r.db, eventID)
}

// AdjustBookedSeats adds delta (negative to release) to the event's
// booked_seats counter.
func (r *BookingRepo) AdjustBookedSeats(ctx context.Context, eventID uint64, delta int) error {
    res, err := conn(ctx, r.db).ExecContext(ctx,
        `UPDATE events SET booked_seats = booked_seats + ? WHERE id = ?`, delta, eventID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrNotFound
    }
    return nil
}

// SumUserSeats returns the seats the user already holds on the event.
func (r *BookingRepo) SumUserSeats(ctx context.Context, userID, eventID uint64) (int, error) {
    var total int
    err := conn(ctx, r.db).QueryRowContext(ctx,
        `SELECT COALESCE(SUM(seats), 0) FROM bookings WHERE user_id = ? AND event_id = ?`,
        userID, eventID).Scan(&total)
    return total, err
}

// Insert stores a new booking and populates its ID.  A user or event that
// does not exist yields ErrMissingReference.
func (r *BookingRepo) Insert(ctx context.Context, b *model.Booking) error {
    res, err := conn(ctx, r.db).ExecContext(ctx,
        `INSERT INTO bookings (user_id, event_id, seats) VALUES (?, ?, ?)`,
        b.UserID, b.EventID, b.Seats)
    if err != nil {
        if isMySQLError(err, errNoReferencedRow) {
            return ErrMissingReference
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    b.ID = uint64(id)
    return nil
}

// Find returns the booking or ErrNotFound.
func (r *BookingRepo) Find(ctx context.Context, id uint64) (model.Booking, error) {
    return r.findOne(ctx, `SELECT id, user_id, event_id, seats, created_at FROM bookings WHERE id = ?`, id)
}

// Lock reads the booking with FOR UPDATE.  It must run inside WithTx.
func (r *BookingRepo) Lock(ctx context.Context, id uint64) (model.Booking, error) {
    return r.findOne(ctx, `SELECT id, user_id, event_id, seats, created_at FROM bookings WHERE id = ? FOR UPDATE`, id)
}

func (r *BookingRepo) findOne(ctx context.Context, q string, id uint64) (model.Booking, error) {
    var b model.Booking
    err := conn(ctx, r.db).QueryRowContext(ctx, q, id).
        Scan(&b.ID, &b.UserID, &b.EventID, &b.Seats, &b.CreatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return model.Booking{}, ErrNotFound
    }
    return b, err
}

// Delete removes the booking row.  ErrNotFound is returned when nothing
// was deleted.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
    res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrNotFound
    }
    return nil
}

// ListByUser returns the user's bookings joined with their events, in
// booking order.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.UserBooking, error) {
    const q = `SELECT b.id, e.title, e.date, b.seats
               FROM bookings b
               JOIN events e ON b.event_id = e.id
               WHERE b.user_id = ?
               ORDER BY b.id`
    rows, err := conn(ctx, r.db).QueryContext(ctx, q, userID)
    if err != nil {
        return nil, fmt.Errorf("list bookings: %w", err)
    }
    defer rows.Close()

    out := make([]model.UserBooking, 0)
    for rows.Next() {
        var ub model.UserBooking
        if err := rows.Scan(&ub.ID, &ub.Title, &ub.EventDate, &ub.Seats); err != nil {
            return nil, fmt.Errorf("scan booking: %w", err)
        }
        ub.EventDate = ub.EventDate.UTC()
        out = append(out, ub)
    }
    return out, rows.Err()
}

// ListAttendees returns who booked the event and how many seats each
// booking holds, in booking order.
func (r *BookingRepo) ListAttendees(ctx context.Context, eventID uint64) ([]model.Attendee, error) {
    const q = `SELECT u.name, u.email, b.seats
               FROM bookings b
               JOIN users u ON b.user_id = u.id
               WHERE b.event_id = ?
               ORDER BY b.id`
    rows, err := conn(ctx, r.db).QueryContext(ctx, q, eventID)
    if err != nil {
        return nil, fmt.Errorf("list attendees: %w", err)
    }
    defer rows.Close()

    out := make([]model.Attendee, 0)
    for rows.Next() {
        var a model.Attendee
        if err := rows.Scan(&a.Name, &a.Email, &a.Seats); err != nil {
            return nil, fmt.Errorf("scan attendee: %w", err)
        }
        out = append(out, a)
    }
    return out, rows.Err()
}
