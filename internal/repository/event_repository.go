package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/eventease/internal/model"
)

// EventRepo is the event store backed by the `events` table.  Methods run
// on the transaction carried by ctx when there is one.
type EventRepo struct {
    db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = `id, title, date, category, location, capacity, booked_seats, event_code`

// WithTx runs fn inside a single database transaction.
func (r *EventRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
    return withTx(ctx, r.db, fn)
}

// Create inserts a new event with booked_seats = 0 and populates its ID.
// A colliding event_code yields ErrDuplicateCode so the caller can retry
// with a fresh code.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
    const q = `INSERT INTO events (title, date, category, location, capacity, booked_seats, event_code)
               VALUES (?, ?, ?, ?, ?, 0, ?)`
    res, err := conn(ctx, r.db).ExecContext(ctx, q, e.Title, e.Date.UTC(), e.Category, e.Location, e.Capacity, e.EventCode)
    if err != nil {
        if isMySQLError(err, errDupEntry) {
            return ErrDuplicateCode
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    e.ID = uint64(id)
    e.BookedSeats = 0
    return nil
}

// List returns all events ordered by date, then id.
func (r *EventRepo) List(ctx context.Context) ([]model.Event, error) {
    rows, err := conn(ctx, r.db).QueryContext(ctx, `SELECT `+eventColumns+` FROM events ORDER BY date, id`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    events := make([]model.Event, 0)
    for rows.Next() {
        e, err := scanEvent(rows)
        if err != nil {
            return nil, err
        }
        events = append(events, e)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return events, nil
}

// GetByID returns the event or ErrNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (model.Event, error) {
    row := conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
    return scanEventRow(row)
}

// GetForUpdate reads the event and takes a row lock held until the
// surrounding transaction ends.  It must run inside WithTx.
func (r *EventRepo) GetForUpdate(ctx context.Context, id uint64) (model.Event, error) {
    return lockEvent(ctx, r.db, id)
}

// Update overwrites the admin-editable fields.  booked_seats and event_code
// are left untouched.
func (r *EventRepo) Update(ctx context.Context, id uint64, in model.EventInput) error {
    const q = `UPDATE events SET title = ?, date = ?, category = ?, location = ?, capacity = ? WHERE id = ?`
    _, err := conn(ctx, r.db).ExecContext(ctx, q, in.Title, in.Date.UTC(), in.Category, in.Location, in.Capacity, id)
    return err
}

// Delete removes the event together with every booking that references it
// and reports how many bookings were removed.  ErrNotFound is returned when
// the event does not exist.
func (r *EventRepo) Delete(ctx context.Context, id uint64) (int64, error) {
    var removed int64
    err := r.WithTx(ctx, func(ctx context.Context) error {
        if _, err := lockEvent(ctx, r.db, id); err != nil {
            return err
        }
        q := conn(ctx, r.db)
        res, err := q.ExecContext(ctx, `DELETE FROM bookings WHERE event_id = ?`, id)
        if err != nil {
            return err
        }
        removed, _ = res.RowsAffected()
        if _, err := q.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id); err != nil {
            if isMySQLError(err, errRowIsReferenced) {
                return ErrConflict
            }
            return err
        }
        return nil
    })
    if err != nil {
        return 0, err
    }
    return removed, nil
}

func lockEvent(ctx context.Context, db *sql.DB, id uint64) (model.Event, error) {
    row := conn(ctx, db).QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ? FOR UPDATE`, id)
    return scanEventRow(row)
}

type rowScanner interface {
    Scan(dest ...any) error
}

func scanEvent(s rowScanner) (model.Event, error) {
    var e model.Event
    err := s.Scan(&e.ID, &e.Title, &e.Date, &e.Category, &e.Location, &e.Capacity, &e.BookedSeats, &e.EventCode)
    if err != nil {
        return model.Event{}, err
    }
    e.Date = e.Date.UTC()
    return e, nil
}

func scanEventRow(row *sql.Row) (model.Event, error) {
    e, err := scanEvent(row)
    if errors.Is(err, sql.ErrNoRows) {
        return model.Event{}, ErrNotFound
    }
    return e, err
}
