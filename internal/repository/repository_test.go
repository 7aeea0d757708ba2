package repository

import (
    "context"
    "database/sql"
    "errors"
    "regexp"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/go-sql-driver/mysql"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/eventease/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() {
        assert.NoError(t, mock.ExpectationsWereMet())
        _ = db.Close()
    })
    return db, mock
}

var eventCols = []string{"id", "title", "date", "category", "location", "capacity", "booked_seats", "event_code"}

func TestUserRepo_CreateNormalizesAndMapsDuplicate(t *testing.T) {
    db, mock := newMock(t)
    repo := NewUserRepo(db)
    q := regexp.QuoteMeta("INSERT INTO users (name, email, password, role) VALUES (?,?,?,?)")

    mock.ExpectExec(q).WithArgs("Ann", "ann@example.com", "hash", "user").
        WillReturnResult(sqlmock.NewResult(5, 1))
    id, err := repo.Create(context.Background(), "Ann", " ANN@example.com", "hash", "user")
    require.NoError(t, err)
    assert.Equal(t, uint64(5), id)

    mock.ExpectExec(q).WithArgs("Ann", "ann@example.com", "hash", "user").
        WillReturnError(&mysql.MySQLError{Number: errDupEntry, Message: "Duplicate entry"})
    _, err = repo.Create(context.Background(), "Ann", "ann@example.com", "hash", "user")
    assert.ErrorIs(t, err, ErrEmailExists)
}

func TestUserRepo_GetByEmailNotFound(t *testing.T) {
    db, mock := newMock(t)
    mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).WithArgs("nobody@example.com").
        WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password", "role", "created_at"}))

    _, err := NewUserRepo(db).GetByEmail(context.Background(), "Nobody@example.com")
    assert.ErrorIs(t, err, ErrNotFound)
}

func TestEventRepo_CreateMapsDuplicateCode(t *testing.T) {
    db, mock := newMock(t)
    repo := NewEventRepo(db)
    date := time.Date(2025, 3, 5, 18, 0, 0, 0, time.UTC)
    ev := &model.Event{Title: "T", Date: date, Capacity: 10, EventCode: "EVT-MAR2025-AAA"}

    mock.ExpectExec("INSERT INTO events").
        WithArgs("T", date, "", "", 10, "EVT-MAR2025-AAA").
        WillReturnError(&mysql.MySQLError{Number: errDupEntry})
    assert.ErrorIs(t, repo.Create(context.Background(), ev), ErrDuplicateCode)

    mock.ExpectExec("INSERT INTO events").
        WithArgs("T", date, "", "", 10, "EVT-MAR2025-AAA").
        WillReturnResult(sqlmock.NewResult(12, 1))
    require.NoError(t, repo.Create(context.Background(), ev))
    assert.Equal(t, uint64(12), ev.ID)
}

func TestEventRepo_List(t *testing.T) {
    db, mock := newMock(t)
    date := time.Date(2025, 3, 5, 18, 0, 0, 0, time.UTC)
    mock.ExpectQuery(regexp.QuoteMeta("FROM events ORDER BY date, id")).
        WillReturnRows(sqlmock.NewRows(eventCols).
            AddRow(1, "A", date, "Tech", "Hall", 10, 2, "EVT-MAR2025-AAA").
            AddRow(2, "B", date, "Tech", "Hall", 5, 0, "EVT-MAR2025-BBB"))

    events, err := NewEventRepo(db).List(context.Background())
    require.NoError(t, err)
    require.Len(t, events, 2)
    assert.Equal(t, 2, events[0].BookedSeats)
    assert.Equal(t, "EVT-MAR2025-BBB", events[1].EventCode)
}

func TestEventRepo_DeleteCascadesInOneTransaction(t *testing.T) {
    db, mock := newMock(t)
    date := time.Date(2025, 3, 5, 18, 0, 0, 0, time.UTC)

    mock.ExpectBegin()
    mock.ExpectQuery(regexp.QuoteMeta("FROM events WHERE id = ? FOR UPDATE")).WithArgs(uint64(3)).
        WillReturnRows(sqlmock.NewRows(eventCols).AddRow(3, "A", date, "", "", 10, 3, "EVT-MAR2025-AAA"))
    mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookings WHERE event_id = ?")).WithArgs(uint64(3)).
        WillReturnResult(sqlmock.NewResult(0, 2))
    mock.ExpectExec(regexp.QuoteMeta("DELETE FROM events WHERE id = ?")).WithArgs(uint64(3)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectCommit()

    removed, err := NewEventRepo(db).Delete(context.Background(), 3)
    require.NoError(t, err)
    assert.EqualValues(t, 2, removed)
}

func TestEventRepo_DeleteMissingRollsBack(t *testing.T) {
    db, mock := newMock(t)

    mock.ExpectBegin()
    mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).WithArgs(uint64(9)).
        WillReturnRows(sqlmock.NewRows(eventCols))
    mock.ExpectRollback()

    _, err := NewEventRepo(db).Delete(context.Background(), 9)
    assert.ErrorIs(t, err, ErrNotFound)
}

func TestEventRepo_DeleteReferencedEventIsConflict(t *testing.T) {
    db, mock := newMock(t)
    date := time.Date(2025, 3, 5, 18, 0, 0, 0, time.UTC)

    mock.ExpectBegin()
    mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).WithArgs(uint64(4)).
        WillReturnRows(sqlmock.NewRows(eventCols).AddRow(4, "A", date, "", "", 10, 0, "EVT-MAR2025-CCC"))
    mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookings WHERE event_id = ?")).WithArgs(uint64(4)).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectExec(regexp.QuoteMeta("DELETE FROM events WHERE id = ?")).WithArgs(uint64(4)).
        WillReturnError(&mysql.MySQLError{Number: errRowIsReferenced})
    mock.ExpectRollback()

    _, err := NewEventRepo(db).Delete(context.Background(), 4)
    assert.ErrorIs(t, err, ErrConflict)
}

func TestBookingRepo_TransactionCommitsAndRollsBack(t *testing.T) {
    db, mock := newMock(t)
    repo := NewBookingRepo(db)
    ctx := context.Background()

    mock.ExpectBegin()
    mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings (user_id, event_id, seats) VALUES (?, ?, ?)")).
        WithArgs(uint64(1), uint64(2), 2).WillReturnResult(sqlmock.NewResult(40, 1))
    mock.ExpectExec(regexp.QuoteMeta("UPDATE events SET booked_seats = booked_seats + ? WHERE id = ?")).
        WithArgs(2, uint64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectCommit()

    b := model.Booking{UserID: 1, EventID: 2, Seats: 2}
    err := repo.WithTx(ctx, func(ctx context.Context) error {
        if err := repo.Insert(ctx, &b); err != nil {
            return err
        }
        return repo.AdjustBookedSeats(ctx, 2, 2)
    })
    require.NoError(t, err)
    assert.Equal(t, uint64(40), b.ID)

    boom := errors.New("boom")
    mock.ExpectBegin()
    mock.ExpectRollback()
    err = repo.WithTx(ctx, func(ctx context.Context) error { return boom })
    assert.ErrorIs(t, err, boom)
}

func TestBookingRepo_SumUserSeats(t *testing.T) {
    db, mock := newMock(t)
    mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(seats), 0) FROM bookings WHERE user_id = ? AND event_id = ?")).
        WithArgs(uint64(1), uint64(2)).
        WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(2))

    n, err := NewBookingRepo(db).SumUserSeats(context.Background(), 1, 2)
    require.NoError(t, err)
    assert.Equal(t, 2, n)
}

func TestBookingRepo_DeleteAndAdjustMissingRows(t *testing.T) {
    db, mock := newMock(t)
    repo := NewBookingRepo(db)

    mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookings WHERE id = ?")).WithArgs(uint64(5)).
        WillReturnResult(sqlmock.NewResult(0, 0))
    assert.ErrorIs(t, repo.Delete(context.Background(), 5), ErrNotFound)

    mock.ExpectExec(regexp.QuoteMeta("UPDATE events SET booked_seats")).WithArgs(-1, uint64(5)).
        WillReturnResult(sqlmock.NewResult(0, 0))
    assert.ErrorIs(t, repo.AdjustBookedSeats(context.Background(), 5, -1), ErrNotFound)
}

func TestBookingRepo_Lists(t *testing.T) {
    db, mock := newMock(t)
    repo := NewBookingRepo(db)
    date := time.Date(2025, 3, 5, 18, 0, 0, 0, time.UTC)

    mock.ExpectQuery(regexp.QuoteMeta("JOIN events e ON b.event_id = e.id")).WithArgs(uint64(1)).
        WillReturnRows(sqlmock.NewRows([]string{"id", "title", "date", "seats"}).
            AddRow(3, "Go Meetup", date, 2))
    mine, err := repo.ListByUser(context.Background(), 1)
    require.NoError(t, err)
    assert.Equal(t, []model.UserBooking{{ID: 3, Title: "Go Meetup", EventDate: date, Seats: 2}}, mine)

    mock.ExpectQuery(regexp.QuoteMeta("JOIN users u ON b.user_id = u.id")).WithArgs(uint64(2)).
        WillReturnRows(sqlmock.NewRows([]string{"name", "email", "seats"}))
    att, err := repo.ListAttendees(context.Background(), 2)
    require.NoError(t, err)
    assert.NotNil(t, att)
    assert.Empty(t, att)
}
