package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/iliyamo/eventease/internal/model"
	"github.com/iliyamo/eventease/internal/queue"
	"github.com/iliyamo/eventease/internal/repository"
)

type txKey struct{}

// fakeDB is an in-memory stand-in for the three tables.  WithTx holds mu
// for the whole callback, which serializes transactions the way the event
// row lock does, and restores a snapshot when the callback fails.
type fakeDB struct {
	mu       sync.Mutex
	users    map[uint64]model.User
	events   map[uint64]model.Event
	bookings map[uint64]model.Booking
	nextID   uint64

	// codes that Create must reject as duplicates, consumed in order
	takenCodes map[string]bool
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users:      map[uint64]model.User{},
		events:     map[uint64]model.Event{},
		bookings:   map[uint64]model.Booking{},
		nextID:     100,
		takenCodes: map[string]bool{},
	}
}

func (f *fakeDB) id() uint64 { f.nextID++; return f.nextID }

func (f *fakeDB) addUser(name, email string) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.id()
	f.users[id] = model.User{ID: id, Name: name, Email: email, Role: model.RoleUser}
	return id
}

func (f *fakeDB) addEvent(capacity, booked int) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.id()
	f.events[id] = model.Event{ID: id, Title: "Event", Capacity: capacity, BookedSeats: booked}
	return id
}

func (f *fakeDB) event(id uint64) model.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events[id]
}

func (f *fakeDB) bookingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bookings)
}

// lock takes mu unless ctx already belongs to a transaction.
func (f *fakeDB) lock(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		return func() {}
	}
	f.mu.Lock()
	return f.mu.Unlock
}

func (f *fakeDB) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	events := make(map[uint64]model.Event, len(f.events))
	for k, v := range f.events {
		events[k] = v
	}
	bookings := make(map[uint64]model.Booking, len(f.bookings))
	for k, v := range f.bookings {
		bookings[k] = v
	}
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		f.events, f.bookings = events, bookings
		return err
	}
	return nil
}

// ---- BookingStore ----

type fakeBookingStore struct{ *fakeDB }

func (s fakeBookingStore) LockEvent(ctx context.Context, id uint64) (model.Event, error) {
	defer s.lock(ctx)()
	ev, ok := s.events[id]
	if !ok {
		return model.Event{}, repository.ErrNotFound
	}
	return ev, nil
}

func (s fakeBookingStore) AdjustBookedSeats(ctx context.Context, id uint64, delta int) error {
	defer s.lock(ctx)()
	ev, ok := s.events[id]
	if !ok {
		return repository.ErrNotFound
	}
	ev.BookedSeats += delta
	s.events[id] = ev
	return nil
}

func (s fakeBookingStore) SumUserSeats(ctx context.Context, userID, eventID uint64) (int, error) {
	defer s.lock(ctx)()
	total := 0
	for _, b := range s.bookings {
		if b.UserID == userID && b.EventID == eventID {
			total += b.Seats
		}
	}
	return total, nil
}

func (s fakeBookingStore) Insert(ctx context.Context, b *model.Booking) error {
	defer s.lock(ctx)()
	b.ID = s.id()
	s.bookings[b.ID] = *b
	return nil
}

func (s fakeBookingStore) Find(ctx context.Context, id uint64) (model.Booking, error) {
	defer s.lock(ctx)()
	b, ok := s.bookings[id]
	if !ok {
		return model.Booking{}, repository.ErrNotFound
	}
	return b, nil
}

func (s fakeBookingStore) Lock(ctx context.Context, id uint64) (model.Booking, error) {
	return s.Find(ctx, id)
}

func (s fakeBookingStore) Delete(ctx context.Context, id uint64) error {
	defer s.lock(ctx)()
	if _, ok := s.bookings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.bookings, id)
	return nil
}

func (s fakeBookingStore) sortedBookings() []model.Booking {
	out := make([]model.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s fakeBookingStore) ListByUser(ctx context.Context, userID uint64) ([]model.UserBooking, error) {
	defer s.lock(ctx)()
	out := []model.UserBooking{}
	for _, b := range s.sortedBookings() {
		if b.UserID != userID {
			continue
		}
		ev := s.events[b.EventID]
		out = append(out, model.UserBooking{ID: b.ID, Title: ev.Title, EventDate: ev.Date, Seats: b.Seats})
	}
	return out, nil
}

func (s fakeBookingStore) ListAttendees(ctx context.Context, eventID uint64) ([]model.Attendee, error) {
	defer s.lock(ctx)()
	out := []model.Attendee{}
	for _, b := range s.sortedBookings() {
		if b.EventID != eventID {
			continue
		}
		u := s.users[b.UserID]
		out = append(out, model.Attendee{Name: u.Name, Email: u.Email, Seats: b.Seats})
	}
	return out, nil
}

// ---- EventStore ----

type fakeEventStore struct{ *fakeDB }

func (s fakeEventStore) Create(ctx context.Context, e *model.Event) error {
	defer s.lock(ctx)()
	if s.takenCodes[e.EventCode] {
		return repository.ErrDuplicateCode
	}
	for _, ex := range s.events {
		if ex.EventCode == e.EventCode {
			return repository.ErrDuplicateCode
		}
	}
	e.ID = s.id()
	s.events[e.ID] = *e
	return nil
}

func (s fakeEventStore) List(ctx context.Context) ([]model.Event, error) {
	defer s.lock(ctx)()
	out := make([]model.Event, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s fakeEventStore) GetByID(ctx context.Context, id uint64) (model.Event, error) {
	defer s.lock(ctx)()
	e, ok := s.events[id]
	if !ok {
		return model.Event{}, repository.ErrNotFound
	}
	return e, nil
}

func (s fakeEventStore) GetForUpdate(ctx context.Context, id uint64) (model.Event, error) {
	return s.GetByID(ctx, id)
}

func (s fakeEventStore) Update(ctx context.Context, id uint64, in model.EventInput) error {
	defer s.lock(ctx)()
	e, ok := s.events[id]
	if !ok {
		return repository.ErrNotFound
	}
	e.Title, e.Date, e.Category, e.Location, e.Capacity = in.Title, in.Date, in.Category, in.Location, in.Capacity
	s.events[id] = e
	return nil
}

func (s fakeEventStore) Delete(ctx context.Context, id uint64) (int64, error) {
	defer s.lock(ctx)()
	if _, ok := s.events[id]; !ok {
		return 0, repository.ErrNotFound
	}
	var removed int64
	for bid, b := range s.bookings {
		if b.EventID == id {
			delete(s.bookings, bid)
			removed++
		}
	}
	delete(s.events, id)
	return removed, nil
}

// ---- UserStore ----

type fakeUserStore struct{ *fakeDB }

func (s fakeUserStore) Create(ctx context.Context, name, email, hash, role string) (uint64, error) {
	defer s.lock(ctx)()
	for _, u := range s.users {
		if u.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	id := s.id()
	s.users[id] = model.User{ID: id, Name: name, Email: email, PasswordHash: hash, Role: role}
	return id, nil
}

func (s fakeUserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	defer s.lock(ctx)()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

// ---- AuditPublisher ----

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BookingEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) kinds() []queue.Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]queue.Kind, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Kind)
	}
	return out
}
