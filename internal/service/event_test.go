package service

import (
	"bytes"
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/eventease/internal/model"
	"github.com/iliyamo/eventease/internal/repository"
)

var codePattern = regexp.MustCompile(`^EVT-[A-Z]{3}\d{4}-[0-9A-Z]{3}$`)

func validInput() model.EventInput {
	return model.EventInput{
		Title:    "  Go Meetup ",
		Date:     time.Date(2025, 3, 14, 18, 30, 0, 0, time.UTC),
		Category: "Tech",
		Location: "Hall A",
		Capacity: 50,
	}
}

func TestCodeGenerator_Format(t *testing.T) {
	g := NewCodeGenerator()
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 50; i++ {
		code, err := g.Generate(date)
		require.NoError(t, err)
		assert.Regexp(t, codePattern, code)
		assert.Equal(t, "EVT-MAR2025-", code[:12])
	}
}

func TestCodeGenerator_Deterministic(t *testing.T) {
	// 0xFF is rejected (>= 252), then 0, 35 and 36 map to '0', 'Z' and '0'.
	g := &CodeGenerator{rand: bytes.NewReader([]byte{0xFF, 0, 35, 36})}
	code, err := g.Generate(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "EVT-DEC2024-0Z0", code)
}

func TestEventService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns a code and trims fields", func(t *testing.T) {
		db := newFakeDB()
		svc := NewEventService(fakeEventStore{db}, nil, nil)

		ev, err := svc.Create(ctx, validInput())
		require.NoError(t, err)
		assert.NotZero(t, ev.ID)
		assert.Equal(t, "Go Meetup", ev.Title)
		assert.Equal(t, 0, ev.BookedSeats)
		assert.Regexp(t, codePattern, ev.EventCode)
	})

	t.Run("regenerates on code collision", func(t *testing.T) {
		db := newFakeDB()
		db.takenCodes["EVT-MAR2025-000"] = true
		// first draw collides, second is free
		codes := &CodeGenerator{rand: bytes.NewReader([]byte{0, 0, 0, 1, 1, 1})}
		svc := NewEventService(fakeEventStore{db}, codes, nil)

		ev, err := svc.Create(ctx, validInput())
		require.NoError(t, err)
		assert.Equal(t, "EVT-MAR2025-111", ev.EventCode)
	})

	t.Run("validation", func(t *testing.T) {
		svc := NewEventService(fakeEventStore{newFakeDB()}, nil, nil)
		cases := map[string]func(*model.EventInput){
			"missing title":  func(in *model.EventInput) { in.Title = "   " },
			"missing date":   func(in *model.EventInput) { in.Date = time.Time{} },
			"zero capacity":  func(in *model.EventInput) { in.Capacity = 0 },
			"negative seats": func(in *model.EventInput) { in.Capacity = -3 },
		}
		for name, mutate := range cases {
			t.Run(name, func(t *testing.T) {
				in := validInput()
				mutate(&in)
				_, err := svc.Create(ctx, in)
				assert.ErrorIs(t, err, ErrValidation)
			})
		}
	})
}

func TestEventService_Update(t *testing.T) {
	ctx := context.Background()
	db := newFakeDB()
	svc := NewEventService(fakeEventStore{db}, nil, nil)
	id := db.addEvent(10, 6)

	in := validInput()
	in.Capacity = 5
	assert.ErrorIs(t, svc.Update(ctx, id, in), ErrCapacityBelowBooked)
	assert.Equal(t, 10, db.event(id).Capacity)

	in.Capacity = 6
	require.NoError(t, svc.Update(ctx, id, in))
	got := db.event(id)
	assert.Equal(t, 6, got.Capacity)
	assert.Equal(t, 6, got.BookedSeats)
	assert.Equal(t, "Go Meetup", got.Title)

	assert.ErrorIs(t, svc.Update(ctx, 9999, in), ErrEventNotFound)
}

func TestEventService_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	db := newFakeDB()
	events := NewEventService(fakeEventStore{db}, nil, nil)
	bookings := NewBookingService(fakeBookingStore{db}, nil, nil)

	user := db.addUser("Ann", "ann@example.com")
	id := db.addEvent(10, 0)
	other := db.addEvent(10, 0)
	_, err := bookings.Book(ctx, user, id, 2)
	require.NoError(t, err)
	_, err = bookings.Book(ctx, user, other, 1)
	require.NoError(t, err)

	require.NoError(t, events.Delete(ctx, id))
	assert.Equal(t, 1, db.bookingCount())

	_, err = events.Get(ctx, id)
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.ErrorIs(t, events.Delete(ctx, id), ErrEventNotFound)
}

func TestEventService_ListOrdersByDate(t *testing.T) {
	ctx := context.Background()
	svc := NewEventService(fakeEventStore{newFakeDB()}, nil, nil)

	later := validInput()
	later.Title = "Later"
	later.Date = later.Date.AddDate(0, 1, 0)
	_, err := svc.Create(ctx, later)
	require.NoError(t, err)
	_, err = svc.Create(ctx, validInput())
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Go Meetup", list[0].Title)
	assert.Equal(t, "Later", list[1].Title)
}

type referencedEventStore struct{ fakeEventStore }

func (referencedEventStore) Delete(context.Context, uint64) (int64, error) {
	return 0, repository.ErrConflict
}

func TestEventService_DeleteStillReferenced(t *testing.T) {
	svc := NewEventService(referencedEventStore{fakeEventStore{newFakeDB()}}, nil, nil)
	err := svc.Delete(context.Background(), 1)
	assert.ErrorIs(t, err, ErrEventInUse)
	assert.Equal(t, KindConflict, KindOf(err))
}
