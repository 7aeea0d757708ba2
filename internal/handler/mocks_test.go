package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/eventease/internal/model"
	"github.com/iliyamo/eventease/internal/service"
)

type mockAuth struct{ mock.Mock }

func (m *mockAuth) Register(ctx context.Context, name, email, password string) error {
	return m.Called(ctx, name, email, password).Error(0)
}

func (m *mockAuth) Login(ctx context.Context, email, password string) (service.Session, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(service.Session), args.Error(1)
}

type mockEvents struct{ mock.Mock }

func (m *mockEvents) List(ctx context.Context) ([]model.Event, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Event), args.Error(1)
}

func (m *mockEvents) Get(ctx context.Context, id uint64) (model.Event, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Event), args.Error(1)
}

func (m *mockEvents) Create(ctx context.Context, in model.EventInput) (model.Event, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(model.Event), args.Error(1)
}

func (m *mockEvents) Update(ctx context.Context, id uint64, in model.EventInput) error {
	return m.Called(ctx, id, in).Error(0)
}

func (m *mockEvents) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

type mockBookings struct{ mock.Mock }

func (m *mockBookings) Book(ctx context.Context, userID, eventID uint64, seats int) (model.Booking, error) {
	args := m.Called(ctx, userID, eventID, seats)
	return args.Get(0).(model.Booking), args.Error(1)
}

func (m *mockBookings) Cancel(ctx context.Context, bookingID uint64) error {
	return m.Called(ctx, bookingID).Error(0)
}

func (m *mockBookings) ListForUser(ctx context.Context, userID uint64) ([]model.UserBooking, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.UserBooking), args.Error(1)
}

func (m *mockBookings) ListAttendees(ctx context.Context, eventID uint64) ([]model.Attendee, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).([]model.Attendee), args.Error(1)
}

func (m *mockBookings) RecordAttempt(ctx context.Context, userID, eventID uint64, seats int) {
	m.Called(ctx, userID, eventID, seats)
}
