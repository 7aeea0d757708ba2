package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/eventease/internal/model"
	"github.com/iliyamo/eventease/internal/queue"
	"github.com/iliyamo/eventease/internal/repository"
)

// BookingStore is the booking ledger as the service sees it.  Every method
// except WithTx, ListByUser and ListAttendees is expected to run on the
// transaction WithTx places in ctx.
type BookingStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	LockEvent(ctx context.Context, eventID uint64) (model.Event, error)
	AdjustBookedSeats(ctx context.Context, eventID uint64, delta int) error
	SumUserSeats(ctx context.Context, userID, eventID uint64) (int, error)
	Insert(ctx context.Context, b *model.Booking) error
	Find(ctx context.Context, id uint64) (model.Booking, error)
	Lock(ctx context.Context, id uint64) (model.Booking, error)
	Delete(ctx context.Context, id uint64) error
	ListByUser(ctx context.Context, userID uint64) ([]model.UserBooking, error)
	ListAttendees(ctx context.Context, eventID uint64) ([]model.Attendee, error)
}

// AuditPublisher receives booking audit records.
type AuditPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

// BookingService enforces the seat invariants: an event is never oversold
// and no user holds more than MaxSeatsPerUser seats on one event.  Each
// book or cancel is a single transaction that starts by locking the event
// row, so concurrent calls on the same event are serialized by the database.
type BookingService struct {
	store BookingStore
	audit AuditPublisher
	log   *zap.Logger
	now   func() time.Time
}

// NewBookingService wires the service.  A nil publisher disables auditing.
func NewBookingService(store BookingStore, audit AuditPublisher, log *zap.Logger) *BookingService {
	if audit == nil {
		audit = queue.NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BookingService{store: store, audit: audit, log: log, now: time.Now}
}

// Book reserves seats for the user on the event and returns the new booking.
func (s *BookingService) Book(ctx context.Context, userID, eventID uint64, seats int) (model.Booking, error) {
	const op = "booking.Book"
	if seats < model.MinSeatsPerBooking || seats > model.MaxSeatsPerUser {
		return model.Booking{}, ErrInvalidSeats
	}
	if userID == 0 {
		return model.Booking{}, validationError("user_id is required")
	}

	booking := model.Booking{UserID: userID, EventID: eventID, Seats: seats}
	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		ev, err := s.store.LockEvent(ctx, eventID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrEventNotFound
			}
			return err
		}
		if ev.BookedSeats+seats > ev.Capacity {
			return ErrCapacityExceeded
		}

		held, err := s.store.SumUserSeats(ctx, userID, eventID)
		if err != nil {
			return err
		}
		if held+seats > model.MaxSeatsPerUser {
			return &PerUserLimitError{AlreadyBooked: held, Limit: model.MaxSeatsPerUser}
		}

		if err := s.store.Insert(ctx, &booking); err != nil {
			if errors.Is(err, repository.ErrMissingReference) {
				return ErrUserNotFound
			}
			return err
		}
		return s.store.AdjustBookedSeats(ctx, eventID, seats)
	})
	if err != nil {
		if KindOf(err) == KindInternal {
			s.log.Error("booking failed", zap.String("op", op),
				zap.Uint64("user_id", userID), zap.Uint64("event_id", eventID), zap.Error(err))
			return model.Booking{}, fmt.Errorf("%s: %w", op, err)
		}
		return model.Booking{}, err
	}

	s.publish(ctx, queue.BookingEvent{
		Kind:      queue.KindBooked,
		UserID:    userID,
		EventID:   eventID,
		BookingID: booking.ID,
		Seats:     seats,
	})
	return booking, nil
}

// Cancel deletes the booking and releases its seats.
func (s *BookingService) Cancel(ctx context.Context, bookingID uint64) error {
	const op = "booking.Cancel"

	// The event id is needed up front so the event row can be locked before
	// the booking row, the same order Book uses.
	b, err := s.store.Find(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrBookingNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	var released model.Booking
	err = s.store.WithTx(ctx, func(ctx context.Context) error {
		ev, err := s.store.LockEvent(ctx, b.EventID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookingNotFound
			}
			return err
		}
		locked, err := s.store.Lock(ctx, bookingID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookingNotFound
			}
			return err
		}
		if ev.BookedSeats < locked.Seats {
			return ErrInconsistentState
		}
		if err := s.store.Delete(ctx, bookingID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookingNotFound
			}
			return err
		}
		if err := s.store.AdjustBookedSeats(ctx, locked.EventID, -locked.Seats); err != nil {
			return err
		}
		released = locked
		return nil
	})
	if err != nil {
		if KindOf(err) == KindInternal {
			s.log.Error("cancel failed", zap.String("op", op),
				zap.Uint64("booking_id", bookingID), zap.Error(err))
			return fmt.Errorf("%s: %w", op, err)
		}
		return err
	}

	s.publish(ctx, queue.BookingEvent{
		Kind:      queue.KindCancelled,
		UserID:    released.UserID,
		EventID:   released.EventID,
		BookingID: released.ID,
		Seats:     released.Seats,
	})
	return nil
}

// ListForUser returns the user's bookings with event title and date.
func (s *BookingService) ListForUser(ctx context.Context, userID uint64) ([]model.UserBooking, error) {
	out, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("booking.ListForUser: %w", err)
	}
	return out, nil
}

// ListAttendees returns name, email and seats of every booking on the event.
func (s *BookingService) ListAttendees(ctx context.Context, eventID uint64) ([]model.Attendee, error) {
	out, err := s.store.ListAttendees(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("booking.ListAttendees: %w", err)
	}
	return out, nil
}

// RecordAttempt publishes a booking attempt before validation runs.
func (s *BookingService) RecordAttempt(ctx context.Context, userID, eventID uint64, seats int) {
	s.publish(ctx, queue.BookingEvent{Kind: queue.KindAttempt, UserID: userID, EventID: eventID, Seats: seats})
}

func (s *BookingService) publish(ctx context.Context, ev queue.BookingEvent) {
	ev.At = s.now().UTC()
	if err := s.audit.Publish(ctx, ev); err != nil {
		s.log.Warn("audit publish failed", zap.String("kind", string(ev.Kind)), zap.Error(err))
	}
}
