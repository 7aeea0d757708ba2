package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/eventease/internal/model"
	"github.com/iliyamo/eventease/internal/repository"
)

// maxCodeAttempts bounds regeneration when a code collides.
const maxCodeAttempts = 5

// EventStore is the event catalog persistence used by EventService.
type EventStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	Create(ctx context.Context, e *model.Event) error
	List(ctx context.Context) ([]model.Event, error)
	GetByID(ctx context.Context, id uint64) (model.Event, error)
	GetForUpdate(ctx context.Context, id uint64) (model.Event, error)
	Update(ctx context.Context, id uint64, in model.EventInput) error
	Delete(ctx context.Context, id uint64) (int64, error)
}

// EventService is the admin-facing event catalog.
type EventService struct {
	store EventStore
	codes *CodeGenerator
	log   *zap.Logger
}

func NewEventService(store EventStore, codes *CodeGenerator, log *zap.Logger) *EventService {
	if codes == nil {
		codes = NewCodeGenerator()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &EventService{store: store, codes: codes, log: log}
}

// Create validates the input, assigns a unique event code and stores the event.
func (s *EventService) Create(ctx context.Context, in model.EventInput) (model.Event, error) {
	in, err := normalizeEventInput(in)
	if err != nil {
		return model.Event{}, err
	}
	ev := model.Event{
		Title:    in.Title,
		Date:     in.Date,
		Category: in.Category,
		Location: in.Location,
		Capacity: in.Capacity,
	}
	for attempt := 1; ; attempt++ {
		code, err := s.codes.Generate(in.Date)
		if err != nil {
			return model.Event{}, fmt.Errorf("event.Create: generate code: %w", err)
		}
		ev.EventCode = code
		err = s.store.Create(ctx, &ev)
		if err == nil {
			return ev, nil
		}
		if !errors.Is(err, repository.ErrDuplicateCode) || attempt >= maxCodeAttempts {
			return model.Event{}, fmt.Errorf("event.Create: %w", err)
		}
		s.log.Info("event code collision, regenerating", zap.String("code", code), zap.Int("attempt", attempt))
	}
}

// Update replaces the editable fields of an event.  Capacity may not drop
// below the seats already booked.
func (s *EventService) Update(ctx context.Context, id uint64, in model.EventInput) error {
	in, err := normalizeEventInput(in)
	if err != nil {
		return err
	}
	err = s.store.WithTx(ctx, func(ctx context.Context) error {
		current, err := s.store.GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrEventNotFound
			}
			return err
		}
		if in.Capacity < current.BookedSeats {
			return ErrCapacityBelowBooked
		}
		return s.store.Update(ctx, id, in)
	})
	if err != nil && KindOf(err) == KindInternal {
		return fmt.Errorf("event.Update: %w", err)
	}
	return err
}

// Delete removes the event and cascades to its bookings.
func (s *EventService) Delete(ctx context.Context, id uint64) error {
	removed, err := s.store.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEventNotFound
		}
		if errors.Is(err, repository.ErrConflict) {
			return ErrEventInUse
		}
		return fmt.Errorf("event.Delete: %w", err)
	}
	if removed > 0 {
		s.log.Info("event deleted with bookings", zap.Uint64("event_id", id), zap.Int64("bookings_removed", removed))
	}
	return nil
}

// List returns every event.
func (s *EventService) List(ctx context.Context) ([]model.Event, error) {
	events, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("event.List: %w", err)
	}
	return events, nil
}

// Get returns a single event.
func (s *EventService) Get(ctx context.Context, id uint64) (model.Event, error) {
	ev, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Event{}, ErrEventNotFound
		}
		return model.Event{}, fmt.Errorf("event.Get: %w", err)
	}
	return ev, nil
}

func normalizeEventInput(in model.EventInput) (model.EventInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	in.Location = strings.TrimSpace(in.Location)
	switch {
	case in.Title == "":
		return in, validationError("title is required")
	case in.Date.IsZero():
		return in, validationError("date is required")
	case in.Capacity <= 0:
		return in, validationError("capacity must be a positive integer")
	}
	in.Date = in.Date.UTC()
	return in, nil
}
