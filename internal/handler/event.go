package handler

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/eventease/internal/model"
)

// EventCatalog is what EventHandler needs from the event service.
type EventCatalog interface {
    List(ctx context.Context) ([]model.Event, error)
    Get(ctx context.Context, id uint64) (model.Event, error)
    Create(ctx context.Context, in model.EventInput) (model.Event, error)
    Update(ctx context.Context, id uint64, in model.EventInput) error
    Delete(ctx context.Context, id uint64) error
}

// EventHandler serves the public listing and the admin event endpoints.
type EventHandler struct {
    Events EventCatalog
    Log    *zap.Logger
}

func NewEventHandler(events EventCatalog, log *zap.Logger) *EventHandler {
    if log == nil {
        log = zap.NewNop()
    }
    return &EventHandler{Events: events, Log: log}
}

type eventReq struct {
    Title    string  `json:"title" validate:"required,max=255"`
    Date     string  `json:"date" validate:"required"`
    Category string  `json:"category" validate:"max=100"`
    Location string  `json:"location" validate:"max=255"`
    Capacity flexInt `json:"capacity" validate:"gt=0"`
}

type eventResp struct {
    ID          uint64 `json:"id"`
    Title       string `json:"title"`
    Date        string `json:"date"`
    Category    string `json:"category"`
    Location    string `json:"location"`
    Capacity    int    `json:"capacity"`
    BookedSeats int    `json:"booked_seats"`
    Available   int    `json:"available_seats"`
    EventCode   string `json:"event_code"`
}

func toEventResp(e model.Event) eventResp {
    return eventResp{
        ID:          e.ID,
        Title:       e.Title,
        Date:        e.Date.UTC().Format(model.DisplayDateLayout),
        Category:    e.Category,
        Location:    e.Location,
        Capacity:    e.Capacity,
        BookedSeats: e.BookedSeats,
        Available:   e.Available(),
        EventCode:   e.EventCode,
    }
}

// inputDateLayouts are tried in order; datetime-local is what the admin
// form posts.
var inputDateLayouts = []string{
    time.RFC3339,
    "2006-01-02T15:04",
    "2006-01-02 15:04:05",
    "2006-01-02",
}

var errBadDate = errors.New("date must be RFC3339, YYYY-MM-DDTHH:MM, YYYY-MM-DD HH:MM:SS or YYYY-MM-DD")

func parseEventDate(s string) (time.Time, error) {
    s = strings.TrimSpace(s)
    for _, layout := range inputDateLayouts {
        if t, err := time.Parse(layout, s); err == nil {
            return t.UTC(), nil
        }
    }
    return time.Time{}, errBadDate
}

// bindEventInput decodes and validates the shared create/update body.  It
// writes the 400 itself and returns ok=false on bad input.
func (h *EventHandler) bindEventInput(c echo.Context) (model.EventInput, bool, error) {
    var req eventReq
    if err := c.Bind(&req); err != nil {
        return model.EventInput{}, false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if err := c.Validate(&req); err != nil {
        return model.EventInput{}, false, c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    date, err := parseEventDate(req.Date)
    if err != nil {
        return model.EventInput{}, false, c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    return model.EventInput{
        Title:    req.Title,
        Date:     date,
        Category: req.Category,
        Location: req.Location,
        Capacity: int(req.Capacity),
    }, true, nil
}

// List returns every event with its date as DD-MMM-YYYY.
func (h *EventHandler) List(c echo.Context) error {
    ctx, cancel := requestContext(c)
    defer cancel()

    events, err := h.Events.List(ctx)
    if err != nil {
        return respondError(c, h.Log, "ListEvents", err, "Failed to fetch events")
    }
    out := make([]eventResp, 0, len(events))
    for _, e := range events {
        out = append(out, toEventResp(e))
    }
    return c.JSON(http.StatusOK, out)
}

// Get returns a single event.
func (h *EventHandler) Get(c echo.Context) error {
    id, ok := parseIDParam(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    ctx, cancel := requestContext(c)
    defer cancel()

    ev, err := h.Events.Get(ctx, id)
    if err != nil {
        return respondError(c, h.Log, "GetEvent", err, "Failed to fetch event")
    }
    return c.JSON(http.StatusOK, toEventResp(ev))
}

// Create adds an event and returns its generated code.
func (h *EventHandler) Create(c echo.Context) error {
    in, ok, err := h.bindEventInput(c)
    if !ok {
        return err
    }
    ctx, cancel := requestContext(c)
    defer cancel()

    ev, err := h.Events.Create(ctx, in)
    if err != nil {
        return respondError(c, h.Log, "CreateEvent", err, "Failed to create event")
    }
    h.Log.Info("event created", zap.Uint64("event_id", ev.ID), zap.String("event_code", ev.EventCode))
    return c.JSON(http.StatusCreated, echo.Map{"message": "Event created successfully", "event_code": ev.EventCode})
}

// Update replaces the editable fields of an event.
func (h *EventHandler) Update(c echo.Context) error {
    id, ok := parseIDParam(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    in, ok, err := h.bindEventInput(c)
    if !ok {
        return err
    }
    ctx, cancel := requestContext(c)
    defer cancel()

    if err := h.Events.Update(ctx, id, in); err != nil {
        return respondError(c, h.Log, "UpdateEvent", err, "Failed to update event")
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "Event updated successfully"})
}

// Delete removes an event together with its bookings.
func (h *EventHandler) Delete(c echo.Context) error {
    id, ok := parseIDParam(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    ctx, cancel := requestContext(c)
    defer cancel()

    if err := h.Events.Delete(ctx, id); err != nil {
        return respondError(c, h.Log, "DeleteEvent", err, "Failed to delete event")
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "Event deleted"})
}
