package queue

import (
    "context"
    "encoding/json"
    "errors"
    "sync"
    "time"

    "github.com/google/uuid"
    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

var (
    // ErrPublisherClosed is returned by Publish after Close.
    ErrPublisherClosed = errors.New("publisher closed")
    // ErrBrokerBackoff is returned while a failed dial is cooling down.
    ErrBrokerBackoff = errors.New("broker unavailable, retrying later")
)

// redialDelay keeps request paths from paying a dial per publish while the
// broker is down.
const redialDelay = 5 * time.Second

// NopPublisher drops every record.  It stands in when the broker is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, BookingEvent) error { return nil }

// Publisher publishes BookingEvents to a durable queue over one long-lived
// connection.  A broken connection is re-dialled on the next Publish.
type Publisher struct {
    url   string
    queue string
    log   *zap.Logger

    mu      sync.Mutex
    conn    *amqp.Connection
    ch      *amqp.Channel
    closed  bool
    retryAt time.Time
}

// NewPublisher returns a publisher for queue on the broker at url.  It does
// not connect until the first Publish.
func NewPublisher(url, queue string, log *zap.Logger) *Publisher {
    if log == nil {
        log = zap.NewNop()
    }
    return &Publisher{url: url, queue: queue, log: log}
}

// Publish sends ev as a persistent JSON message.  Errors are returned so the
// caller can log them; the booking flow never fails because of them.
func (p *Publisher) Publish(ctx context.Context, ev BookingEvent) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return err
    }

    p.mu.Lock()
    defer p.mu.Unlock()
    if p.closed {
        return ErrPublisherClosed
    }
    if err := p.ensureChannel(); err != nil {
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        MessageId:    uuid.NewString(),
        Timestamp:    time.Now().UTC(),
        Type:         string(ev.Kind),
        Body:         body,
    }
    if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
        _ = p.reset()
        return err
    }
    return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.closed = true
    return p.reset()
}

// ensureChannel dials and declares the queue if there is no open channel.
// p.mu must be held.
func (p *Publisher) ensureChannel() error {
    if p.ch != nil && !p.ch.IsClosed() {
        return nil
    }
    _ = p.reset()
    if time.Now().Before(p.retryAt) {
        return ErrBrokerBackoff
    }

    conn, err := amqp.DialConfig(p.url, amqp.Config{
        Heartbeat: 10 * time.Second,
        Locale:    "en_US",
        Dial:      amqp.DefaultDial(3 * time.Second),
    })
    if err != nil {
        p.retryAt = time.Now().Add(redialDelay)
        p.log.Warn("rabbitmq dial failed", zap.Error(err), zap.Duration("retry_in", redialDelay))
        return err
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return err
    }
    if _, err := declareQueue(ch, p.queue); err != nil {
        _ = ch.Close()
        _ = conn.Close()
        return err
    }
    p.conn, p.ch = conn, ch
    return nil
}

func (p *Publisher) reset() error {
    var err error
    if p.ch != nil {
        err = p.ch.Close()
        p.ch = nil
    }
    if p.conn != nil {
        if cerr := p.conn.Close(); err == nil {
            err = cerr
        }
        p.conn = nil
    }
    if errors.Is(err, amqp.ErrClosed) {
        err = nil
    }
    return err
}

// declareQueue declares the audit queue as durable so messages survive
// broker restarts.
func declareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
    return ch.QueueDeclare(
        name,  // name
        true,  // durable
        false, // autoDelete
        false, // exclusive
        false, // noWait
        nil,   // args
    )
}
