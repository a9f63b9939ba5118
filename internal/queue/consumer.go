package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/rs/zerolog"
)

// Consumer drains booking.events and appends one line per event to an audit
// log file.
type Consumer struct {
    url     string
    logPath string
    logger  zerolog.Logger
}

func NewConsumer(url, logPath string, logger zerolog.Logger) *Consumer {
    if logPath == "" {
        logPath = filepath.Join("logs", "booking.log")
    }
    return &Consumer{url: url, logPath: logPath, logger: logger.With().Str("component", "booking-consumer").Logger()}
}

// Run connects to the broker and consumes until ctx is cancelled,
// reconnecting with exponential backoff capped at 30s.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(c.url)
        if err != nil {
            c.logger.Warn().Err(err).Dur("retry_in", backoff).Msg("failed to dial broker")
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = c.consume(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.logger.Warn().Err(err).Msg("consume loop ended; reconnecting")
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.logger.Warn().Err(err).Msg("set QoS failed")
    }
    if _, err := ch.QueueDeclare(BookingEventsQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(BookingEventsQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := c.Handle(d.Body); err != nil {
                c.logger.Error().Err(err).Msg("handle message failed")
                _ = d.Nack(false, false) // no requeue, avoids tight redelivery loops
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// Handle decodes one message body and appends it to the audit log.
func (c *Consumer) Handle(body []byte) error {
    var ev BookingEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if err := os.MkdirAll(filepath.Dir(c.logPath), 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(c.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(FormatLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatLine renders ev as a single human readable audit line.
func FormatLine(ev BookingEvent) string {
    return fmt.Sprintf("[%s] %s | booking_id=%d | item_id=%d | item=%q | booker_id=%d | owner_id=%d | status=%s | window=%s..%s\n",
        ev.OccurredAt, ev.Type, ev.BookingID, ev.ItemID, ev.ItemName, ev.BookerID, ev.OwnerID, ev.Status, ev.Start, ev.End)
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
