package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/rs/zerolog"
)

// Publisher sends booking events to the booking.events queue. Each publish
// dials a short lived connection, so a broker outage never poisons a pooled
// channel; callers treat publish errors as non fatal.
type Publisher struct {
    url    string
    logger zerolog.Logger
}

func NewPublisher(url string, logger zerolog.Logger) *Publisher {
    return &Publisher{url: url, logger: logger.With().Str("component", "booking-publisher").Logger()}
}

// Publish marshals ev and sends it as a persistent message.
func (p *Publisher) Publish(ctx context.Context, ev BookingEvent) error {
    conn, err := amqp.Dial(p.url)
    if err != nil {
        p.logger.Warn().Err(err).Msg("dial failed")
        return fmt.Errorf("dial broker: %w", err)
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.logger.Warn().Err(err).Msg("channel open failed")
        return fmt.Errorf("open channel: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if _, err := ch.QueueDeclare(BookingEventsQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }

    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Type:         ev.Type,
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", BookingEventsQueue, false, false, pub); err != nil {
        p.logger.Warn().Err(err).Uint64("booking_id", ev.BookingID).Msg("publish failed")
        return fmt.Errorf("publish: %w", err)
    }
    return nil
}
