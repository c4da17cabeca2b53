package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/speakwise/speech-api/internal/models"
)

// Publisher emits video lifecycle events. Publishing is best effort: the
// pipeline never depends on a broker being reachable.
type Publisher interface {
	PublishStatusChange(ctx context.Context, videoUUID string, from, to models.VideoStatus) error
	Close() error
}

// StatusChangeEvent is the wire format for lifecycle events
type StatusChangeEvent struct {
	VideoUUID  string    `json:"video_uuid"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AMQPPublisher publishes status change events to a topic exchange
type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewPublisher connects to the broker and declares the exchange. An empty
// URL returns a no-op publisher so events stay optional.
func NewPublisher(url, exchange string) (Publisher, error) {
	if url == "" {
		return NewNopPublisher(), nil
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connecting to AMQP broker: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening AMQP channel: %w", err)
	}

	if err := channel.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declaring exchange %s: %w", exchange, err)
	}

	return &AMQPPublisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
	}, nil
}

// PublishStatusChange publishes one lifecycle transition event
func (p *AMQPPublisher) PublishStatusChange(ctx context.Context, videoUUID string, from, to models.VideoStatus) error {
	event := StatusChangeEvent{
		VideoUUID:  videoUUID,
		FromStatus: string(from),
		ToStatus:   string(to),
		OccurredAt: time.Now().UTC(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	routingKey := fmt.Sprintf("video.status.%s", to)
	err = p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   event.OccurredAt,
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("publishing event: %w", err)
	}

	return nil
}

// Close closes the channel and connection
func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			log.Printf("[ERROR] Closing AMQP channel: %v", err)
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// NopPublisher discards all events
type NopPublisher struct{}

// NewNopPublisher creates a publisher that discards all events
func NewNopPublisher() *NopPublisher {
	return &NopPublisher{}
}

// PublishStatusChange discards the event
func (p *NopPublisher) PublishStatusChange(ctx context.Context, videoUUID string, from, to models.VideoStatus) error {
	return nil
}

// Close is a no-op
func (p *NopPublisher) Close() error {
	return nil
}
