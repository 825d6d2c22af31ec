package herald

import "context"

// QueueService consumes publish events from a message broker. Each delivery
// carries the raw message body; decoding is up to the consumer.
type QueueService interface {
	Consume(ctx context.Context, topic string) (<-chan []byte, error)
	Close() error
}

// PublishedEvent is the body of a "post published" queue message.
type PublishedEvent struct {
	Slug string `json:"slug"`
}
