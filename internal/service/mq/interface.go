package mq

import "context"

// Message is one business message in transit.
type Message struct {
	ID       string            // transport message id (e.g. Redis Stream ID)
	Topic    string            // e.g. "review_events_submission"
	Key      string            // partition key, keeps per-review ordering on Kafka
	Payload  []byte            // JSON body
	Metadata map[string]string
}

// Producer publishes messages. An empty key means the transport picks
// the partition.
type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte) error
}

// Consumer subscribes to a topic. A handler error signals the transport
// that delivery was not handled.
type Consumer interface {
	Subscribe(ctx context.Context, topic string, handler func(msg *Message) error) error
	Close() error
}
