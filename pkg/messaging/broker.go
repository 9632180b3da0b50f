package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	// Subscribe delivers raw payloads until ctx is cancelled, then closes
	// the channel.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}
