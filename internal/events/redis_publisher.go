package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// ChannelPublisher is the pub/sub transport used to fan events out of process.
type ChannelPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// RedisForwarder republishes events as JSON on a Redis channel. Each publish
// is bounded by timeout.
type RedisForwarder struct {
	publisher ChannelPublisher
	channel   string
	timeout   time.Duration
}

// NewRedisForwarder builds a forwarder for the given channel. A zero timeout
// leaves the caller's deadline in place.
func NewRedisForwarder(publisher ChannelPublisher, channel string, timeout time.Duration) *RedisForwarder {
	return &RedisForwarder{publisher: publisher, channel: channel, timeout: timeout}
}

// Handle implements EventHandler.
func (f *RedisForwarder) Handle(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	if err := f.publisher.Publish(ctx, f.channel, payload); err != nil {
		return fmt.Errorf("publish event %s: %w", event.Type, err)
	}
	return nil
}
