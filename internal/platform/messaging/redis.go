package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"agora/internal/shared/events"
)

// RedisPublisher relays outbox events onto a Redis stream per topic. The
// notification dispatcher and other downstream consumers read the streams
// with consumer groups, so publish order per stream is preserved.
type RedisPublisher struct {
	client       *redis.Client
	streamPrefix string
	logger       *slog.Logger
}

func NewRedisPublisher(url string, logger *slog.Logger) (*RedisPublisher, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &RedisPublisher{
		client:       redis.NewClient(opt),
		streamPrefix: "agora.events.",
		logger:       logger,
	}, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, topic string, envelope events.Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", envelope.EventID, err)
	}

	stream := p.streamPrefix + topic
	if _, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"event_id":   envelope.EventID,
			"event_type": envelope.EventType,
			"entity_id":  envelope.EntityID,
			"payload":    string(payload),
		},
	}).Result(); err != nil {
		if p.logger != nil {
			p.logger.Error("redis stream publish failed",
				"event", "redis_publish_failed",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"stream", stream,
				"event_id", envelope.EventID,
				"error", err.Error(),
			)
		}
		return fmt.Errorf("xadd %s: %w", stream, err)
	}

	if p.logger != nil {
		p.logger.Info("event published",
			"event", "redis_publish",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"stream", stream,
			"event_id", envelope.EventID,
			"event_type", envelope.EventType,
		)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
