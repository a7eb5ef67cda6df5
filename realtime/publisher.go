package realtime

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Publisher pushes persisted notifications to connected clients. Delivery is
// a best-effort accelerator; the notification row stays the durable source
// of truth, so implementations never propagate failures.
type Publisher interface {
	// PublishBroadcast pushes to the shared admin topic.
	PublishBroadcast(ctx context.Context, payload []byte)
	// PublishToUser pushes to one user's private topic.
	PublishToUser(ctx context.Context, userID string, payload []byte)
}

// RedisPublisher implements Publisher on Redis pub/sub.
type RedisPublisher struct {
	client          *redis.Client
	broadcastTopic  string
	userTopicPrefix string
	logger          *zap.Logger
}

// NewRedisPublisher creates a RedisPublisher. Topic names are configuration
// inputs so deployments and tests can rename them.
func NewRedisPublisher(client *redis.Client, broadcastTopic, userTopicPrefix string, logger *zap.Logger) *RedisPublisher {
	return &RedisPublisher{
		client:          client,
		broadcastTopic:  broadcastTopic,
		userTopicPrefix: userTopicPrefix,
		logger:          logger,
	}
}

// NewRedisClient initializes and pings a Redis client from a URL.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func (p *RedisPublisher) PublishBroadcast(ctx context.Context, payload []byte) {
	if err := p.client.Publish(ctx, p.broadcastTopic, payload).Err(); err != nil {
		p.logger.Warn("broadcast push failed",
			zap.String("topic", p.broadcastTopic),
			zap.Error(err),
		)
	}
}

func (p *RedisPublisher) PublishToUser(ctx context.Context, userID string, payload []byte) {
	topic := p.userTopicPrefix + userID
	if err := p.client.Publish(ctx, topic, payload).Err(); err != nil {
		p.logger.Warn("user push failed",
			zap.String("topic", topic),
			zap.Error(err),
		)
	}
}

// NoopPublisher discards every push. Used in tests and redis-less deploys.
type NoopPublisher struct{}

func (NoopPublisher) PublishBroadcast(ctx context.Context, payload []byte)            {}
func (NoopPublisher) PublishToUser(ctx context.Context, userID string, payload []byte) {}
