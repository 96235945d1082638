package feed

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/example/dealerops/internal/ports/secondary"
)

// DefaultChannel is the Redis channel carrying collection names.
const DefaultChannel = "dealerops:changes"

// ErrClosed is returned when listening on a closed feed.
var ErrClosed = errors.New("change feed closed")

// RedisFeed fans announcements out through Redis pub/sub so that every
// process sharing the database sees every write. Announcements from this
// process come back through Redis like any other.
type RedisFeed struct {
	client  *redis.Client
	pubsub  *redis.PubSub
	channel string
	local   *LocalFeed
	logger  *logrus.Logger
	done    chan struct{}
}

// NewRedisFeed connects to redisURL (redis://[:password@]host:port/db) and
// subscribes to DefaultChannel.
func NewRedisFeed(ctx context.Context, redisURL string, logger *logrus.Logger) (*RedisFeed, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}

	pubsub := client.Subscribe(ctx, DefaultChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		client.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", DefaultChannel, err)
	}

	f := &RedisFeed{
		client:  client,
		pubsub:  pubsub,
		channel: DefaultChannel,
		local:   NewLocalFeed(),
		logger:  logger,
		done:    make(chan struct{}),
	}
	go f.run(pubsub.Channel())
	logger.WithField("channel", DefaultChannel).Info("redis change feed connected")
	return f, nil
}

func (f *RedisFeed) run(messages <-chan *redis.Message) {
	defer close(f.done)
	for msg := range messages {
		_ = f.local.Publish(context.Background(), msg.Payload)
	}
}

// Publish sends the collection name to every subscribed process.
func (f *RedisFeed) Publish(ctx context.Context, collection string) error {
	if err := f.client.Publish(ctx, f.channel, collection).Err(); err != nil {
		return fmt.Errorf("failed to publish change for %s: %w", collection, err)
	}
	return nil
}

// Listen registers fn for announcements received from Redis.
func (f *RedisFeed) Listen(fn func(string)) (secondary.Unsubscribe, error) {
	return f.local.Listen(fn)
}

// Close unsubscribes, waits for the receive loop and closes the client.
func (f *RedisFeed) Close() error {
	err := f.pubsub.Close()
	<-f.done
	_ = f.local.Close()
	if cerr := f.client.Close(); err == nil {
		err = cerr
	}
	return err
}

var _ secondary.ChangeFeed = (*RedisFeed)(nil)
