package store

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/deskhub/support-portal/internal/domain"
	"github.com/deskhub/support-portal/internal/live"
	"github.com/deskhub/support-portal/internal/repository"
)

// RedisPublisher broadcasts change notifications over a Redis channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher constructs a publisher for the given channel.
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

// PublishChange implements ChangePublisher.
func (p *RedisPublisher) PublishChange(ctx context.Context) error {
	return p.client.Publish(ctx, p.channel, "changed").Err()
}

// RedisFeed turns Redis change notifications into full ticket snapshots: on
// every notification it reloads the whole ordered collection from Postgres
// and delivers it as a replacement snapshot. go-redis re-establishes the
// pub/sub connection itself after interruptions; subscribers just see a gap
// followed by a fresh snapshot.
type RedisFeed struct {
	client  *redis.Client
	tickets repository.TicketRepository
	channel string
	logger  *zap.Logger
}

// NewRedisFeed constructs the feed.
func NewRedisFeed(client *redis.Client, tickets repository.TicketRepository, channel string, logger *zap.Logger) *RedisFeed {
	return &RedisFeed{client: client, tickets: tickets, channel: channel, logger: logger}
}

// Subscribe implements live.Feed. The initial snapshot is delivered before
// any notification arrives.
func (f *RedisFeed) Subscribe(ctx context.Context) (live.Subscription, error) {
	pubsub := f.client.Subscribe(ctx, f.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	sub := &feedSubscription{
		snapshots: make(chan []domain.Ticket, 1),
		cancel:    cancel,
	}
	go f.pump(ctx, pubsub, sub)
	return sub, nil
}

func (f *RedisFeed) pump(ctx context.Context, pubsub *redis.PubSub, sub *feedSubscription) {
	defer close(sub.snapshots)
	defer pubsub.Close() //nolint:errcheck

	f.reload(ctx, sub)

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-messages:
			if !ok {
				return
			}
			f.reload(ctx, sub)
		}
	}
}

func (f *RedisFeed) reload(ctx context.Context, sub *feedSubscription) {
	tickets, err := f.tickets.ListAll(ctx)
	if err != nil {
		if f.logger != nil && ctx.Err() == nil {
			f.logger.Warn("snapshot reload failed", zap.Error(err))
		}
		return
	}
	sub.deliver(tickets)
}

type feedSubscription struct {
	snapshots chan []domain.Ticket
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// Snapshots implements live.Subscription.
func (s *feedSubscription) Snapshots() <-chan []domain.Ticket {
	return s.snapshots
}

// Close implements live.Subscription.
func (s *feedSubscription) Close() {
	s.closeOnce.Do(s.cancel)
}

// deliver hands a snapshot to the consumer, replacing a buffered one it has
// not read yet. Snapshots are full replacements, so dropping a superseded
// one loses nothing.
func (s *feedSubscription) deliver(tickets []domain.Ticket) {
	for {
		select {
		case s.snapshots <- tickets:
			return
		default:
			select {
			case <-s.snapshots:
			default:
			}
		}
	}
}
