package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/kode4food/nebula/internal/config"
	"github.com/kode4food/nebula/pkg/api"
)

// Publisher appends run events to a Redis stream. Each entry carries the
// event type, the run ID and the JSON-encoded event
type Publisher struct {
	client *redis.Client
	filter Filter
	stream string
	maxLen int64
	owned  bool
}

var ErrStreamRequired = errors.New("event stream name is required")

// NewPublisher connects to the Redis server described by cfg. When cfg
// names event types, only events of those types are published
func NewPublisher(
	ctx context.Context, cfg config.EventsConfig,
) (*Publisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            cfg.Addr,
		Password:        cfg.Password,
		DB:              cfg.DB,
		Protocol:        2,
		DisableIdentity: true,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	p, err := NewPublisherWithClient(client, cfg.Stream, cfg.MaxLen)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	p.owned = true
	if len(cfg.Types) > 0 {
		p.WithFilter(FilterTypes(cfg.Types...))
	}
	return p, nil
}

// NewPublisherWithClient publishes to stream through an existing client.
// A positive maxLen trims the stream approximately to that length
func NewPublisherWithClient(
	client *redis.Client, stream string, maxLen int64,
) (*Publisher, error) {
	if stream == "" {
		return nil, ErrStreamRequired
	}
	return &Publisher{
		client: client,
		filter: AllEvents,
		stream: stream,
		maxLen: maxLen,
	}, nil
}

// WithFilter restricts the events the publisher forwards
func (p *Publisher) WithFilter(filter Filter) *Publisher {
	p.filter = filter
	return p
}

// Notify appends ev to the stream if the filter accepts it
func (p *Publisher) Notify(ctx context.Context, ev *api.RunEvent) error {
	if !p.filter(ev) {
		return nil
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: []any{
			"type", string(ev.Type),
			"run_id", string(ev.RunID),
			"data", string(data),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	return p.client.XAdd(ctx, args).Err()
}

// Close releases the Redis connection if the publisher opened it
func (p *Publisher) Close() error {
	if !p.owned {
		return nil
	}
	return p.client.Close()
}
