package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultChannel is the Pub/Sub channel shared by all instances.
const DefaultChannel = "session:events"

// Broker carries session events between service instances.
type Broker interface {
	Publish(ctx context.Context, ev Event) error
	// Listen delivers events published by other instances to fn until the
	// returned stop function is called.
	Listen(ctx context.Context, fn func(Event)) (stop func(), err error)
}

type envelope struct {
	Origin string `json:"origin"`
	Event  Event  `json:"event"`
}

// RedisBroker is a Broker on Redis Pub/Sub.
type RedisBroker struct {
	client   *redis.Client
	channel  string
	instance string
	log      zerolog.Logger
}

// NewRedisBroker creates a broker on channel. An empty channel means
// DefaultChannel.
func NewRedisBroker(client *redis.Client, channel string, log zerolog.Logger) *RedisBroker {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBroker{
		client:   client,
		channel:  channel,
		instance: uuid.New().String(),
		log:      log,
	}
}

// InstanceID identifies this broker's messages on the channel.
func (b *RedisBroker) InstanceID() string { return b.instance }

func (b *RedisBroker) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(envelope{Origin: b.instance, Event: ev})
	if err != nil {
		return fmt.Errorf("failed to marshal session event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish session event: %w", err)
	}
	return nil
}

func (b *RedisBroker) Listen(ctx context.Context, fn func(Event)) (func(), error) {
	ps := b.client.Subscribe(ctx, b.channel)
	// Wait for the subscription to be confirmed so no event published
	// after Listen returns is missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range ps.Channel() {
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.log.Warn().Err(err).Msg("dropping malformed session event")
				continue
			}
			if env.Origin == b.instance {
				continue
			}
			fn(env.Event)
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			_ = ps.Close()
			<-done
		})
	}
	return stop, nil
}
