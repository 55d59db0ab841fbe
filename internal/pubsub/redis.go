// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// envelope is the wire form of an event on a Redis channel.
type envelope struct {
	Channel Channel         `json:"channel"`
	Payload json.RawMessage `json:"payload"`
}

// RedisBus is a [Bus] backed by Redis PUBLISH/SUBSCRIBE. Every instance
// subscribed to a channel receives every event published on it.
type RedisBus struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedisBus constructs a [RedisBus]. prefix namespaces the Redis channels.
func NewRedisBus(client *redis.Client, prefix string, logger *slog.Logger) *RedisBus {
	return &RedisBus{client: client, prefix: prefix, logger: logger}
}

func (bus *RedisBus) topic(channel Channel) string {
	return bus.prefix + string(channel)
}

func (bus *RedisBus) Publish(context context.Context, event Event) error {
	channel := event.Channel()
	if !channel.Valid() {
		return fmt.Errorf("pubsub: unknown channel %q", channel)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("pubsub: encode %s: %w", channel, err)
	}
	data, err := json.Marshal(envelope{Channel: channel, Payload: payload})
	if err != nil {
		return fmt.Errorf("pubsub: encode envelope: %w", err)
	}

	if err := bus.client.Publish(context, bus.topic(channel), data).Err(); err != nil {
		return fmt.Errorf("redis_publish_failed: %w", err)
	}
	return nil
}

/*
Subscribe opens a dedicated Redis subscription for the caller.

Description: The call returns once Redis has confirmed the subscription, so an
event published right after Subscribe returns is not missed. Undecodable
messages are logged and skipped.
*/
func (bus *RedisBus) Subscribe(context context.Context, channel Channel, filter Filter) (<-chan Event, error) {
	if !channel.Valid() {
		return nil, fmt.Errorf("pubsub: unknown channel %q", channel)
	}

	subscription := bus.client.Subscribe(context, bus.topic(channel))
	if _, err := subscription.Receive(context); err != nil {
		subscription.Close()
		return nil, fmt.Errorf("redis_subscribe_failed: %w", err)
	}

	events := make(chan Event, SubscriberBuffer)
	messages := subscription.Channel()

	go func() {
		defer close(events)
		defer subscription.Close()

		for {
			select {
			case <-context.Done():
				return
			case message, ok := <-messages:
				if !ok {
					return
				}

				var wire envelope
				if err := json.Unmarshal([]byte(message.Payload), &wire); err != nil {
					bus.logger.Warn("pubsub_bad_envelope", slog.Any("error", err))
					continue
				}
				event, err := decode(wire.Channel, wire.Payload)
				if err != nil {
					bus.logger.Warn("pubsub_bad_payload", slog.String("channel", string(wire.Channel)), slog.Any("error", err))
					continue
				}
				if filter != nil && !filter(event) {
					continue
				}

				select {
				case events <- event:
				case <-context.Done():
					return
				}
			}
		}
	}()

	return events, nil
}
