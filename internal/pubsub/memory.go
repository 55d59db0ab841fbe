// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pubsub

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// SubscriberBuffer is the number of undelivered events a subscriber may hold
// before further events to it are dropped.
const SubscriberBuffer = 16

type subscriber struct {
	events chan Event
	filter Filter
}

// MemoryBus is an in-process [Bus].
type MemoryBus struct {
	mu          sync.RWMutex
	subscribers map[Channel]map[*subscriber]struct{}
	logger      *slog.Logger
}

// NewMemoryBus constructs an empty [MemoryBus].
func NewMemoryBus(logger *slog.Logger) *MemoryBus {
	return &MemoryBus{
		subscribers: make(map[Channel]map[*subscriber]struct{}),
		logger:      logger,
	}
}

/*
Publish delivers event to every matching subscriber without blocking.

Description: A subscriber whose buffer is full misses the event; a slow
WebSocket client must never stall the mutation that published it.
*/
func (bus *MemoryBus) Publish(_ context.Context, event Event) error {
	channel := event.Channel()
	if !channel.Valid() {
		return fmt.Errorf("pubsub: unknown channel %q", channel)
	}

	bus.mu.RLock()
	defer bus.mu.RUnlock()

	for sub := range bus.subscribers[channel] {
		if sub.filter != nil && !sub.filter(event) {
			continue
		}
		select {
		case sub.events <- event:
		default:
			bus.logger.Warn("pubsub_subscriber_lagging", slog.String("channel", string(channel)))
		}
	}
	return nil
}

// Subscribe registers a subscriber until ctx is done.
func (bus *MemoryBus) Subscribe(context context.Context, channel Channel, filter Filter) (<-chan Event, error) {
	if !channel.Valid() {
		return nil, fmt.Errorf("pubsub: unknown channel %q", channel)
	}

	sub := &subscriber{events: make(chan Event, SubscriberBuffer), filter: filter}

	bus.mu.Lock()
	if bus.subscribers[channel] == nil {
		bus.subscribers[channel] = make(map[*subscriber]struct{})
	}
	bus.subscribers[channel][sub] = struct{}{}
	bus.mu.Unlock()

	go func() {
		<-context.Done()

		bus.mu.Lock()
		delete(bus.subscribers[channel], sub)
		close(sub.events)
		bus.mu.Unlock()
	}()

	return sub.events, nil
}

// Subscribers returns the number of live subscribers on channel.
func (bus *MemoryBus) Subscribers(channel Channel) int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.subscribers[channel])
}
