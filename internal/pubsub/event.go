// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pubsub carries domain events from mutations to GraphQL subscriptions.

# Architecture

  - Channel: A closed set of topics (userCreated, userLocked).
  - Event: A typed payload bound to exactly one channel.
  - Bus: Publish/Subscribe. MemoryBus serves a single instance; RedisBus fans
    events out across instances through Redis PUBLISH/SUBSCRIBE.

A subscription lives as long as the context passed to Subscribe. Cancelling it
(for example when the WebSocket drops) deregisters the subscriber and closes
its channel.
*/
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/taibuivan/sitegraph/internal/users/account"
)

// Channel names a topic.
type Channel string

const (
	ChannelUserCreated Channel = "userCreated"
	ChannelUserLocked  Channel = "userLocked"
)

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	switch c {
	case ChannelUserCreated, ChannelUserLocked:
		return true
	}
	return false
}

// Event is a payload published on one channel.
type Event interface {
	Channel() Channel
}

// UserCreated is published after a successful sign-up.
type UserCreated struct {
	User    *account.User `json:"user"`
	SiteIDs []string      `json:"siteIds"`
}

func (UserCreated) Channel() Channel { return ChannelUserCreated }

// HasSite reports whether the user was created with access to siteID.
func (event UserCreated) HasSite(siteID string) bool {
	for _, id := range event.SiteIDs {
		if id == siteID {
			return true
		}
	}
	return false
}

// UserLocked is published when an account is locked or unlocked.
type UserLocked struct {
	User   *account.User `json:"user"`
	Actor  *account.User `json:"actor"`
	Locked bool          `json:"locked"`
	Reason string        `json:"reason,omitempty"`
}

func (UserLocked) Channel() Channel { return ChannelUserLocked }

// Filter decides per subscriber whether an event is delivered.
type Filter func(event Event) bool

// Bus publishes events and serves subscriptions.
type Bus interface {
	Publish(context context.Context, event Event) error

	// Subscribe returns a channel of events on channel that pass filter (nil
	// accepts everything). The returned channel is closed when ctx ends.
	Subscribe(context context.Context, channel Channel, filter Filter) (<-chan Event, error)
}

// decode rebuilds a typed event from its JSON payload.
func decode(channel Channel, payload []byte) (Event, error) {
	switch channel {
	case ChannelUserCreated:
		event := UserCreated{}
		err := json.Unmarshal(payload, &event)
		return event, err
	case ChannelUserLocked:
		event := UserLocked{}
		err := json.Unmarshal(payload, &event)
		return event, err
	}
	return nil, fmt.Errorf("pubsub: unknown channel %q", channel)
}
