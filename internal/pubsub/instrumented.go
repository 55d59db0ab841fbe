// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pubsub

import "context"

// PublishObserver records publish outcomes.
type PublishObserver interface {
	ObservePublish(channel string, err error)
}

type instrumentedBus struct {
	Bus
	observer PublishObserver
}

// Instrumented wraps bus so every Publish is reported to observer.
func Instrumented(bus Bus, observer PublishObserver) Bus {
	return &instrumentedBus{Bus: bus, observer: observer}
}

func (bus *instrumentedBus) Publish(context context.Context, event Event) error {
	err := bus.Bus.Publish(context, event)
	bus.observer.ObservePublish(string(event.Channel()), err)
	return err
}
