package events

import "github.com/kelindar/event"

// SubscribeToChannel bridges kelindar/event callback-based subscriptions to channels
// This is needed for SSE integration where Huma expects a channel-based select loop.
func SubscribeToChannel[T Event](bus *Bus, ch chan<- any) func() {
	return event.Subscribe(bus.dispatcher, func(e T) {
		select {
		case ch <- e:
		default:
			// Slow consumer, drop
		}
	})
}

// SubscribeAll bridges every event type to ch and returns one function that
// removes all of the subscriptions.
func SubscribeAll(bus *Bus, ch chan<- any) func() {
	unsubs := []func(){
		SubscribeToChannel[StreamStartedEvent](bus, ch),
		SubscribeToChannel[StreamStoppedEvent](bus, ch),
		SubscribeToChannel[StreamStartFailedEvent](bus, ch),
		SubscribeToChannel[OverlayChangedEvent](bus, ch),
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}
