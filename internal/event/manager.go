package event

import (
	"go.uber.org/zap"
)

var listeners = make([]*Listener, 0)

type Listener struct {
	eventType Type
	callback  func(msg interface{})
	channel   chan func()
}

// AddEventListener registers a callback for an event type. Each listener
// drains its own buffered channel on a dedicated goroutine, so callbacks for
// one listener run in emission order.
func AddEventListener(eventType Type, callback func(msg interface{})) {
	zap.L().With(zap.String("type", string(eventType))).Debug("EventManager: AddListener")

	listener := &Listener{
		eventType: eventType,
		callback:  callback,
		channel:   make(chan func(), 64),
	}

	listeners = append(listeners, listener)

	go drain(listener.channel)
}

// AddEventListeners registers a callback per event type with all of them
// draining one shared channel, so callbacks across the group run in emission
// order. A listener that updates documents created by another listener in
// the group needs that ordering.
func AddEventListeners(callbacks map[Type]func(msg interface{})) {
	channel := make(chan func(), 256)

	for eventType, callback := range callbacks {
		zap.L().With(zap.String("type", string(eventType))).Debug("EventManager: AddListener")
		listeners = append(listeners, &Listener{eventType, callback, channel})
	}

	go drain(channel)
}

func drain(channel chan func()) {
	for callback := range channel {
		callback()
	}
}

func EmitEvent(eventType Type, msg interface{}) {
	if len(listeners) == 0 {
		zap.L().Debug("No event listeners available")
	}
	for _, listener := range listeners {
		if listener.eventType == eventType {
			zap.L().With(zap.String("type", string(eventType))).Debug("EventManager: Emitting event")

			callback, payload := listener.callback, msg
			listener.channel <- func() { callback(payload) }
		}
	}
}
