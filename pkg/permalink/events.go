package permalink

import (
	"github.com/fcoo/permalink/pkg/mapview"
	"github.com/fcoo/permalink/pkg/params"
)

// Topic names a control notification.
type Topic string

const (
	// TopicAdd fires once the control is attached to a viewport.
	TopicAdd Topic = "add"

	// TopicUpdate fires whenever the parameter map was (re)loaded. The event
	// carries the full, coerced map.
	TopicUpdate Topic = "update"
)

// Event is passed to handlers.
type Event struct {
	Topic    Topic
	Params   params.Params
	Viewport mapview.Viewport
}

// Handler receives notifications.
type Handler func(Event)

type subscription struct {
	id      int
	handler Handler
}

// bus is a per-control publish/subscribe with fixed topics.
type bus struct {
	subs   map[Topic][]subscription
	nextID int
}

func (b *bus) on(topic Topic, h Handler) func() {
	if b.subs == nil {
		b.subs = make(map[Topic][]subscription)
	}
	id := b.nextID
	b.nextID++
	b.subs[topic] = append(b.subs[topic], subscription{id: id, handler: h})

	return func() {
		list := b.subs[topic]
		for i, s := range list {
			if s.id == id {
				b.subs[topic] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// fire calls the handlers subscribed when fire started, in subscription order.
func (b *bus) fire(e Event) {
	list := append([]subscription(nil), b.subs[e.Topic]...)
	for _, s := range list {
		s.handler(e)
	}
}
