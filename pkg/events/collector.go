package events

import "slices"

// EventCollector is embedded in aggregates. Events recorded during a state
// change stay pending until the caller takes them for publishing.
type EventCollector struct {
	pending []DomainEvent
}

// Record queues an event.
func (c *EventCollector) Record(event DomainEvent) {
	c.pending = append(c.pending, event)
}

// Events returns a copy of the pending events.
func (c *EventCollector) Events() []DomainEvent {
	return slices.Clone(c.pending)
}

// ClearEvents hands over the pending events and empties the queue. A second
// call returns nil, so each event is published at most once.
func (c *EventCollector) ClearEvents() []DomainEvent {
	taken := c.pending
	c.pending = nil
	return taken
}
