package events

import "sync"

// HandlerFunc handles a dispatched event. Handlers must not block; slow
// consumers should buffer on their side.
type HandlerFunc func(Event)

// Dispatcher fans domain events out to registered handlers. Dispatch is
// synchronous and handler errors are the handler's own problem: a failing
// consumer must never stall the mutation pipeline.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]HandlerFunc
	all      []HandlerFunc
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string][]HandlerFunc)}
}

// Subscribe registers a handler for specific event types. With no types the
// handler receives every event.
func (d *Dispatcher) Subscribe(handler HandlerFunc, types ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(types) == 0 {
		d.all = append(d.all, handler)
		return
	}
	for _, t := range types {
		d.handlers[t] = append(d.handlers[t], handler)
	}
}

// Dispatch delivers an event to every matching handler.
func (d *Dispatcher) Dispatch(e Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, h := range d.all {
		h(e)
	}
	for _, h := range d.handlers[e.Type] {
		h(e)
	}
}
