package input

import "sync"

// Dispatcher is a Source that fans key events out to its listeners. Backends
// embed it and call KeyDown/KeyUp as their native events arrive.
//
// Delivery holds a read lock, so an unsubscribe waits for events already in
// flight and the listener is never called once it returns. Listeners must
// not subscribe or unsubscribe from within a callback.
type Dispatcher struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]Listener
}

// Subscribe implements Source.
func (d *Dispatcher) Subscribe(l Listener) func() {
	d.mu.Lock()
	if d.listeners == nil {
		d.listeners = make(map[int]Listener)
	}
	id := d.nextID
	d.nextID++
	d.listeners[id] = l
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.listeners, id)
		d.mu.Unlock()
	}
}

// KeyDown forwards a press to every listener.
func (d *Dispatcher) KeyDown(k Key) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, l := range d.listeners {
		l.KeyDown(k)
	}
}

// KeyUp forwards a release to every listener.
func (d *Dispatcher) KeyUp(k Key) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, l := range d.listeners {
		l.KeyUp(k)
	}
}

// Listeners returns the number of subscribed listeners.
func (d *Dispatcher) Listeners() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners)
}
