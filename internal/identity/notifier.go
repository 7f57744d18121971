package identity

import "sync"

// Notifier is the listener registry shared by the provider backends.
type Notifier struct {
	mu        sync.Mutex
	nextID    uint64
	listeners map[uint64]Listener
}

// Subscribe registers fn and returns a function that removes it. The
// returned function is safe to call more than once.
func (n *Notifier) Subscribe(fn Listener) func() {
	n.mu.Lock()
	if n.listeners == nil {
		n.listeners = make(map[uint64]Listener)
	}
	id := n.nextID
	n.nextID++
	n.listeners[id] = fn
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.listeners, id)
			n.mu.Unlock()
		})
	}
}

// Notify delivers change to every registered listener.
func (n *Notifier) Notify(change StateChange) {
	n.mu.Lock()
	fns := make([]Listener, 0, len(n.listeners))
	for _, fn := range n.listeners {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}

// Len reports the number of registered listeners.
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}
