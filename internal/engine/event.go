package engine

// Event is a multi-cast event. Listeners run synchronously in the order
// they were added.
type Event struct {
	listeners []listener[struct{}]
	nextID    uint64
}

type listener[T any] struct {
	id uint64
	fn func(T)
}

// Subscription is returned by AddListener. Unsubscribe removes exactly the
// listener it was issued for and is safe to call more than once.
type Subscription struct {
	cancel func()
}

func (s Subscription) Unsubscribe() {
	if s.cancel != nil {
		s.cancel()
	}
}

// AddListener adds a callback to be invoked when the event fires
func (e *Event) AddListener(callback func()) Subscription {
	if callback == nil {
		return Subscription{}
	}
	e.nextID++
	id := e.nextID
	e.listeners = append(e.listeners, listener[struct{}]{id: id, fn: func(struct{}) { callback() }})
	return Subscription{cancel: func() { e.listeners = removeListener(e.listeners, id) }}
}

// RemoveAllListeners clears all listeners
func (e *Event) RemoveAllListeners() {
	e.listeners = nil
}

// Invoke calls all registered listeners
func (e *Event) Invoke() {
	for _, l := range snapshot(e.listeners) {
		l.fn(struct{}{})
	}
}

// GetListenerCount returns the number of registered listeners (for debugging)
func (e *Event) GetListenerCount() int {
	return len(e.listeners)
}

// EventWithArg is a generic event with one argument
type EventWithArg[T any] struct {
	listeners []listener[T]
	nextID    uint64
}

func (e *EventWithArg[T]) AddListener(callback func(T)) Subscription {
	if callback == nil {
		return Subscription{}
	}
	e.nextID++
	id := e.nextID
	e.listeners = append(e.listeners, listener[T]{id: id, fn: callback})
	return Subscription{cancel: func() { e.listeners = removeListener(e.listeners, id) }}
}

func (e *EventWithArg[T]) RemoveAllListeners() {
	e.listeners = nil
}

func (e *EventWithArg[T]) Invoke(arg T) {
	for _, l := range snapshot(e.listeners) {
		l.fn(arg)
	}
}

func (e *EventWithArg[T]) GetListenerCount() int {
	return len(e.listeners)
}

// snapshot lets a listener unsubscribe itself during Invoke.
func snapshot[T any](ls []listener[T]) []listener[T] {
	out := make([]listener[T], len(ls))
	copy(out, ls)
	return out
}

func removeListener[T any](ls []listener[T], id uint64) []listener[T] {
	for i, l := range ls {
		if l.id == id {
			return append(ls[:i:i], ls[i+1:]...)
		}
	}
	return ls
}
