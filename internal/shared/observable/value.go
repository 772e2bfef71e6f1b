// Package observable provides a replay-latest value holder.
//
// A Value delivers its current value to every new subscriber immediately and then every
// subsequent Set, synchronously and in write order.
package observable

import "sync"

type (
	// Value holds the latest T and notifies subscribers on each Set.
	Value[T any] struct {
		// notify serializes Set and Subscribe so subscribers see writes in order
		notify sync.Mutex
		mu     sync.RWMutex
		cur    T
		subs   map[uint64]func(T)
		nextID uint64
	}
)

func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{
		cur:  initial,
		subs: make(map[uint64]func(T)),
	}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.cur
}

// Set replaces the current value and calls every subscriber with it before returning.
// Subscribers must not call Set or Subscribe on the same Value.
func (v *Value[T]) Set(val T) {
	v.notify.Lock()
	defer v.notify.Unlock()

	v.mu.Lock()
	v.cur = val
	subs := make([]func(T), 0, len(v.subs))
	for _, fn := range v.subs {
		subs = append(subs, fn)
	}
	v.mu.Unlock()

	for _, fn := range subs {
		fn(val)
	}
}

// Subscribe registers fn, calls it with the current value, and returns a func that removes it.
func (v *Value[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	v.notify.Lock()
	defer v.notify.Unlock()

	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.subs[id] = fn
	cur := v.cur
	v.mu.Unlock()

	fn(cur)

	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			delete(v.subs, id)
			v.mu.Unlock()
		})
	}
}
