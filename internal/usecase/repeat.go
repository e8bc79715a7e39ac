package usecase

import (
	"sync"
	"time"

	"fxapply/internal/domain"
)

// RepeatMemory remembers the last processing effect that was applied so it can
// be repeated. Listeners are called synchronously, after the state change and
// outside the internal lock.
type RepeatMemory struct {
	mu        sync.Mutex
	now       func() time.Time
	last      domain.EffectID
	has       bool
	setAt     time.Time
	announced bool

	nextSub   int
	changed   map[int]func(domain.EffectID)
	available map[int]func()
	order     []int
}

// RepeatOption configures a RepeatMemory.
type RepeatOption func(*RepeatMemory)

// WithClock sets the time source used to stamp updates.
func WithClock(now func() time.Time) RepeatOption {
	return func(m *RepeatMemory) {
		if now != nil {
			m.now = now
		}
	}
}

// WithRestored seeds the memory with a value from an earlier session.
// The value counts as already announced.
func WithRestored(id domain.EffectID) RepeatOption {
	return func(m *RepeatMemory) {
		if id == "" {
			return
		}
		m.last = id
		m.has = true
		m.announced = true
	}
}

// NewRepeatMemory creates an empty memory.
func NewRepeatMemory(opts ...RepeatOption) *RepeatMemory {
	m := &RepeatMemory{
		now:       time.Now,
		changed:   map[int]func(domain.EffectID){},
		available: map[int]func(){},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Set records id as the last processor. It reports whether the value changed.
func (m *RepeatMemory) Set(id domain.EffectID) bool {
	m.mu.Lock()
	if m.has && m.last == id {
		m.mu.Unlock()
		return false
	}
	m.last = id
	m.has = true
	m.setAt = m.now()
	firstTime := !m.announced
	m.announced = true
	changed, available := m.listenersLocked()
	m.mu.Unlock()

	for _, fn := range changed {
		fn(id)
	}
	if firstTime {
		for _, fn := range available {
			fn()
		}
	}
	return true
}

// Last returns the remembered effect.
func (m *RepeatMemory) Last() (domain.EffectID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, m.has
}

// Available reports whether there is anything to repeat.
func (m *RepeatMemory) Available() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.has
}

// SetAt returns when the value last changed. Zero for restored or empty memory.
func (m *RepeatMemory) SetAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setAt
}

// OnChanged subscribes fn to value changes. The returned func unsubscribes.
func (m *RepeatMemory) OnChanged(fn func(domain.EffectID)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.subscribeLocked()
	m.changed[id] = fn
	return m.unsubscribe(id)
}

// OnAvailable subscribes fn to the one-time "became available" event.
func (m *RepeatMemory) OnAvailable(fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.subscribeLocked()
	m.available[id] = fn
	return m.unsubscribe(id)
}

func (m *RepeatMemory) subscribeLocked() int {
	m.nextSub++
	m.order = append(m.order, m.nextSub)
	return m.nextSub
}

func (m *RepeatMemory) unsubscribe(id int) func() {
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.changed, id)
		delete(m.available, id)
		for i, v := range m.order {
			if v == id {
				m.order = append(m.order[:i], m.order[i+1:]...)
				break
			}
		}
	}
}

func (m *RepeatMemory) listenersLocked() ([]func(domain.EffectID), []func()) {
	var changed []func(domain.EffectID)
	var available []func()
	for _, id := range m.order {
		if fn, ok := m.changed[id]; ok {
			changed = append(changed, fn)
		}
		if fn, ok := m.available[id]; ok {
			available = append(available, fn)
		}
	}
	return changed, available
}
