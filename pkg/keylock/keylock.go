// Package keylock serializes work per key (silo id, dedup key) while letting
// different keys proceed in parallel.
package keylock

import (
	"context"
	"sync"
)

// Locker acquires an exclusive hold on key until the returned func is called.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

type slot struct {
	ch   chan struct{}
	refs int
}

// KeyedMutex is an in-process Locker. Slots are created on demand and
// dropped when nobody holds or waits for them.
type KeyedMutex struct {
	mu    sync.Mutex
	slots map[string]*slot
}

func New() *KeyedMutex {
	return &KeyedMutex{slots: make(map[string]*slot)}
}

func (m *KeyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	s := m.slots[key]
	if s == nil {
		s = &slot{ch: make(chan struct{}, 1)}
		m.slots[key] = s
	}
	s.refs++
	m.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-s.ch
				m.release(key, s)
			})
		}, nil
	case <-ctx.Done():
		m.release(key, s)
		return nil, ctx.Err()
	}
}

func (m *KeyedMutex) release(key string, s *slot) {
	m.mu.Lock()
	s.refs--
	if s.refs == 0 {
		delete(m.slots, key)
	}
	m.mu.Unlock()
}

// Len reports how many keys are currently held or awaited.
func (m *KeyedMutex) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.slots)
}
