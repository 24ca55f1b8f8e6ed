package repositories

import (
	"sync"
	"time"

	"object-detection-demo/internal/domain/entities"
	domainrepos "object-detection-demo/internal/domain/repositories"
)

const subscriberBuffer = 8

type MemoryUIStateRepository struct {
	state       entities.UIState
	subscribers map[int]chan entities.UIState
	nextID      int
	mu          sync.RWMutex
}

func NewMemoryUIStateRepository() domainrepos.UIStateRepository {
	return &MemoryUIStateRepository{
		subscribers: make(map[int]chan entities.UIState),
	}
}

func (r *MemoryUIStateRepository) Publish(state entities.UIState) entities.UIState {
	r.mu.Lock()
	defer r.mu.Unlock()

	state.Revision = r.state.Revision + 1
	state.UpdatedAt = time.Now()
	r.state = state

	for _, ch := range r.subscribers {
		deliver(ch, state)
	}

	return state
}

func (r *MemoryUIStateRepository) Current() entities.UIState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.state
}

// Subscribe immediately delivers the current snapshot.
func (r *MemoryUIStateRepository) Subscribe() (<-chan entities.UIState, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++

	ch := make(chan entities.UIState, subscriberBuffer)
	ch <- r.state
	r.subscribers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()

			delete(r.subscribers, id)
			close(ch)
		})
	}

	return ch, cancel
}

// deliver never blocks the publisher. When the buffer is full the oldest
// snapshot is dropped; subscribers always see the latest one.
func deliver(ch chan entities.UIState, state entities.UIState) {
	for {
		select {
		case ch <- state:
			return
		default:
		}

		select {
		case <-ch:
		default:
		}
	}
}
