package dialogue

import (
	"log"
	"sync"
	"time"

	"mipy/internal/constants"
)

type MemoryStore struct {
	dialogues sync.Map
	onExpire  func(id string)
	mu        sync.RWMutex
	stop      chan struct{}
	stopOnce  sync.Once
}

func NewMemoryStore() *MemoryStore {
	return newMemoryStore(constants.CleanupInterval)
}

func newMemoryStore(interval time.Duration) *MemoryStore {
	store := &MemoryStore{stop: make(chan struct{})}
	go store.cleanupLoop(interval)
	return store
}

func (st *MemoryStore) OnExpire(fn func(id string)) {
	st.mu.Lock()
	st.onExpire = fn
	st.mu.Unlock()
}

func (st *MemoryStore) Save(d *Dialogue) {
	cp := *d
	st.dialogues.Store(d.ID, &cp)
}

func (st *MemoryStore) Get(id string) (*Dialogue, bool) {
	val, ok := st.dialogues.Load(id)
	if !ok {
		return nil, false
	}
	d := val.(*Dialogue)
	if d.IsExpired() {
		st.expire(id, d)
		return nil, false
	}
	cp := *d
	return &cp, true
}

func (st *MemoryStore) Delete(id string) {
	st.dialogues.Delete(id)
}

func (st *MemoryStore) Close() error {
	st.stopOnce.Do(func() { close(st.stop) })
	return nil
}

// expire drops the entry only if it is still the expired one, so a
// concurrent Save of a fresh dialogue is not lost.
func (st *MemoryStore) expire(id string, d *Dialogue) {
	if !st.dialogues.CompareAndDelete(id, d) {
		return
	}
	log.Printf("🗑 Expired dialogue cleaned up: %s", id)
	st.mu.RLock()
	fn := st.onExpire
	st.mu.RUnlock()
	if fn != nil {
		fn(id)
	}
}

func (st *MemoryStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-st.stop:
			return
		case <-ticker.C:
			st.cleanupExpired()
		}
	}
}

func (st *MemoryStore) cleanupExpired() {
	st.dialogues.Range(func(key, value any) bool {
		d := value.(*Dialogue)
		if d.IsExpired() {
			st.expire(key.(string), d)
		}
		return true
	})
}
