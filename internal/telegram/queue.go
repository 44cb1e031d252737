package telegram

import "sync"

// serialQueue runs jobs for one key in arrival order, one at a time, while
// distinct keys run in parallel. A key's worker exits once its queue drains.
type serialQueue struct {
	mu   sync.Mutex
	jobs map[string][]func()
}

func (q *serialQueue) push(key string, job func()) {
	q.mu.Lock()
	if q.jobs == nil {
		q.jobs = make(map[string][]func())
	}
	pending, busy := q.jobs[key]
	q.jobs[key] = append(pending, job)
	q.mu.Unlock()

	if !busy {
		go q.drain(key)
	}
}

func (q *serialQueue) drain(key string) {
	for {
		q.mu.Lock()
		pending := q.jobs[key]
		if len(pending) == 0 {
			delete(q.jobs, key)
			q.mu.Unlock()
			return
		}
		job := pending[0]
		q.jobs[key] = pending[1:]
		q.mu.Unlock()

		job()
	}
}
