package router

import (
	"log"
	"strconv"
	"sync"
)

// Record is one reply row from the router, keyed by attribute name.
type Record map[string]string

// Get returns the attribute value or def when absent.
func (r Record) Get(key, def string) string {
	if v, ok := r[key]; ok {
		return v
	}
	return def
}

// Uint parses a numeric attribute; missing or malformed values read as 0.
func (r Record) Uint(key string) uint64 {
	n, err := strconv.ParseUint(r[key], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Bool reports whether a RouterOS flag attribute is set.
func (r Record) Bool(key string) bool {
	switch r[key] {
	case "true", "yes":
		return true
	}
	return false
}

// Session is a single-use authenticated handle on the router's API. It is
// owned by exactly one operation and must be closed on every exit path.
type Session interface {
	// Query lists the records under a menu path such as
	// "/ip/hotspot/user", restricted to fields when any are given.
	Query(path string, fields ...string) ([]Record, error)
	// Create adds one record under a menu path and returns its id.
	Create(path string, fields map[string]string) (string, error)
	Close() error
}

// boundSession ties a Session to the context it was opened with and makes
// Close idempotent.
type boundSession struct {
	Session
	addr string
	stop func() bool
	once sync.Once
}

func (s *boundSession) Close() error {
	var err error
	s.once.Do(func() {
		s.stop()
		err = s.Session.Close()
		if err != nil {
			log.Printf("⚠️  Closing router session %s: %v", s.addr, err)
		}
	})
	return err
}
