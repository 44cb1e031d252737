package dialogue

import (
	"testing"
	"time"
)

func TestMemoryStoreSaveGetDelete(t *testing.T) {
	st := NewMemoryStore()
	defer st.Close()

	d := &Dialogue{ID: "1:1", State: StateLimit, ExpiresAt: time.Now().Add(time.Minute)}
	st.Save(d)
	d.State = StateEnd

	got, ok := st.Get("1:1")
	if !ok {
		t.Fatal("Get = missing, want dialogue")
	}
	if got.State != StateLimit {
		t.Errorf("State = %s, want %s (stored copy)", got.State, StateLimit)
	}

	st.Delete("1:1")
	if _, ok := st.Get("1:1"); ok {
		t.Error("Get after Delete = found")
	}
}

func TestMemoryStoreExpiresOnGet(t *testing.T) {
	st := NewMemoryStore()
	defer st.Close()

	var expired []string
	st.OnExpire(func(id string) { expired = append(expired, id) })
	st.Save(&Dialogue{ID: "1:1", ExpiresAt: time.Now().Add(-time.Second)})

	if _, ok := st.Get("1:1"); ok {
		t.Error("Get returned an expired dialogue")
	}
	if _, ok := st.Get("1:1"); ok {
		t.Error("second Get returned an expired dialogue")
	}
	if len(expired) != 1 || expired[0] != "1:1" {
		t.Errorf("expired = %q, want [1:1]", expired)
	}
}

func TestMemoryStoreCleanupLoop(t *testing.T) {
	st := newMemoryStore(10 * time.Millisecond)
	defer st.Close()

	notified := make(chan string, 2)
	st.OnExpire(func(id string) { notified <- id })
	st.Save(&Dialogue{ID: "old", ExpiresAt: time.Now().Add(-time.Second)})
	st.Save(&Dialogue{ID: "fresh", ExpiresAt: time.Now().Add(time.Hour)})

	select {
	case id := <-notified:
		if id != "old" {
			t.Errorf("expired %q, want old", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup loop never expired the dialogue")
	}
	if _, ok := st.Get("fresh"); !ok {
		t.Error("fresh dialogue was removed")
	}
}
