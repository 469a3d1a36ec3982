package fs

import (
	"sync"
	"testing"
	"time"

	"github.com/aretw0/notebox/pkg/core"
)

func TestDebouncer_Coalesces(t *testing.T) {
	d := newDebouncer(20 * time.Millisecond)

	var mu sync.Mutex
	var fired []core.Event
	fire := func(e core.Event) {
		mu.Lock()
		defer mu.Unlock()
		fired = append(fired, e)
	}

	d.add(core.Event{Type: core.EventCreate, Path: "a"}, fire)
	d.add(core.Event{Type: core.EventModify, Path: "a"}, fire)
	d.add(core.Event{Type: core.EventModify, Path: "b"}, fire)

	time.Sleep(100 * time.Millisecond)
	d.stopAndWait(time.Second)

	mu.Lock()
	defer mu.Unlock()
	if len(fired) != 2 {
		t.Fatalf("expected 2 events, got %d: %v", len(fired), fired)
	}
	for _, e := range fired {
		if e.Path == "a" && e.Type != core.EventCreate {
			t.Errorf("create followed by modify should stay create, got %s", e.Type)
		}
	}
}

func TestDebouncer_StopDropsPending(t *testing.T) {
	d := newDebouncer(time.Hour)
	d.add(core.Event{Type: core.EventModify, Path: "a"}, func(core.Event) {
		t.Error("pending event fired after stop")
	})
	d.stopAndWait(time.Second)
	d.add(core.Event{Type: core.EventModify, Path: "b"}, func(core.Event) {
		t.Error("event accepted after stop")
	})
}
