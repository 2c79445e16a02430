package room

import (
	"sync"
	"testing"
	"time"
)

type fakeRunner struct {
	mu       sync.Mutex
	finished bool
}

func (f *fakeRunner) Finish() {
	f.mu.Lock()
	f.finished = true
	f.mu.Unlock()
}

func (f *fakeRunner) Finished() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.finished
}

func TestGetOrCreateReusesActiveRoom(t *testing.T) {
	reg := NewRegistry(30 * time.Minute)

	r1 := reg.GetOrCreate("alice")
	r2 := reg.GetOrCreate("alice")
	if r1.ID != r2.ID {
		t.Errorf("Expected same room for same user, got %s and %s", r1.ID, r2.ID)
	}

	r3 := reg.GetOrCreate("bob")
	if r3.ID == r1.ID {
		t.Error("Different users must not share a room")
	}
	if reg.Len() != 2 {
		t.Errorf("Expected 2 rooms, got %d", reg.Len())
	}
}

func TestGetOrCreateConcurrent(t *testing.T) {
	reg := NewRegistry(30 * time.Minute)

	const n = 32
	rooms := make([]*Room, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rooms[i] = reg.GetOrCreate("alice")
		}(i)
	}
	wg.Wait()

	if reg.Len() != 1 {
		t.Fatalf("Racing connects created %d rooms, want 1", reg.Len())
	}
	for i := 1; i < n; i++ {
		if rooms[i].ID != rooms[0].ID {
			t.Fatalf("goroutine %d got room %s, want %s", i, rooms[i].ID, rooms[0].ID)
		}
	}
}

func TestExpireInactiveBoundary(t *testing.T) {
	timeout := 30 * time.Minute
	reg := NewRegistry(timeout)

	r := reg.GetOrCreate("alice")
	last := r.LastActive()

	// exactly at the timeout the room survives
	if n := reg.ExpireInactive(last.Add(timeout)); n != 0 {
		t.Errorf("room expired exactly at timeout, want survival")
	}
	if reg.Len() != 1 {
		t.Fatalf("Expected room to remain, got %d rooms", reg.Len())
	}

	if n := reg.ExpireInactive(last.Add(timeout + time.Second)); n != 1 {
		t.Errorf("ExpireInactive past timeout = %d, want 1", n)
	}
	if reg.Len() != 0 {
		t.Errorf("Expected 0 rooms after expiry, got %d", reg.Len())
	}
}

func TestExpireInactiveStopsAgent(t *testing.T) {
	reg := NewRegistry(time.Minute)
	r := reg.GetOrCreate("alice")

	runner := &fakeRunner{}
	if err := r.BindAgent(runner); err != nil {
		t.Fatalf("BindAgent failed: %v", err)
	}

	reg.ExpireInactive(r.LastActive().Add(2 * time.Minute))
	if !runner.Finished() {
		t.Error("expiry did not finish the bound agent")
	}
}

func TestRemoveStopsAgentAndClearsSessions(t *testing.T) {
	reg := NewRegistry(time.Minute)
	r := reg.GetOrCreate("alice")
	runner := &fakeRunner{}
	r.BindAgent(runner)
	reg.BindSession("sess-1", r.ID)

	reg.Remove(r.ID)

	if !runner.Finished() {
		t.Error("Remove did not finish the bound agent")
	}
	if _, ok := reg.GetBySession("sess-1"); ok {
		t.Error("session binding survived room removal")
	}
	if reg.Len() != 0 {
		t.Errorf("Expected 0 rooms, got %d", reg.Len())
	}
}

func TestSessionBinding(t *testing.T) {
	reg := NewRegistry(time.Minute)
	r := reg.GetOrCreate("alice")

	reg.BindSession("sess-1", r.ID)
	got, ok := reg.GetBySession("sess-1")
	if !ok || got.ID != r.ID {
		t.Errorf("GetBySession = (%v, %t), want room %s", got, ok, r.ID)
	}

	reg.UnbindSession("sess-1")
	if _, ok := reg.GetBySession("sess-1"); ok {
		t.Error("session resolved after unbind")
	}
}

func TestBindAgentOnlyOnce(t *testing.T) {
	r := NewRoom("alice")
	if err := r.BindAgent(&fakeRunner{}); err != nil {
		t.Fatalf("first bind failed: %v", err)
	}
	if err := r.BindAgent(&fakeRunner{}); err == nil {
		t.Error("second bind succeeded, want error")
	}

	r.UnbindAgent()
	if err := r.BindAgent(&fakeRunner{}); err != nil {
		t.Errorf("bind after unbind failed: %v", err)
	}
}
