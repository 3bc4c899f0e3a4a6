package reactive

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestState_GetSet(t *testing.T) {
	state := NewState(42)

	// Test initial value
	if got := state.Get(); got != 42 {
		t.Errorf("Expected initial value 42, got %d", got)
	}

	// Test set
	state.Set(100)
	if got := state.Get(); got != 100 {
		t.Errorf("Expected value 100 after Set, got %d", got)
	}
}

func TestState_Update(t *testing.T) {
	state := NewState(10)

	state.Update(func(v int) int {
		return v * 2
	})

	if got := state.Get(); got != 20 {
		t.Errorf("Expected 20 after Update, got %d", got)
	}
}

func TestState_WatchOrder(t *testing.T) {
	state := NewState("idle")

	var seen []string
	state.Watch(func(v string) { seen = append(seen, "a:"+v) })
	state.Watch(func(v string) { seen = append(seen, "b:"+v) })

	state.Set("open")

	want := []string{"a:open", "b:open"}
	if len(seen) != len(want) {
		t.Fatalf("Expected %d notifications, got %d (%v)", len(want), len(seen), seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("notification %d: expected %q, got %q", i, want[i], seen[i])
		}
	}
}

func TestState_WatchCancel(t *testing.T) {
	state := NewState(0)

	var calls int
	cancel := state.Watch(func(int) { calls++ })

	state.Set(1)
	cancel()
	state.Set(2)
	cancel() // second cancel is harmless

	if calls != 1 {
		t.Errorf("Expected 1 call before cancel, got %d", calls)
	}
}

func TestState_WatcherMayCancelItself(t *testing.T) {
	state := NewState(0)

	var calls int
	var cancel func()
	cancel = state.Watch(func(int) {
		calls++
		cancel()
	})
	state.Watch(func(int) { calls += 10 })

	state.Set(1)
	state.Set(2)

	if calls != 21 {
		t.Errorf("Expected self-cancelling watcher to run once, got total %d", calls)
	}
}

func TestComputed_Derivation(t *testing.T) {
	state := NewState(3)

	var computeCount int
	doubled := NewComputed[int, int](state, func(v int) int {
		computeCount++
		return v * 2
	})

	if got := doubled.Get(); got != 6 {
		t.Errorf("Expected 6, got %d", got)
	}
	_ = doubled.Get()
	if computeCount != 1 {
		t.Errorf("Expected memoized computation, computed %d times", computeCount)
	}

	state.Set(5)
	if got := doubled.Get(); got != 10 {
		t.Errorf("Expected 10 after source change, got %d", got)
	}
	if computeCount != 2 {
		t.Errorf("Expected recomputation after change, computed %d times", computeCount)
	}
}

func TestComputed_Watch(t *testing.T) {
	state := NewState(1)
	isBig := NewComputed[int, bool](state, func(v int) bool { return v > 10 })

	var got []bool
	isBig.Watch(func(v bool) { got = append(got, v) })

	state.Set(5)
	state.Set(50)

	if len(got) != 2 || got[0] || !got[1] {
		t.Errorf("Expected [false true], got %v", got)
	}
}

func TestState_ConcurrentAccess(t *testing.T) {
	state := NewState(0)

	var notified atomic.Int32
	state.Watch(func(int) { notified.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state.Update(func(v int) int { return v + 1 })
			_ = state.Get()
		}()
	}
	wg.Wait()

	if got := state.Get(); got != 50 {
		t.Errorf("Expected 50 after concurrent updates, got %d", got)
	}
	if got := notified.Load(); got != 50 {
		t.Errorf("Expected 50 notifications, got %d", got)
	}
}
