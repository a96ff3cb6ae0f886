package buffer

import (
	"sync"
	"testing"
	"time"
)

func TestQueue_BasicPushPop(t *testing.T) {
	q := NewQueue[int](10)

	for i := 0; i < 5; i++ {
		if !q.Push(i) {
			t.Fatalf("Push(%d) returned false", i)
		}
	}

	if q.Len() != 5 {
		t.Errorf("Len() = %d, want 5", q.Len())
	}

	for i := 0; i < 5; i++ {
		val, ok := q.TryPop()
		if !ok {
			t.Fatalf("TryPop() returned false for item %d", i)
		}
		if val != i {
			t.Errorf("popped %d, want %d", val, i)
		}
	}

	if _, ok := q.TryPop(); ok {
		t.Error("TryPop() on empty queue returned true")
	}
}

func TestQueue_GrowKeepsOrder(t *testing.T) {
	q := NewQueue[int](4)

	for i := 0; i < 100; i++ {
		q.Push(i)
	}

	stats := q.Stats()
	if stats.Count != 100 {
		t.Errorf("Count = %d, want 100", stats.Count)
	}
	if stats.ResizeCount < 3 {
		t.Errorf("ResizeCount = %d, expected at least 3 resizes", stats.ResizeCount)
	}

	got := q.Drain(0)
	if len(got) != 100 {
		t.Fatalf("Drain(0) returned %d items, want 100", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("item %d = %d, want %d", i, v, i)
		}
	}
}

func TestQueue_WrapAroundGrow(t *testing.T) {
	q := NewQueue[int](4)

	// Move head forward so the next grow has to unwrap.
	q.Push(0)
	q.Push(1)
	q.Push(2)
	q.TryPop()
	q.TryPop()
	for i := 3; i < 10; i++ {
		q.Push(i)
	}

	got := q.Drain(0)
	want := []int{2, 3, 4, 5, 6, 7, 8, 9}
	if len(got) != len(want) {
		t.Fatalf("Drain(0) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Drain(0) = %v, want %v", got, want)
		}
	}
}

func TestQueue_DrainMax(t *testing.T) {
	q := NewQueue[string](8)
	for _, s := range []string{"a", "b", "c", "d"} {
		q.Push(s)
	}
	// Consume the push wakeup.
	<-q.Ready()

	first := q.Drain(3)
	if len(first) != 3 || first[0] != "a" || first[2] != "c" {
		t.Fatalf("Drain(3) = %v, want [a b c]", first)
	}

	// A partial drain leaves a wakeup for the rest.
	select {
	case <-q.Ready():
	default:
		t.Error("expected Ready() after partial drain")
	}

	rest := q.Drain(3)
	if len(rest) != 1 || rest[0] != "d" {
		t.Errorf("Drain(3) = %v, want [d]", rest)
	}

	if got := q.Drain(0); got != nil {
		t.Errorf("Drain(0) on empty queue = %v, want nil", got)
	}
}

func TestQueue_Requeue(t *testing.T) {
	q := NewQueue[string](2)
	q.Push("SUB,A")
	q.Push("SUB,B")

	batch := q.Drain(0)
	q.Push("SUB,C")

	// Pretend only the first line made it to the wire.
	q.Requeue(batch[1:])

	got := q.Drain(0)
	want := []string{"SUB,B", "SUB,C"}
	if len(got) != len(want) {
		t.Fatalf("Drain(0) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d = %q, want %q", i, got[i], want[i])
		}
	}

	stats := q.Stats()
	if stats.TotalPushed-stats.TotalDrained != int64(stats.Count) {
		t.Errorf("stats out of balance: %+v", stats)
	}
}

func TestQueue_RequeueGrows(t *testing.T) {
	q := NewQueue[int](1)
	q.Push(3)
	q.Requeue([]int{0, 1, 2})

	got := q.Drain(0)
	for i, v := range got {
		if v != i {
			t.Fatalf("Drain(0) = %v, want [0 1 2 3]", got)
		}
	}
	if len(got) != 4 {
		t.Fatalf("Drain(0) = %v, want [0 1 2 3]", got)
	}
}

func TestQueue_Ready(t *testing.T) {
	q := NewQueue[int](10)

	select {
	case <-q.Ready():
		t.Fatal("Ready() fired on empty queue")
	default:
	}

	done := make(chan []int, 1)
	go func() {
		<-q.Ready()
		done <- q.Drain(0)
	}()

	time.Sleep(10 * time.Millisecond)
	q.Push(42)

	select {
	case got := <-done:
		if len(got) != 1 || got[0] != 42 {
			t.Errorf("drained %v, want [42]", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for Ready()")
	}
}

func TestQueue_Close(t *testing.T) {
	q := NewQueue[int](10)
	q.Push(1)
	q.Close()

	if q.Push(2) {
		t.Error("Push() after Close() returned true")
	}

	val, ok := q.TryPop()
	if !ok || val != 1 {
		t.Errorf("TryPop() = %d, %v, want 1, true", val, ok)
	}
}

func TestQueue_ConcurrentPush(t *testing.T) {
	q := NewQueue[int](4)

	const producers = 8
	const perProducer = 500

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(i)
			}
		}()
	}

	total := 0
	stop := make(chan struct{})
	go func() {
		wg.Wait()
		close(stop)
	}()

	for {
		select {
		case <-q.Ready():
			total += len(q.Drain(0))
		case <-stop:
			total += len(q.Drain(0))
			if total != producers*perProducer {
				t.Errorf("drained %d items, want %d", total, producers*perProducer)
			}
			return
		}
	}
}

func TestNewQueue_MinCapacity(t *testing.T) {
	q := NewQueue[int](0)
	if q.Stats().Capacity != 1 {
		t.Errorf("Capacity = %d, want 1", q.Stats().Capacity)
	}
	q.Push(1)
	q.Push(2)
	if q.Len() != 2 {
		t.Errorf("Len() = %d, want 2", q.Len())
	}
}
