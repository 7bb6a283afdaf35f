package promise

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestPromise_ResolveThenAwait(t *testing.T) {
	p := New[int]()
	p.Resolve(42)

	got, err := p.Await(context.Background())
	if err != nil {
		t.Fatalf("Await failed: %v", err)
	}
	if got != 42 {
		t.Errorf("Await = %d, want 42", got)
	}
}

func TestPromise_AwaitBlocksUntilResolve(t *testing.T) {
	p := New[string]()

	go func() {
		time.Sleep(10 * time.Millisecond)
		p.Resolve("done")
	}()

	got, err := p.Await(context.Background())
	if err != nil {
		t.Fatalf("Await failed: %v", err)
	}
	if got != "done" {
		t.Errorf("Await = %q, want %q", got, "done")
	}
}

func TestPromise_Reject(t *testing.T) {
	boom := errors.New("boom")
	p := New[int]()
	p.Reject(boom)

	_, err := p.Await(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("Await error = %v, want %v", err, boom)
	}
}

func TestPromise_CompletesExactlyOnce(t *testing.T) {
	p := New[int]()
	p.Resolve(1)
	p.Resolve(2)
	p.Reject(errors.New("late"))

	got, err := p.Await(context.Background())
	if err != nil {
		t.Fatalf("first completion should win, got error %v", err)
	}
	if got != 1 {
		t.Errorf("Await = %d, want 1 (first completion)", got)
	}
}

func TestPromise_ConcurrentCompleters(t *testing.T) {
	p := New[int]()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if n%2 == 0 {
				p.Resolve(n)
			} else {
				p.Reject(errors.New("racer"))
			}
		}(i)
	}
	wg.Wait()

	// Whichever racer won, the promise is complete and stable.
	v1, e1 := p.Await(context.Background())
	v2, e2 := p.Await(context.Background())
	if v1 != v2 || !errors.Is(e1, e2) && e1 != e2 {
		t.Errorf("result not stable: (%v, %v) then (%v, %v)", v1, e1, v2, e2)
	}
}

func TestPromise_AwaitContextCancelled(t *testing.T) {
	p := New[int]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Await(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Await error = %v, want context.Canceled", err)
	}

	// The producer is unaffected by the abandoned wait.
	p.Resolve(7)
	got, err := p.Await(context.Background())
	if err != nil || got != 7 {
		t.Errorf("Await after late resolve = (%d, %v), want (7, nil)", got, err)
	}
}

func TestPromise_Peek(t *testing.T) {
	p := New[int]()

	if _, _, ok := p.Peek(); ok {
		t.Error("Peek reported completion on an incomplete promise")
	}

	p.Resolve(9)
	got, err, ok := p.Peek()
	if !ok || err != nil || got != 9 {
		t.Errorf("Peek = (%d, %v, %t), want (9, nil, true)", got, err, ok)
	}
}

func TestPromise_Done(t *testing.T) {
	p := Resolved("x")

	select {
	case <-p.Done():
	default:
		t.Error("Done channel not closed on a resolved promise")
	}
}

func TestRejected(t *testing.T) {
	boom := errors.New("boom")
	p := Rejected[[]int](boom)

	v, err, ok := p.Peek()
	if !ok {
		t.Fatal("Rejected promise should be complete")
	}
	if v != nil {
		t.Errorf("value = %v, want nil", v)
	}
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}
