package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	brerrors "github.com/bburd/BibleRef/core/errors"
)

// waitFor polls until cond returns true or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestPublishDispatchesInOrder(t *testing.T) {
	q := New()
	defer q.Close()

	var mu sync.Mutex
	var got []int
	q.Subscribe("verse", func(_ context.Context, data any) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, data.(int))
		return nil
	})

	for i := 1; i <= 5; i++ {
		if err := q.Publish("verse", i); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 5
	})
	mu.Lock()
	defer mu.Unlock()
	for i, v := range got {
		if v != i+1 {
			t.Fatalf("got %v, want [1 2 3 4 5]", got)
		}
	}
}

func TestMultipleSubscribersEachReceive(t *testing.T) {
	q := New()
	defer q.Close()

	var mu sync.Mutex
	counts := map[string]int{}
	for _, name := range []string{"a", "b"} {
		name := name
		q.Subscribe("plan", func(context.Context, any) error {
			mu.Lock()
			defer mu.Unlock()
			counts[name]++
			return nil
		})
	}

	if err := q.Publish("plan", "day 1"); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return counts["a"] == 1 && counts["b"] == 1
	})
}

func TestPublishUnsubscribedTopicIsNoop(t *testing.T) {
	q := New()
	defer q.Close()

	if err := q.Publish("nobody-home", 42); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if depth := q.Depth(); depth != 0 {
		t.Errorf("Depth = %d, want 0", depth)
	}
}

func TestHandlerErrorDoesNotStallQueue(t *testing.T) {
	q := New()
	defer q.Close()

	var mu sync.Mutex
	var delivered []int
	q.Subscribe("search", func(_ context.Context, data any) error {
		n := data.(int)
		if n == 2 {
			return errors.New("boom")
		}
		mu.Lock()
		defer mu.Unlock()
		delivered = append(delivered, n)
		return nil
	})

	for _, n := range []int{1, 2, 3} {
		if err := q.Publish("search", n); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(delivered) == 2
	})
	mu.Lock()
	defer mu.Unlock()
	if delivered[0] != 1 || delivered[1] != 3 {
		t.Errorf("delivered = %v, want [1 3]", delivered)
	}
}

func TestCloseDrainsPending(t *testing.T) {
	q := New()

	var mu sync.Mutex
	var count int
	q.Subscribe("slow", func(context.Context, any) error {
		time.Sleep(10 * time.Millisecond)
		mu.Lock()
		defer mu.Unlock()
		count++
		return nil
	})

	for i := 0; i < 3; i++ {
		if err := q.Publish("slow", i); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	if err := q.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if count != 3 {
		t.Errorf("count = %d, want 3 (Close must drain)", count)
	}
}

func TestPublishAfterClose(t *testing.T) {
	q := New()
	if err := q.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := q.Publish("verse", 1); !brerrors.Is(err, brerrors.ErrClosed) {
		t.Errorf("Publish after close: err = %v, want ErrClosed", err)
	}
	if err := q.Close(); !brerrors.Is(err, brerrors.ErrClosed) {
		t.Errorf("double Close: err = %v, want ErrClosed", err)
	}
}
