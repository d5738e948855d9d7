// Package queue is an in-process topic queue: handlers subscribe to a topic
// and published payloads are dispatched to them one at a time, in publish
// order. Handler errors are logged and swallowed so one bad task never
// stalls the queue.
package queue

import (
	"context"
	"sync"

	"github.com/google/uuid"

	brerrors "github.com/bburd/BibleRef/core/errors"
	"github.com/bburd/BibleRef/internal/logging"
)

// Handler processes one published payload.
type Handler func(ctx context.Context, data any) error

type task struct {
	id      string
	topic   string
	handler Handler
	data    any
}

// Queue dispatches published payloads to subscribed handlers through a
// single goroutine, preserving publish order across all topics.
type Queue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	handlers map[string][]Handler
	pending  []task
	closed   bool

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New starts a queue with a running dispatcher.
func New() *Queue {
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		handlers: make(map[string][]Handler),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

// Subscribe registers a handler for a topic. Handlers registered after a
// publish do not receive that payload.
func (q *Queue) Subscribe(topic string, h Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[topic] = append(q.handlers[topic], h)
}

// Publish enqueues the payload once per handler subscribed to the topic and
// returns without waiting for dispatch. Publishing to a topic with no
// handlers is a no-op.
func (q *Queue) Publish(topic string, data any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return brerrors.Wrap(brerrors.ErrClosed, "queue")
	}
	for _, h := range q.handlers[topic] {
		t := task{id: uuid.NewString(), topic: topic, handler: h, data: data}
		q.pending = append(q.pending, t)
		logging.TaskEvent("enqueued", t.id, t.topic)
	}
	q.cond.Signal()
	return nil
}

// run is the dispatcher loop. Tasks execute strictly one at a time.
func (q *Queue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.pending) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.pending) == 0 && q.closed {
			q.mu.Unlock()
			return
		}
		t := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()

		if err := t.handler(q.ctx, t.data); err != nil {
			logging.TaskError(t.id, t.topic, err)
			continue
		}
		logging.TaskEvent("completed", t.id, t.topic)
	}
}

// Close stops accepting publishes, lets already-queued tasks finish, and
// waits for the dispatcher to exit. A second Close fails with ErrClosed.
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return brerrors.Wrap(brerrors.ErrClosed, "queue")
	}
	q.closed = true
	q.cond.Signal()
	q.mu.Unlock()

	<-q.done
	q.cancel()
	return nil
}

// Depth reports the number of tasks waiting for dispatch.
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
