package mirror

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Astemirdum/library-circulation/library/internal/model"
)

const queueSize = 256

type job struct {
	op     string
	bookID int64
	fn     func(ctx context.Context) error
}

// Dispatcher notifies a Mirror in the background, one change at a time and in
// submission order. Failures are logged and dropped.
type Dispatcher struct {
	target  Mirror
	log     *zap.Logger
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	queue  chan job
	done   chan struct{}
}

func NewDispatcher(target Mirror, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		target:  target,
		log:     log.Named("mirror"),
		timeout: 10 * time.Second,
		queue:   make(chan job, queueSize),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) BookChanged(b model.Book) {
	doc := NewDocument(b)
	d.dispatch(job{op: "upsert", bookID: b.ID, fn: func(ctx context.Context) error {
		return d.target.Upsert(ctx, doc)
	}})
}

func (d *Dispatcher) BookDeleted(bookID int64) {
	d.dispatch(job{op: "delete", bookID: bookID, fn: func(ctx context.Context) error {
		return d.target.Delete(ctx, bookID)
	}})
}

func (d *Dispatcher) dispatch(j job) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.log.Warn("dispatcher closed, mirror change dropped", zap.String("op", j.op), zap.Int64("book_id", j.bookID))
		return
	}
	select {
	case d.queue <- j:
	default:
		d.log.Warn("mirror queue full, change dropped", zap.String("op", j.op), zap.Int64("book_id", j.bookID))
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for j := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := j.fn(ctx); err != nil {
			d.log.Warn("mirror", zap.String("op", j.op), zap.Int64("book_id", j.bookID), zap.Error(err))
		}
		cancel()
	}
}

// Close stops accepting changes and drains the queue until ctx is done.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
