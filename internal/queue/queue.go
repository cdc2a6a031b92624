package queue

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"nswproperty/internal/models"
)

// pushRetryInterval is how long a blocked producer waits before re-trying a
// full queue.
const pushRetryInterval = 50 * time.Millisecond

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// SaleQueue is an in-memory queue of parsed sale batches sitting between the
// ingest parser and the database writers.
type SaleQueue struct {
	items   chan []*models.Sale
	maxSize int
	closed  bool
	mu      sync.RWMutex
	pending sync.WaitGroup
	logger  *logrus.Logger
}

// NewSaleQueue creates a new sale queue with the specified buffer size.
func NewSaleQueue(bufferSize int, logger *logrus.Logger) *SaleQueue {
	if logger == nil {
		logger = logrus.New()
	}
	return &SaleQueue{
		items:   make(chan []*models.Sale, bufferSize),
		maxSize: bufferSize,
		logger:  logger,
	}
}

// Push adds a batch of sales to the queue.
func (q *SaleQueue) Push(sales []*models.Sale) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}
	q.mu.RUnlock()

	// Non-blocking send to prevent deadlocks. The pending count is raised
	// before the send so a consumer can never finish the batch first.
	q.pending.Add(1)
	select {
	case q.items <- sales:
		q.logger.WithField("batch_size", len(sales)).Debug("Pushed batch to queue")
		return nil
	default:
		q.pending.Done()
		return ErrQueueFull
	}
}

// PushWait adds a batch, blocking while the queue is full. Producers doing a
// bulk load use this for backpressure instead of failing the run.
func (q *SaleQueue) PushWait(sales []*models.Sale) error {
	for {
		err := q.Push(sales)
		if !errors.Is(err, ErrQueueFull) {
			return err
		}
		time.Sleep(pushRetryInterval)
	}
}

// TaskDone marks one previously received batch as fully handled. Consumers
// call it after the batch has been written (or abandoned).
func (q *SaleQueue) TaskDone() {
	q.pending.Done()
}

// Wait blocks until every pushed batch has been received and marked done.
func (q *SaleQueue) Wait() {
	q.pending.Wait()
}

// Items exposes the batch channel for consumers. Multiple consumers may
// receive from it concurrently; each batch is delivered to exactly one.
func (q *SaleQueue) Items() <-chan []*models.Sale {
	return q.items
}

// Close prevents new items from being added. The channel itself stays open
// so in-flight producers never hit a closed channel.
func (q *SaleQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	return nil
}

// Len returns the current number of batches in the queue.
func (q *SaleQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed.
func (q *SaleQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
