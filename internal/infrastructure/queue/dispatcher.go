package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/farmconnect/marketplace-gateway/internal/api/metrics"
	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
	"github.com/farmconnect/marketplace-gateway/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	writeTimeout   = 5 * time.Second
)

// AuditDispatcher writes cart events to the audit trail off the request path.
// Events are sharded by buyer id so each buyer's events are stored in order.
type AuditDispatcher struct {
	workers []chan domain.CartEvent
	repo    ports.CartEventRepository
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

var _ ports.AuditSink = (*AuditDispatcher)(nil)

// NewAuditDispatcher creates a dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewAuditDispatcher(numWorkers int, repo ports.CartEventRepository, log zerolog.Logger) *AuditDispatcher {
	return newAuditDispatcher(numWorkers, channelBuffer, repo, log)
}

func newAuditDispatcher(numWorkers, buffer int, repo ports.CartEventRepository, log zerolog.Logger) *AuditDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &AuditDispatcher{
		workers: make([]chan domain.CartEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.CartEvent, buffer)
	}
	return d
}

// Start launches the workers. They exit when ctx is cancelled or after Close
// has drained their queues.
func (d *AuditDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Record enqueues event without blocking. When the worker queue is full or
// the dispatcher is closed the event is dropped and counted.
func (d *AuditDispatcher) Record(event domain.CartEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(event, "dispatcher closed")
		return
	}

	idx := d.shardIndex(event.BuyerID)
	ch := d.workers[idx]
	select {
	case ch <- event:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(ch)))
	default:
		d.drop(event, "queue full")
	}
}

// Close stops accepting events and waits for queued ones to be written.
func (d *AuditDispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// shardIndex maps a buyer id deterministically to a worker index.
func (d *AuditDispatcher) shardIndex(buyerID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(buyerID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *AuditDispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.CartEvent) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.AuditQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.write(ctx, id, event)
		}
	}
}

func (d *AuditDispatcher) write(ctx context.Context, id int, event domain.CartEvent) {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	if err := d.repo.InsertEvent(wctx, &event); err != nil {
		metrics.AuditEventsTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("buyer_id", event.BuyerID).
			Str("action", string(event.Action)).
			Int("worker_id", id).
			Msg("cart event write failed")
		return
	}
	metrics.AuditEventsTotal.WithLabelValues("stored").Inc()
}

func (d *AuditDispatcher) drop(event domain.CartEvent, reason string) {
	metrics.AuditEventsTotal.WithLabelValues("dropped").Inc()
	d.log.Warn().
		Str("buyer_id", event.BuyerID).
		Str("action", string(event.Action)).
		Str("reason", reason).
		Msg("cart event dropped")
}
