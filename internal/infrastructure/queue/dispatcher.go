// Package queue persists audit events asynchronously.
package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hbnb/marketplace/internal/core/domain"
	"github.com/hbnb/marketplace/internal/core/ports"
	"github.com/hbnb/marketplace/internal/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	insertTimeout  = 5 * time.Second
)

// Dispatcher routes audit events to a fixed set of workers using consistent
// hashing on the subject id, so events about one entity are written in the
// order they were published.
type Dispatcher struct {
	workers []chan domain.AuditEvent
	repo    ports.AuditRepository
	log     zerolog.Logger
	wg      sync.WaitGroup
}

var _ ports.AuditPublisher = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.AuditEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuditEvent, channelBuffer)
	}
	return d
}

// Start launches the worker goroutines. When ctx is cancelled each worker
// drains what is already queued and exits; Wait blocks until they are done.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has stopped.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Publish queues event on the worker responsible for its subject. It never
// blocks: when that worker's buffer is full the event is dropped and counted.
func (d *Dispatcher) Publish(event domain.AuditEvent) {
	idx := d.shardIndex(event.SubjectID)
	select {
	case d.workers[idx] <- event:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
	default:
		metrics.AuditErrorsTotal.WithLabelValues("queue_full").Inc()
		d.log.Warn().
			Str("action", string(event.Action)).
			Str("subject_id", event.SubjectID).
			Int("worker_id", idx).
			Msg("audit queue full, event dropped")
	}
}

// shardIndex maps a subject id deterministically to a worker index.
func (d *Dispatcher) shardIndex(subjectID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(subjectID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuditEvent) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case event := <-ch:
			d.persist(context.WithoutCancel(ctx), id, event)
		}
	}
}

func (d *Dispatcher) drain(id int, ch <-chan domain.AuditEvent) {
	for {
		select {
		case event := <-ch:
			d.persist(context.Background(), id, event)
		default:
			return
		}
	}
}

func (d *Dispatcher) persist(ctx context.Context, id int, event domain.AuditEvent) {
	metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(id)).Dec()

	ctx, cancel := context.WithTimeout(ctx, insertTimeout)
	defer cancel()

	if err := d.repo.Insert(ctx, &event); err != nil {
		metrics.AuditErrorsTotal.WithLabelValues("insert_failed").Inc()
		d.log.Error().Err(err).
			Str("action", string(event.Action)).
			Str("subject_id", event.SubjectID).
			Int("worker_id", id).
			Msg("audit event persistence failed")
	}
}
