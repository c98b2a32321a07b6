package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/exhibit-hub/booking-api/internal/api/metrics"
	"github.com/exhibit-hub/booking-api/internal/core/domain"
	"github.com/exhibit-hub/booking-api/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

type mirrorJob struct {
	userID string
	ticket domain.TicketSummary
}

// MirrorDispatcher moves ticket mirroring off the request path. Jobs are
// routed to a fixed set of workers by hashing the user id, so summaries for
// one user are appended in the order their bookings were created.
type MirrorDispatcher struct {
	workers []chan mirrorJob
	inner   ports.TicketMirror
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewMirrorDispatcher creates a MirrorDispatcher with numWorkers sharded
// workers in front of inner. If numWorkers <= 0, defaultWorkers is used.
func NewMirrorDispatcher(numWorkers int, inner ports.TicketMirror, log zerolog.Logger) *MirrorDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &MirrorDispatcher{
		workers: make([]chan mirrorJob, numWorkers),
		inner:   inner,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan mirrorJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. When ctx is cancelled each worker
// drains what is already queued and exits; Wait blocks until they are done.
func (d *MirrorDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker started by Start has returned.
func (d *MirrorDispatcher) Wait() {
	d.wg.Wait()
}

// Mirror satisfies ports.TicketMirror. It never blocks: when the owning
// worker's queue is full the summary is dropped and counted as failed.
func (d *MirrorDispatcher) Mirror(_ context.Context, userID string, ticket domain.TicketSummary) {
	idx := d.shardIndex(userID)
	select {
	case d.workers[idx] <- mirrorJob{userID: userID, ticket: ticket}:
		metrics.MirrorQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
	default:
		metrics.TicketMirrorTotal.WithLabelValues("failed").Inc()
		d.log.Warn().
			Str("user_id", userID).
			Str("booking_id", ticket.BookingID).
			Int("worker_id", idx).
			Msg("mirror queue full, ticket summary dropped")
	}
}

// shardIndex maps a user id deterministically to a worker index.
func (d *MirrorDispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *MirrorDispatcher) runWorker(ctx context.Context, id int, ch <-chan mirrorJob) {
	defer d.wg.Done()
	depth := metrics.MirrorQueueDepth.WithLabelValues(strconv.Itoa(id))
	// Appends outlive the request that produced them and the shutdown signal.
	jobCtx := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case job := <-ch:
					depth.Dec()
					d.inner.Mirror(jobCtx, job.userID, job.ticket)
				default:
					return
				}
			}
		case job := <-ch:
			depth.Dec()
			d.inner.Mirror(jobCtx, job.userID, job.ticket)
		}
	}
}
