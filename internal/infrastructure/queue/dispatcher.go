package queue

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/kodihomes/rental-platform/internal/api/metrics"
	"github.com/kodihomes/rental-platform/internal/core/domain"
	"github.com/kodihomes/rental-platform/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes payment jobs to a fixed set of workers using consistent
// hashing on the draft id, so the attempts of one draft never overlap.
type Dispatcher struct {
	workers []chan ports.PaymentJob
	log     zerolog.Logger

	mu   sync.RWMutex
	done <-chan struct{}
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.PaymentJob, numWorkers),
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.PaymentJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled,
// and Enqueue refuses jobs from then on.
func (d *Dispatcher) Start(ctx context.Context, runner ports.PaymentRunner) {
	d.mu.Lock()
	d.done = ctx.Done()
	d.mu.Unlock()
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch, runner)
	}
}

// Enqueue hands a job to the worker responsible for its draft. It never
// blocks: a stopped dispatcher or a full shard yields
// domain.ErrPaymentsUnavailable.
func (d *Dispatcher) Enqueue(job ports.PaymentJob) error {
	d.mu.RLock()
	done := d.done
	d.mu.RUnlock()
	select {
	case <-done:
		return fmt.Errorf("dispatcher stopped: %w", domain.ErrPaymentsUnavailable)
	default:
	}

	i := d.shardIndex(job.DraftID)
	select {
	case d.workers[i] <- job:
	default:
		metrics.PaymentsRejectedTotal.WithLabelValues(strconv.Itoa(i)).Inc()
		return fmt.Errorf("worker %d queue full: %w", i, domain.ErrPaymentsUnavailable)
	}
	metrics.PaymentQueueDepth.WithLabelValues(strconv.Itoa(i)).Set(float64(len(d.workers[i])))
	return nil
}

// shardIndex maps a draft id deterministically to a worker index.
func (d *Dispatcher) shardIndex(draftID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(draftID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.PaymentJob, runner ports.PaymentRunner) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			metrics.PaymentQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if err := runner.RunPayment(ctx, job); err != nil {
				d.log.Error().Err(err).
					Str("draft_id", job.DraftID).
					Int("worker_id", id).
					Msg("payment job failed")
			}
		}
	}
}
