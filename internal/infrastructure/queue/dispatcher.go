// Package queue implements the asynchronous audit trail writer.
package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/entregas/delivery-marketplace/internal/api/metrics"
	"github.com/entregas/delivery-marketplace/internal/core/domain"
	"github.com/entregas/delivery-marketplace/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes transition events to a fixed set of workers using
// consistent hashing on the package id, so the audit trail of a single
// package is written in order. Record never blocks the transition path:
// when a worker channel is full the event is dropped and counted.
type Dispatcher struct {
	workers []chan domain.TransitionEvent
	repo    ports.AuditRepository
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.TransitionEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.TransitionEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Record sends an event to the worker responsible for its package. Creation
// events carry an empty From.
func (d *Dispatcher) Record(ev domain.TransitionEvent) {
	if ev.From == "" {
		metrics.PackagesCreatedTotal.WithLabelValues(string(ev.To)).Inc()
	} else {
		metrics.TransitionsAppliedTotal.WithLabelValues(string(ev.From), string(ev.To)).Inc()
	}

	i := d.shardIndex(ev.PackageID)
	select {
	case d.workers[i] <- ev:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(i)).Set(float64(len(d.workers[i])))
	default:
		metrics.AuditDroppedTotal.Inc()
		d.log.Warn().
			Str("package_id", ev.PackageID).
			Int("worker_id", i).
			Msg("audit queue full, event dropped")
	}
}

// shardIndex maps a package id deterministically to a worker index.
func (d *Dispatcher) shardIndex(packageID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(packageID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.TransitionEvent) {
	worker := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			metrics.AuditQueueDepth.WithLabelValues(worker).Set(float64(len(ch)))
			if err := d.repo.InsertTransition(ctx, &ev); err != nil {
				d.log.Error().Err(err).
					Str("package_id", ev.PackageID).
					Int("worker_id", id).
					Msg("audit write failed")
			}
		}
	}
}
