package queue

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/poolconsultant/portal/internal/core/domain"
	"github.com/poolconsultant/portal/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher records session events on a fixed set of workers. Events of the
// same client always land on the same worker, so they are stored in order.
type Dispatcher struct {
	workers []chan domain.SessionEvent
	repo    ports.SessionEventRepository
	log     zerolog.Logger
	wg      sync.WaitGroup
}

var _ ports.SessionEventSink = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used. With a nil repo events are
// only logged.
func NewDispatcher(numWorkers int, repo ports.SessionEventRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.SessionEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.SessionEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands the event to the worker owning its client. It never blocks
// the caller: when the worker's buffer is full the event is dropped.
func (d *Dispatcher) Enqueue(event domain.SessionEvent) {
	select {
	case d.workers[d.shardIndex(event.ClientID)] <- event:
	default:
		d.log.Warn().
			Str("client_id", event.ClientID).
			Str("kind", string(event.Kind)).
			Msg("session event queue full, event dropped")
	}
}

// shardIndex maps a client id deterministically to a worker index.
func (d *Dispatcher) shardIndex(clientID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(clientID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.SessionEvent) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-ch:
			d.record(ctx, id, event)
		}
	}
}

func (d *Dispatcher) record(ctx context.Context, worker int, event domain.SessionEvent) {
	d.log.Info().
		Str("kind", string(event.Kind)).
		Str("client_id", event.ClientID).
		Int64("user_id", event.UserID).
		Str("role", string(event.Role)).
		Msg("session event")

	if d.repo == nil {
		return
	}
	if err := d.repo.InsertEvent(ctx, &event); err != nil {
		d.log.Error().Err(err).
			Str("client_id", event.ClientID).
			Int("worker_id", worker).
			Msg("session event recording failed")
	}
}
