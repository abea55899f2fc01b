package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vikram-software/portal/internal/api/metrics"
	"github.com/vikram-software/portal/internal/core/domain"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Deliverer persists a single notification.
type Deliverer interface {
	Deliver(ctx context.Context, n domain.Notification) error
}

// Dispatcher routes notifications to a fixed set of workers using consistent
// hashing on the recipient, so each account receives its notifications in the
// order they were raised.
type Dispatcher struct {
	workers  []chan domain.Notification
	deliver  Deliverer
	log      zerolog.Logger
	wg       sync.WaitGroup
	mu       sync.RWMutex
	stopping bool
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, deliver Deliverer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.Notification, numWorkers),
		deliver: deliver,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Notification, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers drain their channel and exit
// after Stop, or exit immediately when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Notify hands n to the worker owning its recipient. It never blocks the
// caller: when the worker's buffer is full the notification is dropped and
// counted.
func (d *Dispatcher) Notify(n domain.Notification) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopping {
		metrics.NotificationsErrorsTotal.WithLabelValues("stopped").Inc()
		return
	}

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	idx := d.shardIndex(n.UserID)
	select {
	case d.workers[idx] <- n:
		metrics.NotificationsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.NotificationsErrorsTotal.WithLabelValues("queue_full").Inc()
		d.log.Warn().Str("user_id", n.UserID).Str("type", string(n.Type)).Int("worker_id", idx).Msg("notification queue full, dropping")
	}
}

// Stop closes the worker channels and waits until queued notifications are delivered.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.stopping {
		d.stopping = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Notification) {
	defer d.wg.Done()
	workerID := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			metrics.NotificationsQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))

			start := time.Now()
			// Delivery outlives the request that raised the notification.
			err := d.deliver.Deliver(context.WithoutCancel(ctx), n)
			if err != nil {
				metrics.NotificationDeliveryDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
				metrics.NotificationsErrorsTotal.WithLabelValues("deliver_failed").Inc()
				d.log.Error().Err(err).
					Str("user_id", n.UserID).
					Str("type", string(n.Type)).
					Int("worker_id", id).
					Msg("notification delivery failed")
				continue
			}
			metrics.NotificationDeliveryDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
			metrics.NotificationsDispatchedTotal.WithLabelValues(string(n.Type)).Inc()
		}
	}
}
