package outbox

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"time"

	domoutbox "github.com/Zhima-Mochi/acuotaz-checkout/internal/domain/outbox"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/observability"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/observability/logctx"
)

const (
	componentOutbox = "outbox"

	defaultQueueSize      = 1024
	defaultConcurrency    = 8
	defaultHandlerTimeout = 30 * time.Second
)

// ContextDecorator prepares the handler context for one delivered event,
// typically attaching an event-scoped logger.
type ContextDecorator func(ctx context.Context, e domoutbox.Event) context.Context

// Bus is an in-memory, non-durable event bus. Handlers for one event run
// concurrently up to the concurrency cap; events are dispatched in order.
type Bus struct {
	mu          sync.RWMutex
	subs        map[string][]domoutbox.Handler
	queue       chan domoutbox.Event
	startOnce   sync.Once
	stopOnce    sync.Once
	cancel      context.CancelFunc
	done        chan struct{}
	concurrency int
	timeout     time.Duration
	decorate    ContextDecorator

	log        observability.Logger
	reqCounter observability.Counter // usecase_requests_total{use_case,outcome}
}

type Option func(*Bus)

// WithContextDecorator installs d for every handler invocation.
func WithContextDecorator(d ContextDecorator) Option {
	return func(b *Bus) { b.decorate = d }
}

func WithConcurrency(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

func WithHandlerTimeout(d time.Duration) Option {
	return func(b *Bus) {
		if d > 0 {
			b.timeout = d
		}
	}
}

func NewBus(tel observability.Observability, opts ...Option) *Bus {
	if tel == nil {
		tel = observability.Nop()
	}
	b := &Bus{
		subs:        make(map[string][]domoutbox.Handler),
		queue:       make(chan domoutbox.Event, defaultQueueSize),
		done:        make(chan struct{}),
		concurrency: defaultConcurrency,
		timeout:     defaultHandlerTimeout,
		log:         tel.Logger().With(observability.F("component", componentOutbox)),
		reqCounter:  tel.Metrics().Counter(observability.MUsecaseRequests),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bus) Subscribe(eventName string, h domoutbox.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[eventName] = append(b.subs[eventName], h)
}

func (b *Bus) Start(ctx context.Context) {
	b.startOnce.Do(func() {
		bg, cancel := context.WithCancel(context.WithoutCancel(ctx))
		b.cancel = cancel
		go b.dispatchLoop(bg)
		logctx.FromOr(ctx, b.log).Info("event_bus_started")
	})
}

// Stop closes the queue and waits for queued events to drain or ctx to end.
func (b *Bus) Stop(ctx context.Context) {
	b.stopOnce.Do(func() {
		close(b.queue)
		if b.cancel != nil {
			select {
			case <-b.done:
			case <-ctx.Done():
			}
			b.cancel()
		}
		logctx.FromOr(ctx, b.log).Info("event_bus_stopped")
	})
}

func (b *Bus) Publish(ctx context.Context, e domoutbox.Event) (err error) {
	if e == nil {
		return nil
	}
	defer func() {
		// send on a closed queue after Stop
		if r := recover(); r != nil {
			err = ErrClosed
		}
	}()
	logger := logctx.FromOr(ctx, b.log).With(
		observability.F("event", e.EventName()),
		observability.F("aggregate_id", e.AggregateID()),
	)
	select {
	case b.queue <- e:
		logger.Debug("event_enqueued")
		return nil
	case <-ctx.Done():
		logger.Warn("event_enqueue_aborted", observability.Err(ctx.Err()))
		return ctx.Err()
	}
}

func (b *Bus) dispatchLoop(ctx context.Context) {
	defer close(b.done)
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-b.queue:
			if !ok {
				return
			}
			b.fanout(ctx, e)
		}
	}
}

func (b *Bus) fanout(ctx context.Context, e domoutbox.Event) {
	name := e.EventName()

	b.mu.RLock()
	handlers := append([]domoutbox.Handler(nil), b.subs[name]...)
	b.mu.RUnlock()

	logger := b.log.With(
		observability.F("event", name),
		observability.F("aggregate_id", e.AggregateID()),
	)
	if len(handlers) == 0 {
		logger.Debug("event_dropped_no_subscriber")
		return
	}

	ctx = logctx.With(ctx, logger)
	if b.decorate != nil {
		ctx = b.decorate(ctx, e)
	}

	sem := make(chan struct{}, b.concurrency)
	var wg sync.WaitGroup

	for _, h := range handlers {
		h := h
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			outcome := "success"
			defer func() {
				if r := recover(); r != nil {
					outcome = "panic"
					logger.Error("event_handler_panic",
						observability.F("panic", r),
						observability.F("stack", string(debug.Stack())),
					)
				}
				b.reqCounter.Add(1,
					observability.L("use_case", "outbox.dispatch"),
					observability.L("outcome", outcome),
				)
				<-sem
				wg.Done()
			}()

			hctx, cancel := context.WithTimeout(ctx, b.timeout)
			defer cancel()
			if err := h(hctx, e); err != nil {
				outcome = "error"
				logctx.FromOr(hctx, logger).Warn("event_handler_error", observability.Err(err))
			}
		}()
	}

	wg.Wait()
	logger.Debug("event_fanned_out", observability.F("handlers", len(handlers)))
}

// ErrClosed is returned by Publish after Stop.
var ErrClosed = errors.New("outbox: bus closed")
