package plugin

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/mudra/internal/announce"
)

// DefaultQueueSize is the number of pending transitions a Dispatcher buffers.
const DefaultQueueSize = 32

var (
	// ErrQueueFull is returned by Announce when the worker is behind.
	ErrQueueFull = errors.New("plugin queue full")
	// ErrDispatcherClosed is returned by Announce after Close.
	ErrDispatcherClosed = errors.New("plugin dispatcher closed")
)

// Dispatcher runs matching plugins for each gesture transition on a
// background worker so slow plugins never stall the run loop.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
	session  string
	log      logrus.FieldLogger

	queue chan announce.Event
	done  chan struct{}

	mu      sync.Mutex
	closed  bool
	started bool
	runs    int
	fails   int
}

// NewDispatcher creates a Dispatcher. Call Start before announcing.
func NewDispatcher(manager *Manager, executor *Executor, session string, log logrus.FieldLogger) *Dispatcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dispatcher{
		manager:  manager,
		executor: executor,
		session:  session,
		log:      log.WithField("component", "plugins"),
		queue:    make(chan announce.Event, DefaultQueueSize),
		done:     make(chan struct{}),
	}
}

// Start launches the worker. It exits after Close, once every queued event
// has run.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	if d.started {
		d.mu.Unlock()
		return
	}
	d.started = true
	d.mu.Unlock()

	go d.work(ctx)
}

// Announce implements announce.Announcer. It only enqueues the event.
func (d *Dispatcher) Announce(_ context.Context, ev announce.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.queue <- ev:
		return nil
	default:
		return fmt.Errorf("%w: dropped %s", ErrQueueFull, ev.Label)
	}
}

// Close stops accepting events and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	started := d.started
	close(d.queue)
	d.mu.Unlock()

	if started {
		<-d.done
	}
}

// Stats returns how many plugin runs happened and how many failed.
func (d *Dispatcher) Stats() (runs, failures int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.runs, d.fails
}

// work runs queued events until Close. Once ctx is done, remaining events
// still run, detached from ctx so only the executor timeout bounds them.
func (d *Dispatcher) work(ctx context.Context) {
	defer close(d.done)

	for {
		select {
		case <-ctx.Done():
			d.drain(context.WithoutCancel(ctx))
			return
		case ev, ok := <-d.queue:
			if !ok {
				return
			}
			if ctx.Err() != nil {
				detached := context.WithoutCancel(ctx)
				d.dispatch(detached, ev)
				d.drain(detached)
				return
			}
			d.dispatch(ctx, ev)
		}
	}
}

func (d *Dispatcher) drain(ctx context.Context) {
	for ev := range d.queue {
		d.dispatch(ctx, ev)
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, ev announce.Event) {
	for _, p := range d.manager.List() {
		action, ok := p.Handles(ev.Label)
		if !ok {
			continue
		}

		req := &Request{
			Action:     action,
			Gesture:    ev.Label,
			Status:     ev.Status.String(),
			Handedness: ev.Handedness,
			Frame:      ev.Frame,
			Session:    d.session,
			Time:       ev.Time,
			Config:     p.Manifest.Config,
		}

		start := time.Now()
		_, err := d.executor.Execute(ctx, p, req)

		d.mu.Lock()
		d.runs++
		if err != nil {
			d.fails++
		}
		d.mu.Unlock()

		entry := d.log.WithFields(logrus.Fields{
			"plugin":   p.Manifest.Name,
			"gesture":  string(ev.Label),
			"action":   action,
			"duration": time.Since(start).String(),
		})
		if err != nil {
			entry.WithError(err).Warn("plugin failed")
			continue
		}
		entry.Debug("plugin ran")
	}
}
