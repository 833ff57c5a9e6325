package node

import (
	"context"
	"sync"
	"time"
)

// Interrupts serializes handlers raised by hardware callbacks, timers and
// tickers onto the scheduler goroutine, so shared flags keep a single writer.
type Interrupts struct {
	queue  chan func()
	closed chan struct{}
	once   sync.Once
}

func NewInterrupts(depth int) *Interrupts {
	return &Interrupts{
		queue:  make(chan func(), depth),
		closed: make(chan struct{}),
	}
}

// Raise queues handler, it is safe to call from any goroutine. Handlers
// raised after Close are dropped.
func (obj *Interrupts) Raise(handler func()) {
	select {
	case obj.queue <- handler:
	case <-obj.closed:
	}
}

// TryRaise queues handler unless the queue is full, it never blocks
func (obj *Interrupts) TryRaise(handler func()) bool {
	select {
	case obj.queue <- handler:
		return true
	default:
		return false
	}
}

// Close releases every pending and future Raise
func (obj *Interrupts) Close() {
	obj.once.Do(func() {
		close(obj.closed)
	})
}

// RaiseUntil queues handler unless stop closes first
func (obj *Interrupts) RaiseUntil(handler func(), stop <-chan struct{}) bool {
	select {
	case obj.queue <- handler:
		return true
	case <-stop:
		return false
	case <-obj.closed:
		return false
	}
}

// Service runs every queued handler without blocking and reports whether any ran
func (obj *Interrupts) Service() bool {
	serviced := false
	for {
		select {
		case handler := <-obj.queue:
			handler()
			serviced = true
		default:
			return serviced
		}
	}
}

// Pending reports whether a handler is waiting
func (obj *Interrupts) Pending() bool {
	return len(obj.queue) > 0
}

// Wait blocks until a handler arrives and runs it
func (obj *Interrupts) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case handler := <-obj.queue:
		handler()
		return nil
	}
}

// Timer is a one-shot hal.Timer backed by time.AfterFunc. Expiry is delivered
// through the interrupt queue, which also wakes a sleeping scheduler.
type Timer struct {
	irq     *Interrupts
	mu      sync.Mutex
	t       *time.Timer
	gen     uint64
	expired bool
}

func NewTimer(irq *Interrupts) *Timer {
	return &Timer{irq: irq}
}

func (obj *Timer) Start(d time.Duration) {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	if obj.t != nil {
		obj.t.Stop()
	}
	obj.gen++
	gen := obj.gen
	obj.expired = false
	obj.t = time.AfterFunc(d, func() {
		obj.irq.Raise(func() {
			obj.mu.Lock()
			defer obj.mu.Unlock()
			// a restart in between makes this expiry stale
			if gen == obj.gen {
				obj.expired = true
			}
		})
	})
}

func (obj *Timer) Expired() bool {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	return obj.expired
}

func (obj *Timer) Stop() {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	if obj.t != nil {
		obj.t.Stop()
	}
	obj.gen++
	obj.expired = false
}
