package clock

import (
	"sync"
	"time"

	"github.com/mbalug7/go-sensor-node/pkg/node"
)

// Ticker is a Source backed by time.Ticker, ticks are raised as interrupts
type Ticker struct {
	irq  *node.Interrupts
	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func NewTicker(irq *node.Interrupts) *Ticker {
	return &Ticker{irq: irq}
}

func (obj *Ticker) Start(period time.Duration, tick func()) {
	obj.Stop()
	obj.mu.Lock()
	defer obj.mu.Unlock()
	obj.stop = make(chan struct{})
	obj.done = make(chan struct{})
	go obj.run(period, tick, obj.stop, obj.done)
}

func (obj *Ticker) run(period time.Duration, tick func(), stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	t := time.NewTicker(period)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if !obj.irq.RaiseUntil(tick, stop) {
				return
			}
		}
	}
}

// Stop ends the tick goroutine and waits for it
func (obj *Ticker) Stop() {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	if obj.stop == nil {
		return
	}
	close(obj.stop)
	<-obj.done
	obj.stop = nil
	obj.done = nil
}
