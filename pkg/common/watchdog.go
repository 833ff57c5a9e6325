package common

import (
	"sync"
	"time"
)

// Watchdog is a software watchdog, onExpire runs when it was not refreshed within timeout
type Watchdog struct {
	mu       sync.Mutex
	timeout  time.Duration
	timer    *time.Timer
	onExpire func()
}

func NewWatchdog(timeout time.Duration, onExpire func()) *Watchdog {
	return &Watchdog{timeout: timeout, onExpire: onExpire}
}

func (obj *Watchdog) Enable() {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	if obj.timer != nil {
		obj.timer.Reset(obj.timeout)
		return
	}
	obj.timer = time.AfterFunc(obj.timeout, obj.onExpire)
}

func (obj *Watchdog) Disable() {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	if obj.timer != nil {
		obj.timer.Stop()
		obj.timer = nil
	}
}

func (obj *Watchdog) Refresh() {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	if obj.timer != nil {
		obj.timer.Reset(obj.timeout)
	}
}
