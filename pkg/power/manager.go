package power

import (
	"github.com/mbalug7/go-sensor-node/pkg/hal"
	"github.com/mbalug7/go-sensor-node/pkg/protocol"
	"go.uber.org/zap"
)

// Identity names a power rail consumer
type Identity uint8

const (
	IdentityNone Identity = iota
	IdentityCC1125
	IdentityTemperature
	IdentityPressure
	IdentityCC2520
	IdentitySystem
)

type Level uint8

const (
	LevelOff Level = iota
	Level5V
	Level5V3V3
)

func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case Level5V:
		return "5v"
	case Level5V3V3:
		return "5v+3v3"
	}
	return "unknown"
}

const (
	railOff = 0
	railOn  = 1

	// reset lines are active low
	resetAsserted   = 0
	resetDeasserted = 1
)

// Manager reference counts the shared, slow to stabilize power rail used by
// the radio and the analog sensors. Only one power up may be in flight, a
// second requester keeps polling until the owner completes it.
type Manager struct {
	rail     hal.Line
	reset    hal.Line
	timer    hal.Timer
	log      *zap.Logger
	usage    int
	owner    Identity
	level    Level
	pending  bool
	alwaysOn bool
}

func NewManager(rail hal.Line, reset hal.Line, timer hal.Timer, log *zap.Logger) *Manager {
	return &Manager{
		rail:  rail,
		reset: reset,
		timer: timer,
		log:   log.Named("power"),
	}
}

// Request returns true once the rail is fully on for id. It never blocks,
// callers poll it until it succeeds.
func (obj *Manager) Request(id Identity) bool {
	if obj.level == Level5V3V3 {
		obj.usage++
		return true
	}
	if !obj.pending {
		obj.usage++
		obj.owner = id
		obj.setLine(obj.rail, railOn, "rail")
		obj.level = Level5V
		obj.timer.Start(protocol.PowerStabilization)
		obj.pending = true
		obj.log.Debug("power up started", zap.Uint8("identity", uint8(id)))
		return false
	}
	if obj.owner != id || !obj.timer.Expired() {
		return false
	}
	obj.pending = false
	obj.level = Level5V3V3
	obj.setLine(obj.reset, resetDeasserted, "reset")
	obj.log.Debug("power up completed", zap.Uint8("identity", uint8(id)), zap.Int("usage", obj.usage))
	return true
}

// Release drops one reference, the rail is switched off with the last one
// unless it is kept always on
func (obj *Manager) Release() {
	if obj.usage > 0 {
		obj.usage--
	}
	if obj.usage > 0 || obj.alwaysOn && obj.level == Level5V3V3 {
		return
	}
	obj.off()
}

// SetAlwaysOn keeps the rail on between requests while sampling is fast
func (obj *Manager) SetAlwaysOn(on bool) {
	obj.alwaysOn = on
}

// Reset forces the rail off and forgets every consumer
func (obj *Manager) Reset() {
	obj.timer.Stop()
	obj.off()
}

// ResetUsage forgets every consumer and any power up in flight, the rail
// itself is left as is and drops with the next release
func (obj *Manager) ResetUsage() {
	obj.timer.Stop()
	obj.usage = 0
	obj.pending = false
	obj.owner = IdentityNone
}

func (obj *Manager) off() {
	obj.setLine(obj.reset, resetAsserted, "reset")
	obj.setLine(obj.rail, railOff, "rail")
	obj.level = LevelOff
	obj.usage = 0
	obj.pending = false
	obj.owner = IdentityNone
}

func (obj *Manager) setLine(line hal.Line, value int, name string) {
	if err := line.SetValue(value); err != nil {
		obj.log.Error("failed to set power line", zap.String("line", name), zap.Error(err))
	}
}

func (obj *Manager) Level() Level {
	return obj.level
}

func (obj *Manager) Usage() int {
	return obj.usage
}

func (obj *Manager) Pending() bool {
	return obj.pending
}

func (obj *Manager) AlwaysOn() bool {
	return obj.alwaysOn
}
