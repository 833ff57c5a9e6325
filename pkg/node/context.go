package node

import (
	"github.com/mbalug7/go-sensor-node/pkg/hal"
	"github.com/mbalug7/go-sensor-node/pkg/power"
	"github.com/mbalug7/go-sensor-node/pkg/protocol"
	"github.com/mbalug7/go-sensor-node/pkg/table"
	"go.uber.org/zap"
)

// CommManager tracks the exchange currently driven by the RF engine
type CommManager struct {
	TotalPackets uint8
	PacketIndex  uint8
	Retry        uint8
	DoubleCount  uint8
	Timeout      uint16 // live reply wait time in ms, doubled by the backoff
	Descriptor   protocol.Descriptor
	Check        protocol.ErrorControl
}

// Context is the state shared by every task and interrupt handler. Each
// field has one writer side and one clearing side:
//
//	SampleDue, RadioDue   set by the phase clock, cleared by sampling/collection
//	PacketReady           set by collection, cleared by download
//	NewInterrupt          set by Service, cleared by the scheduler pass
//	Active                set by the phase clock and tasks, cleared by the scheduler
type Context struct {
	Log      *zap.Logger
	Debug    hal.DebugSink
	Irq      *Interrupts
	Power    *power.Manager
	Watchdog hal.Watchdog

	Table   *table.Table
	Comm    CommManager
	Packets protocol.Bank

	Enabled TaskSet
	Active  TaskSet

	SampleDue     bool
	RadioDue      bool
	PacketReady   bool
	NewInterrupt  bool
	ControllerOff bool

	UplinkRSSI uint8
	LastError  protocol.ErrorCode

	// OnTableChange is invoked after the execution table was replaced
	OnTableChange func(t *table.Table)
}

func NewContext(log *zap.Logger, debug hal.DebugSink, irq *Interrupts, pm *power.Manager, wd hal.Watchdog) *Context {
	return &Context{
		Log:      log,
		Debug:    debug,
		Irq:      irq,
		Power:    pm,
		Watchdog: wd,
		Table:    table.Default(),
	}
}

// Service runs pending interrupt handlers and records that an interrupt occurred
func (obj *Context) Service() {
	if obj.Irq != nil && obj.Irq.Service() {
		obj.NewInterrupt = true
	}
}

// Activate marks tasks active, only enabled tasks are kept
func (obj *Context) Activate(tasks TaskSet) {
	obj.Active |= tasks & obj.Enabled
}

// LoadDefault reinstalls the boot execution table, only execution table
// requests stay enabled.
func (obj *Context) LoadDefault() {
	obj.Install(table.Default())
	obj.Enabled = TaskETRequest | TaskDebugSerial | TaskWatchdog
	obj.Active &= obj.Enabled
	obj.Log.Info("default execution table loaded")
}

// Install replaces the execution table
func (obj *Context) Install(t *table.Table) {
	t.Arm()
	obj.Table = t
	obj.Comm.Timeout = t.CommTimeout
	obj.Comm.DoubleCount = 0
	if obj.Power != nil {
		obj.Power.SetAlwaysOn(t.AlwaysOn)
	}
	if obj.OnTableChange != nil {
		obj.OnTableChange(t)
	}
}

// Report sends an error code to the debug sink
func (obj *Context) Report(code protocol.ErrorCode) {
	obj.LastError = code
	if obj.Debug != nil {
		obj.Debug.LogErrorCode(uint8(code))
		obj.Activate(TaskDebugSerial)
	}
}

// Flag reports code and also queues it in the overrun field of the next outgoing packet
func (obj *Context) Flag(code protocol.ErrorCode) {
	obj.Comm.Check = obj.Comm.Check.WithOverrun(code)
	obj.Report(code)
}

// Trace sends a progress string to the debug sink
func (obj *Context) Trace(msg string) {
	if obj.Debug != nil {
		obj.Debug.LogString(msg)
		obj.Activate(TaskDebugSerial)
	}
}
