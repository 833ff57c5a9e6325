// Package scheduler runs the cooperative task loop of the node. Tasks are
// fixed at start up and run to completion in bit order, a task that has to
// wait returns early and is polled again on the next pass.
package scheduler

import (
	"context"

	"github.com/mbalug7/go-sensor-node/pkg/hal"
	"github.com/mbalug7/go-sensor-node/pkg/node"
	"go.uber.org/zap"
)

// Task is one non-blocking unit of work, Run reports true when the task is done
type Task interface {
	Run() bool
}

// TaskFunc adapts a function to Task
type TaskFunc func() bool

func (f TaskFunc) Run() bool {
	return f()
}

type entry struct {
	bit  node.TaskSet
	task Task
}

type Scheduler struct {
	ctx   *node.Context
	tasks []entry
	log   *zap.Logger
	mode  hal.SleepMode
}

func New(ctx *node.Context, log *zap.Logger) *Scheduler {
	return &Scheduler{ctx: ctx, log: log.Named("scheduler")}
}

// Register binds task to its bit, tasks run in ascending bit order
func (obj *Scheduler) Register(bit node.TaskSet, task Task) *Scheduler {
	i := len(obj.tasks)
	for i > 0 && obj.tasks[i-1].bit > bit {
		i--
	}
	obj.tasks = append(obj.tasks, entry{})
	copy(obj.tasks[i+1:], obj.tasks[i:])
	obj.tasks[i] = entry{bit: bit, task: task}
	return obj
}

func (obj *Scheduler) pending() node.TaskSet {
	return obj.ctx.Enabled & obj.ctx.Active
}

// Pass runs the task list until every enabled task is done or a whole round
// went by without an interrupt.
func (obj *Scheduler) Pass() {
	ctx := obj.ctx
	ctx.Service()
	ctx.NewInterrupt = true
	for obj.pending() != node.TasksNone && ctx.NewInterrupt {
		ctx.NewInterrupt = false
		for _, e := range obj.tasks {
			ctx.Service()
			if !obj.pending().Has(e.bit) {
				continue
			}
			if e.task.Run() {
				ctx.Active &^= e.bit
			}
		}
		ctx.Service()
	}
}

// SelectSleep picks the low power mode after a pass
func (obj *Scheduler) SelectSleep() hal.SleepMode {
	switch {
	case obj.pending() == node.TasksNone && obj.ctx.ControllerOff:
		return hal.SleepPowerDown
	case obj.pending() == node.TasksNone:
		return hal.SleepPowerSave
	case !obj.ctx.NewInterrupt:
		return hal.SleepIdle
	}
	return hal.SleepNone
}

// Run loops until ctx is cancelled. Sleeping blocks on the interrupt queue.
func (obj *Scheduler) Run(ctx context.Context) error {
	wd := obj.ctx.Watchdog
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		obj.Pass()
		mode := obj.SelectSleep()
		if mode != obj.mode {
			obj.log.Debug("sleep mode", zap.Stringer("mode", mode), zap.Stringer("pending", obj.pending()))
			obj.mode = mode
		}
		switch mode {
		case hal.SleepPowerDown:
			// the watchdog keeps running in power down
			wd.Disable()
			err := obj.sleep(ctx)
			wd.Enable()
			if err != nil {
				return err
			}
		case hal.SleepPowerSave, hal.SleepIdle:
			if err := obj.sleep(ctx); err != nil {
				return err
			}
		}
		wd.Refresh()
	}
}

func (obj *Scheduler) sleep(ctx context.Context) error {
	if obj.ctx.Irq.Pending() {
		return nil
	}
	if err := obj.ctx.Irq.Wait(ctx); err != nil {
		return err
	}
	obj.ctx.NewInterrupt = true
	return nil
}
