package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mbalug7/go-sensor-node/pkg/cc112x"
	"github.com/mbalug7/go-sensor-node/pkg/clock"
	"github.com/mbalug7/go-sensor-node/pkg/collect"
	"github.com/mbalug7/go-sensor-node/pkg/common"
	"github.com/mbalug7/go-sensor-node/pkg/hal"
	"github.com/mbalug7/go-sensor-node/pkg/logging"
	"github.com/mbalug7/go-sensor-node/pkg/node"
	"github.com/mbalug7/go-sensor-node/pkg/power"
	"github.com/mbalug7/go-sensor-node/pkg/protocol"
	"github.com/mbalug7/go-sensor-node/pkg/radio"
	"github.com/mbalug7/go-sensor-node/pkg/sampling"
	"github.com/mbalug7/go-sensor-node/pkg/scheduler"
	"github.com/mbalug7/go-sensor-node/pkg/sensors"
	"github.com/mbalug7/go-sensor-node/pkg/sim"
	"github.com/mbalug7/go-sensor-node/pkg/table"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const interruptDepth = 32

var errWatchdogExpired = errors.New("watchdog expired")

var (
	simulate   bool
	uploadPath string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the node",
	Long: `Starts the scheduler loop. On a Linux host the radio is driven over SPI and
the power rail, reset and radio interrupt lines over gpiod. With --sim the
node runs against in-memory hardware and a scripted console that uploads
the --upload table (or a built in one) on the first request.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulate {
			cfg.Simulate = true
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		return runNode(cmd.Context())
	},
}

// backend is the hardware the node runs on
type backend struct {
	rail      hal.Line
	reset     hal.Line
	testPoint hal.Line
	radio     hal.Radio
	adc       hal.ADC
	bus       hal.Bus
	debugPort io.Writer
	closers   []func() error
}

// Close releases the hardware in reverse order of opening
func (obj *backend) Close() error {
	var err error
	for i := len(obj.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, obj.closers[i]())
	}
	return err
}

func openHardware(irq *node.Interrupts) (*backend, error) {
	hw, err := common.NewHWHandler(cfg.GPIO.PowerRail, cfg.GPIO.Reset, cfg.GPIO.TestPoint, cfg.GPIO.RadioIRQ, cfg.GPIO.Chip, cfg.Debug.Port, cfg.Debug.BaudRate)
	if err != nil {
		return nil, err
	}
	b := &backend{
		rail:      hw.RailLine,
		reset:     hw.ResetLine,
		testPoint: hw.TestPointLine,
		adc:       common.NewIIOADC(cfg.Sensors.ADC),
		debugPort: hw.DebugPort(),
		closers:   []func() error{hw.Close},
	}

	dev, err := cc112x.Open(cfg.Radio.SPIPort, cfg.Radio.VerifyRegisters, logger)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.closers = append(b.closers, dev.Close)
	b.radio = dev
	// GPIO0 edges arrive on the gpiod goroutine
	if err := hw.RegisterOnEdgeCb(func() { irq.Raise(dev.Edge) }); err != nil {
		b.Close()
		return nil, err
	}

	bus, err := common.OpenI2C(cfg.Sensors.I2CBus)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.closers = append(b.closers, bus.Close)
	b.bus = bus
	return b, nil
}

func openSim(irq *node.Interrupts) (*backend, *sim.Console, error) {
	upload, err := consoleUpload()
	if err != nil {
		return nil, nil, err
	}
	console := sim.NewConsole(upload, logger)
	console.DropEvery = cfg.Console.DropEvery
	console.LoopbackEvery = cfg.Console.LoopbackEvery

	rf := &sim.Radio{RSSI: console.RSSI, Respond: console.Respond}
	// edges are raised on the scheduler goroutine, a full queue already wakes it
	rf.OnEdge = func() { irq.TryRaise(func() {}) }

	b := &backend{
		rail:  &sim.Line{},
		reset: &sim.Line{},
		radio: rf,
		adc:   &sim.ADC{Value: 0x0321, Latency: 1},
		bus:   &sim.Bus{Response: []byte{0x12, 0x34, 0x00, 0x10, 0xFF, 0xF0}, Latency: 1},
	}
	return b, console, nil
}

func consoleUpload() ([]byte, error) {
	if uploadPath == "" {
		return demoTable().Upload(), nil
	}
	t, err := table.LoadFile(uploadPath)
	if err != nil {
		return nil, err
	}
	return table.FromTable(t).Upload(), nil
}

func demoTable() *table.Builder {
	return table.NewBuilder().
		SampleClock(2).
		RadioDivisor(4).
		CommTimeout(500).
		Sensor(protocol.SensorChamberTemperature, 1, 4, 1).
		Sensor(protocol.SensorChamberPressure, 2, 2, 1).
		Sensor(protocol.SensorUplinkRSSI, 1, 1, 2).
		Sensor(protocol.SensorGyro, 2, 1, 2)
}

func runNode(parent context.Context) error {
	ctx, cancel := context.WithCancelCause(parent)
	defer cancel(nil)

	irq := node.NewInterrupts(interruptDepth)
	defer irq.Close()

	var (
		b       *backend
		console *sim.Console
		err     error
	)
	if cfg.Simulate {
		b, console, err = openSim(irq)
	} else {
		b, err = openHardware(irq)
	}
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Error("failed to close hardware", zap.Error(err))
		}
	}()

	wd := common.NewWatchdog(time.Duration(cfg.Watchdog.TimeoutMs)*time.Millisecond, func() {
		logger.Error("watchdog expired, scheduler stalled")
		cancel(errWatchdogExpired)
	})
	rfTimer := node.NewTimer(irq)
	powerTimer := node.NewTimer(irq)
	pm := power.NewManager(b.rail, b.reset, powerTimer, logger)
	sink := logging.NewSink(logger, b.debugPort)

	nctx := node.NewContext(logger, sink, irq, pm, wd)
	nctx.OnTableChange = func(t *table.Table) {
		logger.Info("execution table installed",
			zap.Uint16("sample_clock_hz", t.SampleClock),
			zap.Uint16("radio_divisor", t.RadioDivisor),
			zap.Stringer("channel", t.Channel),
			zap.Int("sensors", len(t.Slots)))
	}
	nctx.LoadDefault()
	if cfg.Table != "" {
		t, err := table.LoadFile(cfg.Table)
		if err != nil {
			return err
		}
		nctx.Install(t)
		nctx.Enabled = node.TaskSampling | node.TaskCollection | node.TaskDownload | node.TaskDebugSerial | node.TaskWatchdog
	}

	clk := clock.New(nctx, clock.NewTicker(irq), b.testPoint, logger)
	registry := sampling.NewRegistry().
		Register(protocol.SensorChamberTemperature, sensors.NewTemperature(pm, b.adc, cfg.Sensors.TempChannel)).
		Register(protocol.SensorChamberPressure, sensors.NewPressure(pm, b.bus, cfg.Sensors.PressAddr)).
		Register(protocol.SensorUplinkRSSI, sensors.NewUplinkRSSI(nctx)).
		Register(protocol.SensorGyro, sensors.NewGyro(b.bus, cfg.Sensors.GyroAddr))
	validator := radio.NewValidator(nctx, clk, registry, logger)
	engine := radio.NewEngine(nctx, b.radio, rfTimer, validator, logger)

	sched := scheduler.New(nctx, logger).
		Register(node.TaskSampling, sampling.NewTask(nctx, registry, logger)).
		Register(node.TaskCollection, collect.NewTask(nctx, logger)).
		Register(node.TaskDownload, radio.NewDownloadTask(nctx, engine)).
		Register(node.TaskETRequest, radio.NewETRequestTask(nctx, engine)).
		Register(node.TaskDebugSerial, scheduler.DebugSerialTask(sink)).
		Register(node.TaskWatchdog, scheduler.WatchdogTask(wd))

	clk.Configure(nctx.Table.SampleClock)
	wd.Enable()
	logger.Info("node started", zap.Bool("simulate", cfg.Simulate), zap.Stringer("enabled", nctx.Enabled))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sched.Run(gctx)
	})
	g.Go(func() error {
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(signals)
		select {
		case s := <-signals:
			logger.Info("signal received", zap.Stringer("signal", s))
			cancel(nil)
		case <-gctx.Done():
		}
		return nil
	})
	err = g.Wait()

	clk.Stop()
	rfTimer.Stop()
	powerTimer.Stop()
	wd.Disable()
	irq.Close()
	pm.Reset()

	if console != nil {
		logger.Info("console summary", zap.Int("received", len(console.Received)), zap.Int("acknowledged", console.Acked))
	}
	if cause := context.Cause(ctx); errors.Is(cause, errWatchdogExpired) {
		return cause
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
