package common

import (
	"fmt"
	"io"
	"sync"

	"github.com/tarm/serial"
	"github.com/warthog618/gpiod"
)

// HWHandler owns the GPIO lines and the debug UART of a Linux host
type HWHandler struct {
	chip          *gpiod.Chip
	RailLine      *gpiod.Line // analog and radio power rail enable
	ResetLine     *gpiod.Line // radio reset, active low
	TestPointLine *gpiod.Line // phase clock test point
	IRQLine       *gpiod.Line // radio GDO0, rising on tx complete and rx available
	debugPort     *serial.Port
	muEdge        sync.Mutex
	onEdgeCb      func()
}

func NewHWHandler(railPin int, resetPin int, testPointPin int, irqPin int, gpioChip string, ttyName string, baud int) (*HWHandler, error) {
	handler := &HWHandler{}
	var err error
	handler.chip, err = gpiod.NewChip(gpioChip, gpiod.WithConsumer("sensor-node"))
	if err != nil {
		return nil, fmt.Errorf("failed to create GPIO chip: %w", err)
	}

	handler.RailLine, err = handler.chip.RequestLine(railPin, gpiod.AsOutput(0))
	if err != nil {
		handler.Close()
		return nil, fmt.Errorf("failed to request power rail GPIO line: %w", err)
	}

	handler.ResetLine, err = handler.chip.RequestLine(resetPin, gpiod.AsOutput(0))
	if err != nil {
		handler.Close()
		return nil, fmt.Errorf("failed to request radio reset GPIO line: %w", err)
	}

	handler.TestPointLine, err = handler.chip.RequestLine(testPointPin, gpiod.AsOutput(0))
	if err != nil {
		handler.Close()
		return nil, fmt.Errorf("failed to request test point GPIO line: %w", err)
	}

	handler.IRQLine, err = handler.chip.RequestLine(irqPin, gpiod.WithEventHandler(handler.onIrqRiseEvent), gpiod.WithRisingEdge)
	if err != nil {
		handler.Close()
		return nil, fmt.Errorf("failed to request radio IRQ GPIO line: %w", err)
	}

	if ttyName != "" {
		handler.debugPort, err = serial.OpenPort(&serial.Config{
			Name: ttyName,
			Baud: baud,
			Size: 8,
		})
		if err != nil {
			handler.Close()
			return nil, fmt.Errorf("failed to open debug serial port, err: %w", err)
		}
	}
	return handler, nil
}

func (obj *HWHandler) Close() error {
	lines := []struct {
		name string
		line *gpiod.Line
	}{
		{"power rail", obj.RailLine},
		{"radio reset", obj.ResetLine},
		{"test point", obj.TestPointLine},
		{"radio IRQ", obj.IRQLine},
	}
	for _, l := range lines {
		if l.line == nil {
			continue
		}
		if err := l.line.Close(); err != nil {
			return fmt.Errorf("failed to close %s line: %w", l.name, err)
		}
	}
	if obj.debugPort != nil {
		if err := obj.debugPort.Close(); err != nil {
			return fmt.Errorf("failed to close debug serial port: %w", err)
		}
	}
	if obj.chip != nil {
		if err := obj.chip.Close(); err != nil {
			return fmt.Errorf("failed to close GPIO chip: %w", err)
		}
	}
	return nil
}

// DebugPort returns the debug UART, nil when none was configured
func (obj *HWHandler) DebugPort() io.Writer {
	if obj.debugPort == nil {
		return nil
	}
	return obj.debugPort
}

// RegisterOnEdgeCb sets the callback run on every radio IRQ rising edge. It
// runs on the gpiod event goroutine.
func (obj *HWHandler) RegisterOnEdgeCb(cb func()) error {
	obj.muEdge.Lock()
	defer obj.muEdge.Unlock()
	if obj.onEdgeCb != nil {
		return fmt.Errorf("on edge callback already registered")
	}
	obj.onEdgeCb = cb
	return nil
}

func (obj *HWHandler) onIrqRiseEvent(evt gpiod.LineEvent) {
	obj.muEdge.Lock()
	cb := obj.onEdgeCb
	obj.muEdge.Unlock()
	if cb != nil {
		cb()
	}
}
