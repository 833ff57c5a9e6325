package common

import (
	"fmt"

	"github.com/mbalug7/go-sensor-node/pkg/hal"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/host"
)

// I2CBus adapts a periph I2C bus to the polled hal.Bus. The transaction runs
// on Start, Poll hands out its result.
type I2CBus struct {
	bus    i2c.Bus
	closer func() error
	owned  bool
	active bool
	result []byte
	err    error
}

// OpenI2C opens the named I2C bus, an empty name picks the first one
func OpenI2C(name string) (*I2CBus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus: %w", err)
	}
	b := NewI2CBus(bus)
	b.closer = bus.Close
	return b, nil
}

func NewI2CBus(bus i2c.Bus) *I2CBus {
	return &I2CBus{bus: bus}
}

func (obj *I2CBus) Close() error {
	if obj.closer == nil {
		return nil
	}
	if err := obj.closer(); err != nil {
		return fmt.Errorf("failed to close I2C bus: %w", err)
	}
	return nil
}

func (obj *I2CBus) Acquire() bool {
	if obj.owned {
		return false
	}
	obj.owned = true
	return true
}

func (obj *I2CBus) Release() {
	obj.owned = false
	obj.active = false
}

func (obj *I2CBus) Start(address uint8, write []byte, readLen int) error {
	if obj.active {
		return hal.ErrBusy
	}
	obj.result = make([]byte, readLen)
	obj.err = obj.bus.Tx(uint16(address), write, obj.result)
	obj.active = true
	return nil
}

func (obj *I2CBus) Poll() ([]byte, bool, error) {
	if !obj.active {
		return nil, false, nil
	}
	obj.active = false
	if obj.err != nil {
		return nil, true, fmt.Errorf("failed to transfer on I2C bus: %w", obj.err)
	}
	return obj.result, true, nil
}
