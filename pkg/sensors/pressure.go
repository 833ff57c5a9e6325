package sensors

import (
	"encoding/binary"

	"github.com/mbalug7/go-sensor-node/pkg/hal"
	"github.com/mbalug7/go-sensor-node/pkg/power"
	"github.com/mbalug7/go-sensor-node/pkg/sampling"
)

const (
	pressureCmdRead = 0x00
	gyroRegData     = 0x22
)

// Pressure reads a bridge transducer over I2C, it shares the analog rail with Temperature
type Pressure struct {
	power   *power.Manager
	bus     hal.Bus
	address uint8
	powered bool
	owned   bool
}

func NewPressure(pm *power.Manager, bus hal.Bus, address uint8) *Pressure {
	return &Pressure{power: pm, bus: bus, address: address}
}

func (obj *Pressure) DataLength() int { return 1 }
func (obj *Pressure) Averaged() bool  { return true }

func (obj *Pressure) Start() sampling.Status {
	if !obj.power.Request(power.IdentityPressure) {
		return sampling.Pending
	}
	obj.powered = true
	return sampling.Ready
}

func (obj *Pressure) Begin() sampling.Status {
	return beginRead(obj.bus, obj.address, pressureCmdRead, 2, &obj.owned)
}

func (obj *Pressure) Poll(data []uint16) sampling.Status {
	buf, status := pollRead(obj.bus, &obj.owned)
	if status != sampling.Ready {
		return status
	}
	data[0] = binary.BigEndian.Uint16(buf)
	return sampling.Ready
}

func (obj *Pressure) Stop() {
	if obj.owned {
		obj.owned = false
		obj.bus.Release()
	}
	if obj.powered {
		obj.powered = false
		obj.power.Release()
	}
}

// Reset drops an in flight transaction
func (obj *Pressure) Reset() {
	obj.powered = false
	obj.Stop()
}

// Gyro reads the three rate axes in one burst. It runs from the system rail
// and is never averaged.
type Gyro struct {
	bus     hal.Bus
	address uint8
	owned   bool
}

func NewGyro(bus hal.Bus, address uint8) *Gyro {
	return &Gyro{bus: bus, address: address}
}

func (obj *Gyro) DataLength() int        { return 3 }
func (obj *Gyro) Averaged() bool         { return false }
func (obj *Gyro) Start() sampling.Status { return sampling.Ready }

func (obj *Gyro) Begin() sampling.Status {
	return beginRead(obj.bus, obj.address, gyroRegData, 6, &obj.owned)
}

func (obj *Gyro) Poll(data []uint16) sampling.Status {
	buf, status := pollRead(obj.bus, &obj.owned)
	if status != sampling.Ready {
		return status
	}
	for i := 0; i < 3; i++ {
		data[i] = binary.BigEndian.Uint16(buf[2*i:])
	}
	return sampling.Ready
}

func (obj *Gyro) Stop() {
	if obj.owned {
		obj.owned = false
		obj.bus.Release()
	}
}

func (obj *Gyro) Reset() {
	obj.Stop()
}

func beginRead(bus hal.Bus, address uint8, reg byte, n int, owned *bool) sampling.Status {
	if !*owned {
		if !bus.Acquire() {
			return sampling.Failed
		}
		*owned = true
	}
	if err := bus.Start(address, []byte{reg}, n); err != nil {
		*owned = false
		bus.Release()
		return sampling.Failed
	}
	return sampling.Ready
}

func pollRead(bus hal.Bus, owned *bool) ([]byte, sampling.Status) {
	buf, done, err := bus.Poll()
	if !done {
		return nil, sampling.Pending
	}
	*owned = false
	bus.Release()
	if err != nil {
		return nil, sampling.Failed
	}
	return buf, sampling.Ready
}
