// Package sensors holds the sampling drivers of the sensors wired to the node.
package sensors

import (
	"github.com/mbalug7/go-sensor-node/pkg/hal"
	"github.com/mbalug7/go-sensor-node/pkg/power"
	"github.com/mbalug7/go-sensor-node/pkg/sampling"
)

// Temperature samples a thermistor on the shared 5V/3V3 rail through one ADC channel
type Temperature struct {
	power   *power.Manager
	adc     hal.ADC
	channel int
	powered bool
}

func NewTemperature(pm *power.Manager, adc hal.ADC, channel int) *Temperature {
	return &Temperature{power: pm, adc: adc, channel: channel}
}

func (obj *Temperature) DataLength() int { return 1 }
func (obj *Temperature) Averaged() bool  { return true }

func (obj *Temperature) Start() sampling.Status {
	if !obj.power.Request(power.IdentityTemperature) {
		return sampling.Pending
	}
	obj.powered = true
	return sampling.Ready
}

func (obj *Temperature) Begin() sampling.Status {
	if err := obj.adc.Start(obj.channel); err != nil {
		return sampling.Failed
	}
	return sampling.Ready
}

func (obj *Temperature) Poll(data []uint16) sampling.Status {
	v, ok := obj.adc.Poll()
	if !ok {
		return sampling.Pending
	}
	data[0] = v
	return sampling.Ready
}

func (obj *Temperature) Stop() {
	if obj.powered {
		obj.powered = false
		obj.power.Release()
	}
}

// Reset forgets the rail reference, the power manager was reset separately
func (obj *Temperature) Reset() {
	obj.powered = false
}
