package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mbalug7/go-sensor-node/pkg/hal"
)

// IIOADC reads raw channels of a Linux industrial I/O converter from sysfs
type IIOADC struct {
	dir    string
	active bool
	value  uint16
}

// NewIIOADC uses the device directory, e.g. /sys/bus/iio/devices/iio:device0
func NewIIOADC(dir string) *IIOADC {
	return &IIOADC{dir: dir}
}

func (obj *IIOADC) Start(channel int) error {
	if obj.active {
		return hal.ErrBusy
	}
	v, err := obj.read(channel)
	if err != nil {
		return err
	}
	obj.value = v
	obj.active = true
	return nil
}

func (obj *IIOADC) Poll() (uint16, bool) {
	if !obj.active {
		return 0, false
	}
	obj.active = false
	return obj.value, true
}

func (obj *IIOADC) read(channel int) (uint16, error) {
	path := filepath.Join(obj.dir, fmt.Sprintf("in_voltage%d_raw", channel))
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read ADC channel %d: %w", channel, err)
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 16)
	if err != nil {
		return 0, fmt.Errorf("failed to parse ADC channel %d: %w", channel, err)
	}
	return uint16(v), nil
}
