package protocol

import "fmt"

// ErrorCode represents a fault raised by the node firmware. The value travels
// in the overrun field of the error-control byte, so it must fit in 5 bits.
type ErrorCode uint8

const (
	NoError ErrorCode = iota
	ErrTxFifo
	ErrRxFifo
	ErrCrcMismatch
	ErrTxGpioInterrupt
	ErrCommWaitTimeout
	ErrChipNotReady
	ErrRegisterInit
	ErrUartOverflow
	ErrSpiOverflow
	ErrI2cOverflow
	ErrI2cArbitration
	ErrBusBusy
	ErrHeaderUndefined
	ErrSensorIDUndefined
	ErrAdcNotFree
	ErrAdcMismatch
	ErrSamplingOverrun
	ErrRadioDivisorOverrun
	ErrCommWaitTimeMismatch
	ErrNackReceived
	ErrUndefinedState
	ErrSampleAverageExceeds
	ErrDeveloper
	ErrCalibration
)

var errorNames = [...]string{
	NoError:                 "no error",
	ErrTxFifo:               "tx fifo error",
	ErrRxFifo:               "rx fifo error",
	ErrCrcMismatch:          "crc mismatch",
	ErrTxGpioInterrupt:      "tx complete interrupt missing",
	ErrCommWaitTimeout:      "communication wait timeout",
	ErrChipNotReady:         "radio chip not ready",
	ErrRegisterInit:         "register init failed",
	ErrUartOverflow:         "uart buffer overflow",
	ErrSpiOverflow:          "spi buffer overflow",
	ErrI2cOverflow:          "i2c buffer overflow",
	ErrI2cArbitration:       "i2c bus arbitration lost",
	ErrBusBusy:              "bus busy",
	ErrHeaderUndefined:      "packet header undefined",
	ErrSensorIDUndefined:    "sensor id undefined",
	ErrAdcNotFree:           "adc resources not free",
	ErrAdcMismatch:          "adc conversion mismatch",
	ErrSamplingOverrun:      "sampling overrun",
	ErrRadioDivisorOverrun:  "radio divisor overrun",
	ErrCommWaitTimeMismatch: "communication wait time mismatch",
	ErrNackReceived:         "nack received",
	ErrUndefinedState:       "tx/rx undefined state",
	ErrSampleAverageExceeds: "sample average count exceeds limit",
	ErrDeveloper:            "invalid execution",
	ErrCalibration:          "calibration failed",
}

func (e ErrorCode) String() string {
	if int(e) < len(errorNames) {
		return errorNames[e]
	}
	return fmt.Sprintf("error code %d", uint8(e))
}

func (e ErrorCode) Error() string {
	return e.String()
}
