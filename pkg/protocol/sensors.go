package protocol

// SensorID identifies a physical sensor in the execution table and in download entries
type SensorID uint8

const (
	SensorChamberTemperature SensorID = 1
	SensorChamberPressure    SensorID = 2
	SensorBatteryTemperature SensorID = 3
	SensorTEGCold            SensorID = 4
	SensorTEGHot             SensorID = 5
	SensorUplinkRSSI         SensorID = 6
	SensorGyro               SensorID = 7
	SensorRange              SensorID = 8
	SensorBatteryStave1      SensorID = 16
	SensorBatteryStave8      SensorID = 23
)

var sensorDataLength = map[SensorID]int{
	SensorChamberTemperature: 1,
	SensorChamberPressure:    1,
	SensorUplinkRSSI:         1,
	SensorGyro:               3,
}

// DataLength returns the number of 16 bit words a sensor produces, 0 for
// ids without an implementation.
func DataLength(id SensorID) int {
	return sensorDataLength[id]
}

// Known reports whether id is part of the sensor id table
func Known(id SensorID) bool {
	switch {
	case id >= SensorChamberTemperature && id <= SensorRange:
		return true
	case id >= SensorBatteryStave1 && id <= SensorBatteryStave8:
		return true
	}
	return false
}
