package hal

// RegAddress is a radio register address, extended addresses carry the 0x2F prefix in the high byte
type RegAddress uint16

type Register interface {
	GetAddress() RegAddress
	GetValue() uint8
	SetValue(value uint8)
}
