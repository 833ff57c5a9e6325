package hal

// Strobe is a single byte command strobe understood by the radio chip
type Strobe uint8

// Radio interface defines set of methods that are needed to drive the packet radio
type Radio interface {
	Strobe(cmd Strobe) error
	WriteFIFO(data []byte) error
	ReadFIFO(buf []byte) error
	ReadRegister(addr RegAddress) (uint8, error)
	// TxComplete and RxAvailable consume the edge flags raised by the radio interrupt line
	TxComplete() bool
	RxAvailable() bool
	ReadRSSI() uint8
	// Configure selects the link, writes the register set and calibrates the chip
	Configure(channel uint8) error
}
