package cc112x

import "github.com/mbalug7/go-sensor-node/pkg/hal"

// command strobes
const (
	SRES    hal.Strobe = 0x30
	SFSTXON hal.Strobe = 0x31
	SXOFF   hal.Strobe = 0x32
	SCAL    hal.Strobe = 0x33
	SRX     hal.Strobe = 0x34
	STX     hal.Strobe = 0x35
	SIDLE   hal.Strobe = 0x36
	SWOR    hal.Strobe = 0x38
	SPWD    hal.Strobe = 0x39
	SFRX    hal.Strobe = 0x3A
	SFTX    hal.Strobe = 0x3B
	SNOP    hal.Strobe = 0x3D
)

// register space, extended registers carry 0x2F in the high byte
const (
	IOCFG3          hal.RegAddress = 0x0000
	IOCFG2          hal.RegAddress = 0x0001
	IOCFG1          hal.RegAddress = 0x0002
	IOCFG0          hal.RegAddress = 0x0003
	DEVIATION_M     hal.RegAddress = 0x000A
	MODCFG_DEV_E    hal.RegAddress = 0x000B
	DCFILT_CFG      hal.RegAddress = 0x000C
	PREAMBLE_CFG0   hal.RegAddress = 0x000E
	IQIC            hal.RegAddress = 0x0010
	CHAN_BW         hal.RegAddress = 0x0011
	MDMCFG0         hal.RegAddress = 0x0013
	SYMBOL_RATE2    hal.RegAddress = 0x0014
	SYMBOL_RATE1    hal.RegAddress = 0x0015
	SYMBOL_RATE0    hal.RegAddress = 0x0016
	AGC_REF         hal.RegAddress = 0x0017
	AGC_CS_THR      hal.RegAddress = 0x0018
	AGC_CFG3        hal.RegAddress = 0x001A
	AGC_CFG2        hal.RegAddress = 0x001B
	AGC_CFG1        hal.RegAddress = 0x001C
	AGC_CFG0        hal.RegAddress = 0x001D
	FIFO_CFG        hal.RegAddress = 0x001E
	SETTLING_CFG    hal.RegAddress = 0x0020
	FS_CFG          hal.RegAddress = 0x0021
	PKT_CFG1        hal.RegAddress = 0x0027
	PKT_CFG0        hal.RegAddress = 0x0028
	PA_CFG2         hal.RegAddress = 0x002B
	PA_CFG0         hal.RegAddress = 0x002D
	PKT_LEN         hal.RegAddress = 0x002E
	TXFIFO          hal.RegAddress = 0x003F
	RXFIFO          hal.RegAddress = 0x00BF
	IF_MIX_CFG      hal.RegAddress = 0x2F00
	FREQOFF_CFG     hal.RegAddress = 0x2F01
	TOC_CFG         hal.RegAddress = 0x2F02
	FREQ2           hal.RegAddress = 0x2F0C
	FREQ1           hal.RegAddress = 0x2F0D
	FREQ0           hal.RegAddress = 0x2F0E
	IF_ADC0         hal.RegAddress = 0x2F11
	FS_DIG1         hal.RegAddress = 0x2F12
	FS_DIG0         hal.RegAddress = 0x2F13
	FS_CAL2         hal.RegAddress = 0x2F15
	FS_CAL1         hal.RegAddress = 0x2F16
	FS_CAL0         hal.RegAddress = 0x2F17
	FS_CHP          hal.RegAddress = 0x2F18
	FS_DIVTWO       hal.RegAddress = 0x2F19
	FS_DSM0         hal.RegAddress = 0x2F1B
	FS_DVC0         hal.RegAddress = 0x2F1D
	FS_PFD          hal.RegAddress = 0x2F1F
	FS_PRE          hal.RegAddress = 0x2F20
	FS_REG_DIV_CML  hal.RegAddress = 0x2F21
	FS_SPARE        hal.RegAddress = 0x2F22
	FS_VCO4         hal.RegAddress = 0x2F23
	FS_VCO2         hal.RegAddress = 0x2F25
	FS_VCO0         hal.RegAddress = 0x2F27
	XOSC5           hal.RegAddress = 0x2F32
	XOSC1           hal.RegAddress = 0x2F36
	RSSI1           hal.RegAddress = 0x2F71
	RSSI0           hal.RegAddress = 0x2F72
	MARCSTATE       hal.RegAddress = 0x2F73
	PARTNUMBER      hal.RegAddress = 0x2F8F
	NUM_TXBYTES     hal.RegAddress = 0x2FD6
	NUM_RXBYTES     hal.RegAddress = 0x2FD7
)

// MARCSTATE values
const (
	MarcStateMask        = 0x1F
	MarcStateIdle        = 0x41
	MarcStateRxFifoError = 0x11
	MarcStateTxFifoError = 0x16
)

const (
	CRCOKMask     = 0x80
	RSSIValidMask = 0x01
	vcdacOffset   = 2
)

// Setting is one entry of the register set written on link selection
type Setting struct {
	address hal.RegAddress
	value   uint8
}

func (obj *Setting) GetAddress() hal.RegAddress {
	return obj.address
}

func (obj *Setting) GetValue() uint8 {
	return obj.value
}

func (obj *Setting) SetValue(value uint8) {
	obj.value = value
}

// PreferredSettings returns the 154 MHz variable length packet setup:
// CRC and RSSI appended to every received frame, GPIO0 asserted on tx/rx events.
func PreferredSettings() []hal.Register {
	return []hal.Register{
		&Setting{IOCFG3, 0xB0},
		&Setting{IOCFG2, 0xB0},
		&Setting{IOCFG1, 0xB0},
		&Setting{IOCFG0, 0x06},
		&Setting{DEVIATION_M, 0x26},
		&Setting{MODCFG_DEV_E, 0x1D},
		&Setting{DCFILT_CFG, 0x1C},
		&Setting{PREAMBLE_CFG0, 0x2A},
		&Setting{IQIC, 0xCE},
		&Setting{CHAN_BW, 0x0E},
		&Setting{MDMCFG0, 0x05},
		&Setting{SYMBOL_RATE2, 0x5A},
		&Setting{SYMBOL_RATE1, 0x36},
		&Setting{SYMBOL_RATE0, 0xE3},
		&Setting{AGC_REF, 0x20},
		&Setting{AGC_CS_THR, 0x19},
		&Setting{AGC_CFG3, 0x91},
		&Setting{AGC_CFG2, 0x20},
		&Setting{AGC_CFG1, 0x2D},
		&Setting{AGC_CFG0, 0x5F},
		&Setting{FIFO_CFG, 0x00},
		&Setting{SETTLING_CFG, 0x03},
		&Setting{FS_CFG, 0x1B},
		&Setting{PKT_CFG1, 0x05},
		&Setting{PKT_CFG0, 0x20},
		&Setting{PA_CFG2, 0x7C},
		&Setting{PA_CFG0, 0x7E},
		&Setting{PKT_LEN, 0xFF},
		&Setting{IF_MIX_CFG, 0x00},
		&Setting{FREQOFF_CFG, 0x22},
		&Setting{TOC_CFG, 0x0A},
		&Setting{FREQ2, 0x5C},
		&Setting{FREQ1, 0x66},
		&Setting{FREQ0, 0x66},
		&Setting{IF_ADC0, 0x05},
		&Setting{FS_DIG1, 0x00},
		&Setting{FS_DIG0, 0x5F},
		&Setting{FS_CAL1, 0x40},
		&Setting{FS_CAL0, 0x0E},
		&Setting{FS_DIVTWO, 0x03},
		&Setting{FS_DSM0, 0x33},
		&Setting{FS_DVC0, 0x17},
		&Setting{FS_PFD, 0x50},
		&Setting{FS_PRE, 0x6E},
		&Setting{FS_REG_DIV_CML, 0x14},
		&Setting{FS_SPARE, 0xAC},
		&Setting{FS_VCO0, 0xB4},
		&Setting{XOSC5, 0x0E},
		&Setting{XOSC1, 0x07},
	}
}
