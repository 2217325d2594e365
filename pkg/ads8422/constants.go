package ads8422

// Board wiring between the ADS8422 and the Raspberry Pi header.
// Values are BCM GPIO numbers, which are also the bit positions in the
// GPIO level register the sampling engine reads.

// Control lines driven by the sampling engine.
const (
	// PinCONVST starts a conversion.
	PinCONVST = 4
	// PinBUSY is high while a conversion is in progress.
	PinBUSY = 3
	// PinRD enables the parallel output bus.
	PinRD = 17
)

// Handshake lines between the Pi and the measurement MCU.
const (
	// PinTrigger is pulsed by the Pi to start a chirp.
	PinTrigger = 1
	// PinCompletion is pulled low by the MCU once the chirp is done.
	PinCompletion = 0
)

// Data bus, logical ADC bit -> GPIO.
const (
	PinDB0  = 14
	PinDB1  = 15
	PinDB2  = 18
	PinDB3  = 23
	PinDB4  = 24
	PinDB5  = 25
	PinDB6  = 8
	PinDB7  = 7
	PinDB8  = 12
	PinDB9  = 16
	PinDB10 = 20
	PinDB11 = 21
	PinDB12 = 26
	PinDB13 = 19
	PinDB14 = 13
	PinDB15 = 6
)

const (
	// DefaultVRef is the internal reference of the ADS8422.
	DefaultVRef = 4.096

	// NumBits is the resolution of the converter.
	NumBits = 16

	// RegisterBits is the width of a raw GPIO level register read.
	RegisterBits = 32

	fullScale = 1 << (NumBits - 1) // 32768
)

// DefaultBitMap is the data bus wiring of the acquisition board.
var DefaultBitMap = BitMap{
	PinDB0, PinDB1, PinDB2, PinDB3,
	PinDB4, PinDB5, PinDB6, PinDB7,
	PinDB8, PinDB9, PinDB10, PinDB11,
	PinDB12, PinDB13, PinDB14, PinDB15,
}
