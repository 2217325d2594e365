package ads8422

// Convert16 interprets an unsigned 16-bit value in two's complement form.
func Convert16(u uint16) int32 {
	if u >= fullScale {
		return int32(u) - 1<<NumBits
	}
	return int32(u)
}

// Voltage is a calibrated ADC reading.
type Voltage float64

// ConvertCodeToVolts converts a signed code to a voltage.
// The ADS8422 input range is +/- vRef; 0x8000 is -vRef and 0x7FFF is one LSB short of +vRef.
func ConvertCodeToVolts(code Code16, vRef float64) Voltage {
	return Voltage(vRef * (float64(code) / fullScale))
}
