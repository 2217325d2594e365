package ads8422

import (
	"errors"
	"fmt"
)

// RawWord is a single read of the GPIO level register, taken right after a conversion.
type RawWord uint32

// Code16 is a signed ADS8422 output code.
type Code16 int16

// BitMap maps logical ADC bit k (0 = LSB) to its bit position within a [RawWord].
type BitMap [NumBits]uint8

var ErrInvalidBitMap = errors.New("invalid bit map")

// Validate checks that every logical bit maps to a distinct position inside a [RawWord].
func (m BitMap) Validate() error {
	var seen uint32
	for k, pos := range m {
		if pos >= RegisterBits {
			return fmt.Errorf("%w: bit %d maps to position %d (max %d)", ErrInvalidBitMap, k, pos, RegisterBits-1)
		}
		if seen&(1<<pos) != 0 {
			return fmt.Errorf("%w: position %d is used more than once (bit %d)", ErrInvalidBitMap, pos, k)
		}
		seen |= 1 << pos
	}
	return nil
}

// Physical returns the register bit position of logical bit k.
func (m BitMap) Physical(k int) uint8 {
	return m[k]
}

// Mask returns the register bits covered by the map.
func (m BitMap) Mask() RawWord {
	var mask RawWord
	for _, pos := range m {
		mask |= 1 << pos
	}
	return mask
}

// Remap gathers the data bus bits out of word, MSB (logical bit 15) first,
// and interprets the result as two's complement.
func (m BitMap) Remap(word RawWord) Code16 {
	var u uint16
	for k := NumBits - 1; k >= 0; k-- {
		u <<= 1
		u |= uint16(word>>m[k]) & 1
	}
	return Code16(Convert16(u))
}

// Word is the inverse of [BitMap.Remap]: it places code on the data bus
// positions and leaves every other register bit clear.
func (m BitMap) Word(code Code16) RawWord {
	u := uint16(code)
	var w RawWord
	for k := 0; k < NumBits; k++ {
		if u&(1<<k) != 0 {
			w |= 1 << m[k]
		}
	}
	return w
}
