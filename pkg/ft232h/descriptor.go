package ft232h

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/yunginnanet/ft232h"
)

// ErrBadDescriptor is returned when a [Descriptor] identifies no device.
var ErrBadDescriptor = errors.New("invalid FT232H descriptor provided")

// DeviceInfo is a snapshot of the identity of the [FT232H] bridging the handshake lines.
type DeviceInfo struct {
	Index       int
	Serial      string
	Description string
	ProductID   string
	VendorID    string
	IsOpen      bool
	IsHighSpeed bool
}

func (di DeviceInfo) String() string {
	return fmt.Sprintf(
		"DeviceInfo{Index:%d, Serial:%s, Description:%s, ProductID:%s, VendorID:%s, IsOpen:%t, IsHighSpeed:%t}",
		di.Index, di.Serial, di.Description, di.ProductID, di.VendorID, di.IsOpen, di.IsHighSpeed,
	)
}

// Descriptor selects which FT232H to open, by index or by serial number.
type Descriptor struct {
	Index  int
	Serial string
	mask   *ft232h.Mask
}

// Validate checks if [Descriptor] identifies anything at all.
func (d Descriptor) Validate() error {
	if d.Index < 0 && d.Serial == "" && emptyMask(d.mask) {
		return ErrBadDescriptor
	}
	return nil
}

// Mask returns the [ft232h.Mask] used to open the device.
func (d Descriptor) Mask() *ft232h.Mask {
	msk := new(ft232h.Mask)
	if d.mask != nil {
		*msk = *d.mask
	}
	if d.Serial != "" {
		msk.Serial = d.Serial
	}
	if d.Index >= 0 {
		msk.Index = strconv.Itoa(d.Index)
	}
	return msk
}

func (d Descriptor) String() string {
	return fmt.Sprintf("Descriptor{Index:%d, Serial:%s}", d.Index, d.Serial)
}

// ByIndex selects the n-th FTDI device on the bus.
func ByIndex(index int) Descriptor {
	return Descriptor{Index: index}
}

// BySerial selects a device by its EEPROM serial number.
func BySerial(serial string) Descriptor {
	return Descriptor{Serial: serial, Index: -1}
}

// ByMask selects a device with a raw [ft232h.Mask].
func ByMask(mask *ft232h.Mask) Descriptor {
	return Descriptor{mask: mask, Index: -1}
}

// Select prefers serial over index, which is how the config file names a bridge.
func Select(index int, serial string) Descriptor {
	if serial != "" {
		return BySerial(serial)
	}
	return ByIndex(index)
}
