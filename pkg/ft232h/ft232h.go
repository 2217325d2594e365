// Package ft232h carries the acquisition handshake lines over the C-bus GPIO of an FTDI FT232H.
package ft232h

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yunginnanet/ft232h"
)

var ErrPinNotSet = errors.New("pin not set")

// FT232H is an FT232H whose GPIO carries the trigger and completion lines.
type FT232H struct {
	*ft232h.FT232H

	triggerPin    ft232h.CPin
	completionPin ft232h.CPin

	log zerolog.Logger
}

// ConnectFT232h opens the first FT232H found, or the one selected by choice.
func ConnectFT232h(choice ...Descriptor) (ft *FT232H, err error) {
	ft = &FT232H{log: zerolog.Nop()}

	switch len(choice) {
	case 0:
		ft.FT232H, err = ft232h.New()
	case 1:
		if err = choice[0].Validate(); err != nil {
			return nil, err
		}
		ft.FT232H, err = ft232h.OpenMask(choice[0].Mask())
	default:
		return nil, fmt.Errorf("invalid number of arguments")
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open FT232H: %w", err)
	}

	return ft, nil
}

// SetLogger attaches a logger for pin configuration events.
func (ft *FT232H) SetLogger(l zerolog.Logger) {
	ft.log = l
}

// Info returns a snapshot of the device information. Read-only.
func (ft *FT232H) Info() DeviceInfo {
	vid, pid := ft.vidPid()
	return DeviceInfo{
		Index:       ft.Index(),
		Serial:      ft.Serial(),
		Description: ft.Desc(),
		ProductID:   pid,
		VendorID:    vid,
		IsOpen:      ft.IsOpen(),
		IsHighSpeed: ft.IsHiSpeed(),
	}
}

func (ft *FT232H) String() string {
	vid, pid := ft.vidPid()
	return fmt.Sprintf("FT232H[%s:%s]: %s", vid, pid, ft.Desc())
}
