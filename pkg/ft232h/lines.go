package ft232h

import (
	"errors"
	"fmt"

	"github.com/yunginnanet/ft232h"
)

// SetTriggerPin configures a C-bus pin as the trigger output, initially low.
func (ft *FT232H) SetTriggerPin(pin uint) error {
	ft.triggerPin = ft232h.CPin(pin)
	ft.log.Debug().Stringer("pin", ft.triggerPin).Uint("pos", uint(ft.triggerPin.Pos())).Msg("trigger pin set")
	return ft.GPIO.ConfigPin(ft.triggerPin, ft232h.Output, false)
}

// SetCompletionPin configures a C-bus pin as the completion input.
func (ft *FT232H) SetCompletionPin(pin uint) error {
	ft.completionPin = ft232h.CPin(pin)
	ft.log.Debug().Stringer("pin", ft.completionPin).Uint("pos", uint(ft.completionPin.Pos())).Msg("completion pin set")
	return ft.GPIO.ConfigPin(ft.completionPin, ft232h.Input, true)
}

func (ft *FT232H) TriggerPin() ft232h.CPin {
	return ft.triggerPin
}

func (ft *FT232H) CompletionPin() ft232h.CPin {
	return ft.completionPin
}

// SetTrigger drives the trigger line.
func (ft *FT232H) SetTrigger(high bool) error {
	if ft.triggerPin == 0 {
		return fmt.Errorf("trigger %w", ErrPinNotSet)
	}
	if err := ft.FT232H.GPIO.Set(ft.triggerPin, high); err != nil {
		return fmt.Errorf("failed to set trigger pin: %w", err)
	}
	return nil
}

// Completion reads the completion line level.
func (ft *FT232H) Completion() (bool, error) {
	if ft.completionPin == 0 {
		return false, fmt.Errorf("completion %w", ErrPinNotSet)
	}
	hl, err := ft.FT232H.GPIO.Get(ft.completionPin)
	if err != nil {
		return false, fmt.Errorf("failed to read completion pin: %w", err)
	}
	return hl, nil
}

// Close releases the trigger line and closes the device.
func (ft *FT232H) Close() error {
	var err error
	if ft.triggerPin != 0 {
		err = ft.FT232H.GPIO.Set(ft.triggerPin, false)
	}
	return errors.Join(err, ft.FT232H.Close())
}
