// Package gpiochip carries the acquisition handshake lines over a Linux GPIO character device.
package gpiochip

import (
	"errors"
	"fmt"

	"github.com/warthog618/gpiod"

	"github.com/yunginnanet/oasis-ads8422/pkg/ads8422"
)

const (
	// DefaultChip is the SoC GPIO controller on a Raspberry Pi.
	DefaultChip = "gpiochip0"
	// Consumer labels the requested lines in gpioinfo.
	Consumer = "oasis"

	// GPIO0 and GPIO1 are the ID EEPROM pins on the header, reused here for the MCU link.
	DefaultTrigger    = ads8422.PinTrigger
	DefaultCompletion = ads8422.PinCompletion
)

// Lines holds the requested trigger and completion lines.
type Lines struct {
	chip       string
	trigger    *gpiod.Line
	completion *gpiod.Line
}

// Open requests trigger as an output, initially low, and completion as an input.
func Open(chip string, trigger, completion int) (*Lines, error) {
	if trigger == completion {
		return nil, fmt.Errorf("trigger and completion share line %d", trigger)
	}

	c, err := gpiod.NewChip(chip, gpiod.WithConsumer(Consumer))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", chip, err)
	}
	// requested lines stay valid after the chip is closed
	defer c.Close()

	l := &Lines{chip: chip}

	l.trigger, err = c.RequestLine(trigger, gpiod.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("failed to request trigger line %d: %w", trigger, err)
	}

	l.completion, err = c.RequestLine(completion, gpiod.AsInput)
	if err != nil {
		return nil, errors.Join(
			fmt.Errorf("failed to request completion line %d: %w", completion, err),
			l.trigger.Close(),
		)
	}

	return l, nil
}

// SetTrigger drives the trigger line.
func (l *Lines) SetTrigger(high bool) error {
	v := 0
	if high {
		v = 1
	}
	if err := l.trigger.SetValue(v); err != nil {
		return fmt.Errorf("failed to set trigger line: %w", err)
	}
	return nil
}

// Completion reads the completion line level.
func (l *Lines) Completion() (bool, error) {
	v, err := l.completion.Value()
	if err != nil {
		return false, fmt.Errorf("failed to read completion line: %w", err)
	}
	return v != 0, nil
}

func (l *Lines) String() string {
	return fmt.Sprintf("gpiochip[%s]{trigger:%d, completion:%d}", l.chip, l.trigger.Offset(), l.completion.Offset())
}

// Close drives the trigger low and releases both lines.
func (l *Lines) Close() error {
	return errors.Join(
		l.trigger.SetValue(0),
		l.trigger.Close(),
		l.completion.Close(),
	)
}
