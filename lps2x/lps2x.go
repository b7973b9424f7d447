package lps2x

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/physic"
)

var (
	// ErrNotSupported is returned, wrapped, when the model lacks the register,
	// bit or enumeration value an operation needs.
	ErrNotSupported = errors.New("lps2x: not supported by this model")
	// ErrReleased is returned by every method after Release.
	ErrReleased = errors.New("lps2x: device released")
)

// Dev is an LPS22HB or LPS25HB.
type Dev struct {
	i Interface
	v *variant
}

// New returns a Dev talking through i. It does not touch the device.
func New(i Interface) (*Dev, error) {
	if i == nil {
		return nil, errors.New("lps2x: nil interface")
	}
	v, err := i.Model().variant()
	if err != nil {
		return nil, err
	}
	return &Dev{i: i, v: v}, nil
}

// Detect reads WHO_AM_I through i using the register layout of i's model and
// reports which model answered. The id is informative; Detect does not fail
// on a mismatch.
func Detect(i Interface) (Model, byte, error) {
	d, err := New(i)
	if err != nil {
		return 0, 0, err
	}
	id, err := d.DeviceID()
	if err != nil {
		return 0, 0, err
	}
	m, _ := ModelFromID(id)
	return m, id, nil
}

// Release gives back the Interface. The Dev is unusable afterwards.
func (d *Dev) Release() Interface {
	i := d.i
	d.i = nil
	return i
}

// Model returns the model the Dev was built for.
func (d *Dev) Model() Model {
	return d.v.model
}

func (d *Dev) String() string {
	if d.i == nil {
		return d.v.model.String() + "{released}"
	}
	return fmt.Sprintf("%s{%s}", d.v.model, d.i)
}

// DeviceID reads WHO_AM_I. Compare against Model().WhoAmI() for presence
// detection.
func (d *Dev) DeviceID() (byte, error) {
	return d.ReadRegister(RegWhoAmI)
}

// Sense triggers a one-shot conversion and reads it back once the device
// reports both values available.
//
// Pressure is reported in Pa precision, temperature in 0.01 °C.
func (d *Dev) Sense(e *physic.Env) error {
	if err := d.OneShot(); err != nil {
		return err
	}
	deadline := time.Now().Add(senseTimeout)
	for {
		s, err := d.DataStatus()
		if err != nil {
			return err
		}
		if s.PressureAvailable && s.TemperatureAvailable {
			break
		}
		if time.Now().After(deadline) {
			return errors.New("lps2x: conversion did not complete")
		}
		time.Sleep(sensePollInterval)
	}
	p, err := d.ReadPressure()
	if err != nil {
		return err
	}
	t, err := d.ReadTemperature()
	if err != nil {
		return err
	}
	e.Pressure = hPaToPressure(p)
	e.Temperature = celsiusToTemperature(t)
	return nil
}

// The slowest conversion, LPS25HB at maximum averaging, takes well under
// senseTimeout.
var (
	senseTimeout      = time.Second
	sensePollInterval = time.Millisecond
)

// Halt puts the device in power down.
func (d *Dev) Halt() error {
	return d.SetDataRate(ODRPowerDown)
}

// ReadRegister reads one register.
func (d *Dev) ReadRegister(r Register) (byte, error) {
	var b [1]byte
	if err := d.read(r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// SetBits sets the bits of mask in r, leaving the others as read.
func (d *Dev) SetBits(r Register, mask byte) error {
	return d.modify(r, mask, mask)
}

// ClearBits clears the bits of mask in r, leaving the others as read.
func (d *Dev) ClearBits(r Register, mask byte) error {
	return d.modify(r, mask, 0)
}

// TestBits reports whether any bit of mask is set in r.
func (d *Dev) TestBits(r Register, mask byte) (bool, error) {
	v, err := d.ReadRegister(r)
	if err != nil {
		return false, err
	}
	return v&mask != 0, nil
}

func (d *Dev) addr(r Register) (byte, error) {
	if d.i == nil {
		return 0, ErrReleased
	}
	a, ok := d.v.regs[r]
	if !ok {
		return 0, fmt.Errorf("%w: register %s on %s", ErrNotSupported, r, d.v.model)
	}
	return a, nil
}

func (d *Dev) read(r Register, b []byte) error {
	a, err := d.addr(r)
	if err != nil {
		return err
	}
	return d.i.Read(a, b)
}

func (d *Dev) write(r Register, v byte) error {
	a, err := d.addr(r)
	if err != nil {
		return err
	}
	return d.i.Write(a, v)
}

// modify replaces the bits of mask in r with those of v.
func (d *Dev) modify(r Register, mask, v byte) error {
	cur, err := d.ReadRegister(r)
	if err != nil {
		return err
	}
	return d.write(r, cur&^mask|v&mask)
}

// field looks up f in the active layout. name is used in the error.
func (d *Dev) field(f field, name string) (bitfield, error) {
	b, ok := d.v.fields[f]
	if !ok {
		return bitfield{}, fmt.Errorf("%w: %s on %s", ErrNotSupported, name, d.v.model)
	}
	return b, nil
}

// setField writes v into field f with a read-modify-write.
func (d *Dev) setField(f field, name string, v byte) error {
	b, err := d.field(f, name)
	if err != nil {
		return err
	}
	return d.modify(b.reg, b.mask, b.encode(v))
}

// setFlag sets or clears a single-bit field.
func (d *Dev) setFlag(f field, name string, on bool) error {
	b, err := d.field(f, name)
	if err != nil {
		return err
	}
	if on {
		return d.SetBits(b.reg, b.mask)
	}
	return d.ClearBits(b.reg, b.mask)
}

// testFlag reports whether single-bit field f is set.
func (d *Dev) testFlag(f field, name string) (bool, error) {
	b, err := d.field(f, name)
	if err != nil {
		return false, err
	}
	return d.TestBits(b.reg, b.mask)
}
