package lps2x

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Interface is the register access capability a Dev is built on. Read fills
// b with len(b) consecutive registers starting at reg, which must auto-increment
// when len(b) > 1.
//
// NewI2C and NewSPI return the two implementations; tests may supply their own.
type Interface interface {
	Read(reg byte, b []byte) error
	Write(reg, value byte) error
	Model() Model
}

// Address is the I²C address, selected by the level strapped on SA0.
type Address bool

const (
	AddrSA0Low  Address = false // 0x5C
	AddrSA0High Address = true  // 0x5D
)

// Addr returns the 7-bit bus address.
func (a Address) Addr() uint16 {
	if a {
		return 0x5D
	}
	return 0x5C
}

func (a Address) String() string {
	return fmt.Sprintf("%#x", a.Addr())
}

// BusError is returned when a transfer on the underlying bus fails.
type BusError struct {
	Op  string // "read" or "write"
	Reg byte
	Err error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("lps2x: %s register 0x%02X: %v", e.Op, e.Reg, e.Err)
}

func (e *BusError) Unwrap() error { return e.Err }

// PinError is returned when the SPI chip select line cannot be driven.
type PinError struct {
	Level gpio.Level
	Err   error
}

func (e *PinError) Error() string {
	return fmt.Sprintf("lps2x: drive chip select %s: %v", e.Level, e.Err)
}

func (e *PinError) Unwrap() error { return e.Err }

// I2C talks to the sensor over an I²C bus.
type I2C struct {
	d       i2c.Dev
	variant *variant
}

// NewI2C returns an Interface for a sensor of model m at addr on b.
func NewI2C(b i2c.Bus, addr Address, m Model) (*I2C, error) {
	if b == nil {
		return nil, errors.New("lps2x: nil i2c bus")
	}
	v, err := m.variant()
	if err != nil {
		return nil, err
	}
	return &I2C{d: i2c.Dev{Bus: b, Addr: addr.Addr()}, variant: v}, nil
}

func (i *I2C) Read(reg byte, b []byte) error {
	if err := i.d.Tx([]byte{reg | i.variant.i2cRead}, b); err != nil {
		return &BusError{Op: "read", Reg: reg, Err: err}
	}
	return nil
}

func (i *I2C) Write(reg, value byte) error {
	if err := i.d.Tx([]byte{reg, value}, nil); err != nil {
		return &BusError{Op: "write", Reg: reg, Err: err}
	}
	return nil
}

func (i *I2C) Model() Model {
	return i.variant.model
}

// Bus returns the bus the adapter was built on.
func (i *I2C) Bus() i2c.Bus {
	return i.d.Bus
}

func (i *I2C) String() string {
	return fmt.Sprintf("%s{%s, %s}", i.variant.model, i.d.Bus, Address(i.d.Addr == 0x5D))
}

// SPIMaxSpeed is the fastest SPI clock either model accepts.
const SPIMaxSpeed = 10 * physic.MegaHertz

// OpenSPI connects p in mode 3 with chip select left to the caller, as NewSPI
// expects.
func OpenSPI(p spi.Port) (spi.Conn, error) {
	c, err := p.Connect(SPIMaxSpeed, spi.Mode3|spi.NoCS, 8)
	if err != nil {
		return nil, fmt.Errorf("lps2x: connect spi: %w", err)
	}
	return c, nil
}

// SPI talks to the sensor over a 4-wire SPI connection. The chip select line
// is driven by the adapter around every transaction.
type SPI struct {
	c       conn.Conn
	cs      gpio.PinOut
	variant *variant
}

// NewSPI returns an Interface for a sensor of model m on c, selected by cs.
// cs is driven high (deselected) before NewSPI returns.
func NewSPI(c conn.Conn, cs gpio.PinOut, m Model) (*SPI, error) {
	if c == nil {
		return nil, errors.New("lps2x: nil spi connection")
	}
	if cs == nil {
		return nil, errors.New("lps2x: nil chip select pin")
	}
	v, err := m.variant()
	if err != nil {
		return nil, err
	}
	if err := cs.Out(gpio.High); err != nil {
		return nil, &PinError{Level: gpio.High, Err: err}
	}
	return &SPI{c: c, cs: cs, variant: v}, nil
}

func (s *SPI) Read(reg byte, b []byte) error {
	w := make([]byte, len(b)+1)
	w[0] = reg | spiReadBit | s.variant.spiRead
	r := make([]byte, len(w))
	err := s.tx(w, r)
	if err != nil {
		if _, ok := err.(*PinError); !ok {
			return &BusError{Op: "read", Reg: reg, Err: err}
		}
		return err
	}
	copy(b, r[1:])
	return nil
}

func (s *SPI) Write(reg, value byte) error {
	err := s.tx([]byte{reg, value}, nil)
	if err != nil {
		if _, ok := err.(*PinError); !ok {
			return &BusError{Op: "write", Reg: reg, Err: err}
		}
		return err
	}
	return nil
}

// tx runs one transaction with chip select asserted. The line is released even
// when the transfer fails; a failure to release is reported only if the
// transfer itself succeeded.
func (s *SPI) tx(w, r []byte) (err error) {
	if err := s.cs.Out(gpio.Low); err != nil {
		return &PinError{Level: gpio.Low, Err: err}
	}
	defer func() {
		if perr := s.cs.Out(gpio.High); perr != nil && err == nil {
			err = &PinError{Level: gpio.High, Err: perr}
		}
	}()
	return s.c.Tx(w, r)
}

func (s *SPI) Model() Model {
	return s.variant.model
}

func (s *SPI) String() string {
	return fmt.Sprintf("%s{%s, %s}", s.variant.model, s.c, s.cs)
}
