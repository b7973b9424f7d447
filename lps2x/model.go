package lps2x

import (
	"fmt"
	"strings"
)

// Model selects the register layout the driver talks to.
//
// The zero value is not a valid model; adapters and New reject it.
type Model uint8

const (
	// LPS22HB: 260-1260 hPa, 24-bit pressure, temperature in 1/100 °C.
	LPS22HB Model = iota + 1
	// LPS25HB: 260-1260 hPa, 24-bit pressure, temperature in 1/480 °C
	// offset by 42.5 °C.
	LPS25HB
)

func (m Model) String() string {
	switch m {
	case LPS22HB:
		return "LPS22HB"
	case LPS25HB:
		return "LPS25HB"
	default:
		return fmt.Sprintf("Model(%d)", uint8(m))
	}
}

// WhoAmI returns the value the model reports in WHO_AM_I, or 0 for an
// unknown model.
func (m Model) WhoAmI() byte {
	if v, err := m.variant(); err == nil {
		return v.whoAmI
	}
	return 0
}

// DataRates lists the output data rates the model supports, slowest first.
func (m Model) DataRates() []ODR {
	v, err := m.variant()
	if err != nil {
		return nil
	}
	var out []ODR
	for r := ODRPowerDown; r < numODR; r++ {
		if _, ok := v.rates[r]; ok {
			out = append(out, r)
		}
	}
	return out
}

// ParseModel parses a model name such as "lps22hb" or "LPS25HB".
func ParseModel(s string) (Model, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LPS22HB", "LPS22":
		return LPS22HB, nil
	case "LPS25HB", "LPS25":
		return LPS25HB, nil
	}
	return 0, fmt.Errorf("lps2x: unknown model %q", s)
}

// ModelFromID returns the model whose WHO_AM_I value is id.
func ModelFromID(id byte) (Model, bool) {
	for _, m := range []Model{LPS22HB, LPS25HB} {
		if m.WhoAmI() == id {
			return m, true
		}
	}
	return 0, false
}

func (m Model) variant() (*variant, error) {
	switch m {
	case LPS22HB:
		return &lps22hb, nil
	case LPS25HB:
		return &lps25hb, nil
	}
	return nil, fmt.Errorf("lps2x: invalid model %v", m)
}

// variant is everything that differs between the two models.
type variant struct {
	model  Model
	whoAmI byte

	regs   map[Register]byte
	fields map[field]bitfield

	// i2cRead is OR'ed into the register address of every I²C read.
	i2cRead byte
	// spiRead is OR'ed into the register address of every SPI read, on top
	// of the read bit.
	spiRead byte

	tempScale  float32
	tempOffset float32

	rates     map[ODR]byte
	fifoModes map[FifoMode]byte

	// fifoLevel turns a FIFO_STATUS byte into the number of stored samples
	// and whether the FIFO is empty.
	fifoLevel func(v *variant, status byte) (level uint8, empty bool)
}

const (
	// pressScale converts PRESS_OUT and REF_P counts to hPa on both models.
	pressScale = 4096.0
	// thresholdScale converts THS_P and RPDS counts to hPa.
	thresholdScale = 16.0

	spiReadBit  = 0x80
	autoIncBit  = 0x80
	spiMultiBit = 0x40
)

var lps22hb = variant{
	model:     LPS22HB,
	whoAmI:    0xB1,
	regs:      lps22hbRegisters,
	fields:    lps22hbFields,
	i2cRead:   0,
	spiRead:   0,
	tempScale: 100,
	rates: map[ODR]byte{
		ODRPowerDown: 0b000,
		ODR1Hz:       0b001,
		ODR10Hz:      0b010,
		ODR25Hz:      0b011,
		ODR50Hz:      0b100,
		ODR75Hz:      0b101,
	},
	fifoModes: map[FifoMode]byte{
		FifoBypass:         0b000,
		FifoFIFO:           0b001,
		FifoStream:         0b010,
		FifoStreamToFIFO:   0b011,
		FifoBypassToStream: 0b100,
		FifoDynamicStream:  0b110,
		FifoBypassToFIFO:   0b111,
	},
	// The stored level is a plain 6-bit count; there is no empty flag.
	fifoLevel: func(v *variant, status byte) (uint8, bool) {
		level := v.fields[fFSS].decode(status)
		return level, level == 0
	},
}

var lps25hb = variant{
	model:      LPS25HB,
	whoAmI:     0xBD,
	regs:       lps25hbRegisters,
	fields:     lps25hbFields,
	i2cRead:    autoIncBit,
	spiRead:    spiMultiBit,
	tempScale:  480,
	tempOffset: 42.5,
	rates: map[ODR]byte{
		ODRPowerDown: 0b000,
		ODR1Hz:       0b001,
		ODR7Hz:       0b010,
		ODR12p5Hz:    0b011,
		ODR25Hz:      0b100,
	},
	fifoModes: map[FifoMode]byte{
		FifoBypass:         0b000,
		FifoFIFO:           0b001,
		FifoStream:         0b010,
		FifoStreamToFIFO:   0b011,
		FifoBypassToStream: 0b100,
		FifoMean:           0b110,
		FifoBypassToFIFO:   0b111,
	},
	// FSS reads one less than the number of stored samples whenever the
	// FIFO holds data, so the empty flag must be checked first.
	fifoLevel: func(v *variant, status byte) (uint8, bool) {
		if status&v.fields[fEmptyFifo].mask != 0 {
			return 0, true
		}
		return v.fields[fFSS].decode(status) + 1, false
	},
}
