package lps2x

import (
	"fmt"
)

// ActiveLevel is the asserted level of the INT_DRDY pin.
type ActiveLevel uint8

const (
	ActiveHigh ActiveLevel = iota
	ActiveLow
)

// PinMode is the INT_DRDY output stage.
type PinMode uint8

const (
	PushPull PinMode = iota
	OpenDrain
)

// DataSignal selects what drives INT_DRDY.
type DataSignal uint8

const (
	DataSignalDRDY DataSignal = iota
	DataSignalPressureHigh
	DataSignalPressureLow
	DataSignalPressureLowOrHigh
)

// InterruptConfig is the interrupt setup applied by ConfigureInterrupts.
// The zero value disables every source.
type InterruptConfig struct {
	Active     ActiveLevel
	Pin        PinMode
	DataSignal DataSignal

	FifoFull      bool // LPS22HB only
	FifoEmpty     bool // LPS25HB only
	FifoWatermark bool
	FifoOverrun   bool
	DataReady     bool

	// Differential enables differential pressure interrupt generation.
	Differential bool
	// Latch keeps INT_SOURCE set until it is read.
	Latch     bool
	LowEvent  bool
	HighEvent bool
}

func (c *InterruptConfig) validate(v *variant) error {
	if c.Active > ActiveLow || c.Pin > OpenDrain || c.DataSignal > DataSignalPressureLowOrHigh {
		return fmt.Errorf("lps2x: invalid interrupt pin config %+v", *c)
	}
	if _, ok := v.fields[fIntFifoFull]; c.FifoFull && !ok {
		return fmt.Errorf("%w: fifo full interrupt on %s", ErrNotSupported, v.model)
	}
	if _, ok := v.fields[fIntFifoEmpty]; c.FifoEmpty && !ok {
		return fmt.Errorf("%w: fifo empty interrupt on %s", ErrNotSupported, v.model)
	}
	return nil
}

// pinSources maps the per-source enables to their fields.
func (c *InterruptConfig) pinSources() map[field]bool {
	return map[field]bool{
		fIntFifoFull:  c.FifoFull,
		fIntFifoEmpty: c.FifoEmpty,
		fIntFifoFTH:   c.FifoWatermark,
		fIntFifoOvr:   c.FifoOverrun,
		fIntDRDY:      c.DataReady,
	}
}

// encode returns the bytes for the pin control registers, keyed by register,
// each built from zero.
func (c *InterruptConfig) encode(v *variant) map[Register]byte {
	f := v.fields
	out := map[Register]byte{
		RegCtrl3: f[fIntHL].flag(c.Active == ActiveLow) |
			f[fPPOD].flag(c.Pin == OpenDrain) |
			f[fIntS].encode(byte(c.DataSignal)),
	}
	for fl, on := range c.pinSources() {
		b, ok := f[fl]
		if !ok {
			continue
		}
		out[b.reg] |= b.flag(on)
	}
	return out
}

// eventBits returns the INTERRUPT_CFG bits for the event sources and the mask
// they occupy.
func (c *InterruptConfig) eventBits(v *variant) (bits, mask byte) {
	f := v.fields
	bits = f[fLIR].flag(c.Latch) | f[fPLE].flag(c.LowEvent) | f[fPHE].flag(c.HighEvent)
	mask = f[fLIR].mask | f[fPLE].mask | f[fPHE].mask
	return bits, mask
}

// ConfigureInterrupts applies c in three steps: the differential enable bit,
// the pin control register(s), then the event sources in INTERRUPT_CFG. A
// failing step aborts the rest.
//
// The pin control registers are written in full from c. On the LPS22HB,
// INTERRUPT_CFG also holds the autozero and AutoRefP bits, so only the event
// bits are replaced there; on the LPS25HB the register is written in full.
func (d *Dev) ConfigureInterrupts(c InterruptConfig) error {
	if err := c.validate(d.v); err != nil {
		return err
	}
	if err := d.setFlag(fDiffEn, "differential interrupt", c.Differential); err != nil {
		return err
	}
	regs := c.encode(d.v)
	for _, r := range []Register{RegCtrl3, RegCtrl4} {
		b, ok := regs[r]
		if !ok {
			continue
		}
		if err := d.write(r, b); err != nil {
			return err
		}
	}
	bits, mask := c.eventBits(d.v)
	if d.v.sharedInterruptCfg() {
		return d.modify(RegInterruptCfg, mask, bits)
	}
	return d.write(RegInterruptCfg, bits)
}

// sharedInterruptCfg reports whether INTERRUPT_CFG holds bits unrelated to
// interrupt sources.
func (v *variant) sharedInterruptCfg() bool {
	b, ok := v.fields[fAutozero]
	return ok && b.reg == RegInterruptCfg
}

// InterruptStatus is an INT_SOURCE snapshot.
type InterruptStatus struct {
	Active           bool
	DiffPressureLow  bool
	DiffPressureHigh bool
}

// InterruptStatus reads INT_SOURCE once. With Latch set the device clears the
// register on read, so a second call may report nothing.
func (d *Dev) InterruptStatus() (InterruptStatus, error) {
	v, err := d.ReadRegister(RegIntSource)
	if err != nil {
		return InterruptStatus{}, err
	}
	return d.v.decodeInterruptStatus(v), nil
}

func (v *variant) decodeInterruptStatus(b byte) InterruptStatus {
	f := v.fields
	return InterruptStatus{
		Active:           b&f[fIA].mask != 0,
		DiffPressureLow:  b&f[fPL].mask != 0,
		DiffPressureHigh: b&f[fPH].mask != 0,
	}
}
