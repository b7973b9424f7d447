package lps2x

import (
	"fmt"
)

// FifoMode is the FIFO operating mode.
type FifoMode uint8

const (
	FifoBypass FifoMode = iota
	FifoFIFO
	FifoStream
	FifoStreamToFIFO
	FifoBypassToStream
	FifoBypassToFIFO
	FifoDynamicStream // LPS22HB only
	FifoMean          // LPS25HB only
)

var fifoModeNames = []string{"Bypass", "FIFO", "Stream", "StreamToFIFO", "BypassToStream", "BypassToFIFO", "DynamicStream", "Mean"}

func (m FifoMode) String() string {
	if int(m) < len(fifoModeNames) {
		return fifoModeNames[m]
	}
	return fmt.Sprintf("FifoMode(%d)", uint8(m))
}

// MeanSamples is the size of the moving average in FifoMean mode.
type MeanSamples uint8

const (
	Mean2Samples MeanSamples = iota
	Mean4Samples
	Mean8Samples
	Mean16Samples
	Mean32Samples
)

// bits is the WTM_POINT encoding: 2^(n+1)-1.
func (m MeanSamples) bits() byte {
	return byte(1)<<(m+1) - 1
}

// FifoWatermarkFull is the default watermark level, a full FIFO.
const FifoWatermarkFull = 32

// FifoConfig is the FIFO setup applied by ConfigureFifo.
type FifoConfig struct {
	Mode FifoMode
	// StopOnWatermark limits the FIFO depth to WatermarkLevel.
	StopOnWatermark bool
	// WatermarkLevel is the fill level that raises the threshold flag, 0-32.
	// The register holds 5 bits, so levels above 31 are stored as 31.
	WatermarkLevel uint8
	// Decimate lowers the output to 1 Hz in FifoMean mode. LPS25HB only.
	Decimate bool
	// MeanSamples replaces WatermarkLevel in FifoMean mode.
	MeanSamples MeanSamples
}

// DefaultFifoConfig returns a bypass configuration with a full watermark.
func DefaultFifoConfig() FifoConfig {
	return FifoConfig{
		Mode:           FifoBypass,
		WatermarkLevel: FifoWatermarkFull,
		MeanSamples:    Mean2Samples,
	}
}

// ConfigureFifo enables or disables the FIFO and applies c.
//
// The FIFO enable bit and the CTRL_REG2 auxiliary bits are merged into the
// register's current value; FIFO_CTRL is written in full.
func (d *Dev) ConfigureFifo(enable bool, c FifoConfig) error {
	mode, ok := d.v.fifoModes[c.Mode]
	if !ok {
		return fmt.Errorf("%w: fifo mode %s on %s", ErrNotSupported, c.Mode, d.v.model)
	}
	if c.WatermarkLevel > FifoWatermarkFull {
		return fmt.Errorf("lps2x: fifo watermark %d out of range [0, %d]", c.WatermarkLevel, FifoWatermarkFull)
	}
	if c.MeanSamples > Mean32Samples {
		return fmt.Errorf("lps2x: invalid mean sample count %d", c.MeanSamples)
	}
	stop, err := d.field(fStopOnFTH, "fifo stop on watermark")
	if err != nil {
		return err
	}
	auxMask := stop.mask
	aux := stop.flag(c.StopOnWatermark)
	if dec, ok := d.v.fields[fFifoMeanDec]; ok {
		auxMask |= dec.mask
		aux |= dec.flag(c.Decimate)
	} else if c.Decimate {
		return fmt.Errorf("%w: fifo decimation on %s", ErrNotSupported, d.v.model)
	}
	fm, err := d.field(fFifoMode, "fifo mode")
	if err != nil {
		return err
	}
	wtm, err := d.field(fWTM, "fifo watermark")
	if err != nil {
		return err
	}

	if err := d.setFlag(fFifoEn, "fifo", enable); err != nil {
		return err
	}
	if err := d.modify(stop.reg, auxMask, aux); err != nil {
		return err
	}
	low := c.WatermarkLevel
	if c.Mode == FifoMean {
		low = c.MeanSamples.bits()
	}
	if low > wtm.mask {
		low = wtm.mask
	}
	return d.write(fm.reg, fm.encode(mode)|wtm.encode(low))
}

// FifoStatus is a FIFO_STATUS snapshot.
type FifoStatus struct {
	ThresholdReached bool
	Overrun          bool
	Empty            bool
	// Level is the number of samples stored.
	Level uint8
}

// FifoStatus reads FIFO_STATUS.
func (d *Dev) FifoStatus() (FifoStatus, error) {
	fth, err := d.field(fFTHFifo, "fifo status")
	if err != nil {
		return FifoStatus{}, err
	}
	v, err := d.ReadRegister(fth.reg)
	if err != nil {
		return FifoStatus{}, err
	}
	return d.v.decodeFifoStatus(v), nil
}

func (v *variant) decodeFifoStatus(b byte) FifoStatus {
	level, empty := v.fifoLevel(v, b)
	return FifoStatus{
		ThresholdReached: b&v.fields[fFTHFifo].mask != 0,
		Overrun:          b&v.fields[fOVR].mask != 0,
		Empty:            empty,
		Level:            level,
	}
}
