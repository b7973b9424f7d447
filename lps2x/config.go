package lps2x

import (
	"fmt"
)

// ODR is an output data rate.
type ODR uint8

const (
	// ODRPowerDown stops continuous conversion. Conversions then run only
	// when triggered with OneShot.
	ODRPowerDown ODR = iota
	ODR1Hz
	ODR7Hz    // LPS25HB only
	ODR10Hz   // LPS22HB only
	ODR12p5Hz // LPS25HB only
	ODR25Hz
	ODR50Hz // LPS22HB only
	ODR75Hz // LPS22HB only

	numODR
)

// ODROneShot is the same setting as ODRPowerDown.
const ODROneShot = ODRPowerDown

var odrNames = [numODR]string{"PowerDown", "1Hz", "7Hz", "10Hz", "12.5Hz", "25Hz", "50Hz", "75Hz"}

func (o ODR) String() string {
	if o < numODR {
		return odrNames[o]
	}
	return fmt.Sprintf("ODR(%d)", uint8(o))
}

// SetDataRate selects the output data rate.
func (d *Dev) SetDataRate(o ODR) error {
	enc, ok := d.v.rates[o]
	if !ok {
		return fmt.Errorf("%w: data rate %s on %s", ErrNotSupported, o, d.v.model)
	}
	return d.setField(fODR, "data rate", enc)
}

// DataRate reads back the output data rate.
func (d *Dev) DataRate() (ODR, error) {
	b, err := d.field(fODR, "data rate")
	if err != nil {
		return 0, err
	}
	v, err := d.ReadRegister(b.reg)
	if err != nil {
		return 0, err
	}
	enc := b.decode(v)
	for o, e := range d.v.rates {
		if e == enc {
			return o, nil
		}
	}
	return 0, fmt.Errorf("lps2x: unknown data rate encoding %#b", enc)
}

// TempAverage is the number of internal temperature samples averaged per
// output.
type TempAverage uint8

const (
	TempAvg8 TempAverage = iota
	TempAvg16
	TempAvg32
	TempAvg64
)

// PressAverage is the number of internal pressure samples averaged per output.
type PressAverage uint8

const (
	PressAvg8 PressAverage = iota
	PressAvg32
	PressAvg128
	PressAvg512
)

// SetTemperatureResolution sets the temperature averaging. LPS25HB only.
func (d *Dev) SetTemperatureResolution(a TempAverage) error {
	if a > TempAvg64 {
		return fmt.Errorf("lps2x: invalid temperature average %d", a)
	}
	return d.setField(fAvgT, "temperature resolution", byte(a))
}

// SetPressureResolution sets the pressure averaging. LPS25HB only.
func (d *Dev) SetPressureResolution(a PressAverage) error {
	if a > PressAvg512 {
		return fmt.Errorf("lps2x: invalid pressure average %d", a)
	}
	return d.setField(fAvgP, "pressure resolution", byte(a))
}

// EnableSensor powers the LPS25HB up or down. The LPS22HB has no power bit
// and is active whenever a data rate is set or a one-shot is triggered, so
// on that model EnableSensor does nothing and returns nil.
func (d *Dev) EnableSensor(on bool) error {
	if _, ok := d.v.fields[fPowerOn]; !ok {
		return nil
	}
	return d.setFlag(fPowerOn, "power", on)
}

// EnableBlockDataUpdate keeps the output registers from changing until both
// halves of a multi-byte value have been read.
func (d *Dev) EnableBlockDataUpdate(on bool) error {
	return d.setFlag(fBDU, "block data update", on)
}

// ConfigureAutozero latches the next pressure sample as reference; later
// samples are reported relative to it until ResetAutozero.
func (d *Dev) ConfigureAutozero(on bool) error {
	return d.setFlag(fAutozero, "autozero", on)
}

// ResetAutozero ends autozero mode. The bit clears itself.
func (d *Dev) ResetAutozero() error {
	return d.setFlag(fResetAZ, "autozero reset", true)
}

// ConfigureAutoRefP latches the next sample as reference for the interrupt
// logic without changing the pressure output. LPS22HB only.
func (d *Dev) ConfigureAutoRefP(on bool) error {
	return d.setFlag(fAutoRifp, "autorifp", on)
}

// ResetAutoRefP ends AutoRefP mode. LPS22HB only.
func (d *Dev) ResetAutoRefP() error {
	return d.setFlag(fResetARP, "autorifp reset", true)
}

// Reboot reloads the trimming parameters from flash. It returns as soon as
// the request is written.
func (d *Dev) Reboot() error {
	return d.setFlag(fBoot, "reboot", true)
}

// IsRebootRunning reports whether a reboot is in progress. LPS22HB only; the
// LPS25HB has no status bit for it.
func (d *Dev) IsRebootRunning() (bool, error) {
	return d.testFlag(fBootStatus, "boot status")
}

// SoftwareReset restores the power-on register values. It returns as soon as
// the request is written.
func (d *Dev) SoftwareReset() error {
	return d.setFlag(fSWReset, "software reset", true)
}

// DisableI2C turns the I²C interface off, leaving SPI only. Do not call it
// on a Dev reached over I²C.
func (d *Dev) DisableI2C(disable bool) error {
	return d.setFlag(fI2CDis, "i2c disable", disable)
}

// EnableAddressAutoIncrement controls register address increment during
// multi-byte access. LPS22HB only; the LPS25HB selects it per transfer.
func (d *Dev) EnableAddressAutoIncrement(on bool) error {
	return d.setFlag(fIfAddInc, "address auto increment", on)
}

// EnableLowPower selects the low-current mode. LPS22HB only.
func (d *Dev) EnableLowPower(on bool) error {
	return d.setFlag(fLCEn, "low power", on)
}

// LowPassBandwidth is the cutoff of the pressure low-pass filter as a
// fraction of the data rate.
type LowPassBandwidth uint8

const (
	LowPassODR9  LowPassBandwidth = iota // ODR/9
	LowPassODR20                         // ODR/20
)

// ConfigureLowPassFilter enables the pressure low-pass filter. LPS22HB only.
func (d *Dev) ConfigureLowPassFilter(on bool, bw LowPassBandwidth) error {
	if bw > LowPassODR20 {
		return fmt.Errorf("lps2x: invalid low-pass bandwidth %d", bw)
	}
	en, err := d.field(fLPFPEnable, "low-pass filter")
	if err != nil {
		return err
	}
	cfg, err := d.field(fLPFPCfg, "low-pass filter")
	if err != nil {
		return err
	}
	v := en.flag(on) | cfg.flag(bw == LowPassODR20)
	return d.modify(en.reg, en.mask|cfg.mask, v)
}

// ResetLowPassFilter clears the filter state. The device resets it on a read
// of LPFP_RES. LPS22HB only.
func (d *Dev) ResetLowPassFilter() error {
	_, err := d.ReadRegister(RegLPFPRes)
	return err
}

// SPIMode selects the SPI wiring.
type SPIMode uint8

const (
	SPI4Wire SPIMode = iota
	SPI3Wire
)

// SetSPIMode selects 3- or 4-wire SPI.
func (d *Dev) SetSPIMode(m SPIMode) error {
	if m > SPI3Wire {
		return fmt.Errorf("lps2x: invalid spi mode %d", m)
	}
	return d.setFlag(fSIM, "spi mode", m == SPI3Wire)
}
