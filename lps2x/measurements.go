package lps2x

import (
	"encoding/binary"
	"fmt"
	"math"

	"periph.io/x/conn/v3/physic"
)

// ReadPressure returns the last pressure sample in hPa.
func (d *Dev) ReadPressure() (float32, error) {
	var b [3]byte
	if err := d.read(RegPressOutXL, b[:]); err != nil {
		return 0, err
	}
	return decodePressure(b), nil
}

// ReadTemperature returns the last temperature sample in °C.
func (d *Dev) ReadTemperature() (float32, error) {
	var b [2]byte
	if err := d.read(RegTempOutL, b[:]); err != nil {
		return 0, err
	}
	return d.v.decodeTemperature(b), nil
}

// ReadReferencePressure returns the autozero or AutoRefP reference in hPa.
func (d *Dev) ReadReferencePressure() (float32, error) {
	var b [3]byte
	if err := d.read(RegRefPXL, b[:]); err != nil {
		return 0, err
	}
	return decodePressure(b), nil
}

// ReadPressureOffset returns the one-point calibration offset in hPa.
func (d *Dev) ReadPressureOffset() (float32, error) {
	var b [2]byte
	if err := d.read(RegRPDSL, b[:]); err != nil {
		return 0, err
	}
	return float32(int16(binary.LittleEndian.Uint16(b[:]))) / thresholdScale, nil
}

// SetPressureOffset sets the one-point calibration offset in hPa, rounded to
// 1/16 hPa.
func (d *Dev) SetPressureOffset(hPa float32) error {
	raw := math.Round(float64(hPa) * thresholdScale)
	if raw < math.MinInt16 || raw > math.MaxInt16 {
		return fmt.Errorf("lps2x: pressure offset %g hPa out of range", hPa)
	}
	return d.write16(RegRPDSL, RegRPDSH, uint16(int16(raw)))
}

// ReadThreshold returns the differential interrupt threshold in hPa.
func (d *Dev) ReadThreshold() (float32, error) {
	var b [2]byte
	if err := d.read(RegThsPL, b[:]); err != nil {
		return 0, err
	}
	return float32(binary.LittleEndian.Uint16(b[:])) / thresholdScale, nil
}

// SetThreshold sets the differential interrupt threshold in hPa, rounded to
// 1/16 hPa. The threshold is a magnitude and must not be negative.
func (d *Dev) SetThreshold(hPa float32) error {
	raw := math.Round(float64(hPa) * thresholdScale)
	if raw < 0 || raw > math.MaxUint16 {
		return fmt.Errorf("lps2x: threshold %g hPa out of range", hPa)
	}
	return d.write16(RegThsPL, RegThsPH, uint16(raw))
}

// write16 writes the low byte, then the high byte.
func (d *Dev) write16(lo, hi Register, v uint16) error {
	if err := d.write(lo, byte(v)); err != nil {
		return err
	}
	return d.write(hi, byte(v>>8))
}

// DataStatus is a STATUS snapshot.
type DataStatus struct {
	PressureAvailable    bool
	TemperatureAvailable bool
	PressureOverrun      bool
	TemperatureOverrun   bool
}

// DataStatus reads STATUS.
func (d *Dev) DataStatus() (DataStatus, error) {
	v, err := d.ReadRegister(RegStatus)
	if err != nil {
		return DataStatus{}, err
	}
	return d.v.decodeDataStatus(v), nil
}

func (v *variant) decodeDataStatus(b byte) DataStatus {
	f := v.fields
	return DataStatus{
		PressureAvailable:    b&f[fPDA].mask != 0,
		TemperatureAvailable: b&f[fTDA].mask != 0,
		PressureOverrun:      b&f[fPOR].mask != 0,
		TemperatureOverrun:   b&f[fTOR].mask != 0,
	}
}

// OneShot starts a single conversion. The data rate is set to power down
// first. OneShot does not wait; poll DataStatus before reading the result.
func (d *Dev) OneShot() error {
	if err := d.SetDataRate(ODRPowerDown); err != nil {
		return err
	}
	return d.setFlag(fOneShot, "one shot", true)
}

// decodePressure assembles XL, L, H into a signed 24-bit count.
func decodePressure(b [3]byte) float32 {
	raw := int32(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16)
	// Sign extend from bit 23.
	raw = raw << 8 >> 8
	return float32(raw) / pressScale
}

func (v *variant) decodeTemperature(b [2]byte) float32 {
	raw := int16(binary.LittleEndian.Uint16(b[:]))
	return float32(raw)/v.tempScale + v.tempOffset
}

func hPaToPressure(hPa float32) physic.Pressure {
	return physic.Pressure(math.Round(float64(hPa)*100)) * physic.Pascal
}

func celsiusToTemperature(c float32) physic.Temperature {
	return physic.ZeroCelsius + physic.Temperature(math.Round(float64(c)*100))*10*physic.MilliKelvin
}
