// Package mcp9808 reads ambient temperature from an MCP9808 sharing the bus
// with the pressure sensor. Its reading replaces the pressure sensor's die
// temperature.
package mcp9808

import (
	"time"

	"github.com/mtraver/lps2x/measurement"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/mcp9808"
)

const (
	numSamples     = 3
	sampleInterval = 1
)

// thermometer is the part of *mcp9808.Dev used here.
type thermometer interface {
	SenseTemp() (physic.Temperature, error)
	Halt() error
}

type MCP9808 struct {
	dev   thermometer
	sleep func(time.Duration)
}

func New(bus i2c.Bus) (*MCP9808, error) {
	d, err := mcp9808.New(bus, &mcp9808.DefaultOpts)
	if err != nil {
		return nil, err
	}

	return &MCP9808{
		dev:   d,
		sleep: time.Sleep,
	}, nil
}

func (s *MCP9808) Init() error {
	return nil
}

func (s *MCP9808) Sense(m *measurement.StorableMeasurement) error {
	temps, err := s.readTempMulti(numSamples, time.Duration(sampleInterval)*time.Second)
	if err != nil {
		return err
	}

	t := mean(temps)
	m.Temp = &t
	return nil
}

func (s *MCP9808) Shutdown() error {
	return s.dev.Halt()
}

func (s *MCP9808) readTempMulti(samples int, interval time.Duration) ([]physic.Temperature, error) {
	temps := make([]physic.Temperature, samples)
	for i := 0; i < samples; i++ {
		temp, err := s.dev.SenseTemp()
		if err != nil {
			return temps, err
		}

		temps[i] = temp
		if i < samples-1 {
			s.sleep(interval)
		}
	}

	return temps, nil
}

func mean(s []physic.Temperature) float32 {
	if len(s) == 0 {
		return 0
	}

	var sum float64
	for _, t := range s {
		sum += t.Celsius()
	}

	return float32(sum / float64(len(s)))
}
