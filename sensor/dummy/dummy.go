// Package dummy is a Sensor that needs no hardware. It reports fixed values.
package dummy

import (
	"log"

	"github.com/mtraver/lps2x/measurement"
)

const (
	Pressure float32 = 1013.25
	Temp     float32 = 20.0
)

type Dummy struct{}

func (d Dummy) Init() error {
	log.Printf("DUMMY SENSOR INIT")
	return nil
}

func (d Dummy) Sense(m *measurement.StorableMeasurement) error {
	log.Printf("DUMMY SENSOR SENSE")
	p, t := Pressure, Temp
	m.Pressure = &p
	m.Temp = &t
	return nil
}

func (d Dummy) Shutdown() error {
	log.Printf("DUMMY SENSOR SHUTDOWN")
	return nil
}
