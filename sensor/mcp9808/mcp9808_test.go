package mcp9808

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/mtraver/lps2x/measurement"
	"periph.io/x/conn/v3/physic"
)

var cmpFloats = cmpopts.EquateApprox(0, 0.0001)

type fakeThermometer struct {
	temps  []physic.Temperature
	err    error
	halted bool
}

func (f *fakeThermometer) SenseTemp() (physic.Temperature, error) {
	if f.err != nil {
		return 0, f.err
	}
	t := f.temps[0]
	f.temps = f.temps[1:]
	return t, nil
}

func (f *fakeThermometer) Halt() error {
	f.halted = true
	return nil
}

func celsius(c float64) physic.Temperature {
	return physic.ZeroCelsius + physic.Temperature(c*float64(physic.Celsius))
}

func TestMean(t *testing.T) {
	cases := []struct {
		name string
		in   []physic.Temperature
		want float32
	}{
		{"empty", nil, 0},
		{"single", []physic.Temperature{celsius(21.5)}, 21.5},
		{"multiple", []physic.Temperature{celsius(20), celsius(21), celsius(25)}, 22},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if diff := cmp.Diff(mean(c.in), c.want, cmpFloats); diff != "" {
				t.Errorf("Unexpected result (-got +want):\n%s", diff)
			}
		})
	}
}

func TestSense(t *testing.T) {
	f := &fakeThermometer{temps: []physic.Temperature{celsius(18), celsius(19), celsius(20)}}
	var slept []time.Duration
	s := &MCP9808{dev: f, sleep: func(d time.Duration) { slept = append(slept, d) }}

	pressure := float32(1013)
	m := measurement.StorableMeasurement{Pressure: &pressure}
	if err := s.Sense(&m); err != nil {
		t.Fatalf("Sense: %v", err)
	}
	want := map[string]float32{"temp": 19, "pressure": 1013}
	if diff := cmp.Diff(m.ValueMap(), want, cmpFloats); diff != "" {
		t.Errorf("Unexpected result (-got +want):\n%s", diff)
	}
	if len(slept) != numSamples-1 {
		t.Errorf("slept %d times, want %d", len(slept), numSamples-1)
	}

	if err := s.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if !f.halted {
		t.Errorf("Shutdown did not halt the device")
	}
}

func TestSenseError(t *testing.T) {
	sensorErr := errors.New("i2c nack")
	s := &MCP9808{dev: &fakeThermometer{err: sensorErr}, sleep: func(time.Duration) {}}

	var m measurement.StorableMeasurement
	if err := s.Sense(&m); !errors.Is(err, sensorErr) {
		t.Errorf("Sense: got %v, want %v", err, sensorErr)
	}
	if m.Temp != nil {
		t.Errorf("Temp set after failed Sense")
	}
}
