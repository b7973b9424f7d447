// Package lps2x adapts an LPS22HB or LPS25HB to the sensor.Sensor interface.
package lps2x

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mtraver/lps2x/lps2x"
	"github.com/mtraver/lps2x/measurement"
)

// Opts configures sampling.
type Opts struct {
	// Samples is the number of one-shot conversions averaged per Sense.
	Samples int
	// Interval is the pause between conversions.
	Interval time.Duration
	// Timeout bounds the wait for a single conversion.
	Timeout time.Duration
	// Reference reports the autozero reference pressure as well.
	Reference bool
}

var DefaultOpts = Opts{
	Samples:  3,
	Interval: time.Second,
	Timeout:  time.Second,
}

const pollInterval = 5 * time.Millisecond

var errTimeout = errors.New("lps2x: timed out waiting for conversion")

// LPS2x is safe for concurrent use. Init, Sense and Shutdown hold a lock for
// their whole duration so that a shutdown never lands mid-measurement.
type LPS2x struct {
	mu   sync.Mutex
	dev  *lps2x.Dev
	opts Opts

	sleep func(time.Duration)
}

// New returns a Sensor talking through i. A nil opts means DefaultOpts.
func New(i lps2x.Interface, opts *Opts) (*LPS2x, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.Samples < 1 {
		return nil, fmt.Errorf("lps2x: samples must be at least 1, got %d", opts.Samples)
	}
	d, err := lps2x.New(i)
	if err != nil {
		return nil, err
	}
	return &LPS2x{
		dev:   d,
		opts:  *opts,
		sleep: time.Sleep,
	}, nil
}

// Dev returns the underlying driver.
func (s *LPS2x) Dev() *lps2x.Dev {
	return s.dev
}

// Init checks the device ID, powers the sensor up and leaves it in one-shot
// mode with block data update on.
func (s *LPS2x) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.dev.DeviceID()
	if err != nil {
		return err
	}
	if want := s.dev.Model().WhoAmI(); id != want {
		log.Printf("%v: WHO_AM_I is %#02x, expected %#02x", s.dev, id, want)
	}
	if err := s.dev.EnableSensor(true); err != nil {
		return err
	}
	if err := s.dev.EnableBlockDataUpdate(true); err != nil {
		return err
	}
	return s.dev.SetDataRate(lps2x.ODRPowerDown)
}

func (s *LPS2x) Sense(m *measurement.StorableMeasurement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var press, temp float64
	for i := 0; i < s.opts.Samples; i++ {
		p, t, err := s.convert()
		if err != nil {
			return err
		}
		press += float64(p)
		temp += float64(t)

		if i < s.opts.Samples-1 {
			s.sleep(s.opts.Interval)
		}
	}

	n := float64(s.opts.Samples)
	p := float32(press / n)
	t := float32(temp / n)
	m.Pressure = &p
	m.Temp = &t

	if s.opts.Reference {
		ref, err := s.dev.ReadReferencePressure()
		if err != nil {
			return err
		}
		m.ReferencePressure = &ref
	}
	return nil
}

// convert runs one conversion and returns pressure and temperature.
func (s *LPS2x) convert() (float32, float32, error) {
	if err := s.dev.OneShot(); err != nil {
		return 0, 0, err
	}
	var waited time.Duration
	for {
		st, err := s.dev.DataStatus()
		if err != nil {
			return 0, 0, err
		}
		if st.PressureAvailable && st.TemperatureAvailable {
			break
		}
		if waited >= s.opts.Timeout {
			return 0, 0, errTimeout
		}
		s.sleep(pollInterval)
		waited += pollInterval
	}

	p, err := s.dev.ReadPressure()
	if err != nil {
		return 0, 0, err
	}
	t, err := s.dev.ReadTemperature()
	if err != nil {
		return 0, 0, err
	}
	return p, t, nil
}

func (s *LPS2x) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.dev.Halt(); err != nil {
		return err
	}
	return s.dev.EnableSensor(false)
}
